package alu

import "github.com/slowlang/rc/compiler/ir"

// TransformKILP turns every KILP into KIL and fuses a conditional discard:
//
//	IF temp[0].x
//	KILP          ->  KIL -|temp[0].xxxx|
//	ENDIF
//
// A KILP outside such a bracket discards unconditionally. It runs as its
// own pass since it rewrites the neighbours of KILP.
func TransformKILP(c *Compiler) (n int) {
	for inst := c.First(); inst != c.Sentinel(); inst = inst.Next {
		if inst.Opcode != ir.KILP {
			continue
		}

		n++

		inst.Opcode = ir.KIL

		if inst.Prev.Opcode != ir.IF || inst.Next.Opcode != ir.ENDIF {
			inst.Src[0] = ir.Negate(ir.BuiltinOne)

			continue
		}

		// IF tests the x channel
		inst.Src[0] = ir.Negate(ir.Absolute(ir.XXXX(inst.Prev.Src[0])))

		inst.Prev.Remove()
		inst.Next.Remove()
	}

	return n
}
