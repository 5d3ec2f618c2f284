package alu

import "github.com/slowlang/rc/compiler/ir"

// TransformDeriv adapts DDX and DDY to the R500 MDH/MDV form A*B+C, where
// src0 provides A and C, and B must be -1.
func TransformDeriv(c *Compiler, inst *ir.Instruction) bool {
	if inst.Opcode != ir.DDX && inst.Opcode != ir.DDY {
		return false
	}

	b := &inst.Src[1]

	if b.Swizzle == ir.Swizzle1111 && b.Negate == ir.MaskXYZW {
		return false
	}

	b.Swizzle = ir.Swizzle1111
	b.Negate = ir.MaskXYZW

	return true
}
