package alu

import (
	"tlog.app/go/loc"

	"github.com/slowlang/rc/compiler/ir"
)

func (c *Compiler) emit(after *ir.Instruction, op ir.Opcode, sat bool, dst ir.DstReg, src ...ir.SrcReg) *ir.Instruction {
	inst := c.InsertAfter(after, op, sat, dst, src...)

	if c.tr.If("emit") {
		c.tr.Printw("emit", "inst", inst, "from", loc.Callers(2, 2))
	}

	return inst
}

func (c *Compiler) emit1(after *ir.Instruction, op ir.Opcode, sat bool, dst ir.DstReg, s0 ir.SrcReg) *ir.Instruction {
	return c.emit(after, op, sat, dst, s0)
}

func (c *Compiler) emit2(after *ir.Instruction, op ir.Opcode, sat bool, dst ir.DstReg, s0, s1 ir.SrcReg) *ir.Instruction {
	return c.emit(after, op, sat, dst, s0, s1)
}

func (c *Compiler) emit3(after *ir.Instruction, op ir.Opcode, sat bool, dst ir.DstReg, s0, s1, s2 ir.SrcReg) *ir.Instruction {
	return c.emit(after, op, sat, dst, s0, s1, s2)
}

func temp(i int) ir.SrcReg {
	return ir.Src(ir.FileTemporary, i)
}

func tempDst(i int) ir.DstReg {
	return ir.Dst(ir.FileTemporary, i)
}

func constant(i int) ir.SrcReg {
	return ir.Src(ir.FileConstant, i)
}
