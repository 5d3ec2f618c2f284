package alu

import "github.com/slowlang/rc/compiler/ir"

// TransformVertexALU lowers non-native ALU instructions of the r300 to
// r500 vertex engine. SEQ and SNE are left alone with NativeCompare.
func TransformVertexALU(c *Compiler, inst *ir.Instruction) bool {
	switch inst.Opcode {
	case ir.ABS:
		transformVertexABS(c, inst)
	case ir.CEIL:
		transformCEIL(c, inst)
	case ir.CMP:
		transformVertexCMP(c, inst)
	case ir.DP2:
		transformVertexDP2(c, inst)
	case ir.DP3:
		transformVertexDP3(c, inst)
	case ir.DPH:
		transformDPH(c, inst)
	case ir.FLR:
		transformFLR(c, inst)
	case ir.LIT:
		return fixVertexLIT(c, inst)
	case ir.LRP:
		transformLRP(c, inst)
	case ir.SEQ:
		if c.NativeCompare {
			return false
		}

		transformVertexSEQ(c, inst)
	case ir.SFL:
		transformSFL(c, inst)
	case ir.SGT:
		transformVertexSGT(c, inst)
	case ir.SLE:
		transformVertexSLE(c, inst)
	case ir.SNE:
		if c.NativeCompare {
			return false
		}

		transformVertexSNE(c, inst)
	case ir.SSG:
		transformVertexSSG(c, inst)
	case ir.SUB:
		transformSUB(c, inst)
	case ir.SWZ:
		transformSWZ(c, inst)
	case ir.XPD:
		transformXPD(c, inst)
	default:
		return false
	}

	return true
}

// The r300 vertex engine has no absolute value modifier.
func transformVertexABS(c *Compiler, inst *ir.Instruction) {
	inst.Opcode = ir.MAX
	inst.Src[1] = ir.Negate(inst.Src[0])
}

// There is no CMP, dst = src0 < 0 ? src1 : src2 becomes
//
//	SLT t, src0, 0
//	LRP dst, t, src1, src2
//
// and the LRP is lowered right away.
func transformVertexCMP(c *Compiler, inst *ir.Instruction) {
	t := c.AllocTemporary()

	c.emit2(inst.Prev, ir.SLT, false, tempDst(t), inst.Src[0], ir.BuiltinZero)

	lrp := c.emit3(inst.Prev, ir.LRP, inst.Saturate, inst.Dst, temp(t), inst.Src[1], inst.Src[2])
	transformLRP(c, lrp)

	inst.Remove()
}

func transformVertexDP2(c *Compiler, inst *ir.Instruction) {
	next := inst.Next

	transformDP2(c, inst)

	next.Prev.Opcode = ir.DP4
}

func transformVertexDP3(c *Compiler, inst *ir.Instruction) {
	src0 := dropChannels(inst.Src[0], ir.ChanZero, 3)
	src1 := dropChannels(inst.Src[1], ir.ChanZero, 3)

	c.emit2(inst.Prev, ir.DP4, inst.Saturate, inst.Dst, src0, src1)
	inst.Remove()
}

// litFloor keeps LG2 of the LIT y operand finite.
const litFloor = 0.0000000000000000001

// fixVertexLIT keeps the native LIT but routes its operand through a
// temporary whose y is at least litFloor.
func fixVertexLIT(c *Compiler, inst *ir.Instruction) bool {
	if inst.Fixed {
		return false
	}

	t := c.AllocTemporary()
	k, kswz := c.Consts.AddImmediateScalar(litFloor)

	c.emit1(inst.Prev, ir.MOV, false, tempDst(t), inst.Src[0])
	c.emit2(inst.Prev, ir.MAX, false, ir.DstMasked(t, ir.MaskY), temp(t), ir.SrcSwizzled(ir.FileConstant, k, kswz))

	inst.Src[0] = temp(t)
	inst.Fixed = true

	return true
}

// x == y  <=>  x >= y && y >= x
func transformVertexSEQ(c *Compiler, inst *ir.Instruction) {
	vertexBoth(c, inst, ir.SGE, ir.MUL)
}

// x != y  <=>  x < y || y < x
func transformVertexSNE(c *Compiler, inst *ir.Instruction) {
	vertexBoth(c, inst, ir.SLT, ir.MAX)
}

// vertexBoth emits
//
//	cmp t, src0, src1
//	cmp dst, src1, src0
//	join dst, t, dst
//
// A relatively addressed dst can't be read back, so the second compare
// goes to another temporary then.
func vertexBoth(c *Compiler, inst *ir.Instruction, cmp, join ir.Opcode) {
	t := c.AllocTemporary()

	mid := inst.Dst
	if mid.RelAddr {
		mid = ir.DstMasked(c.AllocTemporary(), inst.Dst.WriteMask)
	}

	c.emit2(inst.Prev, cmp, false, ir.DstMasked(t, inst.Dst.WriteMask), inst.Src[0], inst.Src[1])
	c.emit2(inst.Prev, cmp, false, mid, inst.Src[1], inst.Src[0])
	c.emit2(inst.Prev, join, inst.Saturate, inst.Dst, temp(t), mid.Src())
	inst.Remove()
}

// x > y  <=>  -x < -y
func transformVertexSGT(c *Compiler, inst *ir.Instruction) {
	inst.Opcode = ir.SLT
	inst.Src[0] = ir.Negate(inst.Src[0])
	inst.Src[1] = ir.Negate(inst.Src[1])
}

// x <= y  <=>  -x >= -y
func transformVertexSLE(c *Compiler, inst *ir.Instruction) {
	inst.Opcode = ir.SGE
	inst.Src[0] = ir.Negate(inst.Src[0])
	inst.Src[1] = ir.Negate(inst.Src[1])
}

//	SLT t0, 0, x
//	SLT t1, x, 0
//	ADD dst, t0, -t1
func transformVertexSSG(c *Compiler, inst *ir.Instruction) {
	t0 := c.AllocTemporary()
	c.emit2(inst.Prev, ir.SLT, false, ir.DstMasked(t0, inst.Dst.WriteMask), ir.BuiltinZero, inst.Src[0])

	t1 := c.AllocTemporary()
	c.emit2(inst.Prev, ir.SLT, false, ir.DstMasked(t1, inst.Dst.WriteMask), inst.Src[0], ir.BuiltinZero)

	c.emit2(inst.Prev, ir.ADD, inst.Saturate, inst.Dst, temp(t0), ir.Negate(temp(t1)))
	inst.Remove()
}
