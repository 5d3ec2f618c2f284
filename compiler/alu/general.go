package alu

import "github.com/slowlang/rc/compiler/ir"

// TransformALU eliminates
//
//	ABS CEIL DP2 DPH DST FLR LIT LRP POW SEQ SFL SGE SGT SLE SLT SNE SSG SUB SWZ XPD
//
// using MOV ADD MUL MAD FRC DP3 DP4 LG2 EX2 MAX MIN CMP,
// and makes RSQ read an absolute value as the hardware does.
func TransformALU(c *Compiler, inst *ir.Instruction) bool {
	switch inst.Opcode {
	case ir.ABS:
		transformABS(c, inst)
	case ir.CEIL:
		transformCEIL(c, inst)
	case ir.DP2:
		transformDP2(c, inst)
	case ir.DPH:
		transformDPH(c, inst)
	case ir.DST:
		transformDST(c, inst)
	case ir.FLR:
		transformFLR(c, inst)
	case ir.LIT:
		transformLIT(c, inst)
	case ir.LRP:
		transformLRP(c, inst)
	case ir.POW:
		transformPOW(c, inst)
	case ir.RSQ:
		return transformRSQ(c, inst)
	case ir.SEQ:
		transformSEQ(c, inst)
	case ir.SFL:
		transformSFL(c, inst)
	case ir.SGE:
		transformSGE(c, inst)
	case ir.SGT:
		transformSGT(c, inst)
	case ir.SLE:
		transformSLE(c, inst)
	case ir.SLT:
		transformSLT(c, inst)
	case ir.SNE:
		transformSNE(c, inst)
	case ir.SSG:
		transformSSG(c, inst)
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

func transformABS(c *Compiler, inst *ir.Instruction) {
	c.emit1(inst.Prev, ir.MOV, inst.Saturate, inst.Dst, ir.Absolute(inst.Src[0]))
	inst.Remove()
}

// ceil(x) = -floor(-x) = -(-x - frac(-x)) = x + frac(-x)
func transformCEIL(c *Compiler, inst *ir.Instruction) {
	t := c.AllocTemporary()

	c.emit1(inst.Prev, ir.FRC, false, tempDst(t), ir.Negate(inst.Src[0]))
	c.emit2(inst.Prev, ir.ADD, inst.Saturate, inst.Dst, inst.Src[0], temp(t))
	inst.Remove()
}

func transformDP2(c *Compiler, inst *ir.Instruction) {
	src0 := dropChannels(inst.Src[0], ir.ChanZero, 2, 3)
	src1 := dropChannels(inst.Src[1], ir.ChanZero, 2, 3)

	c.emit2(inst.Prev, ir.DP3, inst.Saturate, inst.Dst, src0, src1)
	inst.Remove()
}

func transformDPH(c *Compiler, inst *ir.Instruction) {
	src0 := dropChannels(inst.Src[0], ir.ChanOne, 3)

	c.emit2(inst.Prev, ir.DP4, inst.Saturate, inst.Dst, src0, inst.Src[1])
	inst.Remove()
}

// DST is [1, src0.y*src1.y, src0.z, src1.w]: a MUL with swizzling.
func transformDST(c *Compiler, inst *ir.Instruction) {
	c.emit2(inst.Prev, ir.MUL, inst.Saturate, inst.Dst,
		ir.Swz(inst.Src[0], ir.ChanOne, ir.ChanY, ir.ChanZ, ir.ChanOne),
		ir.Swz(inst.Src[1], ir.ChanOne, ir.ChanY, ir.ChanOne, ir.ChanW))
	inst.Remove()
}

func transformFLR(c *Compiler, inst *ir.Instruction) {
	t := c.AllocTemporary()

	c.emit1(inst.Prev, ir.FRC, false, tempDst(t), inst.Src[0])
	c.emit2(inst.Prev, ir.ADD, inst.Saturate, inst.Dst, inst.Src[0], ir.Negate(temp(t)))
	inst.Remove()
}

// transformLIT follows the ARB_fragment_program definition:
//
//	tmp = src
//	tmp.x = max(tmp.x, 0)
//	tmp.y = max(tmp.y, 0)
//	tmp.w = clamp(tmp.w, -(128-eps), 128-eps)
//	dst = [1, tmp.x, tmp.x > 0 ? pow(tmp.y, tmp.w) : 0, 1]
//
// Every intermediate write goes to a full-mask temporary; when the real
// destination is something else, or relatively addressed, a MOV after
// inst copies the result out.
func transformLIT(c *Compiler, inst *ir.Instruction) {
	k, kswz := c.Consts.AddImmediateScalar(-127.999999)
	sat := inst.Saturate

	if inst.Dst.WriteMask != ir.MaskXYZW || inst.Dst.File != ir.FileTemporary || inst.Dst.RelAddr {
		t := c.AllocTemporary()

		c.emit1(inst, ir.MOV, sat, inst.Dst, temp(t))

		inst.Dst = tempDst(t)
		sat = false
	}

	t := inst.Dst.Index
	tsrc := temp(t)

	c.emit2(inst.Prev, ir.MAX, false, ir.DstMasked(t, ir.MaskXYW),
		inst.Src[0],
		ir.Swz(constant(k), ir.ChanZero, ir.ChanZero, ir.ChanZero, kswz.Get(0)))
	c.emit2(inst.Prev, ir.MIN, false, ir.DstMasked(t, ir.MaskZ),
		ir.WWWW(tsrc),
		ir.Negate(ir.SrcSwizzled(ir.FileConstant, k, kswz)))

	// tmp.w = pow(tmp.y, tmp.z)
	c.emit1(inst.Prev, ir.LG2, false, ir.DstMasked(t, ir.MaskW), ir.YYYY(tsrc))
	c.emit2(inst.Prev, ir.MUL, false, ir.DstMasked(t, ir.MaskW), ir.WWWW(tsrc), ir.ZZZZ(tsrc))
	c.emit1(inst.Prev, ir.EX2, false, ir.DstMasked(t, ir.MaskW), ir.WWWW(tsrc))

	// tmp.z = tmp.x > 0 ? tmp.w : 0
	c.emit3(inst.Prev, ir.CMP, sat, ir.DstMasked(t, ir.MaskZ),
		ir.Negate(ir.XXXX(tsrc)), ir.WWWW(tsrc), ir.BuiltinZero)

	c.emit1(inst.Prev, ir.MOV, sat, ir.DstMasked(t, ir.MaskXYW),
		ir.Swz(tsrc, ir.ChanOne, ir.ChanX, ir.ChanOne, ir.ChanOne))

	inst.Remove()
}

func transformLRP(c *Compiler, inst *ir.Instruction) {
	t := c.AllocTemporary()

	c.emit2(inst.Prev, ir.ADD, false, tempDst(t), inst.Src[1], ir.Negate(inst.Src[2]))
	c.emit3(inst.Prev, ir.MAD, inst.Saturate, inst.Dst, inst.Src[0], temp(t), inst.Src[2])
	inst.Remove()
}

func transformPOW(c *Compiler, inst *ir.Instruction) {
	t := c.AllocTemporary()

	tdst := ir.DstMasked(t, ir.MaskW)
	tsrc := ir.SrcSwizzled(ir.FileTemporary, t, ir.SwizzleWWWW)

	c.emit1(inst.Prev, ir.LG2, false, tdst, ir.XXXX(inst.Src[0]))
	c.emit2(inst.Prev, ir.MUL, false, tdst, tsrc, ir.XXXX(inst.Src[1]))
	c.emit1(inst.Prev, ir.EX2, inst.Saturate, inst.Dst, tsrc)
	inst.Remove()
}

// transformRSQ reports false when the operand already is |x|.
func transformRSQ(c *Compiler, inst *ir.Instruction) bool {
	if inst.Src[0].Abs && inst.Src[0].Negate == ir.MaskNone {
		return false
	}

	inst.Src[0] = ir.Absolute(inst.Src[0])

	return true
}

// Set-on-compare ops go through a difference d and CMP, which selects
// src1 where src0 < 0 and src2 elsewhere.

func transformSEQ(c *Compiler, inst *ir.Instruction) {
	compare(c, inst, false, func(d ir.SrcReg) ir.SrcReg { return ir.Negate(ir.Absolute(d)) }, ir.BuiltinZero, ir.BuiltinOne)
}

func transformSNE(c *Compiler, inst *ir.Instruction) {
	compare(c, inst, false, func(d ir.SrcReg) ir.SrcReg { return ir.Negate(ir.Absolute(d)) }, ir.BuiltinOne, ir.BuiltinZero)
}

func transformSGE(c *Compiler, inst *ir.Instruction) {
	compare(c, inst, false, nil, ir.BuiltinZero, ir.BuiltinOne)
}

func transformSLT(c *Compiler, inst *ir.Instruction) {
	compare(c, inst, false, nil, ir.BuiltinOne, ir.BuiltinZero)
}

func transformSGT(c *Compiler, inst *ir.Instruction) {
	compare(c, inst, true, nil, ir.BuiltinOne, ir.BuiltinZero)
}

func transformSLE(c *Compiler, inst *ir.Instruction) {
	compare(c, inst, true, nil, ir.BuiltinZero, ir.BuiltinOne)
}

// compare emits d = a - b (or b - a when swap is set), then
// dst = CMP(mod(d), neg, pos).
func compare(c *Compiler, inst *ir.Instruction, swap bool, mod func(ir.SrcReg) ir.SrcReg, neg, pos ir.SrcReg) {
	t := c.AllocTemporary()

	a, b := inst.Src[0], ir.Negate(inst.Src[1])
	if swap {
		a, b = ir.Negate(inst.Src[0]), inst.Src[1]
	}

	c.emit2(inst.Prev, ir.ADD, false, tempDst(t), a, b)

	d := temp(t)
	if mod != nil {
		d = mod(d)
	}

	c.emit3(inst.Prev, ir.CMP, inst.Saturate, inst.Dst, d, neg, pos)
	inst.Remove()
}

func transformSFL(c *Compiler, inst *ir.Instruction) {
	c.emit1(inst.Prev, ir.MOV, inst.Saturate, inst.Dst, ir.BuiltinZero)
	inst.Remove()
}

// sign(x) = (0 < x) - (x < 0)
//
//	CMP t0, -x, 1, 0
//	CMP t1, x, 1, 0
//	ADD dst, t0, -t1
func transformSSG(c *Compiler, inst *ir.Instruction) {
	t0 := c.AllocTemporary()
	c.emit3(inst.Prev, ir.CMP, false, ir.DstMasked(t0, inst.Dst.WriteMask),
		ir.Negate(inst.Src[0]), ir.BuiltinOne, ir.BuiltinZero)

	t1 := c.AllocTemporary()
	c.emit3(inst.Prev, ir.CMP, false, ir.DstMasked(t1, inst.Dst.WriteMask),
		inst.Src[0], ir.BuiltinOne, ir.BuiltinZero)

	c.emit2(inst.Prev, ir.ADD, inst.Saturate, inst.Dst, temp(t0), ir.Negate(temp(t1)))
	inst.Remove()
}

func transformSUB(c *Compiler, inst *ir.Instruction) {
	inst.Opcode = ir.ADD
	inst.Src[1] = ir.Negate(inst.Src[1])
}

// SWZ operands already carry the swizzle and the per-channel negation.
func transformSWZ(c *Compiler, inst *ir.Instruction) {
	inst.Opcode = ir.MOV
}

// a × b = a.yzx*b.zxy - a.zxy*b.yzx
func transformXPD(c *Compiler, inst *ir.Instruction) {
	t := c.AllocTemporary()

	c.emit2(inst.Prev, ir.MUL, false, tempDst(t),
		ir.Swz(inst.Src[0], ir.ChanZ, ir.ChanX, ir.ChanY, ir.ChanW),
		ir.Swz(inst.Src[1], ir.ChanY, ir.ChanZ, ir.ChanX, ir.ChanW))
	c.emit3(inst.Prev, ir.MAD, inst.Saturate, inst.Dst,
		ir.Swz(inst.Src[0], ir.ChanY, ir.ChanZ, ir.ChanX, ir.ChanW),
		ir.Swz(inst.Src[1], ir.ChanZ, ir.ChanX, ir.ChanY, ir.ChanW),
		ir.Negate(temp(t)))
	inst.Remove()
}

// dropChannels replaces the given channels of r with the literal lit and
// clears their negation.
func dropChannels(r ir.SrcReg, lit ir.Chan, chans ...int) ir.SrcReg {
	for _, ch := range chans {
		r.Swizzle = r.Swizzle.Set(ch, lit)
		r.Negate &^= 1 << ch
	}

	return r
}
