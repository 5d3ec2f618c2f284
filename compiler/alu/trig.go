package alu

import (
	"math"

	"github.com/slowlang/rc/compiler/ir"
)

var sinCosConsts = [2][4]float32{
	{
		4 / math.Pi,
		-4 / (math.Pi * math.Pi),
		math.Pi,
		0.2225, // weight
	},
	{
		0.75,
		0.5,
		1 / (2 * math.Pi),
		2 * math.Pi,
	},
}

func isTrig(op ir.Opcode) bool {
	return op == ir.COS || op == ir.SIN || op == ir.SCS
}

func (c *Compiler) sinCosConstants() (k [2]int) {
	for i, v := range sinCosConsts {
		k[i] = c.Consts.AddImmediateVec4(v)
	}

	return k
}

// sinApprox emits dst = sin(src.x) for src.x in [-PI, PI]:
//
//	MUL t.xy, src, {4/PI, -4/(PI^2)}
//	MAD t.x, t.y, |src|, t.x
//	MAD t.y, t.x, |t.x|, -t.x
//	MAD dst, t.y, weight, t.x
func (c *Compiler) sinApprox(inst *ir.Instruction, sat bool, dst ir.DstReg, src ir.SrcReg, k [2]int) {
	t := c.AllocTemporary()
	tsrc := temp(t)

	c.emit2(inst.Prev, ir.MUL, false, ir.DstMasked(t, ir.MaskXY),
		ir.XXXX(src),
		constant(k[0]))
	c.emit3(inst.Prev, ir.MAD, false, ir.DstMasked(t, ir.MaskX),
		ir.YYYY(tsrc),
		ir.Absolute(ir.XXXX(src)),
		ir.XXXX(tsrc))
	c.emit3(inst.Prev, ir.MAD, false, ir.DstMasked(t, ir.MaskY),
		ir.XXXX(tsrc),
		ir.Absolute(ir.XXXX(tsrc)),
		ir.Negate(ir.XXXX(tsrc)))
	c.emit3(inst.Prev, ir.MAD, sat, dst,
		ir.YYYY(tsrc),
		ir.WWWW(constant(k[0])),
		ir.XXXX(tsrc))
}

// TransformTrigSimple lowers COS, SIN and SCS using only MOV ADD MUL MAD
// FRC. The argument is wrapped into [-PI, PI) with the phase of the
// function folded in:
//
//	t = frac(x/(2*PI) + phase) * 2*PI - PI
//
// where phase is 0.75 for cosine and 0.5 for sine.
func TransformTrigSimple(c *Compiler, inst *ir.Instruction) bool {
	if !isTrig(inst.Opcode) {
		return false
	}

	k := c.sinCosConstants()
	t := c.AllocTemporary()

	c1 := constant(k[1])

	switch inst.Opcode {
	case ir.COS, ir.SIN:
		phase := ir.XXXX(c1)
		if inst.Opcode == ir.SIN {
			phase = ir.YYYY(c1)
		}

		c.emit3(inst.Prev, ir.MAD, false, ir.DstMasked(t, ir.MaskW),
			ir.XXXX(inst.Src[0]), ir.ZZZZ(c1), phase)
		c.emit1(inst.Prev, ir.FRC, false, ir.DstMasked(t, ir.MaskW),
			ir.WWWW(temp(t)))
		c.emit3(inst.Prev, ir.MAD, false, ir.DstMasked(t, ir.MaskW),
			ir.WWWW(temp(t)), ir.WWWW(c1), ir.Negate(ir.ZZZZ(constant(k[0]))))

		c.sinApprox(inst, inst.Saturate, inst.Dst, ir.WWWW(temp(t)), k)
	case ir.SCS:
		// cosine phase in x, sine phase in y
		c.emit3(inst.Prev, ir.MAD, false, ir.DstMasked(t, ir.MaskXY),
			ir.XXXX(inst.Src[0]), ir.ZZZZ(c1), c1)
		c.emit1(inst.Prev, ir.FRC, false, ir.DstMasked(t, ir.MaskXY),
			temp(t))
		c.emit3(inst.Prev, ir.MAD, false, ir.DstMasked(t, ir.MaskXY),
			temp(t), ir.WWWW(c1), ir.Negate(ir.ZZZZ(constant(k[0]))))

		dst := inst.Dst

		if dst.WriteMask&ir.MaskX != 0 {
			dst.WriteMask = ir.MaskX
			c.sinApprox(inst, inst.Saturate, dst, ir.XXXX(temp(t)), k)
		}

		if inst.Dst.WriteMask&ir.MaskY != 0 {
			dst.WriteMask = ir.MaskY
			c.sinApprox(inst, inst.Saturate, dst, ir.YYYY(temp(t)), k)
		}
	}

	inst.Remove()

	return true
}

// TransformTrigScale prepares COS, SIN and SCS for the R500 fragment
// units, whose SIN and COS take the angle in turns: the argument is
// scaled by 1/(2*PI) and wrapped into [0, 1).
func TransformTrigScale(c *Compiler, inst *ir.Instruction) bool {
	if !isTrig(inst.Opcode) || inst.Fixed {
		return false
	}

	t := c.AllocTemporary()
	k, kswz := c.Consts.AddImmediateScalar(1 / (2 * math.Pi))

	c.emit2(inst.Prev, ir.MUL, false, ir.DstMasked(t, ir.MaskW),
		ir.XXXX(inst.Src[0]), ir.SrcSwizzled(ir.FileConstant, k, kswz))
	c.emit1(inst.Prev, ir.FRC, false, ir.DstMasked(t, ir.MaskW),
		temp(t))

	c.nativeSinCos(inst, t)

	return true
}

// TransformTrigScaleVertex wraps the argument of COS, SIN and SCS into
// [-PI, PI] for the vertex engine:
//
//	t = frac(x/(2*PI) + 0.5) * 2*PI - PI
func TransformTrigScaleVertex(c *Compiler, inst *ir.Instruction) bool {
	if !isTrig(inst.Opcode) || inst.Fixed {
		return false
	}

	t := c.AllocTemporary()
	k := c.Consts.AddImmediateVec4([4]float32{1 / (2 * math.Pi), 0.5, 2 * math.Pi, -math.Pi})

	c.emit3(inst.Prev, ir.MAD, false, ir.DstMasked(t, ir.MaskW),
		ir.XXXX(inst.Src[0]),
		ir.SrcSwizzled(ir.FileConstant, k, ir.SwizzleXXXX),
		ir.SrcSwizzled(ir.FileConstant, k, ir.SwizzleYYYY))
	c.emit1(inst.Prev, ir.FRC, false, ir.DstMasked(t, ir.MaskW),
		temp(t))
	c.emit3(inst.Prev, ir.MAD, false, ir.DstMasked(t, ir.MaskW),
		temp(t),
		ir.SrcSwizzled(ir.FileConstant, k, ir.SwizzleZZZZ),
		ir.SrcSwizzled(ir.FileConstant, k, ir.SwizzleWWWW))

	c.nativeSinCos(inst, t)

	return true
}

// nativeSinCos replaces inst with native COS and SIN reading t.w and
// marks them fixed. SCS becomes COS into x and SIN into y.
func (c *Compiler) nativeSinCos(inst *ir.Instruction, t int) {
	arg := ir.SrcSwizzled(ir.FileTemporary, t, ir.SwizzleWWWW)

	switch inst.Opcode {
	case ir.COS, ir.SIN:
		c.emit1(inst.Prev, inst.Opcode, inst.Saturate, inst.Dst, arg).Fixed = true
	case ir.SCS:
		dst := inst.Dst

		if inst.Dst.WriteMask&ir.MaskX != 0 {
			dst.WriteMask = ir.MaskX
			c.emit1(inst.Prev, ir.COS, inst.Saturate, dst, arg).Fixed = true
		}

		if inst.Dst.WriteMask&ir.MaskY != 0 {
			dst.WriteMask = ir.MaskY
			c.emit1(inst.Prev, ir.SIN, inst.Saturate, dst, arg).Fixed = true
		}
	}

	inst.Remove()
}
