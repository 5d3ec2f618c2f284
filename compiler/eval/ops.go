package eval

import (
	"math"

	"github.com/slowlang/rc/compiler/ir"
	"tlog.app/go/errors"
)

// litExpLimit is the LIT exponent clamp, 128 minus epsilon.
const litExpLimit = 127.999999

func (s *State) compute(op ir.Opcode, src [3]Vec4) (r Vec4, err error) {
	a, b, c := src[0], src[1], src[2]

	switch op {
	case ir.NOP:
	case ir.ABS:
		r = each(a, abs)
	case ir.ADD:
		r = each2(a, b, func(x, y float32) float32 { return x + y })
	case ir.SUB:
		r = each2(a, b, func(x, y float32) float32 { return x - y })
	case ir.MUL:
		r = each2(a, b, func(x, y float32) float32 { return x * y })
	case ir.MAD:
		for i := range r {
			r[i] = a[i]*b[i] + c[i]
		}
	case ir.LRP:
		for i := range r {
			r[i] = a[i]*b[i] + (1-a[i])*c[i]
		}
	case ir.CMP:
		for i := range r {
			r[i] = c[i]
			if a[i] < 0 {
				r[i] = b[i]
			}
		}
	case ir.MAX:
		r = each2(a, b, func(x, y float32) float32 { return f32(math.Max(float64(x), float64(y))) })
	case ir.MIN:
		r = each2(a, b, func(x, y float32) float32 { return f32(math.Min(float64(x), float64(y))) })
	case ir.MOV, ir.SWZ:
		r = a
	case ir.FRC:
		r = each(a, func(x float32) float32 { return x - floor(x) })
	case ir.FLR:
		r = each(a, floor)
	case ir.CEIL:
		r = each(a, func(x float32) float32 { return f32(math.Ceil(float64(x))) })
	case ir.SSG:
		r = each(a, func(x float32) float32 {
			switch {
			case x > 0:
				return 1
			case x < 0:
				return -1
			}
			return 0
		})
	case ir.SFL:
		r = Vec4{}
	case ir.SEQ:
		r = each2(a, b, setIf(func(x, y float32) bool { return x == y }))
	case ir.SNE:
		r = each2(a, b, setIf(func(x, y float32) bool { return x != y }))
	case ir.SGE:
		r = each2(a, b, setIf(func(x, y float32) bool { return x >= y }))
	case ir.SGT:
		r = each2(a, b, setIf(func(x, y float32) bool { return x > y }))
	case ir.SLE:
		r = each2(a, b, setIf(func(x, y float32) bool { return x <= y }))
	case ir.SLT:
		r = each2(a, b, setIf(func(x, y float32) bool { return x < y }))
	case ir.DP2:
		r = smear(a[0]*b[0] + a[1]*b[1])
	case ir.DP3:
		r = smear(a[0]*b[0] + a[1]*b[1] + a[2]*b[2])
	case ir.DP4:
		r = smear(a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + a[3]*b[3])
	case ir.DPH:
		r = smear(a[0]*b[0] + a[1]*b[1] + a[2]*b[2] + b[3])
	case ir.DST:
		r = Vec4{1, a[1] * b[1], a[2], b[3]}
	case ir.XPD:
		r = Vec4{
			a[1]*b[2] - a[2]*b[1],
			a[2]*b[0] - a[0]*b[2],
			a[0]*b[1] - a[1]*b[0],
			0,
		}
	case ir.EX2:
		r = smear(f32(math.Exp2(float64(a[0]))))
	case ir.LG2:
		r = smear(f32(math.Log2(float64(a[0]))))
	case ir.POW:
		r = smear(f32(math.Pow(float64(a[0]), float64(b[0]))))
	case ir.RCP:
		r = smear(1 / a[0])
	case ir.RSQ:
		r = smear(f32(1 / math.Sqrt(math.Abs(float64(a[0])))))
	case ir.SIN:
		r = smear(f32(math.Sin(s.angle(a[0]))))
	case ir.COS:
		r = smear(f32(math.Cos(s.angle(a[0]))))
	case ir.SCS:
		r = Vec4{f32(math.Cos(s.angle(a[0]))), f32(math.Sin(s.angle(a[0]))), 0, 0}
	case ir.LIT:
		r = lit(a)
	case ir.KIL:
		for _, x := range a {
			if x < 0 {
				s.Killed = true
			}
		}
	case ir.KILP:
		s.Killed = true
	default:
		return r, errors.New("unsupported opcode: %v", op)
	}

	return r, nil
}

func (s *State) angle(x float32) float64 {
	if s.TrigTurns {
		return 2 * math.Pi * float64(x)
	}

	return float64(x)
}

func lit(a Vec4) Vec4 {
	x := max32(a[0], 0)
	y := max32(a[1], 0)
	w := clamp(a[3], -litExpLimit, litExpLimit)

	r := Vec4{1, x, 0, 1}

	if x > 0 {
		r[2] = f32(math.Pow(float64(y), float64(w)))
	}

	return r
}

func each(a Vec4, f func(float32) float32) (r Vec4) {
	for i := range r {
		r[i] = f(a[i])
	}

	return r
}

func each2(a, b Vec4, f func(x, y float32) float32) (r Vec4) {
	for i := range r {
		r[i] = f(a[i], b[i])
	}

	return r
}

func setIf(f func(x, y float32) bool) func(x, y float32) float32 {
	return func(x, y float32) float32 {
		if f(x, y) {
			return 1
		}

		return 0
	}
}

func smear(x float32) Vec4 { return Vec4{x, x, x, x} }

func f32(x float64) float32 { return float32(x) }

func abs(x float32) float32 { return f32(math.Abs(float64(x))) }

func floor(x float32) float32 { return f32(math.Floor(float64(x))) }

func max32(x, y float32) float32 {
	if x > y {
		return x
	}

	return y
}

func clamp(x, lo, hi float32) float32 {
	switch {
	case x < lo:
		return lo
	case x > hi:
		return hi
	}

	return x
}
