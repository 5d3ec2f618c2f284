package alu

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"tlog.app/go/tlog"

	"github.com/slowlang/rc/compiler/eval"
	"github.com/slowlang/rc/compiler/ir"
)

var (
	r300     = Config{Profile: General}
	r500     = Config{Profile: General, NativeCompare: true}
	r300vert = Config{Profile: Vertex}
	r500vert = Config{Profile: Vertex, NativeCompare: true}
)

var inputs = []eval.Vec4{
	{0.5, -1.25, 2, 3},
	{0.5, 2, -1.25, 0.75},
	{4, -2, 1, 0.25},
}

func lower(p *ir.Program, cfg Config) (n int) {
	c := New(p, cfg)

	if cfg.Profile == General {
		n += TransformKILP(c)
	}

	n += Local(context.Background(), c, cfg.Transforms()...)

	return n
}

func single(op ir.Opcode, sat bool) *ir.Program {
	p := ir.NewProgram()

	src := []ir.SrcReg{
		ir.Src(ir.FileInput, 0),
		ir.Src(ir.FileInput, 1),
		ir.Src(ir.FileInput, 2),
	}

	p.Append(op, sat, ir.Dst(ir.FileOutput, 0), src[:op.Info().NumSrc]...)

	return p
}

func opcodes(p *ir.Program) (r []ir.Opcode) {
	for _, inst := range p.Instructions() {
		r = append(r, inst.Opcode)
	}

	return r
}

func text(p *ir.Program) (r []string) {
	for _, inst := range p.Instructions() {
		r = append(r, inst.String())
	}

	return r
}

func run(t testing.TB, p *ir.Program, turns bool) *eval.State {
	t.Helper()

	s := eval.NewState()
	s.TrigTurns = turns

	for i, v := range inputs {
		s.Set(ir.FileInput, i, v)
	}

	require.NoError(t, eval.Run(p, s))

	return s
}

func assertNative(t testing.TB, p *ir.Program, cfg Config) {
	t.Helper()

	native := cfg.Native()

	for _, inst := range p.Instructions() {
		assert.True(t, native.IsSet(inst.Opcode), "%v is not native for %v", inst, cfg.Profile)
	}
}

// checkLowering compares output[0] of a single op program before and
// after lowering.
func checkLowering(t *testing.T, cfg Config, op ir.Opcode, sat bool, delta float64) {
	t.Helper()

	p := single(op, sat)
	exp := run(t, p, false).Get(ir.FileOutput, 0)

	lower(p, cfg)

	assertNative(t, p, cfg)

	got := run(t, p, cfg.Profile == General && cfg.NativeCompare).Get(ir.FileOutput, 0)

	assert.InDeltaSlice(t, exp[:], got[:], delta, "%v sat %v\n%v", op, sat, text(p))
}

func TestPassThrough(t *testing.T) {
	for _, cfg := range []Config{r300, r500, r300vert, r500vert} {
		p := ir.NewProgram()

		p.Append(ir.MAD, false, ir.Dst(ir.FileTemporary, 0), ir.Src(ir.FileInput, 0), ir.Src(ir.FileInput, 1), ir.Src(ir.FileInput, 2))
		p.Append(ir.RCP, false, ir.DstMasked(1, ir.MaskX), ir.Src(ir.FileInput, 0))
		p.Append(ir.MOV, true, ir.Dst(ir.FileOutput, 0), ir.Src(ir.FileTemporary, 0))
		p.ScanTemporaries()

		before := text(p)

		n := lower(p, cfg)

		assert.Zero(t, n, "%+v", cfg)
		assert.Equal(t, before, text(p), "%+v", cfg)
		assert.Equal(t, 2, p.Temporaries())
		assert.Zero(t, p.Consts.Len())
	}
}

func TestOrderPreserved(t *testing.T) {
	p := ir.NewProgram()

	p.Append(ir.MOV, false, ir.Dst(ir.FileTemporary, 0), ir.Src(ir.FileInput, 0))
	p.Append(ir.LRP, false, ir.Dst(ir.FileTemporary, 1), ir.Src(ir.FileInput, 0), ir.Src(ir.FileInput, 1), ir.Src(ir.FileInput, 2))
	p.Append(ir.SUB, false, ir.Dst(ir.FileOutput, 0), ir.Src(ir.FileTemporary, 1), ir.Src(ir.FileTemporary, 0))
	p.ScanTemporaries()

	n := lower(p, r300)

	assert.Equal(t, 2, n)
	assert.Equal(t, []ir.Opcode{ir.MOV, ir.ADD, ir.MAD, ir.ADD}, opcodes(p))
	assert.Equal(t, []string{
		"MOV temp[0], input[0]",
		"ADD temp[2], input[1], -input[2]",
		"MAD temp[1], input[0], temp[2], input[2]",
		"ADD output[0], temp[1], -temp[0]",
	}, text(p))
}

func TestExpansionCounts(t *testing.T) {
	for _, tc := range []struct {
		cfg Config
		op  ir.Opcode
		n   int
	}{
		{r300, ir.ABS, 1},
		{r300, ir.SUB, 1},
		{r300, ir.SWZ, 1},
		{r300, ir.RSQ, 1},
		{r300, ir.DP2, 1},
		{r300, ir.DPH, 1},
		{r300, ir.DST, 1},
		{r300, ir.SFL, 1},
		{r300, ir.CEIL, 2},
		{r300, ir.FLR, 2},
		{r300, ir.LRP, 2},
		{r300, ir.XPD, 2},
		{r300, ir.SEQ, 2},
		{r300, ir.SLT, 2},
		{r300, ir.POW, 3},
		{r300, ir.SSG, 3},
		{r300, ir.LIT, 8},
		{r300, ir.SIN, 7},
		{r300, ir.SCS, 11},
		{r500, ir.SIN, 3},
		{r500, ir.SCS, 4},

		{r300vert, ir.ABS, 1},
		{r300vert, ir.SGT, 1},
		{r300vert, ir.SLE, 1},
		{r300vert, ir.DP2, 1},
		{r300vert, ir.DP3, 1},
		{r300vert, ir.CMP, 3},
		{r300vert, ir.SEQ, 3},
		{r300vert, ir.SNE, 3},
		{r500vert, ir.SEQ, 1},
		{r300vert, ir.SSG, 3},
		{r300vert, ir.LIT, 3},
		{r300vert, ir.SIN, 4},
		{r300vert, ir.SCS, 5},
	} {
		p := single(tc.op, false)

		lower(p, tc.cfg)

		assert.Equal(t, tc.n, p.Len(), "%v %+v\n%v", tc.op, tc.cfg, text(p))
	}
}

func TestLITInPlaceTemporary(t *testing.T) {
	p := ir.NewProgram()
	p.Append(ir.LIT, false, ir.Dst(ir.FileTemporary, 0), ir.Src(ir.FileInput, 0))
	p.ScanTemporaries()

	lower(p, r300)

	assert.Equal(t, []ir.Opcode{ir.MAX, ir.MIN, ir.LG2, ir.MUL, ir.EX2, ir.CMP, ir.MOV}, opcodes(p))
	assert.Equal(t, 1, p.Temporaries())
	assert.Equal(t, 1, p.Consts.Len())
}

func TestGeneralNumeric(t *testing.T) {
	ops := []ir.Opcode{
		ir.ABS, ir.ADD, ir.CEIL, ir.CMP, ir.DP2, ir.DP3, ir.DP4, ir.DPH, ir.DST,
		ir.EX2, ir.FLR, ir.FRC, ir.LG2, ir.LIT, ir.LRP, ir.MAD, ir.MAX, ir.MIN,
		ir.MOV, ir.MUL, ir.POW, ir.RCP, ir.RSQ, ir.SEQ, ir.SFL, ir.SGE, ir.SGT,
		ir.SLE, ir.SLT, ir.SNE, ir.SSG, ir.SUB, ir.SWZ, ir.XPD,
	}

	for _, cfg := range []Config{r300, r500} {
		for _, op := range ops {
			for _, sat := range []bool{false, true} {
				checkLowering(t, cfg, op, sat, 1e-5)
			}
		}
	}
}

func TestSaturateOnFinalInstruction(t *testing.T) {
	for _, op := range []ir.Opcode{ir.CEIL, ir.FLR, ir.LRP, ir.POW, ir.SEQ, ir.SGE, ir.SLE, ir.SSG, ir.XPD, ir.SIN, ir.LIT} {
		p := single(op, true)

		lower(p, r300)

		l := p.Instructions()

		for _, inst := range l[:len(l)-1] {
			assert.False(t, inst.Saturate, "%v: %v", op, inst)
		}

		assert.True(t, l[len(l)-1].Saturate, "%v", op)
	}
}

func TestNumericScenarios(t *testing.T) {
	t.Run("SLT", func(t *testing.T) {
		p := ir.NewProgram()
		p.Append(ir.SLT, false, ir.DstReg{File: ir.FileOutput, WriteMask: ir.MaskX}, ir.Src(ir.FileInput, 0), ir.Src(ir.FileInput, 1))

		lower(p, r300)

		s := eval.NewState()
		s.Set(ir.FileInput, 0, eval.Vec4{2})
		s.Set(ir.FileInput, 1, eval.Vec4{5})

		require.NoError(t, eval.Run(p, s))

		assert.Equal(t, float32(-3), s.Get(ir.FileTemporary, 0)[0])
		assert.Equal(t, float32(1), s.Get(ir.FileOutput, 0)[0])
	})

	t.Run("SSG", func(t *testing.T) {
		p := ir.NewProgram()
		p.Append(ir.SSG, false, ir.Dst(ir.FileOutput, 0), ir.Src(ir.FileInput, 0))

		lower(p, r300)

		s := eval.NewState()
		s.Set(ir.FileInput, 0, eval.Vec4{-4, -4, -4, -4})

		require.NoError(t, eval.Run(p, s))

		assert.Equal(t, eval.Vec4{0, 0, 0, 0}, s.Get(ir.FileTemporary, 0))
		assert.Equal(t, eval.Vec4{1, 1, 1, 1}, s.Get(ir.FileTemporary, 1))
		assert.Equal(t, eval.Vec4{-1, -1, -1, -1}, s.Get(ir.FileOutput, 0))
	})

	t.Run("SEQ", func(t *testing.T) {
		p := ir.NewProgram()
		p.Append(ir.SEQ, false, ir.Dst(ir.FileOutput, 0), ir.Src(ir.FileInput, 0), ir.Src(ir.FileInput, 1))

		lower(p, r300)

		s := eval.NewState()
		s.Set(ir.FileInput, 0, eval.Vec4{3, 3, 3, 3})
		s.Set(ir.FileInput, 1, eval.Vec4{3, 3, 3, 3})

		require.NoError(t, eval.Run(p, s))

		assert.Equal(t, eval.Vec4{0, 0, 0, 0}, s.Get(ir.FileTemporary, 0))
		assert.Equal(t, eval.Vec4{1, 1, 1, 1}, s.Get(ir.FileOutput, 0))
	})
}

func TestIdentities(t *testing.T) {
	p := single(ir.SUB, false)
	lower(p, r300)
	assert.Equal(t, []string{"ADD output[0], input[0], -input[1]"}, text(p))

	p = single(ir.ABS, false)
	lower(p, r300)
	assert.Equal(t, []string{"MOV output[0], |input[0]|"}, text(p))

	p = single(ir.ABS, false)
	lower(p, r300vert)
	assert.Equal(t, []string{"MAX output[0], input[0], -input[0]"}, text(p))

	p = single(ir.DP2, false)
	lower(p, r300)
	assert.Equal(t, []string{"DP3 output[0], input[0].xy00, input[1].xy00"}, text(p))

	p = single(ir.DPH, false)
	lower(p, r300)
	assert.Equal(t, []string{"DP4 output[0], input[0].xyz1, input[1]"}, text(p))

	p = single(ir.DST, false)
	lower(p, r300)
	assert.Equal(t, []string{"MUL output[0], input[0].1yz1, input[1].1y1w"}, text(p))

	p = single(ir.RSQ, false)
	lower(p, r300)
	assert.Equal(t, []string{"RSQ output[0], |input[0]|"}, text(p))
}

func TestConstantPoolGrowth(t *testing.T) {
	for _, tc := range []struct {
		cfg  Config
		size int
	}{
		{r300, 2},
		{r500, 1},
		{r300vert, 1},
	} {
		p := ir.NewProgram()
		p.Append(ir.SIN, false, ir.DstMasked(0, ir.MaskX), ir.Src(ir.FileInput, 0))
		p.Append(ir.COS, false, ir.DstMasked(0, ir.MaskY), ir.Src(ir.FileInput, 1))
		p.ScanTemporaries()

		lower(p, tc.cfg)

		assert.Equal(t, tc.size, p.Consts.Len(), "%+v", tc.cfg)
	}

	p := ir.NewProgram()
	p.Append(ir.LIT, false, ir.Dst(ir.FileOutput, 0), ir.Src(ir.FileInput, 0))
	p.Append(ir.LIT, false, ir.Dst(ir.FileOutput, 1), ir.Src(ir.FileInput, 1))

	lower(p, r300)

	assert.Equal(t, 1, p.Consts.Len())
}

func TestExternalConstantsUntouched(t *testing.T) {
	p := ir.NewProgram()

	ext := p.Consts.AddExternal()
	p.Append(ir.LIT, false, ir.Dst(ir.FileOutput, 0), ir.Src(ir.FileConstant, ext))

	lower(p, r300)

	require.Equal(t, 2, p.Consts.Len())
	assert.Equal(t, ir.ConstExternal, p.Consts.List[0].Kind)
	assert.Equal(t, ir.ConstImmediate, p.Consts.List[1].Kind)
}

func TestIdempotence(t *testing.T) {
	for _, cfg := range []Config{r300, r500, r300vert, r500vert} {
		p := ir.NewProgram()

		for _, op := range []ir.Opcode{ir.LIT, ir.RSQ, ir.SEQ, ir.SIN, ir.SCS, ir.LRP, ir.CMP, ir.DP3} {
			p.Append(op, false, ir.Dst(ir.FileOutput, 0), ir.Src(ir.FileInput, 0), ir.Src(ir.FileInput, 1), ir.Src(ir.FileInput, 2))
		}

		if cfg.NativeCompare && cfg.Profile == General {
			p.Append(ir.DDX, false, ir.Dst(ir.FileOutput, 1), ir.Src(ir.FileInput, 0))
		}

		n := lower(p, cfg)
		require.NotZero(t, n)

		assertNative(t, p, cfg)

		before := text(p)
		temps := p.Temporaries()
		consts := p.Consts.Len()

		n = lower(p, cfg)

		assert.Zero(t, n, "%+v", cfg)
		assert.Equal(t, before, text(p), "%+v", cfg)
		assert.Equal(t, temps, p.Temporaries())
		assert.Equal(t, consts, p.Consts.Len())
	}
}

func TestLITRelativeDst(t *testing.T) {
	p := ir.NewProgram()
	p.Append(ir.LIT, true, ir.DstReg{File: ir.FileTemporary, Index: 3, WriteMask: ir.MaskXYZW, RelAddr: true}, ir.Src(ir.FileInput, 0))

	lower(p, r300)

	l := p.Instructions()
	last := l[len(l)-1]

	assert.Equal(t, "MOV_SAT temp[a0+3], temp[0]", last.String())

	for _, inst := range l[:len(l)-1] {
		assert.False(t, inst.Dst.RelAddr, "%v", inst)
		assert.False(t, inst.Saturate, "%v", inst)
	}
}

func TestEmitLogsOnSpan(t *testing.T) {
	var buf bytes.Buffer

	l := tlog.New(tlog.NewConsoleWriter(&buf, 0))
	l.SetVerbosity("emit")

	tr := l.Start("legalize")
	ctx := tlog.ContextWithSpan(context.Background(), tr)

	p := single(ir.LRP, false)
	Local(ctx, New(p, r300), r300.Transforms()...)

	tr.Finish()

	assert.Contains(t, buf.String(), "emit")
	assert.Contains(t, buf.String(), "MAD output[0], input[0], temp[0], input[2]")
}
