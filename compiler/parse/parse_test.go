package parse

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/slowlang/rc/compiler/ir"
)

const sample = `# comment
const[0] = {1.0, 2.0, 3.0, 4.0}
const[1] = external

ADD_SAT temp[0].xy, -input[0].xxxx, |const[0]|   # trailing comment
MOV output[0], temp[0].x-y01
MOV temp[a0+2], none.0000
IF temp[0].x
	KILP
ENDIF
MAD output[1], -|const[1].-xyzw|, input[1].w, none
`

func TestParse(t *testing.T) {
	p, err := Parse(context.Background(), []byte(sample))
	require.NoError(t, err)

	var got []string

	for _, inst := range p.Instructions() {
		got = append(got, inst.String())
	}

	exp := []string{
		"ADD_SAT temp[0].xy, -input[0].xxxx, |const[0]|",
		"MOV output[0], temp[0].x-y01",
		"MOV temp[a0+2], none.0000",
		"IF temp[0].xxxx",
		"KILP",
		"ENDIF",
		"MAD output[1], |const[1].x-y-z-w|, input[1].wwww, none",
	}

	if diff := cmp.Diff(exp, got); diff != "" {
		t.Errorf("instructions (-exp +got):\n%s", diff)
	}

	assert.Equal(t, []ir.Constant{
		{Kind: ir.ConstImmediate, Value: [4]float32{1, 2, 3, 4}},
		{Kind: ir.ConstExternal},
	}, p.Consts.List)

	assert.Equal(t, 3, p.Temporaries())
}

func TestParseOperands(t *testing.T) {
	p, err := Parse(context.Background(), []byte("MOV_SAT output[3].yw, -|input[2].-x|\n"))
	require.NoError(t, err)
	require.Equal(t, 1, p.Len())

	inst := p.First()

	assert.Equal(t, ir.MOV, inst.Opcode)
	assert.True(t, inst.Saturate)
	assert.Equal(t, ir.DstReg{File: ir.FileOutput, Index: 3, WriteMask: ir.MaskY | ir.MaskW}, inst.Dst)
	assert.Equal(t, ir.SrcReg{File: ir.FileInput, Index: 2, Swizzle: ir.SwizzleXXXX, Negate: ir.MaskNone, Abs: true}, inst.Src[0])
	assert.Equal(t, ir.Undefined, inst.Src[1])
}

func TestParseNumbers(t *testing.T) {
	p, err := Parse(context.Background(), []byte("const[0] = {-1.5, 2e3, +0.25, 1e-19}"))
	require.NoError(t, err)

	assert.Equal(t, [4]float32{-1.5, 2000, 0.25, 1e-19}, p.Consts.List[0].Value)
}

func TestParseErrors(t *testing.T) {
	for _, tc := range []struct {
		text string
		err  string
	}{
		{"FOO temp[0], input[0]", "unknown opcode: FOO"},
		{"MOV temp[0], bogus[0]", "unknown register file: bogus"},
		{"MOV temp[0], input[0].xy", "bad swizzle"},
		{"MOV temp[0], input", "index expected"},
		{"MOV temp[0], |input[0]", "unbalanced |"},
		{"const[1] = external", "const[1] declared out of order"},
		{"MOV temp[0], const[0]", "const[0] is not declared"},
		{"ADD temp[0], input[0]", "ADD takes 3 operands"},
		{"MOV temp[0], input[0], input[1]", "MOV takes 2 operands"},
		{"MOV temp[0], input[0] garbage", "trailing garbage"},
		{"const[0] = {1, 2, 3}", "line 1"},
	} {
		_, err := Parse(context.Background(), []byte(tc.text))
		if assert.Error(t, err, "%q", tc.text) {
			assert.Contains(t, err.Error(), tc.err, "%q", tc.text)
		}
	}
}

func TestParseErrorLine(t *testing.T) {
	_, err := Parse(context.Background(), []byte("MOV temp[0], input[0]\n\n  ADD temp[1]\n"))
	require.Error(t, err)

	assert.Contains(t, err.Error(), "line 3")
}

func TestParseAssignment(t *testing.T) {
	a, err := ParseAssignment(context.Background(), " input[2] = {1, -2.5, 0, 1e3} ")
	require.NoError(t, err)

	assert.Equal(t, Assignment{File: ir.FileInput, Index: 2, Value: [4]float32{1, -2.5, 0, 1000}}, a)

	_, err = ParseAssignment(context.Background(), "input[2] = {1, 2, 3, 4} x")
	assert.ErrorContains(t, err, "trailing garbage")

	_, err = ParseAssignment(context.Background(), "input = {1, 2, 3, 4}")
	assert.Error(t, err)
}
