package parse

import (
	"context"
	"strings"

	"tlog.app/go/errors"

	"github.com/slowlang/rc/compiler/ir"
)

type (
	ConstDecl struct{}

	Vec4 struct{}

	Inst struct{}

	File struct{}

	Dst struct{}

	Src struct{}

	Swizzle struct{}

	Mask struct{}

	// Decl is a parsed constant declaration.
	Decl struct {
		Index int
		Const ir.Constant
	}

	swizzle struct {
		ir.Swizzle
		Negate ir.Mask
	}
)

// Line is one statement of the textual program form.
var Line = AnyOf{ConstDecl{}, Inst{}}

func spaced(p Parser) Spacer { return Spaced(p, SpaceTab) }

func bracketed(p Parser) Context {
	return Context{
		Pre:  Const("["),
		Of:   p,
		Post: Const("]"),
	}
}

// const[N] = {x, y, z, w}
// const[N] = external
func (p ConstDecl) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	r := AllOf{
		Const("const"),
		spaced(bracketed(Int{})),
		spaced(Const("=")),
		spaced(AnyOf{Const("external"), Vec4{}}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := x.([]Node)

	d := Decl{
		Index: xt[1].(int),
	}

	switch v := xt[3].(type) {
	case Const:
		d.Const.Kind = ir.ConstExternal
	case [4]float32:
		d.Const.Value = v
	}

	return d, i, nil
}

func (p Vec4) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	r := AllOf{
		Const("{"),
		spaced(Num{}), spaced(Const(",")),
		spaced(Num{}), spaced(Const(",")),
		spaced(Num{}), spaced(Const(",")),
		spaced(Num{}),
		spaced(Const("}")),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := x.([]Node)

	return [4]float32{xt[1].(float32), xt[3].(float32), xt[5].(float32), xt[7].(float32)}, i, nil
}

// Inst parses an opcode with an optional _SAT suffix followed by its
// destination, if it has one, and its sources, comma separated.
func (p Inst) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	x, i, err = Ident{}.Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	name := string(x.(Ident))
	sat := false

	op, ok := ir.LookupOpcode(name)
	if !ok && strings.HasSuffix(name, "_SAT") {
		op, ok = ir.LookupOpcode(strings.TrimSuffix(name, "_SAT"))
		sat = true
	}

	if !ok {
		return nil, i, errors.New("unknown opcode: %s", name)
	}

	info := op.Info()

	var operands []Parser

	if info.HasDst {
		operands = append(operands, Dst{})
	}

	for j := 0; j < info.NumSrc; j++ {
		operands = append(operands, Src{})
	}

	var r AllOf

	for j, q := range operands {
		if j != 0 {
			r = append(r, spaced(Const(",")))
		}

		r = append(r, spaced(q))
	}

	x, i, err = r.Parse(ctx, b, i)
	if err != nil {
		return nil, i, errors.Wrap(err, "%v takes %d operands", op, len(operands))
	}

	if k := SpaceTab.Skip(b, i); k < len(b) && b[k] == ',' {
		return nil, k, errors.New("%v takes %d operands", op, len(operands))
	}

	inst := &ir.Instruction{
		Opcode:   op,
		Saturate: sat,
		Src:      [3]ir.SrcReg{ir.Undefined, ir.Undefined, ir.Undefined},
	}

	xt := x.([]Node)
	s := 0

	for j := 0; j < len(xt); j += 2 {
		switch v := xt[j].(type) {
		case ir.DstReg:
			inst.Dst = v
		case ir.SrcReg:
			inst.Src[s] = v
			s++
		}
	}

	return inst, i, nil
}

func (p File) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	x, i, err = Ident{}.Parse(ctx, b, st)
	if err != nil {
		return nil, st, err
	}

	f, ok := ir.LookupFile(string(x.(Ident)))
	if !ok {
		return nil, st, errors.New("unknown register file: %s", x)
	}

	return f, i, nil
}

// file[index] or file[a0+index], then an optional write mask.
func (p Dst) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	r := AllOf{
		File{},
		bracketed(AllOf{Optional{Const("a0+")}, Int{}}),
		Optional{AllOf{Const("."), Mask{}}},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := x.([]Node)
	idx := xt[1].([]Node)

	d := ir.Dst(xt[0].(ir.File), idx[1].(int))

	_, d.RelAddr = idx[0].(Const)

	if m, ok := xt[2].([]Node); ok {
		d.WriteMask = m[1].(ir.Mask)
	}

	return d, i, nil
}

// [-][|]file[index][.swizzle][|]
//
// Index is omitted for the none file. A swizzle is one channel, which is
// smeared, or four; a - before a channel negates just that channel.
func (p Src) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	r := AllOf{
		Optional{Const("-")},
		Optional{Const("|")},
		File{},
		Optional{bracketed(Int{})},
		Optional{AllOf{Const("."), Swizzle{}}},
		Optional{Const("|")},
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := x.([]Node)

	f := xt[2].(ir.File)

	idx, ok := xt[3].(int)
	if !ok && f != ir.FileNone {
		return nil, i, errors.New("%v: index expected", f)
	}

	_, open := xt[1].(Const)
	_, closed := xt[5].(Const)

	if open != closed {
		return nil, i, errors.New("unbalanced |")
	}

	r0 := ir.Src(f, idx)
	r0.Abs = open

	if s, ok := xt[4].([]Node); ok {
		swz := s[1].(swizzle)

		r0.Swizzle = swz.Swizzle
		r0.Negate = swz.Negate
	}

	if _, ok := xt[0].(Const); ok {
		r0.Negate ^= ir.MaskXYZW
	}

	return r0, i, nil
}

func (p Swizzle) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	var chans [4]ir.Chan
	var neg ir.Mask

	n := 0
	i = st

	for n < 4 && i < len(b) {
		j := i
		minus := b[j] == '-'

		if minus {
			j++
		}

		if j == len(b) {
			break
		}

		c, ok := ir.LookupChan(b[j])
		if !ok {
			break
		}

		chans[n] = c

		if minus {
			neg |= 1 << n
		}

		n++
		i = j + 1
	}

	switch n {
	case 1:
		if neg != 0 {
			neg = ir.MaskXYZW
		}

		return swizzle{Swizzle: ir.Smear(chans[0]), Negate: neg}, i, nil
	case 4:
		return swizzle{Swizzle: ir.MakeSwizzle(chans[0], chans[1], chans[2], chans[3]), Negate: neg}, i, nil
	}

	return nil, st, errors.New("bad swizzle: %q", b[st:i])
}

// Mask parses write mask channels, each once and in xyzw order.
func (p Mask) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	var m ir.Mask

	next := 0

	for i = st; i < len(b); i++ {
		c := strings.IndexByte("xyzw", b[i])
		if c < next {
			break
		}

		m |= 1 << c
		next = c + 1
	}

	if m == 0 {
		return nil, st, errors.New("bad write mask")
	}

	return m, i, nil
}

func (ConstDecl) Name() string { return "constant declaration" }
func (Inst) Name() string      { return "instruction" }

// Assign parses file[index] = {x, y, z, w}, a register preset for eval.
type Assign struct{}

// Assignment is a parsed register preset.
type Assignment struct {
	File  ir.File
	Index int
	Value [4]float32
}

func (p Assign) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	r := AllOf{
		File{},
		bracketed(Int{}),
		spaced(Const("=")),
		spaced(Vec4{}),
	}

	x, i, err = r.Parse(ctx, b, st)
	if err != nil {
		return nil, i, err
	}

	xt := x.([]Node)

	return Assignment{
		File:  xt[0].(ir.File),
		Index: xt[1].(int),
		Value: xt[3].([4]float32),
	}, i, nil
}

func ParseAssignment(ctx context.Context, text string) (a Assignment, err error) {
	b := []byte(text)

	st := SpaceAll.Skip(b, 0)

	x, i, err := Assign{}.Parse(ctx, b, st)
	if err == nil {
		if i = SpaceAll.Skip(b, i); i != len(b) {
			err = PartialReadError{End: i}
		}
	}

	if err != nil {
		return a, errors.Wrap(err, "%q", text)
	}

	return x.(Assignment), nil
}
