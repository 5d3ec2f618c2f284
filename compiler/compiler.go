package compiler

import (
	"context"
	"os"
	"strings"

	"github.com/samber/lo"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/rc/compiler/alu"
	"github.com/slowlang/rc/compiler/ir"
	"github.com/slowlang/rc/compiler/parse"
)

func CompileFile(ctx context.Context, name string, cfg alu.Config) (p *ir.Program, err error) {
	text, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	tlog.SpanFromContext(ctx).Printw("read file", "size", len(text), "name", name)

	return Compile(ctx, name, text, cfg)
}

func Compile(ctx context.Context, name string, text []byte, cfg alu.Config) (p *ir.Program, err error) {
	p, err = parse.Parse(ctx, text)
	if err != nil {
		return nil, errors.Wrap(err, "parse %v", name)
	}

	err = Legalize(ctx, p, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "legalize %v", name)
	}

	return p, nil
}

// Legalize rewrites p in place until only opcodes the configured unit
// runs natively remain. Running it again on its output changes nothing.
func Legalize(ctx context.Context, p *ir.Program, cfg alu.Config) (err error) {
	tr, ctx := tlog.SpawnFromContextAndWrap(ctx, "legalize", "profile", cfg.Profile.String(), "native_compare", cfg.NativeCompare, "insts", p.Len())
	defer tr.Finish("err", &err)

	if cfg.Profile != alu.General && cfg.Profile != alu.Vertex {
		return errors.New("unsupported profile: %v", cfg.Profile)
	}

	p.ScanTemporaries()

	if tr.If("dump_before") {
		dump(tr, "before", p)
	}

	c := alu.New(p, cfg)

	if cfg.Profile == alu.General {
		n := alu.TransformKILP(c)

		tr.V("kilp").Printw("kilp", "rewritten", n)
	}

	n := alu.Local(ctx, c, cfg.Transforms()...)

	tr.Printw("legalized", "rewritten", n, "insts", p.Len(), "temps", p.Temporaries(), "consts", p.Consts.Len())

	if tr.If("dump_after") {
		dump(tr, "after", p)
	}

	return nil
}

// Verify returns an error naming every opcode in p the configured unit
// does not run natively.
func Verify(p *ir.Program, cfg alu.Config) error {
	native := cfg.Native()

	var bad []ir.Opcode

	for _, inst := range p.Instructions() {
		if !native.IsSet(inst.Opcode) {
			bad = append(bad, inst.Opcode)
		}
	}

	if len(bad) == 0 {
		return nil
	}

	names := lo.Map(lo.Uniq(bad), func(op ir.Opcode, _ int) string {
		return op.String()
	})

	return errors.New("not native for %v profile: %v", cfg.Profile, strings.Join(names, " "))
}

func dump(tr tlog.Span, when string, p *ir.Program) {
	tr.Printw("program "+when, "insts", p.Len(), "temps", p.Temporaries(), "consts", p.Consts.Len())

	for i, k := range p.Consts.List {
		tr.Printw("const", "i", i, "kind", k.Kind, "value", k.Value)
	}

	for i, inst := range p.Instructions() {
		tr.Printw("code", "i", i, "inst", inst)
	}
}
