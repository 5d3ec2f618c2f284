package main

import (
	"context"
	"os"

	"github.com/nikandfor/hacked/hfmt"
	"nikand.dev/go/cli"
	"tlog.app/go/errors"
	"tlog.app/go/tlog"

	"github.com/slowlang/rc/compiler"
	"github.com/slowlang/rc/compiler/alu"
	"github.com/slowlang/rc/compiler/eval"
	"github.com/slowlang/rc/compiler/format"
	"github.com/slowlang/rc/compiler/ir"
	"github.com/slowlang/rc/compiler/parse"
)

func main() {
	legalizeCmd := &cli.Command{
		Name:        "legalize",
		Description: "rewrite programs into native instructions and print them",
		Action:      legalizeAct,
		Args:        cli.Args{},
		Flags: flags(
			cli.NewFlag("verify", false, "fail if any opcode is still not native"),
		),
	}

	fmtCmd := &cli.Command{
		Name:        "fmt",
		Description: "parse programs and print them back",
		Action:      fmtAct,
		Args:        cli.Args{},
		Flags:       flags(),
	}

	evalCmd := &cli.Command{
		Name:        "eval",
		Description: "run a program: eval prog.txt 'input[0] = {1, 2, 3, 4}' ...",
		Action:      evalAct,
		Args:        cli.Args{},
		Flags: flags(
			cli.NewFlag("lower", false, "legalize before running"),
		),
	}

	app := &cli.Command{
		Name:        "rcalu",
		Description: "rcalu lowers r300 family shader ALU programs to native instructions",
		Commands: []*cli.Command{
			legalizeCmd,
			fmtCmd,
			evalCmd,
		},
	}

	cli.RunAndExit(app, os.Args, os.Environ())
}

func flags(extra ...*cli.Flag) []*cli.Flag {
	return append([]*cli.Flag{
		cli.NewFlag("vertex", false, "vertex engine profile instead of fragment"),
		cli.NewFlag("r500", false, "r500 features: native compare, flow control, derivatives, native sin/cos"),
		cli.NewFlag("v", "", "verbosity topics, e.g. legalize,rewrite,emit,dump_before,dump_after"),
		cli.HelpFlag,
	}, extra...)
}

func setup(c *cli.Command) (context.Context, alu.Config) {
	if v := c.String("v"); v != "" {
		tlog.SetVerbosity(v)
	}

	cfg := alu.Config{
		Profile:       alu.General,
		NativeCompare: c.Bool("r500"),
	}

	if c.Bool("vertex") {
		cfg.Profile = alu.Vertex
	}

	ctx := context.Background()
	ctx = tlog.ContextWithSpan(ctx, tlog.Root())

	return ctx, cfg
}

func legalizeAct(c *cli.Command) (err error) {
	ctx, cfg := setup(c)

	for _, a := range c.Args {
		p, err := compiler.CompileFile(ctx, a, cfg)
		if err != nil {
			return errors.Wrap(err, "legalize %v", a)
		}

		if c.Bool("verify") {
			err = compiler.Verify(p, cfg)
			if err != nil {
				return errors.Wrap(err, "verify %v", a)
			}
		}

		err = write(ctx, p)
		if err != nil {
			return errors.Wrap(err, "%v", a)
		}
	}

	return nil
}

func fmtAct(c *cli.Command) (err error) {
	ctx, _ := setup(c)

	for _, a := range c.Args {
		p, err := parse.ParseFile(ctx, a)
		if err != nil {
			return errors.Wrap(err, "parse %v", a)
		}

		err = write(ctx, p)
		if err != nil {
			return errors.Wrap(err, "%v", a)
		}
	}

	return nil
}

func evalAct(c *cli.Command) (err error) {
	ctx, cfg := setup(c)

	if len(c.Args) == 0 {
		return errors.New("program file expected")
	}

	p, err := parse.ParseFile(ctx, c.Args[0])
	if err != nil {
		return errors.Wrap(err, "parse")
	}

	s := eval.NewState()

	if c.Bool("lower") {
		err = compiler.Legalize(ctx, p, cfg)
		if err != nil {
			return errors.Wrap(err, "legalize")
		}

		s.TrigTurns = cfg.Profile == alu.General && cfg.NativeCompare
	}

	for _, a := range c.Args[1:] {
		r, err := parse.ParseAssignment(ctx, a)
		if err != nil {
			return errors.Wrap(err, "register preset")
		}

		s.Set(r.File, r.Index, r.Value)
	}

	err = eval.Run(p, s)
	if err != nil {
		return errors.Wrap(err, "eval")
	}

	var b []byte

	for i, v := range s.Regs[ir.FileOutput] {
		b = hfmt.Appendf(b, "output[%d] = ", i)
		b = format.AppendVec4(b, v)
		b = append(b, '\n')
	}

	if s.Killed {
		b = append(b, "killed\n"...)
	}

	_, err = os.Stdout.Write(b)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}

func write(ctx context.Context, p *ir.Program) error {
	b, err := format.Format(ctx, nil, p)
	if err != nil {
		return errors.Wrap(err, "format")
	}

	_, err = os.Stdout.Write(b)
	if err != nil {
		return errors.Wrap(err, "write")
	}

	return nil
}
