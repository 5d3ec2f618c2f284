// Package alu rewrites ALU instructions the hardware does not implement
// into sequences of native ones.
//
// Rules only insert right before the instruction they rewrite and only
// remove that instruction, so a walk holding inst.Next stays valid.
package alu

import (
	"context"

	"github.com/slowlang/rc/compiler/ir"
	"github.com/slowlang/rc/compiler/set"
	"tlog.app/go/tlog"
)

type (
	Profile int

	Config struct {
		Profile Profile

		// NativeCompare selects the R500 variant: native SEQ/SNE in the
		// vertex engine, flow control, derivatives and native SIN/COS in
		// fragment programs.
		NativeCompare bool
	}

	// Compiler is the per-program state threaded through every rule.
	Compiler struct {
		*ir.Program
		Config

		tr tlog.Span
	}

	// Transform reports whether it recognized and rewrote inst.
	Transform func(c *Compiler, inst *ir.Instruction) bool
)

const (
	General Profile = iota
	Vertex
)

func New(p *ir.Program, cfg Config) *Compiler {
	return &Compiler{
		Program: p,
		Config:  cfg,
	}
}

func (p Profile) String() string {
	switch p {
	case General:
		return "general"
	case Vertex:
		return "vertex"
	default:
		return "unknown"
	}
}

// Native is the set of opcodes the configured execution unit runs as is.
func (cfg Config) Native() set.Bits[ir.Opcode] {
	var s set.Bits[ir.Opcode]

	switch cfg.Profile {
	case General:
		s = set.MakeBits(ir.NOP,
			ir.ADD, ir.CMP, ir.DP3, ir.DP4, ir.EX2, ir.FRC, ir.KIL, ir.LG2,
			ir.MAD, ir.MAX, ir.MIN, ir.MOV, ir.MUL, ir.RCP, ir.RSQ,
			ir.TEX, ir.TXB, ir.TXP)

		if cfg.NativeCompare {
			s.SetAll(ir.IF, ir.ELSE, ir.ENDIF, ir.SIN, ir.COS, ir.DDX, ir.DDY)
		}
	case Vertex:
		s = set.MakeBits(ir.NOP,
			ir.ADD, ir.DP4, ir.DST, ir.EX2, ir.FRC, ir.LG2, ir.LIT,
			ir.MAD, ir.MAX, ir.MIN, ir.MOV, ir.MUL, ir.POW, ir.RCP, ir.RSQ,
			ir.SGE, ir.SLT, ir.SIN, ir.COS)

		if cfg.NativeCompare {
			s.SetAll(ir.SEQ, ir.SNE)
		}
	}

	return s
}

// Transforms is the local rule list of the configured profile, in the
// order Local tries them.
func (cfg Config) Transforms() []Transform {
	switch {
	case cfg.Profile == Vertex:
		return []Transform{TransformVertexALU, TransformTrigScaleVertex}
	case cfg.NativeCompare:
		return []Transform{TransformALU, TransformDeriv, TransformTrigScale}
	default:
		return []Transform{TransformALU, TransformTrigSimple}
	}
}

// Local walks the program once and offers every instruction to ts in
// order until one handles it. Instructions emitted by a rule are not
// revisited.
func Local(ctx context.Context, c *Compiler, ts ...Transform) (n int) {
	tr := tlog.SpanFromContext(ctx)
	c.tr = tr

	for inst := c.First(); inst != c.Sentinel(); {
		cur := inst
		inst = inst.Next

		op := cur.Opcode

		for _, t := range ts {
			if !t(c, cur) {
				continue
			}

			n++

			tr.V("rewrite").Printw("rewrite", "op", op, "temps", c.Temporaries(), "consts", c.Consts.Len())

			break
		}
	}

	return n
}
