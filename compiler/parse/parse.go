package parse

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"tlog.app/go/errors"

	"github.com/slowlang/rc/compiler/ir"
)

type (
	Node = any

	State struct {
		Grammar Parser
	}

	Parser interface {
		Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error)
	}

	PartialReadError struct {
		End int
	}
)

func ParseFile(ctx context.Context, name string) (*ir.Program, error) {
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, errors.Wrap(err, "read file")
	}

	p, err := Parse(ctx, data)
	if err != nil {
		return nil, errors.Wrap(err, "%v", name)
	}

	return p, nil
}

func Parse(ctx context.Context, text []byte) (*ir.Program, error) {
	return New().Parse(ctx, text)
}

func New() *State {
	return &State{
		Grammar: Line,
	}
}

// Parse reads the program one line at a time. Everything after # is a
// comment.
func (s *State) Parse(ctx context.Context, text []byte) (p *ir.Program, err error) {
	p = ir.NewProgram()

	for n, line := range bytes.Split(text, []byte("\n")) {
		if k := bytes.IndexByte(line, '#'); k >= 0 {
			line = line[:k]
		}

		st := SpaceAll.Skip(line, 0)
		if st == len(line) {
			continue
		}

		x, i, err := s.Grammar.Parse(ctx, line, st)
		if err == nil {
			if i = SpaceAll.Skip(line, i); i != len(line) {
				err = PartialReadError{End: i}
			}
		}

		if err == nil {
			err = add(p, x)
		}

		if err != nil {
			return nil, errors.Wrap(err, "line %d col %d", n+1, i+1)
		}
	}

	p.ScanTemporaries()

	return p, nil
}

func add(p *ir.Program, x Node) error {
	switch x := x.(type) {
	case Decl:
		if x.Index != p.Consts.Len() {
			return errors.New("const[%d] declared out of order: expected const[%d]", x.Index, p.Consts.Len())
		}

		p.Consts.Add(x.Const)
	case *ir.Instruction:
		for _, r := range x.Src[:x.Opcode.Info().NumSrc] {
			if r.File == ir.FileConstant && r.Index >= p.Consts.Len() {
				return errors.New("const[%d] is not declared", r.Index)
			}
		}

		p.Append(x.Opcode, x.Saturate, x.Dst, x.Src[:]...)
	default:
		return errors.New("unexpected node: %T", x)
	}

	return nil
}

func (e PartialReadError) Error() string {
	return fmt.Sprintf("trailing garbage at %d", e.End+1)
}
