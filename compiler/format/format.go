package format

import (
	"bytes"
	"context"
	"strconv"

	"github.com/nikandfor/hacked/hfmt"
	"tlog.app/go/errors"

	"github.com/slowlang/rc/compiler/ir"
)

// Format appends the textual form of p to b: constant declarations, an
// empty line, then one instruction per line indented by IF depth.
func Format(ctx context.Context, b []byte, p *ir.Program) (_ []byte, err error) {
	b, err = formatConsts(ctx, b, &p.Consts)
	if err != nil {
		return nil, errors.Wrap(err, "consts")
	}

	if p.Consts.Len() != 0 && p.Len() != 0 {
		b = append(b, '\n')
	}

	return formatCode(ctx, b, p), nil
}

func formatConsts(ctx context.Context, b []byte, c *ir.Constants) ([]byte, error) {
	for i, k := range c.List {
		switch k.Kind {
		case ir.ConstExternal:
			b = app(b, 0, "const[%d] = external\n", i)
		case ir.ConstImmediate:
			b = app(b, 0, "const[%d] = ", i)
			b = AppendVec4(b, k.Value)
			b = append(b, '\n')
		default:
			return nil, errors.New("const[%d]: unsupported kind %d", i, k.Kind)
		}
	}

	return b, nil
}

func formatCode(ctx context.Context, b []byte, p *ir.Program) []byte {
	d := 0

	for inst := p.First(); inst != p.Sentinel(); inst = inst.Next {
		switch inst.Opcode {
		case ir.ELSE, ir.ENDIF:
			if d != 0 {
				d--
			}
		}

		b = app(b, d, "")
		b = inst.Append(b)
		b = append(b, '\n')

		switch inst.Opcode {
		case ir.IF, ir.ELSE:
			d++
		}
	}

	return b
}

// AppendVec4 writes v as {x, y, z, w}.
func AppendVec4(b []byte, v [4]float32) []byte {
	b = append(b, '{')

	for j, x := range v {
		if j != 0 {
			b = append(b, ", "...)
		}

		b = appendFloat(b, x)
	}

	return append(b, '}')
}

// appendFloat writes the shortest text that reads back as v, always with
// a fraction or an exponent.
func appendFloat(b []byte, v float32) []byte {
	st := len(b)

	b = strconv.AppendFloat(b, float64(v), 'g', -1, 32)

	if !bytes.ContainsAny(b[st:], ".eIN") {
		b = append(b, ".0"...)
	}

	return b
}

func app(b []byte, d int, f string, args ...any) []byte {
	const tabs = "\t\t\t\t\t\t\t\t\t\t\t\t\t\t\t"

	if d > len(tabs) {
		d = len(tabs)
	}

	b = append(b, tabs[:d]...)
	b = hfmt.Appendf(b, f, args...)

	return b
}
