package parse

import (
	"context"
	"strconv"

	"tlog.app/go/errors"
)

type (
	// Num parses a decimal float with optional sign and exponent into a
	// float32.
	Num struct{}

	// Int parses an unsigned decimal integer into an int.
	Int struct{}
)

func (p Num) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	i = st

	if i < len(b) && (b[i] == '-' || b[i] == '+') {
		i++
	}

	dst := i
	dot := false
	exp := false

loop:
	for ; i < len(b); i++ {
		switch {
		case b[i] >= '0' && b[i] <= '9':
		case !dot && !exp && b[i] == '.':
			dot = true
		case !exp && i != dst && (b[i] == 'e' || b[i] == 'E'):
			exp = true

			if i+1 < len(b) && (b[i+1] == '-' || b[i+1] == '+') {
				i++
			}
		default:
			break loop
		}
	}

	if i == dst || i == dst+1 && b[dst] == '.' {
		return nil, st, errors.New("Num expected")
	}

	v, err := strconv.ParseFloat(string(b[st:i]), 32)
	if err != nil {
		return nil, st, errors.Wrap(err, "Num")
	}

	return float32(v), i, nil
}

func (p Int) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	i = st

	for i < len(b) && b[i] >= '0' && b[i] <= '9' {
		i++
	}

	if i == st {
		return nil, st, errors.New("Int expected")
	}

	v, err := strconv.Atoi(string(b[st:i]))
	if err != nil {
		return nil, st, errors.Wrap(err, "Int")
	}

	return v, i, nil
}

func (Num) Name() string { return "number" }
func (Int) Name() string { return "integer" }
