package parse

import (
	"bytes"
	"context"

	"tlog.app/go/errors"
)

type (
	Const []byte

	Ident []byte
)

func (p Const) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	if bytes.HasPrefix(b[st:], p) {
		return Const(b[st : st+len(p)]), st + len(p), nil
	}

	return nil, st, errors.New("%q expected", []byte(p))
}

func (p Const) Name() string { return "\"" + string(p) + "\"" }

// Ident parses [A-Za-z_][A-Za-z0-9_]*.
func (p Ident) Parse(ctx context.Context, b []byte, st int) (x Node, i int, err error) {
	i = st

	if i == len(b) || !isLetter(b[i]) {
		return nil, st, errors.New("Ident expected")
	}

	for i < len(b) && (isLetter(b[i]) || b[i] >= '0' && b[i] <= '9') {
		i++
	}

	return Ident(b[st:i]), i, nil
}

func isLetter(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_'
}
