package ir

import "tlog.app/go/tlog/tlwire"

type (
	Opcode uint8

	OpcodeInfo struct {
		Name   string
		NumSrc int
		HasDst bool
		Flow   bool
	}
)

const (
	NOP Opcode = iota

	ABS
	ADD
	CEIL
	CMP
	COS
	DDX
	DDY
	DP2
	DP3
	DP4
	DPH
	DST
	EX2
	FLR
	FRC
	KIL
	KILP
	LG2
	LIT
	LRP
	MAD
	MAX
	MIN
	MOV
	MUL
	POW
	RCP
	RSQ
	SCS
	SEQ
	SFL
	SGE
	SGT
	SIN
	SLE
	SLT
	SNE
	SSG
	SUB
	SWZ
	TEX
	TXB
	TXP
	XPD

	IF
	ELSE
	ENDIF

	NumOpcodes
)

var opcodes = [NumOpcodes]OpcodeInfo{
	NOP: {Name: "NOP"},

	ABS:  {Name: "ABS", NumSrc: 1, HasDst: true},
	ADD:  {Name: "ADD", NumSrc: 2, HasDst: true},
	CEIL: {Name: "CEIL", NumSrc: 1, HasDst: true},
	CMP:  {Name: "CMP", NumSrc: 3, HasDst: true},
	COS:  {Name: "COS", NumSrc: 1, HasDst: true},
	DDX:  {Name: "DDX", NumSrc: 2, HasDst: true},
	DDY:  {Name: "DDY", NumSrc: 2, HasDst: true},
	DP2:  {Name: "DP2", NumSrc: 2, HasDst: true},
	DP3:  {Name: "DP3", NumSrc: 2, HasDst: true},
	DP4:  {Name: "DP4", NumSrc: 2, HasDst: true},
	DPH:  {Name: "DPH", NumSrc: 2, HasDst: true},
	DST:  {Name: "DST", NumSrc: 2, HasDst: true},
	EX2:  {Name: "EX2", NumSrc: 1, HasDst: true},
	FLR:  {Name: "FLR", NumSrc: 1, HasDst: true},
	FRC:  {Name: "FRC", NumSrc: 1, HasDst: true},
	KIL:  {Name: "KIL", NumSrc: 1},
	KILP: {Name: "KILP"},
	LG2:  {Name: "LG2", NumSrc: 1, HasDst: true},
	LIT:  {Name: "LIT", NumSrc: 1, HasDst: true},
	LRP:  {Name: "LRP", NumSrc: 3, HasDst: true},
	MAD:  {Name: "MAD", NumSrc: 3, HasDst: true},
	MAX:  {Name: "MAX", NumSrc: 2, HasDst: true},
	MIN:  {Name: "MIN", NumSrc: 2, HasDst: true},
	MOV:  {Name: "MOV", NumSrc: 1, HasDst: true},
	MUL:  {Name: "MUL", NumSrc: 2, HasDst: true},
	POW:  {Name: "POW", NumSrc: 2, HasDst: true},
	RCP:  {Name: "RCP", NumSrc: 1, HasDst: true},
	RSQ:  {Name: "RSQ", NumSrc: 1, HasDst: true},
	SCS:  {Name: "SCS", NumSrc: 1, HasDst: true},
	SEQ:  {Name: "SEQ", NumSrc: 2, HasDst: true},
	SFL:  {Name: "SFL", NumSrc: 2, HasDst: true},
	SGE:  {Name: "SGE", NumSrc: 2, HasDst: true},
	SGT:  {Name: "SGT", NumSrc: 2, HasDst: true},
	SIN:  {Name: "SIN", NumSrc: 1, HasDst: true},
	SLE:  {Name: "SLE", NumSrc: 2, HasDst: true},
	SLT:  {Name: "SLT", NumSrc: 2, HasDst: true},
	SNE:  {Name: "SNE", NumSrc: 2, HasDst: true},
	SSG:  {Name: "SSG", NumSrc: 1, HasDst: true},
	SUB:  {Name: "SUB", NumSrc: 2, HasDst: true},
	SWZ:  {Name: "SWZ", NumSrc: 1, HasDst: true},
	TEX:  {Name: "TEX", NumSrc: 1, HasDst: true},
	TXB:  {Name: "TXB", NumSrc: 1, HasDst: true},
	TXP:  {Name: "TXP", NumSrc: 1, HasDst: true},
	XPD:  {Name: "XPD", NumSrc: 2, HasDst: true},

	IF:    {Name: "IF", NumSrc: 1, Flow: true},
	ELSE:  {Name: "ELSE", Flow: true},
	ENDIF: {Name: "ENDIF", Flow: true},
}

func (op Opcode) Info() OpcodeInfo {
	if op < NumOpcodes {
		return opcodes[op]
	}

	return OpcodeInfo{Name: "BAD"}
}

func (op Opcode) String() string {
	return op.Info().Name
}

func (op Opcode) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, op.String())
}

func LookupOpcode(name string) (Opcode, bool) {
	for op, info := range opcodes {
		if info.Name == name {
			return Opcode(op), true
		}
	}

	return NOP, false
}
