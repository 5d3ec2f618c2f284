package ir

import (
	"github.com/slowlang/rc/compiler/set"
	"tlog.app/go/tlog/tlwire"
)

type (
	Instruction struct {
		Prev, Next *Instruction

		Opcode   Opcode
		Saturate bool

		Dst DstReg
		Src [3]SrcReg

		// Fixed marks an instruction already adapted to the hardware, such
		// as a native SIN taking a reduced argument. Rules leave it alone.
		Fixed bool
	}

	// Program is a circular instruction list around a sentinel, the constant
	// pool and the temporary counter. It must not be copied.
	Program struct {
		head Instruction

		Consts Constants

		temps int
	}
)

func NewProgram() *Program {
	p := &Program{}

	p.head.Next = &p.head
	p.head.Prev = &p.head

	return p
}

// Sentinel is the list head. It is never a real instruction.
func (p *Program) Sentinel() *Instruction { return &p.head }

func (p *Program) First() *Instruction { return p.head.Next }
func (p *Program) Last() *Instruction  { return p.head.Prev }

func (p *Program) Len() (n int) {
	for inst := p.head.Next; inst != &p.head; inst = inst.Next {
		n++
	}

	return n
}

// Instructions returns a snapshot of the list in program order.
func (p *Program) Instructions() []*Instruction {
	l := make([]*Instruction, 0, 8)

	for inst := p.head.Next; inst != &p.head; inst = inst.Next {
		l = append(l, inst)
	}

	return l
}

// InsertAfter links a new instruction right after the given one.
// Source slots not given are Undefined.
func (p *Program) InsertAfter(after *Instruction, op Opcode, sat bool, dst DstReg, src ...SrcReg) *Instruction {
	inst := &Instruction{
		Opcode:   op,
		Saturate: sat,
		Dst:      dst,
		Src:      [3]SrcReg{Undefined, Undefined, Undefined},
	}

	copy(inst.Src[:], src)

	inst.Prev = after
	inst.Next = after.Next
	after.Next.Prev = inst
	after.Next = inst

	return inst
}

func (p *Program) Append(op Opcode, sat bool, dst DstReg, src ...SrcReg) *Instruction {
	return p.InsertAfter(p.head.Prev, op, sat, dst, src...)
}

// Remove unlinks inst from its list. inst keeps its own Prev and Next so
// a walk positioned on it can still step off.
func (inst *Instruction) Remove() {
	inst.Prev.Next = inst.Next
	inst.Next.Prev = inst.Prev
}

// AllocTemporary hands out the next unused temporary index.
func (p *Program) AllocTemporary() int {
	t := p.temps
	p.temps++

	return t
}

// Temporaries is the number of temporaries handed out so far.
func (p *Program) Temporaries() int { return p.temps }

func (p *Program) UsedTemporaries() set.Bitmap {
	used := set.MakeBitmap(p.temps)

	for inst := p.head.Next; inst != &p.head; inst = inst.Next {
		info := inst.Opcode.Info()

		if info.HasDst && inst.Dst.File == FileTemporary {
			used.Set(inst.Dst.Index)
		}

		for _, s := range inst.Src[:info.NumSrc] {
			if s.File == FileTemporary {
				used.Set(s.Index)
			}
		}
	}

	return used
}

// ScanTemporaries moves the counter past every temporary the program
// already references.
func (p *Program) ScanTemporaries() {
	used := p.UsedTemporaries()

	if n := used.Len(); n > p.temps {
		p.temps = n
	}
}

func (inst *Instruction) Append(b []byte) []byte {
	info := inst.Opcode.Info()

	b = append(b, info.Name...)

	if inst.Saturate {
		b = append(b, "_SAT"...)
	}

	sep := " "

	if info.HasDst {
		b = append(b, sep...)
		b = inst.Dst.Append(b)
		sep = ", "
	}

	for _, s := range inst.Src[:info.NumSrc] {
		b = append(b, sep...)
		b = s.Append(b)
		sep = ", "
	}

	return b
}

func (inst *Instruction) String() string {
	return string(inst.Append(nil))
}

func (inst *Instruction) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, inst.String())
}
