// Package eval interprets programs over concrete register values.
//
// It knows both native and high-level opcodes, so a program can be run
// before and after lowering and the results compared.
package eval

import (
	"github.com/slowlang/rc/compiler/ir"
	"tlog.app/go/errors"
)

type (
	Vec4 = [4]float32

	State struct {
		Regs map[ir.File][]Vec4

		// TrigTurns makes SIN and COS take the angle in turns rather than
		// radians, as R500 fragment units do.
		TrigTurns bool

		Killed bool
	}

	branch struct {
		parent bool
		taken  bool
	}
)

func NewState() *State {
	return &State{
		Regs: make(map[ir.File][]Vec4),
	}
}

// Set stores v into a register, growing the file as needed.
func (s *State) Set(f ir.File, i int, v Vec4) {
	l := s.Regs[f]

	for i >= len(l) {
		l = append(l, Vec4{})
	}

	l[i] = v

	s.Regs[f] = l
}

func (s *State) Get(f ir.File, i int) Vec4 {
	l := s.Regs[f]

	if i < 0 || i >= len(l) {
		return Vec4{}
	}

	return l[i]
}

// Run executes p. Immediate constants are loaded from the pool; external
// constants keep whatever s already holds for them.
func Run(p *ir.Program, s *State) (err error) {
	for i, k := range p.Consts.List {
		if k.Kind == ir.ConstImmediate {
			s.Set(ir.FileConstant, i, k.Value)
		}
	}

	var flow []branch

	for inst := p.First(); inst != p.Sentinel(); inst = inst.Next {
		exec := len(flow) == 0 || flow[len(flow)-1].parent && flow[len(flow)-1].taken

		switch inst.Opcode {
		case ir.IF:
			cond := false

			if exec {
				v, err := s.read(inst.Src[0])
				if err != nil {
					return errors.Wrap(err, "%v", inst)
				}

				cond = v[0] != 0
			}

			flow = append(flow, branch{parent: exec, taken: cond})

			continue
		case ir.ELSE, ir.ENDIF:
			if len(flow) == 0 {
				return errors.New("%v without IF", inst.Opcode)
			}

			if inst.Opcode == ir.ELSE {
				flow[len(flow)-1].taken = !flow[len(flow)-1].taken
			} else {
				flow = flow[:len(flow)-1]
			}

			continue
		}

		if !exec {
			continue
		}

		err = s.step(inst)
		if err != nil {
			return errors.Wrap(err, "%v", inst)
		}
	}

	if len(flow) != 0 {
		return errors.New("unterminated IF")
	}

	return nil
}

func (s *State) step(inst *ir.Instruction) error {
	info := inst.Opcode.Info()

	var src [3]Vec4

	for i := range src[:info.NumSrc] {
		v, err := s.read(inst.Src[i])
		if err != nil {
			return errors.Wrap(err, "src%d", i)
		}

		src[i] = v
	}

	r, err := s.compute(inst.Opcode, src)
	if err != nil {
		return err
	}

	if !info.HasDst {
		return nil
	}

	return s.write(inst.Dst, inst.Saturate, r)
}

func (s *State) read(r ir.SrcReg) (v Vec4, err error) {
	var base Vec4

	switch r.File {
	case ir.FileNone:
	case ir.FileInput, ir.FileConstant:
		if r.Index < 0 || r.Index >= len(s.Regs[r.File]) {
			return v, errors.New("%v[%d] out of range", r.File, r.Index)
		}

		base = s.Regs[r.File][r.Index]
	default:
		base = s.Get(r.File, r.Index)
	}

	for i := range v {
		var x float32

		switch ch := r.Swizzle.Get(i); ch {
		case ir.ChanX, ir.ChanY, ir.ChanZ, ir.ChanW:
			x = base[ch]
		case ir.ChanOne:
			x = 1
		}

		if r.Abs && x < 0 {
			x = -x
		}

		if r.Negate.Has(i) {
			x = -x
		}

		v[i] = x
	}

	return v, nil
}

func (s *State) write(d ir.DstReg, sat bool, v Vec4) error {
	idx := d.Index

	if d.RelAddr {
		idx += int(s.Get(ir.FileAddress, 0)[0])
	}

	if idx < 0 {
		return errors.New("%v[%d] out of range", d.File, idx)
	}

	cur := s.Get(d.File, idx)

	for i := range cur {
		if !d.WriteMask.Has(i) {
			continue
		}

		x := v[i]

		if sat {
			x = clamp(x, 0, 1)
		}

		cur[i] = x
	}

	s.Set(d.File, idx, cur)

	return nil
}
