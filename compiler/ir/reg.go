package ir

import (
	"strconv"
	"strings"

	"tlog.app/go/tlog/tlwire"
)

type (
	File uint8

	// Mask is a per-channel bit set: bit 0 is x, bit 3 is w.
	Mask uint8

	// Chan selects a source component or a literal.
	Chan uint8

	// Swizzle packs four Chan selectors, 3 bits each, x in the low bits.
	Swizzle uint16

	SrcReg struct {
		File    File
		Index   int
		Swizzle Swizzle
		Negate  Mask
		Abs     bool
	}

	DstReg struct {
		File      File
		Index     int
		WriteMask Mask
		RelAddr   bool
	}
)

const (
	FileNone File = iota
	FileTemporary
	FileInput
	FileOutput
	FileAddress
	FileConstant
	FileSpecial

	numFiles
)

const (
	ChanX Chan = iota
	ChanY
	ChanZ
	ChanW
	ChanZero
	ChanOne
	_
	ChanUnused
)

const (
	MaskNone Mask = 0
	MaskX    Mask = 1 << 0
	MaskY    Mask = 1 << 1
	MaskZ    Mask = 1 << 2
	MaskW    Mask = 1 << 3

	MaskXY   = MaskX | MaskY
	MaskXYZ  = MaskX | MaskY | MaskZ
	MaskXYW  = MaskX | MaskY | MaskW
	MaskXYZW = MaskX | MaskY | MaskZ | MaskW
)

var (
	SwizzleXYZW = MakeSwizzle(ChanX, ChanY, ChanZ, ChanW)
	SwizzleXXXX = Smear(ChanX)
	SwizzleYYYY = Smear(ChanY)
	SwizzleZZZZ = Smear(ChanZ)
	SwizzleWWWW = Smear(ChanW)
	Swizzle0000 = Smear(ChanZero)
	Swizzle1111 = Smear(ChanOne)
)

// Builtin sources read as literals without touching the constant pool.
var (
	BuiltinZero = SrcReg{File: FileNone, Swizzle: Swizzle0000}
	BuiltinOne  = SrcReg{File: FileNone, Swizzle: Swizzle1111}

	// Undefined fills source slots an instruction does not read.
	Undefined = SrcReg{File: FileNone, Swizzle: SwizzleXYZW}
)

var fileNames = [numFiles]string{
	FileNone:      "none",
	FileTemporary: "temp",
	FileInput:     "input",
	FileOutput:    "output",
	FileAddress:   "addr",
	FileConstant:  "const",
	FileSpecial:   "special",
}

const chanChars = "xyzw01?_"

func MakeSwizzle(x, y, z, w Chan) Swizzle {
	return Swizzle(x) | Swizzle(y)<<3 | Swizzle(z)<<6 | Swizzle(w)<<9
}

func Smear(c Chan) Swizzle {
	return MakeSwizzle(c, c, c, c)
}

func (s Swizzle) Get(i int) Chan {
	return Chan(s>>(3*i)) & 7
}

func (s Swizzle) Set(i int, c Chan) Swizzle {
	s &^= 7 << (3 * i)
	s |= Swizzle(c&7) << (3 * i)

	return s
}

// Combine applies x, y, z, w on top of s: channel i of the result reads
// whatever s selected for the i-th argument. Literal and unused selectors
// pass through unchanged.
func (s Swizzle) Combine(x, y, z, w Chan) Swizzle {
	sel := [4]Chan{x, y, z, w}

	var r Swizzle

	for i, c := range sel {
		if c <= ChanW {
			c = s.Get(int(c))
		}

		r = r.Set(i, c)
	}

	return r
}

func (s Swizzle) String() string {
	var b [4]byte

	for i := range b {
		b[i] = chanChars[s.Get(i)]
	}

	return string(b[:])
}

// LookupChan parses a swizzle character.
func LookupChan(c byte) (Chan, bool) {
	i := strings.IndexByte(chanChars, c)
	if i < 0 || chanChars[i] == '?' {
		return 0, false
	}

	return Chan(i), true
}

func (m Mask) Has(c int) bool {
	return m&(1<<c) != 0
}

func (m Mask) String() string {
	b := make([]byte, 0, 4)

	for i := 0; i < 4; i++ {
		if m.Has(i) {
			b = append(b, chanChars[i])
		}
	}

	return string(b)
}

func (f File) String() string {
	if f < numFiles {
		return fileNames[f]
	}

	return "file" + strconv.Itoa(int(f))
}

func LookupFile(name string) (File, bool) {
	for f, n := range fileNames {
		if n == name {
			return File(f), true
		}
	}

	return 0, false
}

func Dst(f File, index int) DstReg {
	return DstReg{
		File:      f,
		Index:     index,
		WriteMask: MaskXYZW,
	}
}

// DstMasked addresses part of a scratch register.
func DstMasked(index int, mask Mask) DstReg {
	return DstReg{
		File:      FileTemporary,
		Index:     index,
		WriteMask: mask,
	}
}

func Src(f File, index int) SrcReg {
	r := Undefined
	r.File = f
	r.Index = index

	return r
}

func SrcSwizzled(f File, index int, swz Swizzle) SrcReg {
	r := Src(f, index)
	r.Swizzle = swz

	return r
}

// Absolute clears any negation: |x|, not -|x|.
func Absolute(r SrcReg) SrcReg {
	r.Abs = true
	r.Negate = MaskNone

	return r
}

func Negate(r SrcReg) SrcReg {
	r.Negate ^= MaskXYZW

	return r
}

func Swz(r SrcReg, x, y, z, w Chan) SrcReg {
	r.Swizzle = r.Swizzle.Combine(x, y, z, w)

	return r
}

func XXXX(r SrcReg) SrcReg { return Swz(r, ChanX, ChanX, ChanX, ChanX) }
func YYYY(r SrcReg) SrcReg { return Swz(r, ChanY, ChanY, ChanY, ChanY) }
func ZZZZ(r SrcReg) SrcReg { return Swz(r, ChanZ, ChanZ, ChanZ, ChanZ) }
func WWWW(r SrcReg) SrcReg { return Swz(r, ChanW, ChanW, ChanW, ChanW) }

// Src reads back what d writes.
func (d DstReg) Src() SrcReg {
	return Src(d.File, d.Index)
}

func (r SrcReg) Append(b []byte) []byte {
	if r.Negate == MaskXYZW {
		b = append(b, '-')
	}

	if r.Abs {
		b = append(b, '|')
	}

	b = append(b, r.File.String()...)

	if r.File != FileNone {
		b = append(b, '[')
		b = strconv.AppendInt(b, int64(r.Index), 10)
		b = append(b, ']')
	}

	if r.Swizzle != SwizzleXYZW || r.Negate != MaskNone && r.Negate != MaskXYZW {
		b = append(b, '.')

		for i := 0; i < 4; i++ {
			if r.Negate != MaskXYZW && r.Negate.Has(i) {
				b = append(b, '-')
			}

			b = append(b, chanChars[r.Swizzle.Get(i)])
		}
	}

	if r.Abs {
		b = append(b, '|')
	}

	return b
}

func (d DstReg) Append(b []byte) []byte {
	b = append(b, d.File.String()...)
	b = append(b, '[')

	if d.RelAddr {
		b = append(b, "a0+"...)
	}

	b = strconv.AppendInt(b, int64(d.Index), 10)
	b = append(b, ']')

	if d.WriteMask != MaskXYZW {
		b = append(b, '.')
		b = append(b, d.WriteMask.String()...)
	}

	return b
}

func (r SrcReg) String() string { return string(r.Append(nil)) }
func (d DstReg) String() string { return string(d.Append(nil)) }

func (r SrcReg) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, r.String())
}

func (d DstReg) TlogAppend(b []byte) []byte {
	var e tlwire.Encoder

	return e.AppendString(b, d.String())
}
