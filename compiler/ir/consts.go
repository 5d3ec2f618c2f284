package ir

type (
	ConstKind uint8

	Constant struct {
		Kind  ConstKind
		Value [4]float32
	}

	// Constants is the constant pool. Entries are never removed or
	// reordered, so indexes handed out stay valid.
	Constants struct {
		List []Constant
	}
)

const (
	ConstImmediate ConstKind = iota

	// ConstExternal is a slot filled by the application, its value is
	// unknown at compile time.
	ConstExternal
)

func (c *Constants) Len() int { return len(c.List) }

func (c *Constants) Add(k Constant) int {
	c.List = append(c.List, k)

	return len(c.List) - 1
}

func (c *Constants) AddExternal() int {
	return c.Add(Constant{Kind: ConstExternal})
}

// AddImmediateVec4 returns an immediate holding exactly v, appending one
// if none exists.
func (c *Constants) AddImmediateVec4(v [4]float32) int {
	for i, k := range c.List {
		if k.Kind == ConstImmediate && k.Value == v {
			return i
		}
	}

	return c.Add(Constant{Kind: ConstImmediate, Value: v})
}

// AddImmediateScalar returns a constant index and a smeared swizzle which
// together read x in every channel.
func (c *Constants) AddImmediateScalar(x float32) (int, Swizzle) {
	for i, k := range c.List {
		if k.Kind != ConstImmediate {
			continue
		}

		for ch, v := range k.Value {
			if v == x {
				return i, Smear(Chan(ch))
			}
		}
	}

	return c.Add(Constant{Kind: ConstImmediate, Value: [4]float32{x, x, x, x}}), SwizzleXXXX
}
