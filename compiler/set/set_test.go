package set

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBits(t *testing.T) {
	s := MakeBits[uint8](1, 5, 70)

	assert.True(t, s.IsSet(1))
	assert.True(t, s.IsSet(70))
	assert.False(t, s.IsSet(2))
	assert.False(t, s.IsSet(200))

	var got []uint8

	s.Range(func(k uint8) bool {
		got = append(got, k)
		return true
	})

	assert.Equal(t, []uint8{1, 5, 70}, got)

	s.SetAll(9, 200)
	assert.True(t, s.IsSet(200))
	assert.True(t, s.IsSet(9))
}

func TestBitmap(t *testing.T) {
	s := MakeBitmap(0)

	assert.Equal(t, -1, s.Last())
	assert.Equal(t, 0, s.Len())

	s.Set(3)
	s.Set(130)

	assert.True(t, s.IsSet(130))
	assert.False(t, s.IsSet(4))
	assert.Equal(t, 130, s.Last())
	assert.Equal(t, 131, s.Len())

	var got []int

	s.Range(func(i int) bool {
		got = append(got, i)
		return true
	})

	assert.Equal(t, []int{3, 130}, got)
}
