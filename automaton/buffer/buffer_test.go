package buffer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironautomata/ironautomata/automaton/buffer"
)

func TestAppendReturnsStableIndex(t *testing.T) {
	b := buffer.New(0)
	i1 := b.Append([]byte{1, 2, 3})
	i2 := b.Append([]byte{4, 5})
	assert.Equal(t, 0, i1)
	assert.Equal(t, 3, i2)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, b.Bytes())
}

func TestIndicesSurviveGrowthPastCapacity(t *testing.T) {
	b := buffer.New(1) // tiny capacity forces reallocation
	var indices []int
	for i := 0; i < 100; i++ {
		indices = append(indices, b.Append([]byte{byte(i)}))
	}
	for i, idx := range indices {
		require.Equal(t, i, idx)
		assert.Equal(t, byte(i), b.Bytes()[idx])
	}
}

func TestPadAndPatch(t *testing.T) {
	b := buffer.New(0)
	b.AppendByte(0xAA)
	padIdx := b.Pad(3)
	assert.Equal(t, []byte{0xAA, 0, 0, 0}, b.Bytes())

	b.PatchBytes(padIdx, []byte{1, 2, 3})
	assert.Equal(t, []byte{0xAA, 1, 2, 3}, b.Bytes())

	b.PatchByte(0, 0xBB)
	assert.Equal(t, byte(0xBB), b.Bytes()[0])
}
