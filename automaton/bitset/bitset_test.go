package bitset_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironautomata/ironautomata/automaton/bitset"
)

func TestSetBasics(t *testing.T) {
	s := bitset.FromBytes([]byte{'a', 'z', 0, 255})
	assert.True(t, s.Test('a'))
	assert.True(t, s.Test('z'))
	assert.True(t, s.Test(0))
	assert.True(t, s.Test(255))
	assert.False(t, s.Test('b'))
	assert.Equal(t, 4, s.PopCount())
	assert.False(t, s.Full())
	assert.False(t, s.Empty())
	assert.Equal(t, []byte{0, 'a', 'z', 255}, s.Values())
}

func TestSetFullAndEmpty(t *testing.T) {
	s := &bitset.Set{}
	assert.True(t, s.Empty())
	for i := 0; i < 256; i++ {
		s.Set(byte(i))
	}
	assert.True(t, s.Full())
}

func TestSetClearAndUnion(t *testing.T) {
	a := bitset.FromBytes([]byte{1, 2, 3})
	b := bitset.FromBytes([]byte{3, 4, 5})
	a.Union(b)
	assert.Equal(t, []byte{1, 2, 3, 4, 5}, a.Values())

	a.Clear(3)
	assert.False(t, a.Test(3))
}

func TestSetBytesRoundTrip(t *testing.T) {
	s := bitset.FromBytes([]byte{0, 7, 8, 64, 200, 255})
	raw := s.Bytes()
	require.Len(t, raw, 32)

	back, err := bitset.FromRawBytes(raw)
	require.NoError(t, err)
	assert.True(t, s.Equal(back))
}

func TestFromRawBytesBadLength(t *testing.T) {
	_, err := bitset.FromRawBytes([]byte{1, 2, 3})
	require.Error(t, err)
}

func TestSetCloneIndependent(t *testing.T) {
	a := bitset.FromBytes([]byte{1})
	b := a.Clone()
	b.Set(2)
	assert.False(t, a.Test(2))
	assert.True(t, b.Test(2))
}
