package eudoxus_test

import (
	"encoding/binary"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironautomata/ironautomata/automaton"
	"github.com/ironautomata/ironautomata/eudoxus"
	"github.com/ironautomata/ironautomata/generator"
)

func buildClassicAutomaton(t *testing.T) *automaton.Automaton {
	t.Helper()

	g := generator.New()
	require.NoError(t, g.Begin())
	for _, w := range []string{"he", "she", "his", "hers"} {
		require.NoError(t, g.AddString([]byte(w)))
	}
	a, err := g.Finish()
	require.NoError(t, err)

	return a
}

func decodeHeader(t *testing.T, buf []byte) (idWidth int, flags byte, nodeCount, outputCount, dataLength uint32) {
	t.Helper()
	require.GreaterOrEqual(t, len(buf), 21)
	magic := binary.LittleEndian.Uint32(buf[0:4])
	assert.Equal(t, uint32(0x45444f58), magic)
	assert.Equal(t, byte(1), buf[4])
	idWidth = int(buf[5])
	assert.Equal(t, byte(0), buf[6])
	flags = buf[7]
	nodeCount = binary.LittleEndian.Uint32(buf[9:13])
	outputCount = binary.LittleEndian.Uint32(buf[13:17])
	dataLength = binary.LittleEndian.Uint32(buf[17:21])

	return
}

func TestCompileProducesValidHeader(t *testing.T) {
	a := buildClassicAutomaton(t)

	buf, stats, err := eudoxus.Compile(a, eudoxus.Config{IDWidth: 2, AlignTo: 1})
	require.NoError(t, err)

	idWidth, flags, nodeCount, outputCount, dataLength := decodeHeader(t, buf)
	assert.Equal(t, 2, idWidth)
	assert.NotZero(t, flags&0x01, "no_advance_no_output flag should be set after generator.Finish")
	assert.EqualValues(t, stats.NodesEmitted, nodeCount)
	assert.EqualValues(t, stats.OutputsEmitted, outputCount)
	assert.Equal(t, len(buf)-21-idWidth, int(dataLength))
	assert.Equal(t, len(buf), stats.TotalBytes)
	assert.Greater(t, stats.NodesEmitted, 0)
	assert.Greater(t, stats.OutputsEmitted, 0)
}

func TestCompileIDWidthZeroSelectsMinimalWidth(t *testing.T) {
	a := buildClassicAutomaton(t)

	buf, stats, err := eudoxus.Compile(a, eudoxus.Config{IDWidth: 0, AlignTo: 1})
	require.NoError(t, err)

	idWidth, _, _, _, _ := decodeHeader(t, buf)
	assert.Equal(t, stats.IDWidth, idWidth)
	// The measuring pass always uses 8-byte ids (§4.5 step 4), which is
	// enough id-field overhead on its own to push even this small
	// automaton's probe size past what a 1-byte width could address.
	assert.Equal(t, 2, idWidth)
}

func TestCompileAlignsNodeRecords(t *testing.T) {
	a := buildClassicAutomaton(t)

	unaligned, unalignedStats, err := eudoxus.Compile(a, eudoxus.Config{IDWidth: 2, AlignTo: 1})
	require.NoError(t, err)
	aligned, alignedStats, err := eudoxus.Compile(a, eudoxus.Config{IDWidth: 2, AlignTo: 4})
	require.NoError(t, err)

	assert.Zero(t, unalignedStats.PaddingBytes)
	assert.GreaterOrEqual(t, alignedStats.PaddingBytes, 0)
	assert.GreaterOrEqual(t, len(aligned), len(unaligned))
}

func TestCompileRejectsInvalidConfig(t *testing.T) {
	a := buildClassicAutomaton(t)

	_, _, err := eudoxus.Compile(a, eudoxus.Config{IDWidth: 3, AlignTo: 1})
	assert.ErrorIs(t, err, eudoxus.ErrInvalidConfig)

	_, _, err = eudoxus.Compile(a, eudoxus.Config{IDWidth: 1, AlignTo: 0})
	assert.ErrorIs(t, err, eudoxus.ErrInvalidConfig)
}

func TestCompileFailsOutDegreeOverflowOnUnelidedEpsilonEdge(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	other := a.AddNode()
	target := a.AddNode()

	require.NoError(t, a.SetDefaultTarget(start, other, false))
	eid, err := a.AddEdge(start, target, true)
	require.NoError(t, err)
	// Leave eid as an epsilon edge (empty value set) — full coverage that
	// could not be elided because start already has a distinct default.
	_ = eid

	_, _, err = eudoxus.Compile(a, eudoxus.Config{IDWidth: 1, AlignTo: 1})
	assert.ErrorIs(t, err, eudoxus.ErrOutDegreeOverflow)
}

// buildChain returns an automaton consisting of n nodes linked start -> ...
// -> last by single-byte advancing edges, all reachable from the start
// node. A long enough chain pushes the compiled buffer size well past
// what a 1-byte identifier width can address.
func buildChain(t *testing.T, n int) *automaton.Automaton {
	t.Helper()

	a := automaton.New()
	prev := a.StartNode()
	for i := 1; i < n; i++ {
		next := a.AddNode()
		eid, err := a.AddEdge(prev, next, true)
		require.NoError(t, err)
		require.NoError(t, a.SetEdgeValues(eid, []byte{byte(i % 256)}))
		prev = next
	}

	return a
}

func TestCompileReportsIDTooSmall(t *testing.T) {
	a := buildChain(t, 100)

	_, _, err := eudoxus.Compile(a, eudoxus.Config{IDWidth: 1, AlignTo: 1})
	assert.ErrorIs(t, err, eudoxus.ErrIDTooSmall)
}

func TestCompileIDWidthZeroSelectsLargerWidthForLargerGraph(t *testing.T) {
	a := buildChain(t, 100)

	buf, stats, err := eudoxus.Compile(a, eudoxus.Config{IDWidth: 0, AlignTo: 1})
	require.NoError(t, err)

	idWidth, _, _, _, _ := decodeHeader(t, buf)
	assert.Equal(t, 2, idWidth)
	assert.Equal(t, 2, stats.IDWidth)
}
