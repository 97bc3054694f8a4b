package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironautomata/ironautomata/automaton"
)

func TestFormatOutputAuto(t *testing.T) {
	assert.Equal(t, "he", formatOutput([]byte("he"), "auto"))
	assert.Equal(t, "1", formatOutput([]byte{0x00}, "auto"))
}

func TestFormatOutputExplicitKinds(t *testing.T) {
	assert.Equal(t, "he", formatOutput([]byte("he"), "string"))
	assert.Equal(t, "2", formatOutput([]byte("he"), "length"))
	assert.Equal(t, "", formatOutput([]byte("he"), "nop"))
	assert.Equal(t, "513", formatOutput([]byte{0x01, 0x02}, "integer"))
}

func TestDecodeUintWidths(t *testing.T) {
	assert.Equal(t, uint64(7), decodeUint([]byte{7}))
	assert.Equal(t, uint64(0x0201), decodeUint([]byte{0x01, 0x02}))
	assert.Equal(t, uint64(0x04030201), decodeUint([]byte{0x01, 0x02, 0x03, 0x04}))
	assert.Equal(t, uint64(0x0807060504030201), decodeUint([]byte{1, 2, 3, 4, 5, 6, 7, 8}))
	assert.Equal(t, uint64(0), decodeUint([]byte{1, 2, 3}))
}

func TestIsPrintable(t *testing.T) {
	assert.True(t, isPrintable([]byte("hello")))
	assert.False(t, isPrintable([]byte{0x00, 0x01}))
	assert.False(t, isPrintable([]byte{0x7f}))
}

func TestFilterFinalKeepsOnlyMatchesAtFinalPos(t *testing.T) {
	matches := []recordedMatch{
		{pos: 2, content: "a"},
		{pos: 4, content: "b"},
		{pos: 4, content: "c"},
	}
	got := filterFinal(matches, 4)
	require.Len(t, got, 2)
	assert.Equal(t, "b", got[0].content)
	assert.Equal(t, "c", got[1].content)
}

func TestLoadFileConfigDefaults(t *testing.T) {
	cfg, err := loadFileConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.AlignTo)
	assert.Equal(t, 1.0, cfg.HighNodeWeight)
	assert.Equal(t, 0, cfg.IDWidth)
}

func TestLoadFileConfigFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("id_width: 2\nalign_to: 4\nhigh_node_weight: 2.5\n"), 0o644))

	cfg, err := loadFileConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.IDWidth)
	assert.Equal(t, 4, cfg.AlignTo)
	assert.Equal(t, 2.5, cfg.HighNodeWeight)
}

func TestLoadFileConfigMissingFile(t *testing.T) {
	_, err := loadFileConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestRunTranslateNoneIsNoOp(t *testing.T) {
	a := automaton.New()
	require.NoError(t, runTranslate(a, "none"))
}

func TestRunTranslateUnknownLevelErrors(t *testing.T) {
	a := automaton.New()
	assert.Error(t, runTranslate(a, "bogus"))
}

func TestRunOptimizeEdgesVisitsReachableNodes(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	target := a.AddNode()

	eid, err := a.AddEdge(start, target, true)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(eid, []byte("x")))

	require.NoError(t, runOptimizeEdges(a))
}
