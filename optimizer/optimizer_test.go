package optimizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironautomata/ironautomata/automaton"
	"github.com/ironautomata/ironautomata/optimizer"
)

func TestOptimizeEdgesMergesAndElidesOnFullCoverage(t *testing.T) {
	a := automaton.New()
	target := a.AddNode()
	start := a.StartNode()

	lower, err := a.AddEdge(start, target, true)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(lower, []byte("abcdefghijklmnopqrstuvwxyz")))

	rest := make([]byte, 0, 256-26)
	for c := 0; c < 256; c++ {
		if c >= 'a' && c <= 'z' {
			continue
		}
		rest = append(rest, byte(c))
	}
	upper, err := a.AddEdge(start, target, true)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(upper, rest))

	removed, err := optimizer.OptimizeEdges(a, start)
	require.NoError(t, err)
	assert.Equal(t, 2, removed, "both edges should be elided away into the default")

	edges, err := a.NodeEdges(start)
	require.NoError(t, err)
	assert.Empty(t, edges)

	defTarget, defAdvance, err := a.DefaultTarget(start)
	require.NoError(t, err)
	assert.Equal(t, target, defTarget)
	assert.True(t, defAdvance)
}

func TestOptimizeEdgesSkipsElisionOnConflictingDefault(t *testing.T) {
	a := automaton.New()
	target := a.AddNode()
	other := a.AddNode()
	start := a.StartNode()

	require.NoError(t, a.SetDefaultTarget(start, other, false))

	values := make([]byte, 256)
	for c := 0; c < 256; c++ {
		values[c] = byte(c)
	}
	eid, err := a.AddEdge(start, target, true)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(eid, values))

	_, err = optimizer.OptimizeEdges(a, start)
	require.NoError(t, err)

	edges, err := a.NodeEdges(start)
	require.NoError(t, err)
	require.Len(t, edges, 1, "full-coverage edge must stay an edge since eliding it would override the existing default")

	defTarget, defAdvance, err := a.DefaultTarget(start)
	require.NoError(t, err)
	assert.Equal(t, other, defTarget)
	assert.False(t, defAdvance)
}

func TestOptimizeEdgesConvertsFullCoverageSingleEdgeToEpsilon(t *testing.T) {
	a := automaton.New()
	target := a.AddNode()
	other := a.AddNode()
	start := a.StartNode()

	// A pre-existing, different default blocks elision, so the full-coverage
	// edge must stay an edge — just canonicalized to epsilon form.
	require.NoError(t, a.SetDefaultTarget(start, other, false))

	values := make([]byte, 256)
	for c := 0; c < 256; c++ {
		values[c] = byte(c)
	}
	eid, err := a.AddEdge(start, target, false)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(eid, values))

	_, err = optimizer.OptimizeEdges(a, start)
	require.NoError(t, err)

	edges, err := a.NodeEdges(start)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	isEps, err := a.EdgeIsEpsilon(edges[0])
	require.NoError(t, err)
	assert.True(t, isEps)
}

func TestDeduplicateOutputsMergesIdenticalChains(t *testing.T) {
	a := automaton.New()
	n1 := a.AddNode()
	n2 := a.AddNode()

	o1, err := a.PrependOutput(n1, []byte("match"))
	require.NoError(t, err)
	o2, err := a.PrependOutput(n2, []byte("match"))
	require.NoError(t, err)
	require.NotEqual(t, o1, o2)

	merged, err := optimizer.DeduplicateOutputs(a)
	require.NoError(t, err)
	assert.Equal(t, 1, merged)

	f1, err := a.FirstOutput(n1)
	require.NoError(t, err)
	f2, err := a.FirstOutput(n2)
	require.NoError(t, err)
	assert.Equal(t, f1, f2, "both nodes should now reference the same canonical output")

	merged, err = optimizer.DeduplicateOutputs(a)
	require.NoError(t, err)
	assert.Equal(t, 0, merged, "a second pass over an already-deduplicated automaton must be a no-op")
}

func TestDeduplicateOutputsLeavesDistinctContentAlone(t *testing.T) {
	a := automaton.New()
	n1 := a.AddNode()
	n2 := a.AddNode()

	_, err := a.PrependOutput(n1, []byte("foo"))
	require.NoError(t, err)
	_, err = a.PrependOutput(n2, []byte("bar"))
	require.NoError(t, err)

	merged, err := optimizer.DeduplicateOutputs(a)
	require.NoError(t, err)
	assert.Equal(t, 0, merged)
}

func TestTranslateNonAdvancingConservativeSplicesThroughEdgelessTarget(t *testing.T) {
	a := automaton.New()
	a.SetNoAdvanceNoOutput(true)

	start := a.StartNode()
	mid := a.AddNode()
	final := a.AddNode()

	require.NoError(t, a.SetDefaultTarget(start, mid, false))
	require.NoError(t, a.SetDefaultTarget(mid, final, true))

	rewrites, err := optimizer.TranslateNonAdvancingConservative(a)
	require.NoError(t, err)
	assert.Equal(t, 1, rewrites)

	target, advance, err := a.DefaultTarget(start)
	require.NoError(t, err)
	assert.Equal(t, final, target)
	assert.True(t, advance)
}

func TestTranslateNonAdvancingConservativeNoopWithoutFlag(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	mid := a.AddNode()
	final := a.AddNode()

	require.NoError(t, a.SetDefaultTarget(start, mid, false))
	require.NoError(t, a.SetDefaultTarget(mid, final, true))

	rewrites, err := optimizer.TranslateNonAdvancingConservative(a)
	require.NoError(t, err)
	assert.Equal(t, 0, rewrites)

	target, advance, err := a.DefaultTarget(start)
	require.NoError(t, err)
	assert.Equal(t, mid, target)
	assert.False(t, advance)
}

func TestTranslateNonAdvancingConservativeLeavesOutputBearingTargetAlone(t *testing.T) {
	a := automaton.New()
	a.SetNoAdvanceNoOutput(true)

	start := a.StartNode()
	mid := a.AddNode()
	final := a.AddNode()

	_, err := a.PrependOutput(mid, []byte("x"))
	require.NoError(t, err)
	require.NoError(t, a.SetDefaultTarget(start, mid, false))
	require.NoError(t, a.SetDefaultTarget(mid, final, true))

	rewrites, err := optimizer.TranslateNonAdvancingConservative(a)
	require.NoError(t, err)
	assert.Equal(t, 0, rewrites, "an output-bearing default target must not be spliced past")
}

func TestTranslateNonAdvancingAggressiveChainsThroughMultipleHops(t *testing.T) {
	a := automaton.New()
	a.SetNoAdvanceNoOutput(true)

	start := a.StartNode()
	hop1 := a.AddNode()
	hop2 := a.AddNode()
	final := a.AddNode()

	require.NoError(t, a.SetDefaultTarget(start, hop1, false))
	require.NoError(t, a.SetDefaultTarget(hop1, hop2, false))
	require.NoError(t, a.SetDefaultTarget(hop2, final, true))

	rewrites, err := optimizer.TranslateNonAdvancingAggressive(a)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, rewrites, 1)

	target, advance, err := a.DefaultTarget(start)
	require.NoError(t, err)
	assert.Equal(t, final, target)
	assert.True(t, advance)
}

func TestTranslateNonAdvancingStructuralEliminatesDefault(t *testing.T) {
	a := automaton.New()
	a.SetNoAdvanceNoOutput(true)

	start := a.StartNode()
	require.NoError(t, a.SetDefaultTarget(start, start, true))

	n := a.AddNode()
	advancing := a.AddNode()
	// The pass only visits nodes reachable from start, so link n in.
	link, err := a.AddEdge(start, n, true)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(link, []byte("x")))
	eid, err := a.AddEdge(n, advancing, true)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(eid, []byte("x")))
	require.NoError(t, a.SetDefaultTarget(n, start, false))

	rewrites, err := optimizer.TranslateNonAdvancingStructural(a)
	require.NoError(t, err)
	assert.Equal(t, 1, rewrites)

	target, _, err := a.DefaultTarget(n)
	require.NoError(t, err)
	assert.Equal(t, automaton.NoNode, target, "default should be fully replaced by explicit edges")

	edges, err := a.NodeEdges(n)
	require.NoError(t, err)
	require.Len(t, edges, 2)

	found := false
	for _, eid := range edges {
		et, err := a.EdgeTarget(eid)
		require.NoError(t, err)
		ea, err := a.EdgeAdvance(eid)
		require.NoError(t, err)
		if et == start {
			found = true
			assert.True(t, ea, "the materialized fallback edge must advance")
			vals, err := a.EdgeValues(eid)
			require.NoError(t, err)
			assert.Len(t, vals, 255, "every byte but 'x' falls through to start")
		}
	}
	assert.True(t, found, "expected a materialized edge to start covering the non-'x' bytes")
}

func TestTranslateNonAdvancingStructuralNoopWithoutFlag(t *testing.T) {
	a := automaton.New()

	start := a.StartNode()
	require.NoError(t, a.SetDefaultTarget(start, start, true))

	n := a.AddNode()
	require.NoError(t, a.SetDefaultTarget(n, start, false))

	rewrites, err := optimizer.TranslateNonAdvancingStructural(a)
	require.NoError(t, err)
	assert.Equal(t, 0, rewrites)

	target, advance, err := a.DefaultTarget(n)
	require.NoError(t, err)
	assert.Equal(t, start, target)
	assert.False(t, advance)
}
