package automaton_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironautomata/ironautomata/automaton"
)

func TestAddNodeAndEdge(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	n1 := a.AddNode()
	eid, err := a.AddEdge(start, n1, true)
	require.NoError(t, err)

	require.NoError(t, a.AddEdgeValue(eid, 'x'))
	ok, err := a.EdgeHasValue(eid, 'x')
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = a.EdgeHasValue(eid, 'y')
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestAddEdgeValueDuplicate(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	n1 := a.AddNode()
	eid, err := a.AddEdge(start, n1, true)
	require.NoError(t, err)
	require.NoError(t, a.AddEdgeValue(eid, 'a'))
	err = a.AddEdgeValue(eid, 'a')
	require.True(t, errors.Is(err, automaton.ErrDuplicateValue))
}

func TestEpsilonEdgeMatchesEverything(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	n1 := a.AddNode()
	eid, err := a.AddEdge(start, n1, true)
	require.NoError(t, err)

	isEps, err := a.EdgeIsEpsilon(eid)
	require.NoError(t, err)
	assert.True(t, isEps)

	matches, err := a.EdgeMatches(eid, 0x41)
	require.NoError(t, err)
	assert.True(t, matches)

	has, err := a.EdgeHasValue(eid, 0x41)
	require.NoError(t, err)
	assert.False(t, has) // has_value is false for epsilon; matches is true
}

func TestSwitchRepresentationPreservesValues(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	n1 := a.AddNode()
	eid, err := a.AddEdge(start, n1, true)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(eid, []byte{3, 1, 2, 1}))

	values, err := a.EdgeValues(eid)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, values)

	require.NoError(t, a.SwitchToBitmap(eid))
	values, err = a.EdgeValues(eid)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, values)

	require.NoError(t, a.SwitchToVector(eid))
	values, err = a.EdgeValues(eid)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3}, values)
}

func TestTargetsForUsesDefaultWhenNoEdgeMatches(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	n1 := a.AddNode()
	n2 := a.AddNode()
	eid, err := a.AddEdge(start, n1, true)
	require.NoError(t, err)
	require.NoError(t, a.AddEdgeValue(eid, 'a'))
	require.NoError(t, a.SetDefaultTarget(start, n2, false))

	targets, err := a.TargetsFor(start, 'a')
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, n1, targets[0].Node)

	targets, err = a.TargetsFor(start, 'b')
	require.NoError(t, err)
	require.Len(t, targets, 1)
	assert.Equal(t, n2, targets[0].Node)
	assert.False(t, targets[0].Advance)
}

func TestBuildTargetsByInputMatchesTargetsFor(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	n1 := a.AddNode()
	n2 := a.AddNode()
	eid, err := a.AddEdge(start, n1, true)
	require.NoError(t, err)
	require.NoError(t, a.SetEdgeValues(eid, []byte{'a', 'b', 'c'}))
	require.NoError(t, a.SetDefaultTarget(start, n2, false))

	table, err := a.BuildTargetsByInput(start)
	require.NoError(t, err)

	for c := 0; c < 256; c++ {
		want, err := a.TargetsFor(start, byte(c))
		require.NoError(t, err)
		assert.Equal(t, want, table[c], "byte %d", c)
	}
}

func TestBreadthFirstVisitsEachNodeOnce(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	n1 := a.AddNode()
	n2 := a.AddNode()
	e1, err := a.AddEdge(start, n1, true)
	require.NoError(t, err)
	require.NoError(t, a.AddEdgeValue(e1, 'a'))
	e2, err := a.AddEdge(n1, n2, true)
	require.NoError(t, err)
	require.NoError(t, a.AddEdgeValue(e2, 'b'))
	// back-edge to start (failure-link style cycle)
	_, err = a.AddEdge(n2, start, false)
	require.NoError(t, err)

	var order []automaton.NodeID
	err = a.BreadthFirst(start, func(node automaton.NodeID, via automaton.EdgeID, depth int) error {
		order = append(order, node)

		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []automaton.NodeID{start, n1, n2}, order)
}

func TestOutputChainAndDedupRedirect(t *testing.T) {
	a := automaton.New()
	start := a.StartNode()
	other := a.AddNode()

	o1, err := a.PrependOutput(start, []byte("he"))
	require.NoError(t, err)
	o2, err := a.PrependOutput(start, []byte("she"))
	require.NoError(t, err)

	chain, err := a.OutputChain(o2)
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, []byte("she"), chain[0])
	assert.Equal(t, []byte("he"), chain[1])

	// other points directly at o1; after deduplicate-style redirect it
	// should point at o2 instead.
	require.NoError(t, a.SetFirstOutput(other, o1))
	a.RedirectOutputReferences(o1, o2)
	first, err := a.FirstOutput(other)
	require.NoError(t, err)
	assert.Equal(t, o2, first)
}
