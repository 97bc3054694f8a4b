// File: edges.go
// Role: §4.4 optimize_edges — canonicalize a node's edges by (target,
// advance) pair and elide a full-coverage edge into the node's default.
package optimizer

import (
	"github.com/ironautomata/ironautomata/automaton"
	"github.com/ironautomata/ironautomata/automaton/bitset"
)

type edgeGroupKey struct {
	target  automaton.NodeID
	advance bool
}

// OptimizeEdges merges node's edges that share a (target, advance) pair
// into a single canonical edge holding the union of their value sets,
// replaces any edge that now matches every byte with an epsilon edge, and
// — if the union across every group covers all 256 bytes and doing so
// does not conflict with a pre-existing default target — elides the
// single group contributing the most coverage into the node's default
// instead of emitting it as an edge.
//
// Returns the number of edges removed (merged away or elided).
// Complexity: O(out-degree + total value-set size).
func OptimizeEdges(a *automaton.Automaton, node automaton.NodeID) (int, error) {
	edgeIDs, err := a.NodeEdges(node)
	if err != nil {
		return 0, err
	}
	before := len(edgeIDs)

	groups := make(map[edgeGroupKey]*bitset.Set)
	var order []edgeGroupKey
	for _, eid := range edgeIDs {
		target, err := a.EdgeTarget(eid)
		if err != nil {
			return 0, err
		}
		advance, err := a.EdgeAdvance(eid)
		if err != nil {
			return 0, err
		}
		isEps, err := a.EdgeIsEpsilon(eid)
		if err != nil {
			return 0, err
		}

		k := edgeGroupKey{target: target, advance: advance}
		set, ok := groups[k]
		if !ok {
			set = bitset.FromBytes(nil)
			groups[k] = set
			order = append(order, k)
		}
		if isEps {
			set.Union(bitset.FullSet())

			continue
		}
		values, err := a.EdgeValues(eid)
		if err != nil {
			return 0, err
		}
		set.Union(bitset.FromBytes(values))
	}

	elide, err := electElisionCandidate(a, node, order, groups)
	if err != nil {
		return 0, err
	}

	newEdges := make([]automaton.EdgeID, 0, len(order))
	for _, k := range order {
		if elide != nil && k == *elide {
			if err := a.SetDefaultTarget(node, k.target, k.advance); err != nil {
				return 0, err
			}

			continue
		}

		newEdge, err := a.AddEdge(node, k.target, k.advance)
		if err != nil {
			return 0, err
		}
		if !groups[k].Full() {
			if err := a.SetEdgeValues(newEdge, groups[k].Values()); err != nil {
				return 0, err
			}
		}
		newEdges = append(newEdges, newEdge)
	}
	if err := a.ReplaceNodeEdges(node, newEdges); err != nil {
		return 0, err
	}

	return before - len(newEdges), nil
}

// electElisionCandidate picks the (target, advance) group contributing
// the most coverage, provided the union of every group is full 256-byte
// coverage (eliding it into default must never introduce a transition for
// a byte that previously had none) and doing so does not silently
// override a pre-existing, different default target.
func electElisionCandidate(a *automaton.Automaton, node automaton.NodeID, order []edgeGroupKey, groups map[edgeGroupKey]*bitset.Set) (*edgeGroupKey, error) {
	if len(order) == 0 {
		return nil, nil
	}

	union := bitset.FromBytes(nil)
	for _, k := range order {
		union.Union(groups[k])
	}
	if !union.Full() {
		return nil, nil
	}

	best := order[0]
	bestCount := -1
	for _, k := range order {
		if c := groups[k].PopCount(); c > bestCount {
			bestCount = c
			best = k
		}
	}

	defTarget, defAdvance, err := a.DefaultTarget(node)
	if err != nil {
		return nil, err
	}
	if defTarget != automaton.NoNode && (defTarget != best.target || defAdvance != best.advance) {
		return nil, nil
	}

	return &best, nil
}
