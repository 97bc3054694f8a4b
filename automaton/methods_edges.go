// File: methods_edges.go
// Role: Edge lifecycle and value-set management — AddEdge, representation
//
//	switches (vector <-> bitmap), value add/remove/clear, queries.
//
// Invariants upheld here (§3):
//   - at most one of vector/bitmap is non-empty at rest;
//   - vector form is always sorted, distinct;
//   - an edge with an empty value set is an epsilon edge matching every byte.
//
// Concurrency: mutation under mu write lock; queries under read lock.
package automaton

import (
	"sort"

	"github.com/ironautomata/ironautomata/automaton/bitset"
)

// bitmapThreshold is the value-set size at and above which SetEdgeValues
// chooses the bitmap representation over the vector one, matching the
// optimizer's cost model (§4.4: "If a set has ≥ 32 values, store as bitmap").
const bitmapThreshold = 32

// AddEdge appends a new edge from `from` to `target` with the given
// advance flag and an empty (epsilon) value set, and returns its id.
// Complexity: O(1) amortized.
func (a *Automaton) AddEdge(from, target NodeID, advance bool) (EdgeID, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	fromNode, err := a.node(from)
	if err != nil {
		return NoEdge, err
	}
	if _, err := a.node(target); err != nil {
		return NoEdge, err
	}

	id := EdgeID(len(a.edges))
	e := &Edge{id: id, target: target, advance: advance}
	a.edges = append(a.edges, e)
	fromNode.edges = append(fromNode.edges, id)

	return id, nil
}

// edge returns the internal Edge for id. Callers must hold a.mu.
func (a *Automaton) edge(id EdgeID) (*Edge, error) {
	if id < 0 || int(id) >= len(a.edges) {
		return nil, ErrEdgeNotFound
	}

	return a.edges[id], nil
}

// EdgeTarget returns id's target node.
func (a *Automaton) EdgeTarget(id EdgeID) (NodeID, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, err := a.edge(id)
	if err != nil {
		return NoNode, err
	}

	return e.target, nil
}

// SetEdgeTarget rewires id to point at target.
func (a *Automaton) SetEdgeTarget(id EdgeID, target NodeID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.edge(id)
	if err != nil {
		return err
	}
	e.target = target

	return nil
}

// EdgeAdvance reports id's advance flag.
func (a *Automaton) EdgeAdvance(id EdgeID) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, err := a.edge(id)
	if err != nil {
		return false, err
	}

	return e.advance, nil
}

// SetEdgeAdvance sets id's advance flag.
func (a *Automaton) SetEdgeAdvance(id EdgeID, advance bool) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.edge(id)
	if err != nil {
		return err
	}
	e.advance = advance

	return nil
}

// EdgeIsEpsilon reports whether id's value set is empty, i.e. it matches
// every byte (§3 "An edge with an empty value set is an epsilon edge").
func (a *Automaton) EdgeIsEpsilon(id EdgeID) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, err := a.edge(id)
	if err != nil {
		return false, err
	}

	return len(e.vector) == 0 && (e.bitmap == nil || e.bitmap.Empty()), nil
}

// EdgeValues returns id's matching byte values in ascending order,
// regardless of which representation is in use. An epsilon edge returns
// an empty (not nil) slice — callers use EdgeIsEpsilon to distinguish
// "no values" from "matches everything".
// Complexity: O(n) for vector, O(256) for bitmap.
func (a *Automaton) EdgeValues(id EdgeID) ([]byte, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, err := a.edge(id)
	if err != nil {
		return nil, err
	}

	return edgeValuesLocked(e), nil
}

func edgeValuesLocked(e *Edge) []byte {
	if e.bitmap != nil {
		return e.bitmap.Values()
	}
	out := make([]byte, len(e.vector))
	copy(out, e.vector)

	return out
}

// EdgeHasValue reports whether c is a member of id's value set.
// Complexity: O(n) for vector, O(1) for bitmap.
func (a *Automaton) EdgeHasValue(id EdgeID, c byte) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, err := a.edge(id)
	if err != nil {
		return false, err
	}

	return edgeHasValueLocked(e, c), nil
}

func edgeHasValueLocked(e *Edge, c byte) bool {
	if e.bitmap != nil {
		return e.bitmap.Test(c)
	}
	// Vector form is sorted, so a binary search finds c in O(log n), which
	// stays within the O(n) bound stated above.
	i := sort.Search(len(e.vector), func(i int) bool { return e.vector[i] >= c })

	return i < len(e.vector) && e.vector[i] == c
}

// EdgeMatches additionally returns true for epsilon edges (§4.1).
func (a *Automaton) EdgeMatches(id EdgeID, c byte) (bool, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	e, err := a.edge(id)
	if err != nil {
		return false, err
	}
	if len(e.vector) == 0 && (e.bitmap == nil || e.bitmap.Empty()) {
		return true, nil
	}

	return edgeHasValueLocked(e, c), nil
}

// AddEdgeValue adds c to id's value set. Returns ErrDuplicateValue if c is
// already present. Complexity: O(n) for vector, O(1) for bitmap.
func (a *Automaton) AddEdgeValue(id EdgeID, c byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.edge(id)
	if err != nil {
		return err
	}
	if edgeHasValueLocked(e, c) {
		return ErrDuplicateValue
	}
	if e.bitmap != nil {
		e.bitmap.Set(c)

		return nil
	}
	i := sort.Search(len(e.vector), func(i int) bool { return e.vector[i] >= c })
	e.vector = append(e.vector, 0)
	copy(e.vector[i+1:], e.vector[i:])
	e.vector[i] = c

	return nil
}

// RemoveEdgeValue removes c from id's value set, if present.
func (a *Automaton) RemoveEdgeValue(id EdgeID, c byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.edge(id)
	if err != nil {
		return err
	}
	if e.bitmap != nil {
		e.bitmap.Clear(c)

		return nil
	}
	i := sort.Search(len(e.vector), func(i int) bool { return e.vector[i] >= c })
	if i < len(e.vector) && e.vector[i] == c {
		e.vector = append(e.vector[:i], e.vector[i+1:]...)
	}

	return nil
}

// ClearEdgeValues empties id's value set, turning it into an epsilon edge.
func (a *Automaton) ClearEdgeValues(id EdgeID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.edge(id)
	if err != nil {
		return err
	}
	e.vector = nil
	e.bitmap = nil

	return nil
}

// SetEdgeValues replaces id's value set wholesale with values, choosing
// vector or bitmap representation by bitmapThreshold. values need not be
// sorted or distinct on entry.
func (a *Automaton) SetEdgeValues(id EdgeID, values []byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.edge(id)
	if err != nil {
		return err
	}
	set := bitset.FromBytes(values)
	n := set.PopCount()
	if n >= bitmapThreshold {
		e.vector = nil
		e.bitmap = set
	} else {
		e.bitmap = nil
		e.vector = set.Values()
	}

	return nil
}

// SwitchToBitmap converts id to bitmap representation, preserving its
// value set exactly. No-op if already a bitmap.
func (a *Automaton) SwitchToBitmap(id EdgeID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.edge(id)
	if err != nil {
		return err
	}
	if e.bitmap != nil {
		return nil
	}
	e.bitmap = bitset.FromBytes(e.vector)
	e.vector = nil

	return nil
}

// SwitchToVector converts id to vector representation, preserving its
// value set exactly. No-op if already a vector (or epsilon).
func (a *Automaton) SwitchToVector(id EdgeID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	e, err := a.edge(id)
	if err != nil {
		return err
	}
	if e.bitmap == nil {
		return nil
	}
	e.vector = e.bitmap.Values()
	e.bitmap = nil

	return nil
}

// RemoveEdgeFromNode detaches edge id from node from's outgoing edge list.
// The edge's arena slot is left in place (other edges are referenced by
// index and must not shift); it simply becomes unreachable from `from`.
// Used by the optimizer passes when merging or splitting edges.
func (a *Automaton) RemoveEdgeFromNode(from NodeID, id EdgeID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, err := a.node(from)
	if err != nil {
		return err
	}
	for i, eid := range n.edges {
		if eid == id {
			n.edges = append(n.edges[:i], n.edges[i+1:]...)

			return nil
		}
	}

	return ErrEdgeNotFound
}

// ReplaceNodeEdges overwrites from's outgoing edge list wholesale, in the
// given order. Used by optimize_edges once it has computed the canonical
// set of (target, advance) edges for a node.
func (a *Automaton) ReplaceNodeEdges(from NodeID, ids []EdgeID) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, err := a.node(from)
	if err != nil {
		return err
	}
	n.edges = append([]EdgeID(nil), ids...)

	return nil
}
