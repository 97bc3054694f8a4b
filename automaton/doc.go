// Package automaton is your in-memory model for building, inspecting and
// sharing the automata that the rest of IronAutomata compiles and runs.
//
// A modern, mutex-guarded, index-addressed library that brings together:
//
//   - Core primitives: create nodes, edges and outputs, mutate safely under locks
//   - Queries: edges-for-byte, targets-for-byte, 256-way target tables
//   - Traversal: BreadthFirst, visiting every live node exactly once
//
// Ownership is by arena index, not by pointer: nodes, edges and outputs
// live in per-Automaton slices, and cross-references are plain ints.
// Aho-Corasick failure links make this graph cyclic by construction, so
// nothing here is reference-counted or garbage-collected independently
// of the Automaton that owns it — dropping the Automaton drops the whole
// arena at once.
//
//	a := automaton.New()
//	start := a.StartNode()
//	n := a.AddNode()
//	eid, err := a.AddEdge(start, n, true)
//	if err != nil { ... }
//	err = a.AddEdgeValue(eid, 'a')
package automaton
