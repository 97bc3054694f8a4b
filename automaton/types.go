// Package automaton: core types.
//
// This file declares NodeID/EdgeID/OutputID, Node, Edge, Output, Automaton,
// sentinel errors, and the New constructor.
//
// Ownership model: the Automaton owns three arenas (nodes, edges, outputs)
// addressed by integer index. Cross-references are indices, never pointers,
// so the failure-link back-edges the Aho-Corasick generator introduces
// (§4.3) don't need reference counting or cycle detection — the whole
// arena is dropped as a unit when the Automaton is.
package automaton

import (
	"errors"
	"sync"

	"github.com/ironautomata/ironautomata/automaton/bitset"
)

// Sentinel errors for automaton operations.
var (
	// ErrNodeNotFound indicates an operation referenced a non-existent node.
	ErrNodeNotFound = errors.New("automaton: node not found")

	// ErrEdgeNotFound indicates an operation referenced a non-existent edge.
	ErrEdgeNotFound = errors.New("automaton: edge not found")

	// ErrOutputNotFound indicates an operation referenced a non-existent output.
	ErrOutputNotFound = errors.New("automaton: output not found")

	// ErrDuplicateValue indicates an edge value was added more than once.
	ErrDuplicateValue = errors.New("automaton: duplicate edge value")

	// ErrOutputCycle indicates an output chain mutation would introduce a cycle.
	ErrOutputCycle = errors.New("automaton: output chain would cycle")
)

// NodeID addresses a Node within an Automaton's node arena.
type NodeID int

// EdgeID addresses an Edge within an Automaton's edge arena.
type EdgeID int

// OutputID addresses an Output within an Automaton's output arena.
type OutputID int

// NoNode, NoEdge and NoOutput are the "no referent" sentinels for the
// in-memory graph. They are distinct from the compiled form's reserved
// identifier 0 (§3), which is an on-disk concern handled by package eudoxus.
const (
	NoNode   NodeID   = -1
	NoEdge   EdgeID   = -1
	NoOutput OutputID = -1
)

// Node owns an optional first-output reference, an optional default
// target plus its advance flag, and an ordered list of outgoing edges.
//
// lastOutput is a generator-maintained tail pointer (§4.3 "per-node
// last_output tail pointer") letting Finish() append an output chain in
// O(1) without walking the chain or risking a cycle.
type Node struct {
	id               NodeID
	firstOutput      OutputID
	lastOutput       OutputID
	defaultTarget    NodeID
	advanceOnDefault bool
	edges            []EdgeID
}

// Edge owns a target node, an advance flag, and a set of matching byte
// values in one of two representations. At most one of vector/bitmap is
// non-empty at rest (§3 invariant); SwitchToBitmap/SwitchToVector convert
// between them preserving the value set exactly.
//
// An edge with an empty value set is an epsilon edge: it matches every byte.
type Edge struct {
	id     EdgeID
	target NodeID
	advance bool

	// vector holds distinct byte values in ascending order. Used when the
	// set is small (§3: "vector form: sorted sequence of distinct bytes").
	vector []byte

	// bitmap holds the same set as a 256-bit bitmap. Used when the set is
	// large. Exactly one of vector/bitmap is non-nil/non-empty at rest.
	bitmap *bitset.Set
}

// Output owns an opaque content byte sequence and an optional next-output
// reference, forming a forward chain. Output chains are acyclic (§3).
type Output struct {
	id      OutputID
	content []byte
	next    OutputID
}

// Automaton owns one start node, a no_advance_no_output flag, and a
// mapping from string keys to string values (metadata, carried through to
// the compiled output). All mutation is guarded by mu, matching the
// teacher's per-Graph RWMutex convention; the generator and optimizer
// single-thread their passes against one Automaton, but query methods are
// safe to call concurrently with each other.
type Automaton struct {
	mu sync.RWMutex

	nodes   []*Node
	edges   []*Edge
	outputs []*Output

	start             NodeID
	noAdvanceNoOutput bool
	metadata          map[string]string
}

// New returns an empty Automaton with a single start node at index 0.
// Complexity: O(1).
func New() *Automaton {
	a := &Automaton{
		start:    0,
		metadata: make(map[string]string),
	}
	a.nodes = append(a.nodes, &Node{id: 0, firstOutput: NoOutput, lastOutput: NoOutput, defaultTarget: NoNode})

	return a
}

// StartNode returns the id of the automaton's start node.
func (a *Automaton) StartNode() NodeID {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.start
}

// SetStartNode changes the start node. Callers must ensure id is live.
func (a *Automaton) SetStartNode(id NodeID) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.start = id
}

// NoAdvanceNoOutput reports the automaton-level suppression flag (§4.6 step 4).
func (a *Automaton) NoAdvanceNoOutput() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return a.noAdvanceNoOutput
}

// SetNoAdvanceNoOutput sets the automaton-level suppression flag.
func (a *Automaton) SetNoAdvanceNoOutput(v bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.noAdvanceNoOutput = v
}

// Metadata returns a shallow copy of the automaton's string metadata map.
// Complexity: O(len(metadata)).
func (a *Automaton) Metadata() map[string]string {
	a.mu.RLock()
	defer a.mu.RUnlock()
	out := make(map[string]string, len(a.metadata))
	for k, v := range a.metadata {
		out[k] = v
	}

	return out
}

// SetMetadata sets a single metadata key/value pair. The key "Output-Type"
// is reserved by the engine driver (§6) to pick a default output decoder.
func (a *Automaton) SetMetadata(key, value string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.metadata[key] = value
}

// NodeCount returns the number of nodes in the arena, live or not.
func (a *Automaton) NodeCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.nodes)
}

// EdgeCount returns the number of edges in the arena, live or not.
func (a *Automaton) EdgeCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.edges)
}

// OutputCount returns the number of outputs in the arena, live or not.
func (a *Automaton) OutputCount() int {
	a.mu.RLock()
	defer a.mu.RUnlock()

	return len(a.outputs)
}
