// File: generator.go
// Role: phase-one trie construction — Begin/AddString/AddLength/AddPattern
// and the shared position-by-position trie-walk-and-split algorithm that
// backs all three.
package generator

import (
	"encoding/binary"
	"sync"

	"github.com/ironautomata/ironautomata/automaton"
	"github.com/ironautomata/ironautomata/automaton/bitset"
)

// Generator drives phased Aho-Corasick construction. The zero value is not
// ready to use; create one with New.
//
// Concurrency: a Generator is single-threaded — it is a write-side
// construction tool used once per automaton, not a concern it shares with
// readers. The mutex here only prevents Begin/Add/Finish from racing each
// other if misused across goroutines; it confers no guarantee about the
// automaton's own internal locking, which remains in force independently.
type Generator struct {
	mu sync.Mutex

	a *automaton.Automaton

	began     bool
	finished  bool
	sawPattern bool
}

// New returns a Generator ready for Begin.
func New() *Generator {
	return &Generator{}
}

// Begin starts construction, allocating the underlying automaton.Automaton.
func (g *Generator) Begin() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.began {
		return ErrAlreadyBegun
	}
	g.began = true
	g.a = automaton.New()

	return nil
}

func (g *Generator) checkOpenForAdd() error {
	if !g.began {
		return ErrNotBegun
	}
	if g.finished {
		return ErrAlreadyFinished
	}

	return nil
}

// AddString registers literal as a pattern; a match reports literal itself
// as the output content. Equivalent to AddStringWithOutput(literal, literal).
func (g *Generator) AddString(literal []byte) error {
	return g.AddStringWithOutput(literal, literal)
}

// AddStringWithOutput registers literal as a pattern whose match reports
// output as the output content. Illegal after the first AddPattern call
// (§4.3: plain strings and pattern shortcuts don't interleave).
func (g *Generator) AddStringWithOutput(literal, output []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkOpenForAdd(); err != nil {
		return err
	}
	if g.sawPattern {
		return ErrPlainAfterPattern
	}
	if len(literal) == 0 {
		return ErrEmptyPattern
	}

	positions := make([]*bitset.Set, len(literal))
	for i, c := range literal {
		positions[i] = bitset.FromBytes([]byte{c})
	}

	return g.addPositions(positions, output)
}

// AddLength registers literal as a pattern whose match reports literal's
// own byte length, encoded as a fixed-width little-endian uint32 (the
// generator's canonical add_length encoding), as the output content.
func (g *Generator) AddLength(literal []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkOpenForAdd(); err != nil {
		return err
	}
	if g.sawPattern {
		return ErrPlainAfterPattern
	}
	if len(literal) == 0 {
		return ErrEmptyPattern
	}

	positions := make([]*bitset.Set, len(literal))
	for i, c := range literal {
		positions[i] = bitset.FromBytes([]byte{c})
	}

	lengthBuf := make([]byte, 4)
	binary.LittleEndian.PutUint32(lengthBuf, uint32(len(literal)))

	return g.addPositions(positions, lengthBuf)
}

// AddPattern registers a pattern shortcut string (§4.3's escape/bracket
// table) whose match reports pattern's own text as the output content.
// Equivalent to AddPatternWithOutput(pattern, []byte(pattern)).
func (g *Generator) AddPattern(pattern string) error {
	return g.AddPatternWithOutput(pattern, []byte(pattern))
}

// AddPatternWithOutput registers a pattern shortcut string whose match
// reports output as the output content. Once any AddPattern(WithOutput)
// call has been made, AddString/AddLength may no longer be called.
func (g *Generator) AddPatternWithOutput(pattern string, output []byte) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err := g.checkOpenForAdd(); err != nil {
		return err
	}
	if len(pattern) == 0 {
		return ErrEmptyPattern
	}

	positions, err := expandPattern(pattern)
	if err != nil {
		return err
	}
	g.sawPattern = true

	return g.addPositions(positions, output)
}

// addPositions walks the trie position by position, splitting edges on
// partial overlap, creating new edges for uncovered bytes, and finally
// prepending output to every node the pattern's last position reaches
// (§4.3 phase 1).
//
// A single position may fan a path into several parallel frontier nodes
// when it only partially overlaps more than one existing edge; all
// frontier members advance through the same subsequent positions.
func (g *Generator) addPositions(positions []*bitset.Set, output []byte) error {
	frontier := []automaton.NodeID{g.a.StartNode()}

	for _, want := range positions {
		var next []automaton.NodeID
		for _, node := range frontier {
			reached, err := g.walkOnePosition(node, want)
			if err != nil {
				return err
			}
			next = append(next, reached...)
		}
		frontier = dedupeNodes(next)
	}

	for _, node := range frontier {
		if _, err := g.a.PrependOutput(node, output); err != nil {
			return err
		}
	}

	return nil
}

// walkOnePosition resolves node's outgoing edges against the byte set
// `want`, splitting edges that only partially overlap it and creating a
// fresh edge for any leftover bytes, and returns every node reached for
// this position (§4.3: "walk existing edges as far as the input matches;
// split an edge whose value set only partially overlaps").
func (g *Generator) walkOnePosition(node automaton.NodeID, want *bitset.Set) ([]automaton.NodeID, error) {
	remaining := want.Clone()
	var reached []automaton.NodeID

	edges, err := g.a.NodeEdges(node)
	if err != nil {
		return nil, err
	}

	for _, eid := range edges {
		if remaining.Empty() {
			break
		}
		isEps, err := g.a.EdgeIsEpsilon(eid)
		if err != nil {
			return nil, err
		}
		if isEps {
			// An epsilon edge (empty value set) matches every byte, so it
			// necessarily covers all of `remaining`; treat it the same as
			// a fully-covering edge and leave it untouched.
			target, err := g.a.EdgeTarget(eid)
			if err != nil {
				return nil, err
			}
			reached = append(reached, target)
			remaining = bitset.FromBytes(nil)

			break
		}

		values, err := g.a.EdgeValues(eid)
		if err != nil {
			return nil, err
		}
		edgeSet := bitset.FromBytes(values)
		overlap := bitset.Intersect(edgeSet, remaining)
		if overlap.Empty() {
			continue
		}

		target, err := g.a.EdgeTarget(eid)
		if err != nil {
			return nil, err
		}

		if overlap.Equal(edgeSet) || overlap.Equal(remaining) {
			// Either this edge's whole value set is wanted, or it alone
			// covers everything still wanted: no split needed, just
			// descend through it unmodified.
			reached = append(reached, target)
			remaining.Subtract(overlap)

			continue
		}

		// Genuine partial overlap on both sides: split. The overlapping
		// subset becomes a new edge to a deep copy of the subtree below
		// (outputs included); the original edge keeps the difference.
		advance, err := g.a.EdgeAdvance(eid)
		if err != nil {
			return nil, err
		}
		copyTarget, err := g.deepCopySubtree(target)
		if err != nil {
			return nil, err
		}
		newEdge, err := g.a.AddEdge(node, copyTarget, advance)
		if err != nil {
			return nil, err
		}
		if err := g.a.SetEdgeValues(newEdge, overlap.Values()); err != nil {
			return nil, err
		}
		difference := edgeSet.Clone()
		difference.Subtract(overlap)
		if err := g.a.SetEdgeValues(eid, difference.Values()); err != nil {
			return nil, err
		}

		reached = append(reached, copyTarget)
		remaining.Subtract(overlap)
	}

	if !remaining.Empty() {
		newNode := g.a.AddNode()
		newEdge, err := g.a.AddEdge(node, newNode, true)
		if err != nil {
			return nil, err
		}
		if err := g.a.SetEdgeValues(newEdge, remaining.Values()); err != nil {
			return nil, err
		}
		reached = append(reached, newNode)
	}

	return reached, nil
}

// deepCopySubtree clones root and everything reachable below it — edges,
// targets and output chains included — and returns the id of the clone.
// It follows edges only and does not copy default targets. Finish also
// calls it, on a subtree it has not finished yet, when splitting a tree
// edge; failure links are defaults, so the edges followed still form a
// tree and plain recursion terminates.
func (g *Generator) deepCopySubtree(root automaton.NodeID) (automaton.NodeID, error) {
	clone := g.a.AddNode()

	first, err := g.a.FirstOutput(root)
	if err != nil {
		return automaton.NoNode, err
	}
	newFirst, newLast, err := g.deepCopyOutputChain(first)
	if err != nil {
		return automaton.NoNode, err
	}
	if newFirst != automaton.NoOutput {
		if err := g.a.SetOutputChain(clone, newFirst, newLast); err != nil {
			return automaton.NoNode, err
		}
	}

	edges, err := g.a.NodeEdges(root)
	if err != nil {
		return automaton.NoNode, err
	}
	for _, eid := range edges {
		target, err := g.a.EdgeTarget(eid)
		if err != nil {
			return automaton.NoNode, err
		}
		advance, err := g.a.EdgeAdvance(eid)
		if err != nil {
			return automaton.NoNode, err
		}
		isEps, err := g.a.EdgeIsEpsilon(eid)
		if err != nil {
			return automaton.NoNode, err
		}

		newTarget, err := g.deepCopySubtree(target)
		if err != nil {
			return automaton.NoNode, err
		}
		newEdge, err := g.a.AddEdge(clone, newTarget, advance)
		if err != nil {
			return automaton.NoNode, err
		}
		if !isEps {
			values, err := g.a.EdgeValues(eid)
			if err != nil {
				return automaton.NoNode, err
			}
			if err := g.a.SetEdgeValues(newEdge, values); err != nil {
				return automaton.NoNode, err
			}
		}
	}

	return clone, nil
}

func (g *Generator) deepCopyOutputChain(first automaton.OutputID) (automaton.OutputID, automaton.OutputID, error) {
	if first == automaton.NoOutput {
		return automaton.NoOutput, automaton.NoOutput, nil
	}
	contents, err := g.a.OutputChain(first)
	if err != nil {
		return automaton.NoOutput, automaton.NoOutput, err
	}

	var newFirst, prev automaton.OutputID = automaton.NoOutput, automaton.NoOutput
	for _, content := range contents {
		id := g.a.AddOutput(content)
		if newFirst == automaton.NoOutput {
			newFirst = id
		} else {
			if err := g.a.SetOutputNext(prev, id); err != nil {
				return automaton.NoOutput, automaton.NoOutput, err
			}
		}
		prev = id
	}

	return newFirst, prev, nil
}

func dedupeNodes(nodes []automaton.NodeID) []automaton.NodeID {
	if len(nodes) < 2 {
		return nodes
	}
	seen := make(map[automaton.NodeID]bool, len(nodes))
	out := make([]automaton.NodeID, 0, len(nodes))
	for _, n := range nodes {
		if !seen[n] {
			seen[n] = true
			out = append(out, n)
		}
	}

	return out
}
