// File: finish.go
// Role: phase two — breadth-first failure-link computation that turns the
// trie built by phase one into a full Aho-Corasick automaton (§4.3 phase 2).
package generator

import "github.com/ironautomata/ironautomata/automaton"

// Finish computes failure links and returns the completed automaton. The
// Generator must not be used again afterward.
//
// Algorithm: breadth-first over the trie's tree edges (queued as
// (parent, edge) pairs, not bare nodes, so a split fans out independently
// into each resulting edge's own subtree). For tree edge r--cs-->s:
//
//   - every byte in cs is resolved to a failure target by walking r's own
//     already-resolved default chain (closest ancestor depth-first, so the
//     result is the longest proper suffix of the path to s that is also a
//     prefix of some pattern);
//   - if every byte resolves to the same target, s's default target is set
//     to it directly;
//   - if bytes resolve to more than one distinct target, cs is split into
//     one edge per target; the last of these edges keeps s itself and each
//     of the others points at its own deep copy of s's subtree (outputs
//     included), so every tree edge ends up with exactly one failure target.
//
// Finally the output chain of each node's failure target, if any, is
// appended to the node's own chain in O(1) via its tail pointer, and the
// start node is given a self-default so unmatched bytes simply stay put.
func (g *Generator) Finish() (*automaton.Automaton, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.began {
		return nil, ErrNotBegun
	}
	if g.finished {
		return nil, ErrAlreadyFinished
	}
	g.finished = true

	start := g.a.StartNode()
	if err := g.a.SetDefaultTarget(start, start, true); err != nil {
		return nil, err
	}
	g.a.SetNoAdvanceNoOutput(true)

	type pending struct {
		parent automaton.NodeID
		edge   automaton.EdgeID
	}

	startEdges, err := g.a.NodeEdges(start)
	if err != nil {
		return nil, err
	}
	queue := make([]pending, 0, len(startEdges))
	for _, e := range startEdges {
		queue = append(queue, pending{parent: start, edge: e})
	}

	for len(queue) > 0 {
		pe := queue[0]
		queue = queue[1:]

		children, err := g.resolveTreeEdge(pe.parent, pe.edge)
		if err != nil {
			return nil, err
		}
		for _, child := range children {
			childEdges, err := g.a.NodeEdges(child)
			if err != nil {
				return nil, err
			}
			for _, ce := range childEdges {
				queue = append(queue, pending{parent: child, edge: ce})
			}
		}
	}

	return g.a, nil
}

// resolveTreeEdge computes and wires the failure target(s) for the child
// reached by edge `e` from `r`, splitting e if its bytes disagree on the
// target, and returns every resulting child node (more than one iff split).
func (g *Generator) resolveTreeEdge(r automaton.NodeID, e automaton.EdgeID) ([]automaton.NodeID, error) {
	s, err := g.a.EdgeTarget(e)
	if err != nil {
		return nil, err
	}

	start := g.a.StartNode()
	if r == start {
		// Classical base case: every immediate child of the start node
		// fails to the start node itself, for every byte — no chain walk,
		// no possibility of a split.
		if err := g.finishNode(s, start); err != nil {
			return nil, err
		}

		return []automaton.NodeID{s}, nil
	}

	cs, err := g.a.EdgeValues(e)
	if err != nil {
		return nil, err
	}
	isEps, err := g.a.EdgeIsEpsilon(e)
	if err != nil {
		return nil, err
	}
	if isEps {
		cs = allBytes()
	}

	// r's own default target was already resolved in an earlier, shallower
	// BFS layer; the chain walk starts there, never at r itself, so it
	// never reconsiders the very edge currently being resolved.
	rFail, _, err := g.a.DefaultTarget(r)
	if err != nil {
		return nil, err
	}

	groupOf := make(map[automaton.NodeID][]byte)
	var order []automaton.NodeID
	for _, c := range cs {
		target, err := g.resolveFailureTarget(rFail, c)
		if err != nil {
			return nil, err
		}
		if _, ok := groupOf[target]; !ok {
			order = append(order, target)
		}
		groupOf[target] = append(groupOf[target], c)
	}

	if len(order) <= 1 {
		failTarget := start0(order)
		if err := g.finishNode(s, failTarget); err != nil {
			return nil, err
		}

		return []automaton.NodeID{s}, nil
	}

	advance, err := g.a.EdgeAdvance(e)
	if err != nil {
		return nil, err
	}
	if err := g.a.RemoveEdgeFromNode(r, e); err != nil {
		return nil, err
	}

	children := make([]automaton.NodeID, 0, len(order))
	for i, target := range order {
		var copyNode automaton.NodeID
		if i == len(order)-1 {
			copyNode = s
		} else {
			copyNode, err = g.deepCopySubtree(s)
			if err != nil {
				return nil, err
			}
		}
		newEdge, err := g.a.AddEdge(r, copyNode, advance)
		if err != nil {
			return nil, err
		}
		if err := g.a.SetEdgeValues(newEdge, groupOf[target]); err != nil {
			return nil, err
		}
		if err := g.finishNode(copyNode, target); err != nil {
			return nil, err
		}
		children = append(children, copyNode)
	}

	return children, nil
}

func start0(order []automaton.NodeID) automaton.NodeID {
	if len(order) == 0 {
		return automaton.NoNode
	}

	return order[0]
}

// finishNode sets node's default target to failTarget (never advancing on
// a failure fall-through) and appends failTarget's output chain, if any,
// to node's own.
func (g *Generator) finishNode(node, failTarget automaton.NodeID) error {
	if err := g.a.SetDefaultTarget(node, failTarget, false); err != nil {
		return err
	}
	chain, err := g.a.FirstOutput(failTarget)
	if err != nil {
		return err
	}

	return g.a.AppendOutputToChain(node, chain)
}

// resolveFailureTarget walks t's default chain looking for the first node
// with an edge covering c, returning its target; falling through to the
// start node itself if the chain bottoms out without a match.
func (g *Generator) resolveFailureTarget(t automaton.NodeID, c byte) (automaton.NodeID, error) {
	start := g.a.StartNode()
	for {
		edges, err := g.a.EdgesFor(t, c)
		if err != nil {
			return automaton.NoNode, err
		}
		if len(edges) > 0 {
			return g.a.EdgeTarget(edges[0])
		}
		if t == start {
			return start, nil
		}
		def, _, err := g.a.DefaultTarget(t)
		if err != nil {
			return automaton.NoNode, err
		}
		t = def
	}
}

func allBytes() []byte {
	out := make([]byte, 256)
	for i := range out {
		out[i] = byte(i)
	}

	return out
}
