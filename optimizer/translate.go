// File: translate.go
// Role: §4.4 translate_nonadvancing, in its three variants.
//
// All three rely on one safety precondition: a non-advancing hop's output
// is only ever suppressed when automaton.NoAdvanceNoOutput() is true
// (§4.6 step 4). When it's false, an intermediate non-advancing node's
// output chain is genuinely observable at runtime, so collapsing that hop
// away would silently drop a real output emission. Every pass here is a
// no-op when the flag is false.
package optimizer

import (
	"errors"

	"github.com/ironautomata/ironautomata/automaton"
	"github.com/ironautomata/ironautomata/automaton/bitset"
)

// maxAggressivePasses bounds TranslateNonAdvancingAggressive: the spec
// leaves open whether repeated splicing is guaranteed to converge, so
// this caps it rather than looping until a fixed point that might not
// exist for a pathological input graph.
const maxAggressivePasses = 8

// ErrChainTooDeep indicates a default chain did not resolve to an
// advancing transition within the automaton's node count — evidence of a
// malformed (cyclic, dead-end-free) default chain rather than a valid
// Aho-Corasick automaton.
var ErrChainTooDeep = errors.New("optimizer: default chain did not resolve to an advancing transition")

// TranslateNonAdvancingConservative applies the one transform that is
// always safe in isolation: if node N's default target T has no outgoing
// edges of its own, T's default fully determines behaviour for every byte
// that reaches it, so N's default can be spliced to point directly at
// T's default. When T's default advances, this directly eliminates one
// non-advancing transition; when it doesn't, it still shortens the chain
// for a later pass. Returns the number of transitions actually turned
// advancing.
func TranslateNonAdvancingConservative(a *automaton.Automaton) (int, error) {
	if !a.NoAdvanceNoOutput() {
		return 0, nil
	}

	rewrites := 0
	err := a.BreadthFirst(a.StartNode(), func(node automaton.NodeID, via automaton.EdgeID, depth int) error {
		n, err := spliceThroughEdgelessTarget(a, node)
		if err != nil {
			return err
		}
		rewrites += n

		return nil
	})

	return rewrites, err
}

func spliceThroughEdgelessTarget(a *automaton.Automaton, node automaton.NodeID) (int, error) {
	target, advance, err := a.DefaultTarget(node)
	if err != nil {
		return 0, err
	}
	if target == automaton.NoNode || advance {
		return 0, nil
	}

	targetEdges, err := a.NodeEdges(target)
	if err != nil {
		return 0, err
	}
	if len(targetEdges) != 0 {
		return 0, nil
	}

	firstOut, err := a.FirstOutput(target)
	if err != nil {
		return 0, err
	}
	if firstOut != automaton.NoOutput {
		// target's own output would no longer be visited if we splice
		// past it; safe only because no_advance_no_output already
		// suppresses it on this (non-advancing) path — checked by the
		// caller, but re-asserted here since this helper must stay
		// correct if ever called directly.
		return 0, nil
	}

	nextTarget, nextAdvance, err := a.DefaultTarget(target)
	if err != nil {
		return 0, err
	}
	if nextTarget == automaton.NoNode {
		return 0, nil
	}

	if err := a.SetDefaultTarget(node, nextTarget, nextAdvance); err != nil {
		return 0, err
	}
	if nextAdvance {
		return 1, nil
	}

	return 0, nil
}

// TranslateNonAdvancingAggressive repeatedly applies the conservative
// splice: eliminating one non-advancing chain can expose another node
// whose own default now points at an edgeless target, so a single pass
// is not always enough. Bounded by maxAggressivePasses rather than run to
// a fixed point (Open Question, §9). Every pass runs even when the previous
// one turned nothing advancing, since a pass that only shortens a chain
// sets up the splice that the next pass counts.
func TranslateNonAdvancingAggressive(a *automaton.Automaton) (int, error) {
	total := 0
	for i := 0; i < maxAggressivePasses; i++ {
		n, err := TranslateNonAdvancingConservative(a)
		if err != nil {
			return total, err
		}
		total += n
	}

	return total, nil
}

// TranslateNonAdvancingStructural eliminates every non-advancing default
// at each node outright: for every byte not already matched by the
// node's own edges, it resolves the fully-applied default chain to the
// first advancing transition and materializes a direct advancing edge for
// the byte, then drops the default entirely. This can add up to 256
// explicit edges per node — a deliberate size-for-speed trade rather than
// the conservative splice's bounded rewrite.
func TranslateNonAdvancingStructural(a *automaton.Automaton) (int, error) {
	if !a.NoAdvanceNoOutput() {
		return 0, nil
	}

	rewrites := 0
	err := a.BreadthFirst(a.StartNode(), func(node automaton.NodeID, via automaton.EdgeID, depth int) error {
		target, advance, err := a.DefaultTarget(node)
		if err != nil {
			return err
		}
		if target == automaton.NoNode || advance {
			return nil
		}
		n, err := restructureNode(a, node)
		if err != nil {
			return err
		}
		rewrites += n

		return nil
	})

	return rewrites, err
}

func restructureNode(a *automaton.Automaton, node automaton.NodeID) (int, error) {
	covered, err := ownCoverage(a, node)
	if err != nil {
		return 0, err
	}
	if covered.Full() {
		return 0, a.ClearDefaultTarget(node)
	}

	groups := make(map[automaton.NodeID][]byte)
	var order []automaton.NodeID
	for c := 0; c < 256; c++ {
		if covered.Test(byte(c)) {
			continue
		}
		target, err := resolveAdvancing(a, node, byte(c))
		if err != nil {
			return 0, err
		}
		if target == automaton.NoNode {
			continue
		}
		if _, ok := groups[target]; !ok {
			order = append(order, target)
		}
		groups[target] = append(groups[target], byte(c))
	}
	if len(order) == 0 {
		return 0, nil
	}

	for _, target := range order {
		newEdge, err := a.AddEdge(node, target, true)
		if err != nil {
			return 0, err
		}
		if err := a.SetEdgeValues(newEdge, groups[target]); err != nil {
			return 0, err
		}
	}
	if err := a.ClearDefaultTarget(node); err != nil {
		return 0, err
	}

	return 1, nil
}

func ownCoverage(a *automaton.Automaton, node automaton.NodeID) (*bitset.Set, error) {
	edges, err := a.NodeEdges(node)
	if err != nil {
		return nil, err
	}
	covered := bitset.FromBytes(nil)
	for _, eid := range edges {
		isEps, err := a.EdgeIsEpsilon(eid)
		if err != nil {
			return nil, err
		}
		if isEps {
			return bitset.FullSet(), nil
		}
		values, err := a.EdgeValues(eid)
		if err != nil {
			return nil, err
		}
		covered.Union(bitset.FromBytes(values))
	}

	return covered, nil
}

// resolveAdvancing repeatedly applies automaton.TargetsFor for byte c,
// starting at node, following non-advancing transitions until one
// advances or no successor exists at all.
func resolveAdvancing(a *automaton.Automaton, node automaton.NodeID, c byte) (automaton.NodeID, error) {
	cur := node
	for i := 0; i < maxChainDepth(a); i++ {
		targets, err := a.TargetsFor(cur, c)
		if err != nil {
			return automaton.NoNode, err
		}
		if len(targets) == 0 {
			return automaton.NoNode, nil
		}
		if targets[0].Advance {
			return targets[0].Node, nil
		}
		cur = targets[0].Node
	}

	return automaton.NoNode, ErrChainTooDeep
}

func maxChainDepth(a *automaton.Automaton) int {
	n := a.NodeCount() + 1

	return n
}
