// Package generator builds an Aho-Corasick automaton.Automaton from a set
// of patterns, following the phased construction described in §4.3:
//
//	g := generator.New()
//	if err := g.Begin(); err != nil { ... }
//	if err := g.AddString([]byte("he")); err != nil { ... }
//	if err := g.AddString([]byte("she")); err != nil { ... }
//	if err := g.AddPattern(`\d+`); err != nil { ... }
//	a, err := g.Finish()
//
// Construction has two phases. Phase one (Begin through the last Add*
// call) builds a trie: each pattern walks existing edges as far as it
// matches, splitting edges where patterns partially overlap, and creates
// new edges/nodes for the remainder. Phase two (Finish) computes failure
// links breadth-first, turning the trie into a full Aho-Corasick automaton
// whose unmatched bytes fall through to the next-longest matching suffix
// instead of restarting at the start node.
//
// Once Finish has returned, the Generator is spent; start a new one for a
// new automaton.
package generator
