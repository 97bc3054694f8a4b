// Package optimizer implements the §4.4 transform passes that run between
// the generator and the Eudoxus compiler: OptimizeEdges canonicalizes and
// elides a node's edges, DeduplicateOutputs merges identical output
// records across the whole automaton, and TranslateNonAdvancing rewrites
// non-advancing edges into advancing ones under three levels of
// aggressiveness.
//
// None of these passes change what the automaton matches; they only
// change how it is represented, so that the compiler emits a smaller or
// faster buffer.
package optimizer
