// File: dedupe.go
// Role: §4.4 deduplicate_outputs — fixed-point merge of output records
// sharing identical (content, next) into a single record.
package optimizer

import "github.com/ironautomata/ironautomata/automaton"

// DeduplicateOutputs merges output records with identical (content, next)
// across the whole automaton, redirecting every node first-output and
// output next-pointer reference to the surviving record, iterating until
// no further merge is possible. Idempotent: a second call always returns 0.
// Complexity: O(passes * outputs), each pass O(outputs * len(content)).
func DeduplicateOutputs(a *automaton.Automaton) (int, error) {
	dead := make(map[automaton.OutputID]bool)
	total := 0
	for {
		merged, err := deduplicatePass(a, dead)
		if err != nil {
			return total, err
		}
		total += merged
		if merged == 0 {
			return total, nil
		}
	}
}

// deduplicatePass runs one merge pass, skipping ids already redirected in a
// prior pass of this call: RedirectOutputReferences rewrites references to
// a duplicate but never removes or mutates the duplicate record itself, so
// a redirected id would otherwise keep matching its canonical twin on
// every later pass. A merge is only counted when RedirectOutputReferences
// reports it actually changed a reference, so re-running over an
// already-canonical automaton (no references left pointing at the orphaned
// duplicate) reports zero merges instead of re-discovering the same
// "duplicate" forever.
func deduplicatePass(a *automaton.Automaton, dead map[automaton.OutputID]bool) (int, error) {
	type key struct {
		content string
		next    automaton.OutputID
	}

	canonical := make(map[key]automaton.OutputID)
	merged := 0
	n := a.OutputCount()
	for i := 0; i < n; i++ {
		id := automaton.OutputID(i)
		if dead[id] {
			continue
		}
		content, err := a.OutputContent(id)
		if err != nil {
			return 0, err
		}
		next, err := a.OutputNext(id)
		if err != nil {
			return 0, err
		}

		k := key{content: string(content), next: next}
		if canon, ok := canonical[k]; ok {
			dead[id] = true
			if changed := a.RedirectOutputReferences(id, canon); changed > 0 {
				merged++
			}

			continue
		}
		canonical[k] = id
	}

	return merged, nil
}
