// Package suggest offers "did you mean" fuzzy matching for unresolved
// symbols, used by pkg/compiler and pkg/reader diagnostics.
package suggest

import (
	"sort"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// maxDistance bounds how different a candidate may be before it stops
// being worth suggesting; past this it's noise, not a typo.
const maxDistance = 4

// For returns up to n candidates closest to word, ranked by edit distance,
// or nil if nothing in candidates is close enough to be useful.
func For(word string, candidates []string, n int) []string {
	if word == "" || len(candidates) == 0 {
		return nil
	}
	ranks := fuzzy.RankFindNormalizedFold(word, candidates)
	sort.Sort(ranks)

	var out []string
	for _, r := range ranks {
		if r.Distance > maxDistance {
			continue
		}
		if r.Target == word {
			continue
		}
		out = append(out, r.Target)
		if len(out) >= n {
			break
		}
	}
	return out
}

// Message renders suggestions as a human-readable clause, e.g.
// ` (did you mean "foo", "fob"?)`, or "" if there are none.
func Message(word string, candidates []string) string {
	matches := For(word, candidates, 3)
	if len(matches) == 0 {
		return ""
	}
	msg := " (did you mean "
	for i, m := range matches {
		if i > 0 {
			msg += ", "
		}
		msg += "\"" + m + "\""
	}
	return msg + "?)"
}
