// Package suggest finds near misses among a set of names, e.g. an enum
// constant or mapping key that was mistyped.
package suggest

import (
	"cmp"
	"slices"
	"strings"
)

// MinScore is the similarity Closest requires by default.
const MinScore = 0.6

// Levenshtein computes the edit distance between two strings, counting
// runes rather than bytes.
func Levenshtein(a, b string) int {
	if a == b {
		return 0
	}

	ra, rb := []rune(a), []rune(b)

	// Ensure ra is the shorter one so the rows stay small
	if len(ra) > len(rb) {
		ra, rb = rb, ra
	}

	prev := make([]int, len(ra)+1)
	curr := make([]int, len(ra)+1)

	for i := range prev {
		prev[i] = i
	}

	for j := 1; j <= len(rb); j++ {
		curr[0] = j

		for i := 1; i <= len(ra); i++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}

			curr[i] = min(
				prev[i]+1,      // deletion
				curr[i-1]+1,    // insertion
				prev[i-1]+cost, // substitution
			)
		}

		prev, curr = curr, prev
	}

	return prev[len(ra)]
}

// Score is 1 for identical names and 0 for entirely different ones. Names are
// compared case-insensitively, ignoring '_', '-' and spaces.
func Score(a, b string) float64 {
	na, nb := Normalize(a), Normalize(b)

	longest := max(len([]rune(na)), len([]rune(nb)))
	if longest == 0 {
		return 1
	}

	return 1 - float64(Levenshtein(na, nb))/float64(longest)
}

// Normalize lowercases s and drops separators, so "max_conn", "MaxConn" and
// "max-conn" compare equal.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '_' || r == '-' || r == ' ' {
			return -1
		}

		return r
	}, strings.ToLower(s))
}

// Closest returns the candidates scoring at least minScore against name,
// best first. Ties keep the candidate order.
func Closest(name string, candidates []string, minScore float64) []string {
	type scored struct {
		name  string
		score float64
	}

	var hits []scored

	for _, c := range candidates {
		if s := Score(name, c); s >= minScore {
			hits = append(hits, scored{name: c, score: s})
		}
	}

	slices.SortStableFunc(hits, func(x, y scored) int {
		return cmp.Compare(y.score, x.score)
	})

	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.name
	}

	return out
}

// Hint renders the best candidate as a " (did you mean X?)" suffix, or
// nothing when no candidate is close enough.
func Hint(name string, candidates []string) string {
	closest := Closest(name, candidates, MinScore)
	if len(closest) == 0 {
		return ""
	}

	return " (did you mean " + closest[0] + "?)"
}
