package drift

import (
	"sort"
	"strings"
)

// Nearest picks the best suggestion for a name the documentation got wrong:
// a case-insensitive substring match wins outright, otherwise the candidate
// with the smallest edit distance, capped at max. Empty when nothing is
// close enough. Candidates are considered in sorted order so ties break the
// same way regardless of how the caller collected them.
func Nearest(name string, candidates []string, max int) string {
	candidates = append([]string(nil), candidates...)
	sort.Strings(candidates)

	lower := strings.ToLower(name)
	for _, c := range candidates {
		lc := strings.ToLower(c)
		if lc != lower && (strings.Contains(lc, lower) || strings.Contains(lower, lc)) {
			return c
		}
	}
	best, bestDist := "", max+1
	for _, c := range candidates {
		if strings.EqualFold(c, name) {
			continue
		}
		if d := editDistance(lower, strings.ToLower(c)); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// editDistance is the Levenshtein distance, two-row formulation.
func editDistance(a, b string) int {
	if a == b {
		return 0
	}
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}
	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			cur[j] = min(prev[j]+1, cur[j-1]+1, prev[j-1]+cost)
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
