package rules

import "sort"

// closeMatches returns up to n candidates whose similarity ratio with name is
// at least cutoff, best first. The ratio is 2*M/T where M is the length of the
// longest common subsequence and T the combined length.
func closeMatches(name string, candidates map[string]bool, n int, cutoff float64) []string {
	type scored struct {
		name  string
		score float64
	}
	var matches []scored
	for c := range candidates {
		if c == name {
			continue
		}
		if s := similarity(name, c); s >= cutoff {
			matches = append(matches, scored{c, s})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].name < matches[j].name
	})

	var out []string
	for i := 0; i < len(matches) && i < n; i++ {
		out = append(out, matches[i].name)
	}
	return out
}

func similarity(a, b string) float64 {
	ra, rb := []rune(a), []rune(b)
	total := len(ra) + len(rb)
	if total == 0 {
		return 1
	}
	return 2 * float64(lcs(ra, rb)) / float64(total)
}

func lcs(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			switch {
			case a[i-1] == b[j-1]:
				cur[j] = prev[j-1] + 1
			case prev[j] >= cur[j-1]:
				cur[j] = prev[j]
			default:
				cur[j] = cur[j-1]
			}
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}
