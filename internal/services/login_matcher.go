package services

import (
	"math"
	"sort"
	"strings"
	"unicode"
)

// LoginMatcher ranks contributor logins by similarity to a query, used to
// suggest the intended login when a lookup misses
type LoginMatcher struct {
	threshold float64
}

func NewLoginMatcher(threshold float64) *LoginMatcher {
	return &LoginMatcher{threshold: threshold}
}

// LoginSimilarity pairs a login with its similarity to a query
type LoginSimilarity struct {
	Login      string
	Similarity float64
}

// Similarity returns a value between 0 (unrelated) and 1 (same login)
func (m *LoginMatcher) Similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}

	na, nb := normalizeLogin(a), normalizeLogin(b)
	if len(na) == 0 || len(nb) == 0 {
		return 0.0
	}
	if string(na) == string(nb) {
		return 1.0
	}

	longest := float64(maxInt(len(na), len(nb)))
	similarity := 1.0 - float64(levenshtein(na, nb))/longest

	// containment and shared prefixes are strong hints for logins
	if strings.Contains(string(na), string(nb)) || strings.Contains(string(nb), string(na)) {
		similarity += 0.2
	}
	prefix := 0
	for prefix < len(na) && prefix < len(nb) && na[prefix] == nb[prefix] {
		prefix++
	}
	similarity += float64(prefix) / longest * 0.1

	return math.Min(1.0, similarity)
}

// Suggest returns up to limit candidates at or above the threshold, most
// similar first
func (m *LoginMatcher) Suggest(query string, candidates []string, limit int) []LoginSimilarity {
	matches := []LoginSimilarity{}
	for _, c := range candidates {
		if sim := m.Similarity(query, c); sim >= m.threshold {
			matches = append(matches, LoginSimilarity{Login: c, Similarity: sim})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})
	if limit > 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	return matches
}

// normalizeLogin lowercases and keeps letters and digits only
func normalizeLogin(s string) []rune {
	out := make([]rune, 0, len(s))
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			out = append(out, r)
		}
	}
	return out
}

func levenshtein(a, b []rune) int {
	prev := make([]int, len(b)+1)
	cur := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		cur[0] = i
		for j := 1; j <= len(b); j++ {
			if a[i-1] == b[j-1] {
				cur[j] = prev[j-1]
				continue
			}
			cur[j] = 1 + minInt(prev[j], minInt(cur[j-1], prev[j-1]))
		}
		prev, cur = cur, prev
	}
	return prev[len(b)]
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
