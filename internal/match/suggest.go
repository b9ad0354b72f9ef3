package match

import (
	"slices"
	"strings"
)

// MinSimilarity is the lowest Similarity a name needs to be suggested
// without sharing a word with the missing name.
const MinSimilarity = 0.5

type scored struct {
	name  string
	score float64
}

// Suggest returns up to limit candidates that look like name, best first.
// A candidate qualifies when its Similarity reaches MinSimilarity or when it
// shares a word with name ("TotalCents" and "TotalAmount").
func Suggest(name string, candidates []string, limit int) []string {
	words := TokenizeIdent(name)

	var ranked []scored

	for _, c := range candidates {
		if c == name {
			continue
		}

		score := Similarity(name, c)
		if score < MinSimilarity && !sharesWord(words, TokenizeIdent(c)) {
			continue
		}

		ranked = append(ranked, scored{name: c, score: score})
	}

	slices.SortStableFunc(ranked, func(a, b scored) int {
		switch {
		case a.score > b.score:
			return -1
		case a.score < b.score:
			return 1
		default:
			return strings.Compare(a.name, b.name)
		}
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	out := make([]string, len(ranked))
	for i, s := range ranked {
		out[i] = s.name
	}

	return out
}

func sharesWord(a, b []string) bool {
	for _, w := range a {
		// single letters and ids match too much
		if len(w) > 2 && slices.Contains(b, w) {
			return true
		}
	}

	return false
}
