package search

import (
	"sort"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// Blend of Jaro-Winkler and normalized Levenshtein. Jaro-Winkler
// dominates because shared prefixes (house number, street name) carry
// most of the signal in address strings.
const (
	jwWeight  = 0.7
	levWeight = 0.3
)

func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}
	jw := smetrics.JaroWinkler(a, b, 0.7, 4)
	dist := levenshtein.ComputeDistance(a, b)
	longest := len(a)
	if len(b) > longest {
		longest = len(b)
	}
	lev := 1.0 - float64(dist)/float64(longest)
	return jwWeight*jw + levWeight*lev
}

// rankMatches scores candidates against the query and orders them
// best first. The sort is stable so equal scores keep Meilisearch's
// own ranking.
func rankMatches(query string, candidates []IndexedAddress) []Match {
	matches := make([]Match, 0, len(candidates))
	for _, c := range candidates {
		matches = append(matches, Match{
			Record: c.record(),
			Score:  similarity(query, c.SingleLine),
		})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
