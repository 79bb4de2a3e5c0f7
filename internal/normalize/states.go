package normalize

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/xrash/smetrics"
)

// Fuzzy state matching weights. Jaro-Winkler dominates because state
// misspellings are usually transpositions near the head of the word;
// Levenshtein keeps wholly different names from sneaking past.
const (
	stateJaroWeight = 0.7
	stateLevWeight  = 0.3
	stateThreshold  = 0.88
)

// NormalizeState resolves a state value to its two-letter
// abbreviation. Exact code and exact full-name hits are authoritative;
// longer unmatched values get one fuzzy pass over the full names so
// that feed typos ("MICHIGGAN") still resolve. Anything below the
// confidence threshold is returned as given.
func NormalizeState(state string, t *Tables) string {
	state = strings.ToUpper(strings.TrimSpace(state))
	if state == "" {
		return ""
	}
	if len(state) == 2 && t.stateCodes[state] {
		return state
	}
	if code, ok := t.States[state]; ok {
		return code
	}
	if len(state) <= 3 {
		return state
	}
	if code, score := closestStateName(state, t); score >= stateThreshold {
		return code
	}
	return state
}

func closestStateName(state string, t *Tables) (string, float64) {
	bestCode := ""
	bestScore := 0.0
	for name, code := range t.stateNames {
		jw := smetrics.JaroWinkler(state, name, 0.7, 4)
		dist := levenshtein.ComputeDistance(state, name)
		longest := len(state)
		if len(name) > longest {
			longest = len(name)
		}
		lev := 1.0 - float64(dist)/float64(longest)
		score := stateJaroWeight*jw + stateLevWeight*lev
		if score > bestScore {
			bestScore = score
			bestCode = code
		}
	}
	return bestCode, bestScore
}
