package normalize

import (
	"strings"
	"unicode"
)

// Abbreviate rewrites directional and street-type tokens to their
// canonical abbreviations. Matchers run in a fixed precedence order
// per token span:
//
//  1. problem-pattern context check (token left untouched)
//  2. multi-word directional phrase, longest first
//  3. single-token directional
//  4. multi-word street-type phrase, longest first
//  5. single-token street type
//
// Directionals outrank street types because two-word directional
// phrases ("NORTH EAST") share their first token with plausible
// street names. A consumed phrase is never re-scanned, so matches
// cannot overlap. Unmatched tokens pass through unchanged.
func Abbreviate(text string, t *Tables) string {
	tokens := strings.Fields(text)
	out := make([]string, 0, len(tokens))

	for i := 0; i < len(tokens); {
		tok := tokens[i]

		if skip, ok := problemToken(tokens, i, t); ok {
			out = append(out, skip)
			i++
			continue
		}

		if abbr, span := matchPhrase(tokens, i, t.Directionals, t.dirPhraseMax); span > 0 {
			out = append(out, abbr)
			i += span
			continue
		}
		if abbr, span := matchPhrase(tokens, i, t.StreetTypes, t.stPhraseMax); span > 0 {
			out = append(out, abbr)
			i += span
			continue
		}

		out = append(out, tok)
		i++
	}

	return strings.Join(out, " ")
}

// matchPhrase tries the longest phrase starting at i against the
// table, shrinking one token at a time down to a single token.
// Returns the replacement and the number of tokens consumed.
func matchPhrase(tokens []string, i int, table map[string]string, maxLen int) (string, int) {
	limit := maxLen
	if rest := len(tokens) - i; rest < limit {
		limit = rest
	}
	for n := limit; n >= 1; n-- {
		phrase := strings.Join(tokens[i:i+n], " ")
		if abbr, ok := table[phrase]; ok {
			return abbr, n
		}
	}
	return "", 0
}

// problemToken reports whether the token at i must be left exactly as
// written. Two cases, both driven by the problem table:
//
//   - tokens with no directional reading (UN, CT): always untouched
//     here; the splitter decides whether UN acts as an occupancy type
//   - full directional words that are themselves the street name:
//     directly followed by a street-type token and preceded by the
//     street number (or nothing), abbreviating would erase the name
func problemToken(tokens []string, i int, t *Tables) (string, bool) {
	tok := tokens[i]
	if _, ok := t.ProblemAbbrvs[tok]; !ok {
		return "", false
	}
	if _, isDir := t.Directionals[tok]; !isDir {
		return tok, true
	}
	if isStreetNamePosition(tokens, i, t) {
		return tok, true
	}
	return "", false
}

func isStreetNamePosition(tokens []string, i int, t *Tables) bool {
	if i+1 >= len(tokens) || !t.streetTypeSet[tokens[i+1]] {
		return false
	}
	return i == 0 || leadsWithDigit(tokens[i-1])
}

func leadsWithDigit(tok string) bool {
	for _, r := range tok {
		return unicode.IsDigit(r)
	}
	return false
}
