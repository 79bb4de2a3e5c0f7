package normalize

import "strings"

// extractTail parses a trailing "city state zip" segment out of a
// line when the caller supplied no structured fields. Extraction only
// fires on strong evidence (a zip-shaped final token or a full state
// name) so that street lines like "123 MAIN CT" are never mistaken
// for a bare state abbreviation.
func extractTail(line string, t *Tables) (string, knownFields) {
	tokens := strings.Fields(line)
	var known knownFields

	if n := len(tokens); n > 0 && isZipShaped(tokens[n-1]) {
		known.postalCode = tokens[n-1]
		tokens = tokens[:n-1]
	}

	stateTokens := 0
	if n := len(tokens); n >= 2 {
		if code, ok := t.States[strings.Join(tokens[n-2:], " ")]; ok {
			known.state = code
			stateTokens = 2
		}
	}
	if stateTokens == 0 && len(tokens) >= 1 {
		last := tokens[len(tokens)-1]
		if code, ok := t.States[last]; ok {
			known.state = code
			stateTokens = 1
		} else if known.postalCode != "" && len(last) == 2 && t.stateCodes[last] {
			known.state = last
			stateTokens = 1
		}
	}
	tokens = tokens[:len(tokens)-stateTokens]

	if known.postalCode == "" && known.state == "" {
		return line, known
	}

	if city := cityStart(tokens, t); city > 0 && city < len(tokens) {
		known.city = strings.Join(tokens[city:], " ")
		tokens = tokens[:city]
	}

	return strings.Join(tokens, " "), known
}

// cityStart locates the first token past the last street-type or
// directional marker. On a secondary line the marker is the occupancy
// designator and its identifier instead.
func cityStart(tokens []string, t *Tables) int {
	marker := -1
	for i, tok := range tokens {
		if t.streetTypeSet[tok] || t.directionalSet[tok] {
			marker = i
		}
		if t.occupancyAbbrvs[tok] && i+1 < len(tokens) {
			marker = i + 1
		}
	}
	if marker < 0 {
		return -1
	}
	return marker + 1
}
