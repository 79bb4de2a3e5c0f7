package normalize

import (
	"strings"
	"unicode"
)

// Split separates an abbreviated address string into primary and
// secondary lines. Policy, in priority order:
//
//  1. an occupancy-type token followed by a unit identifier starts
//     the secondary line, with the occupancy token canonicalized
//  2. failing that, a trailing "#..." fragment or a short trailing
//     letter+digit fragment becomes an implicit secondary line
//  3. otherwise the whole string is the primary line
//
// The identifier requirement keeps occupancy words that are really
// street names on the primary line: "123 FRONT ST" and "100 UN ST"
// (UNION abbreviated) have a street-type follower, not an identifier,
// and stay whole. An occupancy token in first position yields an
// empty primary line; structural completeness is not this package's
// concern.
func Split(text string, t *Tables) (string, string) {
	tokens := strings.Fields(text)

	for i, tok := range tokens {
		abbr, ok := occupancyType(tok, t)
		if !ok || i+1 >= len(tokens) {
			continue
		}
		if !isUnitIdentifier(tokens[i+1], t) {
			continue
		}
		rest := append([]string{abbr}, tokens[i+1:]...)
		return strings.Join(tokens[:i], " "), strings.Join(rest, " ")
	}

	if i := implicitUnitStart(tokens, t); i > 0 {
		return strings.Join(tokens[:i], " "), strings.Join(tokens[i:], " ")
	}

	return strings.Join(tokens, " "), ""
}

// occupancyType resolves a token to its canonical occupancy
// abbreviation, matching either spelling. Problem-table tokens whose
// alternate reading is an occupancy abbreviation (UN -> UNIT) resolve
// here too; the identifier requirement in Split keeps "123 MAIN UN"
// intact as a street line.
func occupancyType(tok string, t *Tables) (string, bool) {
	if abbr, ok := t.occupancyLookup[tok]; ok {
		return abbr, true
	}
	if alt, ok := t.ProblemAbbrvs[tok]; ok && t.occupancyAbbrvs[alt] {
		return alt, true
	}
	return "", false
}

// isUnitIdentifier reports whether tok can serve as the identifier
// after a unit designator. Street-structure tokens and zips never
// qualify; what remains must be a "#" fragment, a single letter, or a
// short token carrying a digit.
func isUnitIdentifier(tok string, t *Tables) bool {
	if t.streetTypeSet[tok] || t.directionalSet[tok] || isZipShaped(tok) {
		return false
	}
	if strings.HasPrefix(tok, "#") {
		return true
	}
	if len(tok) == 1 && hasLetter(tok) {
		return true
	}
	return len(tok) <= 5 && hasDigit(tok)
}

// implicitUnitStart finds an unlabeled unit fragment at the end of
// the token list: a "#"-led span, or a short final token mixing
// letters and digits in a way street numbers and names do not. The
// primary line must retain at least two tokens.
func implicitUnitStart(tokens []string, t *Tables) int {
	for i, tok := range tokens {
		if strings.HasPrefix(tok, "#") && i >= 2 {
			return i
		}
	}

	last := len(tokens) - 1
	if last < 2 {
		return 0
	}
	tok := tokens[last]
	if t.directionalSet[tok] || t.streetTypeSet[tok] || isZipShaped(tok) {
		return 0
	}
	if len(tok) <= 4 && hasLetter(tok) && hasDigit(tok) {
		return last
	}
	return 0
}

func isZipShaped(tok string) bool {
	if len(tok) == 10 && tok[5] == '-' {
		return allDigits(tok[:5]) && allDigits(tok[6:])
	}
	return len(tok) == 5 && allDigits(tok)
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

func hasDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
