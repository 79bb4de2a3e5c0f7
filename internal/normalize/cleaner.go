package normalize

import (
	"strings"
	"unicode"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/unicode/norm"
)

// Clean rewrites a raw address string into the character set the rest
// of the pipeline works on. Purely textual: no tokenization, no
// address semantics, and idempotent by construction.
//
// Order matters: transliterate, uppercase, oddity substitution
// (longest match first), non-decimal period removal, allow-list strip,
// whitespace collapse.
func Clean(text string, t *Tables) string {
	text = transliterate(text)
	text = strings.ToUpper(text)

	for _, oddity := range t.oddityKeys {
		if strings.Contains(text, oddity) {
			text = strings.ReplaceAll(text, oddity, t.KnownOddities[oddity])
		}
	}

	text = stripPeriods(text)
	text = stripDisallowed(text)

	return strings.Join(strings.Fields(text), " ")
}

// transliterate folds the input to ASCII. NFKD first so composed
// characters and vulgar fractions decompose (½ -> 1⁄2), then the
// fraction slash becomes a solidus, then anything still non-ASCII is
// transliterated.
func transliterate(s string) string {
	s = norm.NFKD.String(s)
	s = strings.ReplaceAll(s, "⁄", "/")
	for _, r := range s {
		if r > unicode.MaxASCII {
			return unidecode.Unidecode(s)
		}
	}
	return s
}

// stripPeriods removes every period that is not a decimal point.
// "ST." loses its period, "10.5" keeps it.
func stripPeriods(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	runes := []rune(s)
	for i, r := range runes {
		if r == '.' && (i+1 >= len(runes) || !unicode.IsDigit(runes[i+1])) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// stripDisallowed keeps letters, digits, space, hyphen, '#', '/' and
// period, converts any remaining dash rune to a plain hyphen, and
// drops everything else.
func stripDisallowed(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '#' || r == '/' || r == '.':
			b.WriteRune(r)
		case unicode.Is(unicode.Pd, r):
			b.WriteRune('-')
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}
	return b.String()
}
