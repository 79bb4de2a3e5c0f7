package normalize

import "strings"

// AddressRecord is the canonical five-field output. Every field is
// uppercase with collapsed whitespace; the secondary line may be
// empty. Immutable once produced.
type AddressRecord struct {
	AddressLine1 string `json:"address_line_1" bson:"address_line_1"`
	AddressLine2 string `json:"address_line_2" bson:"address_line_2"`
	City         string `json:"city" bson:"city"`
	State        string `json:"state" bson:"state"`
	PostalCode   string `json:"postal_code" bson:"postal_code"`
}

// LineFunc is a caller-supplied post-processing hook. Each receives
// the current primary/secondary pair and returns the replacement
// pair; hooks run in order after the built-in split.
type LineFunc func(line1, line2 string) (string, string)

// assemble merges the split lines with the known fields into the
// final record. Known fields are uppercased and trimmed, the state is
// run through the abbreviation table, and nothing is validated for
// format: a bad zip stays a bad zip.
func assemble(line1, line2 string, known knownFields, t *Tables, fns []LineFunc) AddressRecord {
	for _, fn := range fns {
		line1, line2 = fn(line1, line2)
	}

	if known == (knownFields{}) {
		if line2 != "" {
			line2, known = extractTail(line2, t)
		} else {
			line1, known = extractTail(line1, t)
		}
	}

	return AddressRecord{
		AddressLine1: cleanField(line1),
		AddressLine2: cleanField(line2),
		City:         cleanField(known.city),
		State:        NormalizeState(known.state, t),
		PostalCode:   cleanField(known.postalCode),
	}
}

// cleanField uppercases, strips disallowed characters and collapses
// whitespace without any phrase rewriting.
func cleanField(s string) string {
	s = stripDisallowed(strings.ToUpper(s))
	return strings.Join(strings.Fields(s), " ")
}
