package normalize

import (
	"strings"
	"testing"
)

func TestSplit(t *testing.T) {
	tables := Default()
	cases := []struct {
		name  string
		in    string
		want1 string
		want2 string
	}{
		{"abbreviated occupancy", "123 N MAIN ST APT 4B", "123 N MAIN ST", "APT 4B"},
		{"full occupancy spelling", "123 N MAIN ST APARTMENT 4B", "123 N MAIN ST", "APT 4B"},
		{"suite", "500 SW 5TH AVE SUITE 200", "500 SW 5TH AVE", "STE 200"},
		{"no unit designator", "8888 NE KILLINGSWORTH ST", "8888 NE KILLINGSWORTH ST", ""},
		{"hash fragment", "123 MAIN ST # 4", "123 MAIN ST", "# 4"},
		{"attached hash fragment", "123 MAIN ST #4B", "123 MAIN ST", "#4B"},
		{"implicit trailing unit", "123 MAIN ST 4B", "123 MAIN ST", "4B"},
		{"ambiguous union without identifier", "123 MAIN UN", "123 MAIN UN", ""},
		{"ambiguous union with identifier", "123 MAIN UN A", "123 MAIN", "UNIT A"},
		{"front as street name", "123 FRONT ST", "123 FRONT ST", ""},
		{"abbreviated union as street name", "100 UN ST", "100 UN ST", ""},
		{"pier as street name", "9 PIER TER", "9 PIER TER", ""},
		{"occupancy word before city", "123 MAIN ST APT SEATTLE", "123 MAIN ST APT SEATTLE", ""},
		{"occupancy first token", "APT 4B", "", "APT 4B"},
		{"trailing directional is not a unit", "123 MAIN AVE N", "123 MAIN AVE N", ""},
		{"trailing zip is not a unit", "123 MAIN ST MIAMI FL 33101", "123 MAIN ST MIAMI FL 33101", ""},
		{"empty input", "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got1, got2 := Split(tc.in, tables)
			if got1 != tc.want1 || got2 != tc.want2 {
				t.Errorf("Split(%q) = (%q, %q), want (%q, %q)", tc.in, got1, got2, tc.want1, tc.want2)
			}
		})
	}
}

// The splitter may canonicalize the occupancy token but must never
// drop or reorder anything else.
func TestSplit_PreservesTokens(t *testing.T) {
	tables := Default()
	inputs := []string{
		"123 N MAIN ST APARTMENT 4B",
		"123 MAIN ST # 4",
		"8888 NE KILLINGSWORTH ST",
		"123 MAIN UN A",
		"500 SW 5TH AVE SUITE 200 PORTLAND OR 97204",
	}
	for _, in := range inputs {
		line1, line2 := Split(in, tables)
		joined := strings.Fields(strings.TrimSpace(line1 + " " + line2))
		orig := strings.Fields(in)
		if len(joined) != len(orig) {
			t.Errorf("Split(%q) changed token count: %v vs %v", in, joined, orig)
			continue
		}
		replaced := 0
		for i := range orig {
			if joined[i] == orig[i] {
				continue
			}
			if abbr, ok := tables.occupancyLookup[orig[i]]; ok && joined[i] == abbr {
				replaced++
				continue
			}
			if alt, ok := tables.ProblemAbbrvs[orig[i]]; ok && joined[i] == alt {
				replaced++
				continue
			}
			t.Errorf("Split(%q) rewrote token %q to %q", in, orig[i], joined[i])
		}
		if replaced > 1 {
			t.Errorf("Split(%q) replaced %d tokens, at most the occupancy token may change", in, replaced)
		}
	}
}
