package normalize

import "testing"

func TestAbbreviate(t *testing.T) {
	tables := Default()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"directional and street type", "123 NORTH MAIN STREET APARTMENT 4B", "123 N MAIN ST APARTMENT 4B"},
		{"already abbreviated passes through", "8888 NE KILLINGSWORTH ST", "8888 NE KILLINGSWORTH ST"},
		{"two-word directional phrase", "456 NORTH EAST GRAND AVENUE", "456 NE GRAND AVE"},
		{"post directional", "790 PORTLAND AVENUE SOUTH", "790 PORTLAND AVE S"},
		{"street type abbreviation", "500 ELM DRIVE", "500 ELM DR"},
		{"union street type", "100 UNION STREET", "100 UN ST"},
		{"unknown tokens unchanged", "501 ZYZZYVA XING", "501 ZYZZYVA XING"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Abbreviate(tc.in, tables); got != tc.want {
				t.Errorf("Abbreviate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Directional words that are themselves the street name must survive
// abbreviation; the same words as pre-directionals must not.
func TestAbbreviate_ProblemContext(t *testing.T) {
	tables := Default()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"directional as street name", "123 NORTH ST", "123 NORTH ST"},
		{"directional as pre-directional", "123 NORTH MAIN ST", "123 N MAIN ST"},
		{"street name without number", "WEST AVE", "WEST AVE"},
		{"ambiguous union abbreviation", "123 MAIN UN", "123 MAIN UN"},
		{"court abbreviation stays", "42 OAK CT", "42 OAK CT"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Abbreviate(tc.in, tables); got != tc.want {
				t.Errorf("Abbreviate(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// When a token is present in both tables, the directional reading
// wins; multi-word street types match greedily before single tokens.
func TestAbbreviate_Precedence(t *testing.T) {
	doc := []byte(
		"STREET_TYPE_ABBREVIATIONS:\n" +
			"  NORTHEAST: XX\n" +
			"  STATE ROUTE: SR\n")
	tables, err := ApplyOverride(doc)
	if err != nil {
		t.Fatalf("ApplyOverride returned error: %v", err)
	}

	if got := Abbreviate("10 NORTHEAST AVENUE", tables); got != "10 NE AVE" {
		t.Errorf("directional must outrank street type, got %q", got)
	}
	if got := Abbreviate("1 STATE ROUTE 99", tables); got != "1 SR 99" {
		t.Errorf("multi-word street type must match greedily, got %q", got)
	}
}
