package normalize

import "testing"

func TestClean(t *testing.T) {
	tables := Default()
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"uppercases and collapses", "  123   north Main st  ", "123 NORTH MAIN ST"},
		{"strips disallowed characters", "123 Ma!in @St, Apt; 4", "123 MAIN ST APT 4"},
		{"keeps allow-listed characters", "123-125 MAIN ST #4B 1/2", "123-125 MAIN ST #4B 1/2"},
		{"drops non-decimal periods", "123 N. Main St.", "123 N MAIN ST"},
		{"keeps decimal points", "MILEPOST 10.5 HWY 101", "MILEPOST 10.5 HWY 101"},
		{"known oddity substitution", "P.O. Box 12", "PO BOX 12"},
		{"oddity deletion", "C/O JONES 123 MAIN ST", "JONES 123 MAIN ST"},
		{"transliterates to ascii", "123 Café St", "123 CAFE ST"},
		{"converts dash runes", "123–125 MAIN ST", "123-125 MAIN ST"},
		{"empty input", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Clean(tc.in, tables); got != tc.want {
				t.Errorf("Clean(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

// Clean must be a fixed point of itself: cleaning cleaned output
// changes nothing.
func TestClean_Idempotent(t *testing.T) {
	tables := Default()
	inputs := []string{
		"123 North Main Street Apartment 4B",
		"P.O. Box 12, Portland, OR 97212",
		"  8888 ne Killingsworth st ",
		"C/O SMITH 500 Elm Dr. #2",
		"123–125 Café Street ½",
	}
	for _, in := range inputs {
		once := Clean(in, tables)
		twice := Clean(once, tables)
		if once != twice {
			t.Errorf("Clean not idempotent for %q: %q != %q", in, once, twice)
		}
	}
}
