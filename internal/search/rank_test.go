package search

import (
	"testing"

	"github.com/address-normalizer/internal/normalize"
)

func TestSimilarity(t *testing.T) {
	cases := []struct {
		name string
		a, b string
		min  float64
		max  float64
	}{
		{"identical", "123 N MAIN ST", "123 N MAIN ST", 1.0, 1.0},
		{"one typo", "123 N MAIN ST", "123 N MIAN ST", 0.85, 1.0},
		{"different street", "123 N MAIN ST", "900 SW BROADWAY", 0.0, 0.7},
		{"empty query", "", "123 N MAIN ST", 0.0, 0.0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := similarity(tc.a, tc.b)
			if got < tc.min || got > tc.max {
				t.Errorf("similarity(%q, %q) = %v, want in [%v, %v]", tc.a, tc.b, got, tc.min, tc.max)
			}
		})
	}
}

func TestRankMatches_OrdersBestFirst(t *testing.T) {
	candidates := []IndexedAddress{
		{SingleLine: "900 SW BROADWAY PORTLAND OR 97205", AddressLine1: "900 SW BROADWAY"},
		{SingleLine: "123 N MAIN ST PORTLAND OR 97212", AddressLine1: "123 N MAIN ST"},
		{SingleLine: "123 N MAIN ST APT 4B PORTLAND OR 97212", AddressLine1: "123 N MAIN ST", AddressLine2: "APT 4B"},
	}
	matches := rankMatches("123 N MAIN ST PORTLAND OR 97212", candidates)
	if len(matches) != 3 {
		t.Fatalf("expected 3 matches, got %d", len(matches))
	}
	if matches[0].Record.AddressLine1 != "123 N MAIN ST" || matches[0].Record.AddressLine2 != "" {
		t.Errorf("best match wrong: %+v", matches[0].Record)
	}
	if matches[0].Score != 1.0 {
		t.Errorf("exact match must score 1.0, got %v", matches[0].Score)
	}
	if matches[2].Record.AddressLine1 != "900 SW BROADWAY" {
		t.Errorf("worst match wrong: %+v", matches[2].Record)
	}
	for i := 1; i < len(matches); i++ {
		if matches[i].Score > matches[i-1].Score {
			t.Errorf("matches out of order at %d: %v > %v", i, matches[i].Score, matches[i-1].Score)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := normalize.AddressRecord{AddressLine1: "123 N MAIN ST", City: "PORTLAND", State: "OR", PostalCode: "97212"}
	b := a
	if Fingerprint(a) != Fingerprint(b) {
		t.Error("equal records must share a fingerprint")
	}
	b.AddressLine2 = "APT 4B"
	if Fingerprint(a) == Fingerprint(b) {
		t.Error("different records must not share a fingerprint")
	}
	// field values must not bleed across field boundaries
	c := normalize.AddressRecord{AddressLine1: "123 N MAIN", AddressLine2: "ST"}
	d := normalize.AddressRecord{AddressLine1: "123 N MAIN ST"}
	if Fingerprint(c) == Fingerprint(d) {
		t.Error("fingerprint must separate fields")
	}
}

func TestSingleLine(t *testing.T) {
	rec := normalize.AddressRecord{AddressLine1: "123 N MAIN ST", City: "PORTLAND", State: "OR"}
	if got := SingleLine(rec); got != "123 N MAIN ST PORTLAND OR" {
		t.Errorf("SingleLine = %q", got)
	}
}
