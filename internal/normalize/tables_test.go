package normalize

import (
	"errors"
	"path/filepath"
	"testing"
)

func TestApplyOverride_Update(t *testing.T) {
	doc := []byte("insertion_method: update\nOCCUPANCY_TYPE_ABBREVIATIONS:\n  UN: UNIT\n")
	tables, err := ApplyOverride(doc)
	if err != nil {
		t.Fatalf("ApplyOverride returned error: %v", err)
	}
	if got := tables.OccupancyTypes["UN"]; got != "UNIT" {
		t.Errorf("expected merged entry UN=UNIT, got %q", got)
	}
	if got := tables.OccupancyTypes["APARTMENT"]; got != "APT" {
		t.Errorf("update must keep built-in entries, APARTMENT=%q", got)
	}
}

func TestApplyOverride_Replace(t *testing.T) {
	doc := []byte("insertion_method: replace\nOCCUPANCY_TYPE_ABBREVIATIONS:\n  UN: UNIT\n")
	tables, err := ApplyOverride(doc)
	if err != nil {
		t.Fatalf("ApplyOverride returned error: %v", err)
	}
	if len(tables.OccupancyTypes) != 1 || tables.OccupancyTypes["UN"] != "UNIT" {
		t.Errorf("replace must substitute the whole table, got %v", tables.OccupancyTypes)
	}
	if got := tables.StreetTypes["STREET"]; got != "ST" {
		t.Errorf("tables absent from the document must keep defaults, STREET=%q", got)
	}
}

func TestApplyOverride_DefaultsToUpdate(t *testing.T) {
	doc := []byte("DIRECTIONAL_REPLACEMENTS:\n  NORTE: N\n")
	tables, err := ApplyOverride(doc)
	if err != nil {
		t.Fatalf("ApplyOverride returned error: %v", err)
	}
	if tables.Directionals["NORTE"] != "N" || tables.Directionals["NORTH"] != "N" {
		t.Errorf("missing insertion_method must merge, got %v", tables.Directionals)
	}
}

func TestApplyOverride_UppercasesEntries(t *testing.T) {
	doc := []byte("OCCUPANCY_TYPE_ABBREVIATIONS:\n  un: unit\n")
	tables, err := ApplyOverride(doc)
	if err != nil {
		t.Fatalf("ApplyOverride returned error: %v", err)
	}
	if tables.OccupancyTypes["UN"] != "UNIT" {
		t.Errorf("entries must be uppercased on load, got %v", tables.OccupancyTypes)
	}
}

func TestApplyOverride_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
	}{
		{"unknown table key", "FOO_TABLE:\n  A: B\n"},
		{"document not a mapping", "just a string"},
		{"table not a mapping", "STATE_ABBREVIATIONS: nope\n"},
		{"entry not a string", "STATE_ABBREVIATIONS:\n  OREGON: [1, 2]\n"},
		{"bad insertion method", "insertion_method: upsert\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ApplyOverride([]byte(tc.doc))
			var cfgErr *ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Errorf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestApplyOverride_FailureLeavesDefaultsUntouched(t *testing.T) {
	if _, err := ApplyOverride([]byte("FOO_TABLE:\n  A: B\n")); err == nil {
		t.Fatal("expected error for unknown table key")
	}
	tables := Default()
	if tables.OccupancyTypes["APARTMENT"] != "APT" {
		t.Errorf("defaults corrupted after failed override: %v", tables.OccupancyTypes)
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	tables, err := Load(filepath.Join(t.TempDir(), "address_tables.yaml"))
	if err != nil {
		t.Fatalf("missing override file must not be an error: %v", err)
	}
	if tables.States["MICHIGAN"] != "MI" {
		t.Errorf("defaults not loaded, MICHIGAN=%q", tables.States["MICHIGAN"])
	}
}

func TestDefault_DerivedLookups(t *testing.T) {
	tables := Default()
	if got := tables.occupancyLookup["SUITE"]; got != "STE" {
		t.Errorf("full spelling lookup broken, SUITE=%q", got)
	}
	if got := tables.occupancyLookup["STE"]; got != "STE" {
		t.Errorf("abbreviated spelling lookup broken, STE=%q", got)
	}
	if !tables.streetTypeSet["ST"] || !tables.streetTypeSet["STREET"] {
		t.Error("street type set must contain both spellings")
	}
	if tables.dirPhraseMax < 2 {
		t.Errorf("two-word directionals must raise the phrase limit, got %d", tables.dirPhraseMax)
	}
}
