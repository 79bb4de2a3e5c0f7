package normalize

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

// Table names accepted in an override document. They match the
// constant names used in override files shipped by data providers.
const (
	TableDirectionals   = "DIRECTIONAL_REPLACEMENTS"
	TableStreetTypes    = "STREET_TYPE_ABBREVIATIONS"
	TableOccupancyTypes = "OCCUPANCY_TYPE_ABBREVIATIONS"
	TableStates         = "STATE_ABBREVIATIONS"
	TableKnownOddities  = "KNOWN_ODDITIES"
	TableProblemAbbrvs  = "PROBLEM_ABBREVIATIONS"
)

// EnvTablesDir points at a directory that may contain an
// address_tables.yaml override document. Absent env var or file means
// built-in defaults only.
const EnvTablesDir = "ADDRESS_TABLES_DIR"

// OverrideFileName is the override document looked up inside the
// tables directory.
const OverrideFileName = "address_tables.yaml"

const (
	insertionUpdate  = "update"
	insertionReplace = "replace"
)

// Tables holds the six replacement tables the pipeline reads.
// Immutable once built; safe for concurrent readers.
type Tables struct {
	Directionals   map[string]string
	StreetTypes    map[string]string
	OccupancyTypes map[string]string
	States         map[string]string
	KnownOddities  map[string]string
	ProblemAbbrvs  map[string]string

	// derived lookups, built once in finalize
	oddityKeys      []string          // longest first
	occupancyLookup map[string]string // full word and abbreviation -> abbreviation
	occupancyAbbrvs map[string]bool   // canonical abbreviation set
	directionalSet  map[string]bool   // keys and canonical values
	streetTypeSet   map[string]bool   // keys and canonical values
	dirPhraseMax    int               // longest key in tokens
	stPhraseMax     int
	stateNames      map[string]string // full-name keys only
	stateCodes      map[string]bool
}

var (
	sharedOnce   sync.Once
	sharedTables *Tables
	sharedErr    error
)

// Shared returns the process-wide table set, loading any override
// document pointed at by ADDRESS_TABLES_DIR exactly once. Callers
// that need isolated tables use Default or Load directly.
func Shared() (*Tables, error) {
	sharedOnce.Do(func() {
		sharedTables, sharedErr = LoadFromEnv()
	})
	return sharedTables, sharedErr
}

// Default builds a fresh table set from the embedded defaults.
func Default() *Tables {
	t := &Tables{
		Directionals:   loadEmbeddedTable("directionals", directionalsYAML),
		StreetTypes:    loadEmbeddedTable("street_types", streetTypesYAML),
		OccupancyTypes: loadEmbeddedTable("occupancy_types", occupancyTypesYAML),
		States:         loadEmbeddedTable("states", statesYAML),
		KnownOddities:  loadEmbeddedTable("known_oddities", knownOdditiesYAML),
		ProblemAbbrvs:  loadEmbeddedTable("problem_abbreviations", problemAbbrvsYAML),
	}
	t.finalize()
	return t
}

// LoadFromEnv builds the defaults and applies the override document
// found under ADDRESS_TABLES_DIR, if any.
func LoadFromEnv() (*Tables, error) {
	dir := os.Getenv(EnvTablesDir)
	if dir == "" {
		return Default(), nil
	}
	return Load(filepath.Join(dir, OverrideFileName))
}

// Load builds the defaults and merges the override document at path.
// A missing file is not an error; a malformed one is.
func Load(path string) (*Tables, error) {
	doc, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading table overrides: %w", err)
	}
	return ApplyOverride(doc)
}

// ApplyOverride merges a YAML override document into the built-in
// defaults. The document carries an optional insertion_method
// ("update" merges, "replace" substitutes whole tables; default
// "update") plus zero or more of the six allowed table keys.
func ApplyOverride(doc []byte) (*Tables, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(doc, &raw); err != nil {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("override document is not a mapping: %v", err)}
	}

	method := insertionUpdate
	if m, ok := raw["insertion_method"]; ok {
		s, ok := m.(string)
		if !ok || (s != insertionUpdate && s != insertionReplace) {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("insertion_method must be %q or %q", insertionUpdate, insertionReplace)}
		}
		method = s
		delete(raw, "insertion_method")
	}

	t := Default()
	targets := map[string]*map[string]string{
		TableDirectionals:   &t.Directionals,
		TableStreetTypes:    &t.StreetTypes,
		TableOccupancyTypes: &t.OccupancyTypes,
		TableStates:         &t.States,
		TableKnownOddities:  &t.KnownOddities,
		TableProblemAbbrvs:  &t.ProblemAbbrvs,
	}

	for key, val := range raw {
		target, ok := targets[key]
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("unknown table key %q", key)}
		}
		entries, err := toStringTable(key, val)
		if err != nil {
			return nil, err
		}
		if method == insertionReplace {
			*target = entries
			continue
		}
		for k, v := range entries {
			(*target)[k] = v
		}
	}

	t.finalize()
	return t, nil
}

func toStringTable(key string, val any) (map[string]string, error) {
	m, ok := val.(map[string]any)
	if !ok {
		return nil, &ConfigurationError{Reason: fmt.Sprintf("table %q is not a mapping", key)}
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		s, ok := v.(string)
		if !ok {
			return nil, &ConfigurationError{Reason: fmt.Sprintf("table %q entry %q is not a string", key, k)}
		}
		out[strings.ToUpper(k)] = strings.ToUpper(s)
	}
	return out, nil
}

// finalize builds the derived lookups. Matching is case-insensitive
// at the point of use because every input is uppercased first, so all
// keys and values are held uppercase.
func (t *Tables) finalize() {
	upperInPlace(t.Directionals)
	upperInPlace(t.StreetTypes)
	upperInPlace(t.OccupancyTypes)
	upperInPlace(t.States)
	upperInPlace(t.KnownOddities)
	upperInPlace(t.ProblemAbbrvs)

	t.oddityKeys = make([]string, 0, len(t.KnownOddities))
	for k := range t.KnownOddities {
		t.oddityKeys = append(t.oddityKeys, k)
	}
	// longest first so overlapping phrases cannot shadow one another
	sort.Slice(t.oddityKeys, func(i, j int) bool {
		if len(t.oddityKeys[i]) != len(t.oddityKeys[j]) {
			return len(t.oddityKeys[i]) > len(t.oddityKeys[j])
		}
		return t.oddityKeys[i] < t.oddityKeys[j]
	})

	t.occupancyLookup = make(map[string]string, 2*len(t.OccupancyTypes))
	t.occupancyAbbrvs = make(map[string]bool, len(t.OccupancyTypes))
	for full, abbr := range t.OccupancyTypes {
		t.occupancyLookup[full] = abbr
		t.occupancyLookup[abbr] = abbr
		t.occupancyAbbrvs[abbr] = true
	}

	t.directionalSet = make(map[string]bool, 2*len(t.Directionals))
	t.dirPhraseMax = 1
	for k, v := range t.Directionals {
		t.directionalSet[k] = true
		t.directionalSet[v] = true
		if n := len(strings.Fields(k)); n > t.dirPhraseMax {
			t.dirPhraseMax = n
		}
	}

	t.streetTypeSet = make(map[string]bool, 2*len(t.StreetTypes))
	t.stPhraseMax = 1
	for k, v := range t.StreetTypes {
		t.streetTypeSet[k] = true
		t.streetTypeSet[v] = true
		if n := len(strings.Fields(k)); n > t.stPhraseMax {
			t.stPhraseMax = n
		}
	}

	t.stateNames = make(map[string]string, len(t.States))
	t.stateCodes = make(map[string]bool, len(t.States))
	for name, code := range t.States {
		if len(name) > 2 {
			t.stateNames[name] = code
		}
		t.stateCodes[code] = true
	}
}

func upperInPlace(m map[string]string) {
	for k, v := range m {
		upper := strings.ToUpper(k)
		if upper != k {
			delete(m, k)
		}
		m[upper] = strings.ToUpper(v)
	}
}
