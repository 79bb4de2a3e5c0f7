package normalize

import (
	"fmt"
	"sort"
	"strings"
)

// Canonical field names for record-shaped input.
const (
	FieldAddressLine1 = "address_line_1"
	FieldAddressLine2 = "address_line_2"
	FieldCity         = "city"
	FieldState        = "state"
	FieldPostalCode   = "postal_code"
)

// KeyMap maps the five canonical field names to the caller's own key
// names. Resolved once at adapter entry and not retained.
type KeyMap struct {
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	PostalCode   string
}

// DefaultKeyMap returns the identity mapping.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		AddressLine1: FieldAddressLine1,
		AddressLine2: FieldAddressLine2,
		City:         FieldCity,
		State:        FieldState,
		PostalCode:   FieldPostalCode,
	}
}

// validate checks the required canonical keys. The secondary line is
// the one optional key: plenty of feeds have no line-2 column at all,
// so an omitted AddressLine2 falls back to the canonical name.
func (km *KeyMap) validate() error {
	missing := []string{}
	for canonical, key := range map[string]string{
		FieldAddressLine1: km.AddressLine1,
		FieldCity:         km.City,
		FieldState:        km.State,
		FieldPostalCode:   km.PostalCode,
	} {
		if key == "" {
			missing = append(missing, canonical)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return &InputError{Reason: fmt.Sprintf("key map missing canonical keys: %s", strings.Join(missing, ", "))}
	}
	if km.AddressLine2 == "" {
		km.AddressLine2 = FieldAddressLine2
	}
	return nil
}

// knownFields carries values supplied directly on record input; they
// bypass line splitting entirely.
type knownFields struct {
	city       string
	state      string
	postalCode string
}

// workingState is the adapter output: one working line string plus
// any fields already known.
type workingState struct {
	line  string
	known knownFields
}

// adapt turns string or record input into a single working state.
// Record fields that are absent are empty, never an error.
func adapt(input any, keyMap *KeyMap) (workingState, error) {
	switch in := input.(type) {
	case string:
		return workingState{line: in}, nil
	case map[string]string:
		rec := make(map[string]any, len(in))
		for k, v := range in {
			rec[k] = v
		}
		return adaptRecord(rec, keyMap)
	case map[string]any:
		return adaptRecord(in, keyMap)
	default:
		return workingState{}, &InputError{Reason: fmt.Sprintf("unsupported input type %T", input)}
	}
}

func adaptRecord(rec map[string]any, keyMap *KeyMap) (workingState, error) {
	km := DefaultKeyMap()
	if keyMap != nil {
		km = *keyMap
		if err := km.validate(); err != nil {
			return workingState{}, err
		}
	}

	line1 := stringField(rec, km.AddressLine1)
	line2 := stringField(rec, km.AddressLine2)
	line := line1
	if line2 != "" {
		line = strings.TrimSpace(line1 + " " + line2)
	}

	return workingState{
		line: line,
		known: knownFields{
			city:       stringField(rec, km.City),
			state:      stringField(rec, km.State),
			postalCode: stringField(rec, km.PostalCode),
		},
	}, nil
}

func stringField(rec map[string]any, key string) string {
	v, ok := rec[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}
