// Package external wraps the optional libpostal bindings. The
// bindings need the native library and cgo; without them the build
// still succeeds and Available reports false.
package external

// Components is a labeled view of a single US address string.
type Components struct {
	HouseNumber string  `json:"house_number,omitempty"`
	Road        string  `json:"road,omitempty"`
	Unit        string  `json:"unit,omitempty"`
	Level       string  `json:"level,omitempty"`
	POBox       string  `json:"po_box,omitempty"`
	City        string  `json:"city,omitempty"`
	State       string  `json:"state,omitempty"`
	PostalCode  string  `json:"postal_code,omitempty"`
	Coverage    float64 `json:"coverage"`
}
