package requests

import "github.com/address-normalizer/internal/normalize"

// NormalizeAddressRequest carries a single address, either a raw
// string or a keyed record.
type NormalizeAddressRequest struct {
	Address any               `json:"address" binding:"required"`
	KeyMap  map[string]string `json:"key_map,omitempty"`
	Options NormalizeOptions  `json:"options,omitempty"`
}

// NormalizeOptions tunes a single normalization call. GeocoderFallback
// and Index are tri-state: nil inherits the server-side default.
type NormalizeOptions struct {
	UseCache         bool  `json:"use_cache,omitempty"`
	GeocoderFallback *bool `json:"geocoder_fallback,omitempty"`
	Index            *bool `json:"index,omitempty"`
}

// GeocoderFallbackOr resolves the per-request flag against the server
// default.
func (o NormalizeOptions) GeocoderFallbackOr(def bool) bool {
	if o.GeocoderFallback != nil {
		return *o.GeocoderFallback
	}
	return def
}

// IndexOr resolves the per-request flag against the server default.
func (o NormalizeOptions) IndexOr(def bool) bool {
	if o.Index != nil {
		return *o.Index
	}
	return def
}

// BatchNormalizeRequest starts an asynchronous job over many
// addresses.
type BatchNormalizeRequest struct {
	Addresses []any             `json:"addresses" binding:"required,min=1"`
	KeyMap    map[string]string `json:"key_map,omitempty"`
	Options   NormalizeOptions  `json:"options,omitempty"`
}

// SimilarRequest looks up indexed addresses close to a query string.
type SimilarRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit,omitempty"`
}

// GeocodeRequest resolves an address through the external geocoder.
type GeocodeRequest struct {
	Address    any      `json:"address" binding:"required"`
	FieldOrder []string `json:"field_order,omitempty"`
}

// ComponentsRequest labels a raw string with libpostal.
type ComponentsRequest struct {
	Address string `json:"address" binding:"required"`
}

// OverrideTablesRequest applies a replacement-table override
// document.
type OverrideTablesRequest struct {
	Document string `json:"document" binding:"required"`
}

// BuildKeyMap converts the wire key map (canonical field name to
// source key) into the pipeline's form. Nil when no mapping was sent.
func BuildKeyMap(wire map[string]string) *normalize.KeyMap {
	if len(wire) == 0 {
		return nil
	}
	return &normalize.KeyMap{
		AddressLine1: wire[normalize.FieldAddressLine1],
		AddressLine2: wire[normalize.FieldAddressLine2],
		City:         wire[normalize.FieldCity],
		State:        wire[normalize.FieldState],
		PostalCode:   wire[normalize.FieldPostalCode],
	}
}
