package models

import (
	"time"

	"github.com/address-normalizer/internal/normalize"
)

// Result sources.
const (
	SourcePipeline = "pipeline"
	SourceGeocoder = "geocoder"
)

// NormalizationResult is the service-level envelope around a
// normalized record.
type NormalizationResult struct {
	Raw           string                  `json:"raw" bson:"raw"`
	Normalized    normalize.AddressRecord `json:"normalized" bson:"normalized"`
	Fingerprint   string                  `json:"fingerprint" bson:"fingerprint"`
	SingleLine    string                  `json:"single_line" bson:"single_line"`
	Source        string                  `json:"source" bson:"source"`
	TablesVersion string                  `json:"tables_version" bson:"tables_version"`
	Error         string                  `json:"error,omitempty" bson:"error,omitempty"`
	CreatedAt     time.Time               `json:"created_at" bson:"created_at"`
}

// IsComplete reports whether the record carries all five fields.
func (nr *NormalizationResult) IsComplete() bool {
	rec := nr.Normalized
	return rec.AddressLine1 != "" && rec.City != "" && rec.State != "" && rec.PostalCode != ""
}
