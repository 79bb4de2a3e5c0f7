package responses

import (
	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/internal/external"
	"github.com/address-normalizer/internal/normalize"
	"github.com/address-normalizer/internal/search"
)

// ErrorResponse is the uniform error envelope.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Error codes returned in ErrorResponse.Error.
const (
	ErrInvalidRequest       = "INVALID_REQUEST"
	ErrInvalidInput         = "INVALID_INPUT"
	ErrConfiguration        = "CONFIGURATION_ERROR"
	ErrGeocoderUnavailable  = "GEOCODER_UNAVAILABLE"
	ErrInternal             = "INTERNAL_ERROR"
	ErrNotFound             = "NOT_FOUND"
	ErrFeatureNotConfigured = "FEATURE_NOT_CONFIGURED"
)

// NormalizeAddressResponse wraps one normalization result.
type NormalizeAddressResponse struct {
	Result           models.NormalizationResult `json:"result"`
	ProcessingTimeMs int64                      `json:"processing_time_ms"`
	CacheHit         bool                       `json:"cache_hit"`
}

// BatchNormalizeResponse acknowledges an accepted batch job.
type BatchNormalizeResponse struct {
	JobID            string `json:"job_id"`
	TotalAddresses   int    `json:"total_addresses"`
	EstimatedSeconds int    `json:"estimated_seconds"`
	Message          string `json:"message"`
}

// JobStatusResponse reports batch job progress.
type JobStatusResponse struct {
	JobID              string  `json:"job_id"`
	Status             string  `json:"status"`
	Progress           float64 `json:"progress"`
	Processed          int     `json:"processed"`
	Total              int     `json:"total"`
	EstimatedRemaining int     `json:"estimated_remaining"`
	Message            string  `json:"message"`
}

// Job status constants.
const (
	JobStatusPending = "pending"
	JobStatusRunning = "running"
	JobStatusDone    = "done"
	JobStatusFailed  = "failed"
)

// JobResultsResponse returns the results of a finished job.
type JobResultsResponse struct {
	JobID   string                       `json:"job_id"`
	Status  string                       `json:"status"`
	Results []models.NormalizationResult `json:"results"`
}

// SimilarResponse lists indexed addresses close to the query.
type SimilarResponse struct {
	Query   string         `json:"query"`
	Matches []search.Match `json:"matches"`
}

// GeocodeResponse wraps a geocoder resolution.
type GeocodeResponse struct {
	Record           normalize.AddressRecord `json:"record"`
	ProcessingTimeMs int64                   `json:"processing_time_ms"`
}

// ComponentsResponse carries libpostal labels for a raw string.
type ComponentsResponse struct {
	Available  bool                `json:"available"`
	Components external.Components `json:"components"`
}

// TablesResponse acknowledges a table reload or override.
type TablesResponse struct {
	TablesVersion string `json:"tables_version"`
	Message       string `json:"message"`
}

// TablesInfoResponse describes the active table set.
type TablesInfoResponse struct {
	TablesVersion string         `json:"tables_version"`
	Counts        map[string]int `json:"counts"`
}

// StatsResponse is the admin stats payload.
type StatsResponse struct {
	UptimeSeconds int64       `json:"uptime_seconds"`
	TablesVersion string      `json:"tables_version"`
	Jobs          JobCounts   `json:"jobs"`
	Cache         interface{} `json:"cache,omitempty"`
}

// JobCounts summarizes the in-memory job table.
type JobCounts struct {
	Pending int `json:"pending"`
	Running int `json:"running"`
	Done    int `json:"done"`
	Failed  int `json:"failed"`
}
