package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AddressCacheEntry is the persistent cache document. Entries are
// keyed by a fingerprint of the raw input so repeated feeds of the
// same dirty address hit the cache.
type AddressCacheEntry struct {
	ID             primitive.ObjectID  `bson:"_id,omitempty" json:"id,omitempty"`
	RawFingerprint string              `bson:"raw_fingerprint" json:"raw_fingerprint"`
	RawInput       string              `bson:"raw_input" json:"raw_input"`
	Result         NormalizationResult `bson:"result" json:"result"`
	TablesVersion  string              `bson:"tables_version" json:"tables_version"`
	CreatedAt      time.Time           `bson:"created_at" json:"created_at"`
	LastAccessed   time.Time           `bson:"last_accessed" json:"last_accessed"`
	AccessCount    int                 `bson:"access_count" json:"access_count"`
}

// NewAddressCacheEntry builds a fresh cache document.
func NewAddressCacheEntry(fingerprint, rawInput string, result NormalizationResult) *AddressCacheEntry {
	now := time.Now()
	return &AddressCacheEntry{
		RawFingerprint: fingerprint,
		RawInput:       rawInput,
		Result:         result,
		TablesVersion:  result.TablesVersion,
		CreatedAt:      now,
		LastAccessed:   now,
		AccessCount:    1,
	}
}

// IsExpired reports whether the entry is past its TTL.
func (e *AddressCacheEntry) IsExpired(ttlHours int) bool {
	return time.Since(e.CreatedAt) > time.Duration(ttlHours)*time.Hour
}

// MatchesTablesVersion reports whether the entry was produced with
// the table set currently in effect.
func (e *AddressCacheEntry) MatchesTablesVersion(current string) bool {
	return e.TablesVersion == current
}
