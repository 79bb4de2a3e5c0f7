// Package search keeps normalized addresses in a Meilisearch index
// and answers similar-address lookups over it. Documents are keyed by
// a fingerprint of the five normalized fields, so re-indexing the
// same address is an upsert.
package search

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/meilisearch/meilisearch-go"
	"go.uber.org/zap"

	"github.com/address-normalizer/internal/normalize"
)

// Config holds the Meilisearch connection settings.
type Config struct {
	Host          string
	APIKey        string
	IndexName     string
	Timeout       time.Duration
	MaxCandidates int
}

// AddressIndex wraps a single Meilisearch index of normalized
// addresses.
type AddressIndex struct {
	client        meilisearch.ServiceManager
	logger        *zap.Logger
	indexName     string
	timeout       time.Duration
	maxCandidates int
}

// IndexedAddress is the document shape stored in Meilisearch.
type IndexedAddress struct {
	Fingerprint  string `json:"fingerprint"`
	SingleLine   string `json:"single_line"`
	AddressLine1 string `json:"address_line_1"`
	AddressLine2 string `json:"address_line_2,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postal_code,omitempty"`
}

// Match pairs a stored record with its similarity to the query.
type Match struct {
	Record normalize.AddressRecord `json:"record"`
	Score  float64                 `json:"score"`
}

// NewAddressIndex connects to Meilisearch and verifies it is
// reachable.
func NewAddressIndex(cfg Config, logger *zap.Logger) (*AddressIndex, error) {
	client := meilisearch.New(cfg.Host, meilisearch.WithAPIKey(cfg.APIKey))
	if _, err := client.Health(); err != nil {
		return nil, fmt.Errorf("connecting to Meilisearch: %w", err)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 5 * time.Second
	}
	if cfg.MaxCandidates == 0 {
		cfg.MaxCandidates = 50
	}
	if cfg.IndexName == "" {
		cfg.IndexName = "addresses"
	}
	return &AddressIndex{
		client:        client,
		logger:        logger,
		indexName:     cfg.IndexName,
		timeout:       cfg.Timeout,
		maxCandidates: cfg.MaxCandidates,
	}, nil
}

// EnsureSettings pushes the index configuration. Call once at startup;
// Meilisearch applies it asynchronously.
func (ai *AddressIndex) EnsureSettings() error {
	index := ai.client.Index(ai.indexName)
	task, err := index.UpdateSettings(&meilisearch.Settings{
		SearchableAttributes: []string{"single_line", "address_line_1", "city"},
		FilterableAttributes: []string{"fingerprint", "state", "postal_code"},
		SortableAttributes:   []string{"postal_code"},
		RankingRules:         []string{"words", "typo", "proximity", "attribute", "sort", "exactness"},
		TypoTolerance: &meilisearch.TypoTolerance{
			Enabled: true,
			MinWordSizeForTypos: meilisearch.MinWordSizeForTypos{
				OneTypo:  3,
				TwoTypos: 7,
			},
		},
	})
	if err != nil {
		return fmt.Errorf("configuring index %s: %w", ai.indexName, err)
	}
	ai.logger.Info("address index settings submitted",
		zap.String("index", ai.indexName),
		zap.Int64("task_uid", task.TaskUID))
	return nil
}

// Fingerprint derives the stable document key for a normalized
// record. Equal records always produce the same key.
func Fingerprint(rec normalize.AddressRecord) string {
	joined := strings.Join([]string{
		rec.AddressLine1, rec.AddressLine2, rec.City, rec.State, rec.PostalCode,
	}, "|")
	sum := sha1.Sum([]byte(joined))
	return hex.EncodeToString(sum[:])
}

// SingleLine flattens a record into one searchable string.
func SingleLine(rec normalize.AddressRecord) string {
	parts := make([]string, 0, 5)
	for _, f := range []string{rec.AddressLine1, rec.AddressLine2, rec.City, rec.State, rec.PostalCode} {
		if f != "" {
			parts = append(parts, f)
		}
	}
	return strings.Join(parts, " ")
}

// Upsert stores normalized records, batched to keep individual
// payloads small.
func (ai *AddressIndex) Upsert(records []normalize.AddressRecord) error {
	if len(records) == 0 {
		return errors.New("no records to index")
	}
	docs := make([]IndexedAddress, 0, len(records))
	for _, rec := range records {
		docs = append(docs, IndexedAddress{
			Fingerprint:  Fingerprint(rec),
			SingleLine:   SingleLine(rec),
			AddressLine1: rec.AddressLine1,
			AddressLine2: rec.AddressLine2,
			City:         rec.City,
			State:        rec.State,
			PostalCode:   rec.PostalCode,
		})
	}

	index := ai.client.Index(ai.indexName)
	const batchSize = 1000
	for i := 0; i < len(docs); i += batchSize {
		end := i + batchSize
		if end > len(docs) {
			end = len(docs)
		}
		task, err := index.AddDocuments(docs[i:end], "fingerprint")
		if err != nil {
			return fmt.Errorf("indexing documents %d-%d: %w", i, end, err)
		}
		ai.logger.Debug("indexed address batch",
			zap.Int("from", i),
			zap.Int("to", end),
			zap.Int64("task_uid", task.TaskUID))
	}
	return nil
}

// Similar finds stored addresses close to the query. Meilisearch
// supplies recall; the string-distance re-rank supplies precision.
func (ai *AddressIndex) Similar(ctx context.Context, query string, limit int) ([]Match, error) {
	if query == "" {
		return nil, errors.New("query must not be empty")
	}
	if limit <= 0 {
		limit = 10
	}

	// the v1.5 client does not thread a context through requests
	_ = ctx

	index := ai.client.Index(ai.indexName)
	result, err := index.Search(query, &meilisearch.SearchRequest{
		Limit: int64(ai.maxCandidates),
	})
	if err != nil {
		return nil, fmt.Errorf("searching index %s: %w", ai.indexName, err)
	}

	candidates := parseHits(result)
	matches := rankMatches(strings.ToUpper(query), candidates)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Lookup fetches the record stored under a fingerprint, nil when
// absent.
func (ai *AddressIndex) Lookup(fingerprint string) (*normalize.AddressRecord, error) {
	if fingerprint == "" {
		return nil, errors.New("fingerprint must not be empty")
	}
	index := ai.client.Index(ai.indexName)
	result, err := index.Search("", &meilisearch.SearchRequest{
		Filter: fmt.Sprintf("fingerprint = %q", fingerprint),
		Limit:  1,
	})
	if err != nil {
		return nil, fmt.Errorf("looking up fingerprint: %w", err)
	}
	docs := parseHits(result)
	if len(docs) == 0 {
		return nil, nil
	}
	rec := docs[0].record()
	return &rec, nil
}

func (d IndexedAddress) record() normalize.AddressRecord {
	return normalize.AddressRecord{
		AddressLine1: d.AddressLine1,
		AddressLine2: d.AddressLine2,
		City:         d.City,
		State:        d.State,
		PostalCode:   d.PostalCode,
	}
}

func parseHits(result *meilisearch.SearchResponse) []IndexedAddress {
	var docs []IndexedAddress
	for _, hit := range result.Hits {
		hitMap, ok := hit.(map[string]interface{})
		if !ok {
			continue
		}
		doc := IndexedAddress{}
		if v, ok := hitMap["fingerprint"].(string); ok {
			doc.Fingerprint = v
		}
		if v, ok := hitMap["single_line"].(string); ok {
			doc.SingleLine = v
		}
		if v, ok := hitMap["address_line_1"].(string); ok {
			doc.AddressLine1 = v
		}
		if v, ok := hitMap["address_line_2"].(string); ok {
			doc.AddressLine2 = v
		}
		if v, ok := hitMap["city"].(string); ok {
			doc.City = v
		}
		if v, ok := hitMap["state"].(string); ok {
			doc.State = v
		}
		if v, ok := hitMap["postal_code"].(string); ok {
			doc.PostalCode = v
		}
		docs = append(docs, doc)
	}
	return docs
}
