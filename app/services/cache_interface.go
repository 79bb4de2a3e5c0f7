package services

import (
	"context"
	"time"

	"github.com/address-normalizer/app/models"
)

// CacheStats aggregates hit/miss counters.
type CacheStats struct {
	HitRate    float64 `json:"hit_rate"`
	TotalHits  int64   `json:"total_hits"`
	TotalMiss  int64   `json:"total_miss"`
	TotalItems int64   `json:"total_items"`
}

// ICacheService is the cache contract the controllers depend on. The
// key is the raw input string; implementations may hash it.
type ICacheService interface {
	Get(ctx context.Context, key string) (*models.NormalizationResult, bool, error)

	Set(ctx context.Context, key string, result *models.NormalizationResult) error

	Delete(ctx context.Context, key string) error

	Clear(ctx context.Context) error

	// InvalidateByTablesVersion drops entries produced with a table
	// set other than the one given.
	InvalidateByTablesVersion(ctx context.Context, tablesVersion string) error

	GetStats(ctx context.Context) (*CacheStats, error)

	Exists(ctx context.Context, key string) (bool, error)

	GetTTL(ctx context.Context, key string) (time.Duration, error)

	Close() error
}
