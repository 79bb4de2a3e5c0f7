package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
)

// HybridCacheService layers Redis (fast, volatile) over MongoDB
// (persistent). Reads promote L2 hits back into L1.
type HybridCacheService struct {
	redisCache *RedisCacheService
	mongoCache *MongoCacheService
	logger     *zap.Logger
}

// NewHybridCacheService wires the two tiers together.
func NewHybridCacheService(redisCache *RedisCacheService, mongoCache *MongoCacheService, logger *zap.Logger) *HybridCacheService {
	return &HybridCacheService{
		redisCache: redisCache,
		mongoCache: mongoCache,
		logger:     logger,
	}
}

func (hcs *HybridCacheService) Get(ctx context.Context, key string) (*models.NormalizationResult, bool, error) {
	result, found, err := hcs.redisCache.Get(ctx, key)
	if err != nil {
		hcs.logger.Warn("redis tier failed, falling back to mongo", zap.Error(err))
	} else if found {
		return result, true, nil
	}

	result, found, err = hcs.mongoCache.Get(ctx, key)
	if err != nil {
		return nil, false, err
	}
	if !found {
		return nil, false, nil
	}

	// promote the L2 hit
	go func() {
		bgCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := hcs.redisCache.Set(bgCtx, key, result); err != nil {
			hcs.logger.Warn("promoting cache entry to redis failed", zap.Error(err), zap.String("key", key))
		}
	}()

	return result, true, nil
}

func (hcs *HybridCacheService) Set(ctx context.Context, key string, result *models.NormalizationResult) error {
	errCh := make(chan error, 2)

	go func() {
		err := hcs.redisCache.Set(ctx, key, result)
		if err != nil {
			hcs.logger.Warn("redis set failed", zap.Error(err))
		}
		errCh <- err
	}()
	go func() {
		err := hcs.mongoCache.Set(ctx, key, result)
		if err != nil {
			hcs.logger.Warn("mongo set failed", zap.Error(err))
		}
		errCh <- err
	}()

	var firstErr error
	for i := 0; i < 2; i++ {
		if err := <-errCh; err != nil && firstErr == nil {
			firstErr = err
		}
	}
	if firstErr != nil {
		return fmt.Errorf("writing cache tiers: %w", firstErr)
	}
	return nil
}

func (hcs *HybridCacheService) Delete(ctx context.Context, key string) error {
	redisErr := hcs.redisCache.Delete(ctx, key)
	mongoErr := hcs.mongoCache.Delete(ctx, key)
	if redisErr != nil {
		return redisErr
	}
	return mongoErr
}

func (hcs *HybridCacheService) Clear(ctx context.Context) error {
	if err := hcs.redisCache.Clear(ctx); err != nil {
		return err
	}
	return hcs.mongoCache.Clear(ctx)
}

func (hcs *HybridCacheService) InvalidateByTablesVersion(ctx context.Context, tablesVersion string) error {
	if err := hcs.redisCache.InvalidateByTablesVersion(ctx, tablesVersion); err != nil {
		return err
	}
	return hcs.mongoCache.InvalidateByTablesVersion(ctx, tablesVersion)
}

// GetStats merges the two tiers' counters.
func (hcs *HybridCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	redisStats, err := hcs.redisCache.GetStats(ctx)
	if err != nil {
		return nil, err
	}
	mongoStats, err := hcs.mongoCache.GetStats(ctx)
	if err != nil {
		return nil, err
	}

	totalHits := redisStats.TotalHits + mongoStats.TotalHits
	totalMiss := mongoStats.TotalMiss
	hitRate := float64(0)
	if totalHits+totalMiss > 0 {
		hitRate = float64(totalHits) / float64(totalHits+totalMiss)
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  totalHits,
		TotalMiss:  totalMiss,
		TotalItems: mongoStats.TotalItems,
	}, nil
}

func (hcs *HybridCacheService) Exists(ctx context.Context, key string) (bool, error) {
	exists, err := hcs.redisCache.Exists(ctx, key)
	if err == nil && exists {
		return true, nil
	}
	return hcs.mongoCache.Exists(ctx, key)
}

func (hcs *HybridCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	ttl, err := hcs.redisCache.GetTTL(ctx, key)
	if err == nil && ttl > 0 {
		return ttl, nil
	}
	return hcs.mongoCache.GetTTL(ctx, key)
}

func (hcs *HybridCacheService) Close() error {
	redisErr := hcs.redisCache.Close()
	mongoErr := hcs.mongoCache.Close()
	if redisErr != nil {
		return redisErr
	}
	return mongoErr
}
