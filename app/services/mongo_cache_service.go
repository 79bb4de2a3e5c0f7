package services

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
)

// MongoCacheService is the persistent cache tier with an in-process
// LRU in front of it.
type MongoCacheService struct {
	db         *mongo.Database
	collection *mongo.Collection
	l1Cache    *lru.Cache[string, *models.NormalizationResult]
	logger     *zap.Logger
	ttlHours   int

	totalHits atomic.Int64
	totalMiss atomic.Int64
	l1Hits    atomic.Int64
	mongoHits atomic.Int64
}

// NewMongoCacheService builds the service and ensures the collection
// indexes exist. Index creation failures are logged, not fatal.
func NewMongoCacheService(db *mongo.Database, l1Size int, logger *zap.Logger) (*MongoCacheService, error) {
	l1Cache, err := lru.New[string, *models.NormalizationResult](l1Size)
	if err != nil {
		return nil, fmt.Errorf("creating LRU cache: %w", err)
	}

	collection := db.Collection("address_cache")

	indexModels := []mongo.IndexModel{
		{
			Keys:    bson.D{bson.E{Key: "raw_fingerprint", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{bson.E{Key: "tables_version", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "created_at", Value: 1}},
		},
		{
			Keys: bson.D{bson.E{Key: "last_accessed", Value: 1}},
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if _, err := collection.Indexes().CreateMany(ctx, indexModels); err != nil {
		logger.Warn("creating address_cache indexes failed", zap.Error(err))
	}

	return &MongoCacheService{
		db:         db,
		collection: collection,
		l1Cache:    l1Cache,
		logger:     logger,
		ttlHours:   24,
	}, nil
}

func (mcs *MongoCacheService) Get(ctx context.Context, key string) (*models.NormalizationResult, bool, error) {
	if result, found := mcs.l1Cache.Get(key); found {
		mcs.l1Hits.Add(1)
		mcs.totalHits.Add(1)
		return result, true, nil
	}

	fingerprint := mcs.fingerprint(key)

	var entry models.AddressCacheEntry
	err := mcs.collection.FindOne(ctx, bson.M{"raw_fingerprint": fingerprint}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			mcs.totalMiss.Add(1)
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("querying address cache: %w", err)
	}

	if entry.IsExpired(mcs.ttlHours) {
		mcs.totalMiss.Add(1)
		go mcs.deleteEntry(entry.ID)
		return nil, false, nil
	}

	mcs.mongoHits.Add(1)
	mcs.totalHits.Add(1)

	go mcs.updateAccessStats(entry.ID)
	mcs.l1Cache.Add(key, &entry.Result)

	return &entry.Result, true, nil
}

func (mcs *MongoCacheService) Set(ctx context.Context, key string, result *models.NormalizationResult) error {
	mcs.l1Cache.Add(key, result)

	fingerprint := mcs.fingerprint(key)
	entry := models.NewAddressCacheEntry(fingerprint, key, *result)

	opts := options.Replace().SetUpsert(true)
	if _, err := mcs.collection.ReplaceOne(ctx, bson.M{"raw_fingerprint": fingerprint}, entry, opts); err != nil {
		return fmt.Errorf("upserting cache entry: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Delete(ctx context.Context, key string) error {
	mcs.l1Cache.Remove(key)
	fingerprint := mcs.fingerprint(key)
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"raw_fingerprint": fingerprint}); err != nil {
		return fmt.Errorf("deleting cache entry: %w", err)
	}
	return nil
}

func (mcs *MongoCacheService) Clear(ctx context.Context) error {
	mcs.l1Cache.Purge()
	res, err := mcs.collection.DeleteMany(ctx, bson.M{})
	if err != nil {
		return fmt.Errorf("clearing address cache: %w", err)
	}
	mcs.logger.Info("cleared mongo cache", zap.Int64("deleted", res.DeletedCount))
	return nil
}

// InvalidateByTablesVersion drops entries normalized with a different
// table set. The L1 cache cannot be filtered, so it is purged.
func (mcs *MongoCacheService) InvalidateByTablesVersion(ctx context.Context, tablesVersion string) error {
	mcs.l1Cache.Purge()
	res, err := mcs.collection.DeleteMany(ctx, bson.M{"tables_version": bson.M{"$ne": tablesVersion}})
	if err != nil {
		return fmt.Errorf("invalidating stale cache entries: %w", err)
	}
	mcs.logger.Info("invalidated stale cache entries",
		zap.String("tables_version", tablesVersion),
		zap.Int64("deleted", res.DeletedCount))
	return nil
}

func (mcs *MongoCacheService) GetStats(ctx context.Context) (*CacheStats, error) {
	hits := mcs.totalHits.Load()
	misses := mcs.totalMiss.Load()
	hitRate := float64(0)
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	count, err := mcs.collection.EstimatedDocumentCount(ctx)
	if err != nil {
		mcs.logger.Warn("counting cache entries failed", zap.Error(err))
	}

	return &CacheStats{
		HitRate:    hitRate,
		TotalHits:  hits,
		TotalMiss:  misses,
		TotalItems: count,
	}, nil
}

func (mcs *MongoCacheService) Exists(ctx context.Context, key string) (bool, error) {
	if _, found := mcs.l1Cache.Get(key); found {
		return true, nil
	}
	count, err := mcs.collection.CountDocuments(ctx, bson.M{"raw_fingerprint": mcs.fingerprint(key)})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (mcs *MongoCacheService) GetTTL(ctx context.Context, key string) (time.Duration, error) {
	var entry models.AddressCacheEntry
	err := mcs.collection.FindOne(ctx, bson.M{"raw_fingerprint": mcs.fingerprint(key)}).Decode(&entry)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return 0, nil
		}
		return 0, err
	}
	remaining := time.Duration(mcs.ttlHours)*time.Hour - time.Since(entry.CreatedAt)
	if remaining < 0 {
		remaining = 0
	}
	return remaining, nil
}

// Close is a no-op; the Mongo client is owned by the caller.
func (mcs *MongoCacheService) Close() error {
	return nil
}

// SetTTLHours overrides the default entry TTL.
func (mcs *MongoCacheService) SetTTLHours(hours int) {
	if hours > 0 {
		mcs.ttlHours = hours
	}
}

func (mcs *MongoCacheService) fingerprint(key string) string {
	sum := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", sum)
}

func (mcs *MongoCacheService) updateAccessStats(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	update := bson.M{
		"$set": bson.M{"last_accessed": time.Now()},
		"$inc": bson.M{"access_count": 1},
	}
	if _, err := mcs.collection.UpdateByID(ctx, id, update); err != nil {
		mcs.logger.Warn("updating cache access stats failed", zap.Error(err))
	}
}

func (mcs *MongoCacheService) deleteEntry(id primitive.ObjectID) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := mcs.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		mcs.logger.Warn("deleting expired cache entry failed", zap.Error(err))
	}
}
