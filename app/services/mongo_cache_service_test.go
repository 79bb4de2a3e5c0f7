package services

import (
	"context"
	"sync"
	"testing"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
)

// Hit counters are bumped from concurrent request goroutines; the L1
// path never touches Mongo, so it can be hammered without a
// connection.
func TestMongoCacheService_ConcurrentHitCounters(t *testing.T) {
	l1Cache, err := lru.New[string, *models.NormalizationResult](16)
	if err != nil {
		t.Fatalf("lru.New returned error: %v", err)
	}
	mcs := &MongoCacheService{
		l1Cache:  l1Cache,
		logger:   zap.NewNop(),
		ttlHours: 24,
	}

	cached := &models.NormalizationResult{Raw: "123 Main St", CreatedAt: time.Now()}
	mcs.l1Cache.Add("123 Main St", cached)

	const goroutines = 32
	const getsPer = 50

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < getsPer; i++ {
				result, found, err := mcs.Get(context.Background(), "123 Main St")
				if err != nil || !found || result == nil {
					t.Errorf("Get = (%v, %v, %v), want cached hit", result, found, err)
					return
				}
			}
		}()
	}
	wg.Wait()

	want := int64(goroutines * getsPer)
	if got := mcs.totalHits.Load(); got != want {
		t.Errorf("totalHits = %d, want %d", got, want)
	}
	if got := mcs.l1Hits.Load(); got != want {
		t.Errorf("l1Hits = %d, want %d", got, want)
	}
	if got := mcs.totalMiss.Load(); got != 0 {
		t.Errorf("totalMiss = %d, want 0", got)
	}
}
