package services

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/address-normalizer/app/config"
	"github.com/address-normalizer/app/responses"
	"github.com/address-normalizer/internal/normalize"
	"github.com/address-normalizer/internal/search"
)

// AdminService handles table management, index maintenance, and
// operational stats.
type AdminService struct {
	addressService *AddressService
	index          *search.AddressIndex
	cache          ICacheService
	logger         *zap.Logger
}

// NewAdminService wires the admin surface.
func NewAdminService(addressService *AddressService, index *search.AddressIndex, cache ICacheService, logger *zap.Logger) *AdminService {
	return &AdminService{
		addressService: addressService,
		index:          index,
		cache:          cache,
		logger:         logger,
	}
}

// ReloadTables re-reads the override document from the configured
// tables directory and swaps it in. Cached results from the previous
// table set are invalidated.
func (adm *AdminService) ReloadTables(ctx context.Context) (string, error) {
	dir := config.C.TablesDir
	version := DefaultTablesVersion

	var tables *normalize.Tables
	var err error
	if dir == "" {
		tables = normalize.Default()
	} else {
		tables, err = normalize.Load(filepath.Join(dir, normalize.OverrideFileName))
		if err != nil {
			return "", err
		}
		version = fmt.Sprintf("dir-%s", time.Now().UTC().Format("20060102T150405"))
	}
	adm.addressService.SetTables(tables, version)
	adm.invalidateStale(ctx, version)
	return version, nil
}

// ApplyOverride applies an override document sent over the wire and
// invalidates stale cache entries.
func (adm *AdminService) ApplyOverride(ctx context.Context, doc []byte) (string, error) {
	version, err := adm.addressService.ApplyOverride(doc)
	if err != nil {
		return "", err
	}
	adm.invalidateStale(ctx, version)
	return version, nil
}

// InvalidateCache drops cache entries not produced by the active
// table set.
func (adm *AdminService) InvalidateCache(ctx context.Context) error {
	if adm.cache == nil {
		return errors.New("cache not configured")
	}
	return adm.cache.InvalidateByTablesVersion(ctx, adm.addressService.TablesVersion())
}

// RebuildIndexSettings pushes the search index configuration again.
func (adm *AdminService) RebuildIndexSettings() error {
	if adm.index == nil {
		return errors.New("search index not configured")
	}
	return adm.index.EnsureSettings()
}

// TablesVersion labels the active table set.
func (adm *AdminService) TablesVersion() string {
	return adm.addressService.TablesVersion()
}

// TableCounts reports the entry count of each active table.
func (adm *AdminService) TableCounts() map[string]int {
	return adm.addressService.TableCounts()
}

// Stats assembles the admin stats payload.
func (adm *AdminService) Stats(ctx context.Context) responses.StatsResponse {
	stats := responses.StatsResponse{
		UptimeSeconds: int64(adm.addressService.Uptime().Seconds()),
		TablesVersion: adm.addressService.TablesVersion(),
		Jobs:          adm.addressService.JobCounts(),
	}
	if adm.cache != nil {
		if cacheStats, err := adm.cache.GetStats(ctx); err == nil {
			stats.Cache = cacheStats
		} else {
			adm.logger.Warn("fetching cache stats failed", zap.Error(err))
		}
	}
	return stats
}

func (adm *AdminService) invalidateStale(ctx context.Context, version string) {
	if adm.cache == nil {
		return
	}
	if err := adm.cache.InvalidateByTablesVersion(ctx, version); err != nil {
		adm.logger.Warn("invalidating stale cache entries failed", zap.Error(err))
	}
}
