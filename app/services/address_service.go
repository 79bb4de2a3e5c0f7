package services

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/address-normalizer/app/config"
	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/app/requests"
	"github.com/address-normalizer/app/responses"
	"github.com/address-normalizer/helpers/utils"
	"github.com/address-normalizer/internal/external"
	"github.com/address-normalizer/internal/geocode"
	"github.com/address-normalizer/internal/normalize"
	"github.com/address-normalizer/internal/search"
)

// DefaultTablesVersion labels the embedded replacement tables.
const DefaultTablesVersion = "default"

// AddressService runs the normalization pipeline and manages batch
// jobs. The geocoder and search index are optional; nil disables the
// corresponding feature.
type AddressService struct {
	geocoder  *geocode.Client
	index     *search.AddressIndex
	logger    *zap.Logger
	startTime time.Time

	mu            sync.RWMutex
	tables        *normalize.Tables
	tablesVersion string
	jobs          map[string]*JobStatus
	jobResults    map[string][]*models.NormalizationResult
}

// JobStatus tracks one batch job.
type JobStatus struct {
	JobID              string
	Status             string
	Progress           float64
	Processed          int
	Total              int
	EstimatedRemaining int
	Message            string
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// NewAddressService builds the service around a table set.
func NewAddressService(tables *normalize.Tables, geocoder *geocode.Client, index *search.AddressIndex, logger *zap.Logger) *AddressService {
	return &AddressService{
		geocoder:      geocoder,
		index:         index,
		logger:        logger,
		startTime:     time.Now(),
		tables:        tables,
		tablesVersion: DefaultTablesVersion,
		jobs:          make(map[string]*JobStatus),
		jobResults:    make(map[string][]*models.NormalizationResult),
	}
}

// NormalizeOne runs the pipeline over a single input. When the
// geocoder fallback is enabled, per request or by server default, and
// the pipeline result is missing fields, the geocoder fills them in;
// geocoder failures degrade to the pipeline result.
func (as *AddressService) NormalizeOne(ctx context.Context, input any, keyMap *normalize.KeyMap, opts requests.NormalizeOptions) (*models.NormalizationResult, error) {
	tables, version := as.currentTables()

	rec, err := normalize.Normalize(input, &normalize.Options{KeyMap: keyMap, Tables: tables})
	if err != nil {
		return nil, err
	}

	result := &models.NormalizationResult{
		Raw:           rawString(input),
		Normalized:    rec,
		Fingerprint:   search.Fingerprint(rec),
		SingleLine:    search.SingleLine(rec),
		Source:        models.SourcePipeline,
		TablesVersion: version,
		CreatedAt:     time.Now(),
	}

	if opts.GeocoderFallbackOr(config.C.UseGeocoderFallback) && as.geocoder != nil && !result.IsComplete() {
		if geocoded, gerr := as.geocodeAndRefine(ctx, input); gerr != nil {
			as.logger.Warn("geocoder fallback failed, keeping pipeline result",
				zap.Error(gerr), zap.String("raw", result.Raw))
		} else {
			result.Normalized = geocoded
			result.Fingerprint = search.Fingerprint(geocoded)
			result.SingleLine = search.SingleLine(geocoded)
			result.Source = models.SourceGeocoder
		}
	}

	if opts.IndexOr(config.C.IndexResults) && as.index != nil && result.Normalized.AddressLine1 != "" {
		rec := result.Normalized
		go func() {
			if err := as.index.Upsert([]normalize.AddressRecord{rec}); err != nil {
				as.logger.Warn("indexing normalized address failed", zap.Error(err))
			}
		}()
	}

	return result, nil
}

// geocodeAndRefine resolves through the geocoder and re-runs the
// pipeline over the geocoded record so its fields honor the same
// invariants as pipeline output.
func (as *AddressService) geocodeAndRefine(ctx context.Context, input any) (normalize.AddressRecord, error) {
	geocoded, err := as.geocoder.Resolve(ctx, input, nil)
	if err != nil {
		return normalize.AddressRecord{}, err
	}

	tables, _ := as.currentTables()
	refined, err := normalize.Normalize(map[string]string{
		normalize.FieldAddressLine1: geocoded.AddressLine1,
		normalize.FieldAddressLine2: geocoded.AddressLine2,
		normalize.FieldCity:         geocoded.City,
		normalize.FieldState:        geocoded.State,
		normalize.FieldPostalCode:   geocoded.PostalCode,
	}, &normalize.Options{Tables: tables})
	if err != nil {
		return normalize.AddressRecord{}, err
	}
	return refined, nil
}

// StartBatch accepts a batch and processes it asynchronously.
func (as *AddressService) StartBatch(addresses []any, keyMap *normalize.KeyMap, opts requests.NormalizeOptions) (string, int, error) {
	if len(addresses) == 0 {
		return "", 0, errors.New("batch must contain at least one address")
	}
	if len(addresses) > config.C.Batch.MaxAddresses {
		return "", 0, fmt.Errorf("batch exceeds the %d address limit", config.C.Batch.MaxAddresses)
	}

	jobID := utils.GenerateUUID()
	now := time.Now()
	job := &JobStatus{
		JobID:     jobID,
		Status:    responses.JobStatusPending,
		Total:     len(addresses),
		Message:   "queued",
		CreatedAt: now,
		UpdatedAt: now,
	}

	as.mu.Lock()
	as.jobs[jobID] = job
	as.mu.Unlock()

	go as.runBatch(jobID, addresses, keyMap, opts)

	workers := config.C.Batch.Workers
	if workers <= 0 {
		workers = 1
	}
	estimated := len(addresses)/(workers*200) + 1
	return jobID, estimated, nil
}

func (as *AddressService) runBatch(jobID string, addresses []any, keyMap *normalize.KeyMap, opts requests.NormalizeOptions) {
	as.updateJob(jobID, func(j *JobStatus) {
		j.Status = responses.JobStatusRunning
		j.Message = "processing"
	})

	results := make([]*models.NormalizationResult, len(addresses))
	workers := config.C.Batch.Workers
	if workers <= 0 {
		workers = 1
	}

	indexes := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				res, err := as.NormalizeOne(context.Background(), addresses[i], keyMap, opts)
				if err != nil {
					res = &models.NormalizationResult{
						Raw:       rawString(addresses[i]),
						Error:     err.Error(),
						CreatedAt: time.Now(),
					}
				}
				results[i] = res
				as.updateJob(jobID, func(j *JobStatus) {
					j.Processed++
					j.Progress = float64(j.Processed) / float64(j.Total)
				})
			}
		}()
	}
	for i := range addresses {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	as.mu.Lock()
	as.jobResults[jobID] = results
	as.mu.Unlock()

	as.updateJob(jobID, func(j *JobStatus) {
		j.Status = responses.JobStatusDone
		j.Progress = 1.0
		j.Message = "completed"
	})
	as.logger.Info("batch job completed", zap.String("job_id", jobID), zap.Int("total", len(addresses)))
}

// GetJobStatus returns a copy of the job's status.
func (as *AddressService) GetJobStatus(jobID string) (*JobStatus, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	job, ok := as.jobs[jobID]
	if !ok {
		return nil, false
	}
	cp := *job
	return &cp, true
}

// GetJobResults returns the results of a finished job.
func (as *AddressService) GetJobResults(jobID string) ([]*models.NormalizationResult, *JobStatus, bool) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	job, ok := as.jobs[jobID]
	if !ok {
		return nil, nil, false
	}
	cp := *job
	return as.jobResults[jobID], &cp, true
}

// JobCounts tallies jobs by status.
func (as *AddressService) JobCounts() responses.JobCounts {
	as.mu.RLock()
	defer as.mu.RUnlock()
	var counts responses.JobCounts
	for _, job := range as.jobs {
		switch job.Status {
		case responses.JobStatusPending:
			counts.Pending++
		case responses.JobStatusRunning:
			counts.Running++
		case responses.JobStatusDone:
			counts.Done++
		case responses.JobStatusFailed:
			counts.Failed++
		}
	}
	return counts
}

// Similar queries the search index. Requires the index to be
// configured.
func (as *AddressService) Similar(ctx context.Context, query string, limit int) ([]search.Match, error) {
	if as.index == nil {
		return nil, errors.New("search index not configured")
	}
	return as.index.Similar(ctx, query, limit)
}

// Geocode resolves through the external provider directly.
func (as *AddressService) Geocode(ctx context.Context, input any, fieldOrder []string) (normalize.AddressRecord, error) {
	if as.geocoder == nil {
		return normalize.AddressRecord{}, &geocode.UnavailableError{Reason: "geocoder not configured"}
	}
	return as.geocoder.Resolve(ctx, input, fieldOrder)
}

// Components labels a raw string with libpostal when the bindings
// are compiled in.
func (as *AddressService) Components(raw string) (external.Components, bool) {
	if !external.Available() || !config.C.UseLibpostal {
		return external.Components{}, false
	}
	return external.ExtractComponents(raw), true
}

// SetTables swaps the active table set.
func (as *AddressService) SetTables(tables *normalize.Tables, version string) {
	as.mu.Lock()
	defer as.mu.Unlock()
	as.tables = tables
	as.tablesVersion = version
	as.logger.Info("replacement tables swapped", zap.String("tables_version", version))
}

// ApplyOverride layers an override document over the embedded
// defaults and makes the result active.
func (as *AddressService) ApplyOverride(doc []byte) (string, error) {
	tables, err := normalize.ApplyOverride(doc)
	if err != nil {
		return "", err
	}
	sum := sha1.Sum(doc)
	version := hex.EncodeToString(sum[:])[:12]
	as.SetTables(tables, version)
	return version, nil
}

// TableCounts reports the entry count of each active replacement
// table.
func (as *AddressService) TableCounts() map[string]int {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return map[string]int{
		normalize.TableDirectionals:   len(as.tables.Directionals),
		normalize.TableStreetTypes:    len(as.tables.StreetTypes),
		normalize.TableOccupancyTypes: len(as.tables.OccupancyTypes),
		normalize.TableStates:         len(as.tables.States),
		normalize.TableKnownOddities:  len(as.tables.KnownOddities),
		normalize.TableProblemAbbrvs:  len(as.tables.ProblemAbbrvs),
	}
}

// TablesVersion returns the label of the active table set.
func (as *AddressService) TablesVersion() string {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.tablesVersion
}

// Uptime reports how long the service has been running.
func (as *AddressService) Uptime() time.Duration {
	return time.Since(as.startTime)
}

func (as *AddressService) currentTables() (*normalize.Tables, string) {
	as.mu.RLock()
	defer as.mu.RUnlock()
	return as.tables, as.tablesVersion
}

func (as *AddressService) updateJob(jobID string, fn func(*JobStatus)) {
	as.mu.Lock()
	defer as.mu.Unlock()
	if job, ok := as.jobs[jobID]; ok {
		fn(job)
		job.UpdatedAt = time.Now()
	}
}

func rawString(input any) string {
	if s, ok := input.(string); ok {
		return s
	}
	if b, err := json.Marshal(input); err == nil {
		return string(b)
	}
	return fmt.Sprintf("%v", input)
}
