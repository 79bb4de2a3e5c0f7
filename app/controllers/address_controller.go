package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/models"
	"github.com/address-normalizer/app/requests"
	"github.com/address-normalizer/app/responses"
	"github.com/address-normalizer/app/services"
	"github.com/address-normalizer/internal/geocode"
	"github.com/address-normalizer/internal/normalize"
)

// AddressController handles the address-facing endpoints.
type AddressController struct {
	addressService *services.AddressService
	cacheService   services.ICacheService
	logger         *zap.Logger
}

// NewAddressController wires the controller.
func NewAddressController(addressService *services.AddressService, cacheService services.ICacheService, logger *zap.Logger) *AddressController {
	return &AddressController{
		addressService: addressService,
		cacheService:   cacheService,
		logger:         logger,
	}
}

// NormalizeAddress normalizes a single address.
func (ac *AddressController) NormalizeAddress(c *gin.Context) {
	var req requests.NormalizeAddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrInvalidRequest,
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	startTime := time.Now()

	// strings are the only cacheable inputs; record inputs depend on
	// the key map as well as the address
	cacheKey, cacheable := req.Address.(string)
	if req.Options.UseCache && cacheable && ac.cacheService != nil {
		if cached, found, err := ac.cacheService.Get(c.Request.Context(), cacheKey); err == nil && found {
			c.JSON(http.StatusOK, responses.NormalizeAddressResponse{
				Result:           *cached,
				ProcessingTimeMs: time.Since(startTime).Milliseconds(),
				CacheHit:         true,
			})
			return
		}
	}

	result, err := ac.addressService.NormalizeOne(c.Request.Context(), req.Address, requests.BuildKeyMap(req.KeyMap), req.Options)
	if err != nil {
		writeNormalizeError(c, err)
		return
	}

	if req.Options.UseCache && cacheable && ac.cacheService != nil {
		if err := ac.cacheService.Set(c.Request.Context(), cacheKey, result); err != nil {
			ac.logger.Warn("caching result failed", zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, responses.NormalizeAddressResponse{
		Result:           *result,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
		CacheHit:         false,
	})
}

// BatchNormalize accepts an asynchronous batch job.
func (ac *AddressController) BatchNormalize(c *gin.Context) {
	var req requests.BatchNormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrInvalidRequest,
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	jobID, estimated, err := ac.addressService.StartBatch(req.Addresses, requests.BuildKeyMap(req.KeyMap), req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrInvalidRequest,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusAccepted, responses.BatchNormalizeResponse{
		JobID:            jobID,
		TotalAddresses:   len(req.Addresses),
		EstimatedSeconds: estimated,
		Message:          "job accepted",
	})
}

// GetJobStatus reports progress of a batch job.
func (ac *AddressController) GetJobStatus(c *gin.Context) {
	jobID := c.Param("jobID")
	job, ok := ac.addressService.GetJobStatus(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   responses.ErrNotFound,
			Message: "job not found: " + jobID,
		})
		return
	}

	c.JSON(http.StatusOK, responses.JobStatusResponse{
		JobID:              job.JobID,
		Status:             job.Status,
		Progress:           job.Progress,
		Processed:          job.Processed,
		Total:              job.Total,
		EstimatedRemaining: job.EstimatedRemaining,
		Message:            job.Message,
	})
}

// GetJobResults returns the results of a finished batch job.
func (ac *AddressController) GetJobResults(c *gin.Context) {
	jobID := c.Param("jobID")
	results, job, ok := ac.addressService.GetJobResults(jobID)
	if !ok {
		c.JSON(http.StatusNotFound, responses.ErrorResponse{
			Error:   responses.ErrNotFound,
			Message: "job not found: " + jobID,
		})
		return
	}
	if job.Status != responses.JobStatusDone {
		c.JSON(http.StatusConflict, responses.ErrorResponse{
			Error:   responses.ErrInvalidRequest,
			Message: "job not finished, status: " + job.Status,
		})
		return
	}

	flat := make([]models.NormalizationResult, 0, len(results))
	for _, r := range results {
		if r != nil {
			flat = append(flat, *r)
		}
	}
	c.JSON(http.StatusOK, responses.JobResultsResponse{
		JobID:   jobID,
		Status:  job.Status,
		Results: flat,
	})
}

// Similar looks up indexed addresses close to a query.
func (ac *AddressController) Similar(c *gin.Context) {
	var req requests.SimilarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrInvalidRequest,
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	matches, err := ac.addressService.Similar(c.Request.Context(), req.Query, req.Limit)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   responses.ErrFeatureNotConfigured,
			Message: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, responses.SimilarResponse{
		Query:   req.Query,
		Matches: matches,
	})
}

// Geocode resolves an address through the external provider.
func (ac *AddressController) Geocode(c *gin.Context) {
	var req requests.GeocodeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrInvalidRequest,
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	startTime := time.Now()
	record, err := ac.addressService.Geocode(c.Request.Context(), req.Address, req.FieldOrder)
	if err != nil {
		writeNormalizeError(c, err)
		return
	}

	c.JSON(http.StatusOK, responses.GeocodeResponse{
		Record:           record,
		ProcessingTimeMs: time.Since(startTime).Milliseconds(),
	})
}

// Components labels a raw address string with libpostal.
func (ac *AddressController) Components(c *gin.Context) {
	var req requests.ComponentsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrInvalidRequest,
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	components, available := ac.addressService.Components(req.Address)
	c.JSON(http.StatusOK, responses.ComponentsResponse{
		Available:  available,
		Components: components,
	})
}

// HealthCheck reports service liveness.
func (ac *AddressController) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"uptime_seconds": int64(ac.addressService.Uptime().Seconds()),
		"tables_version": ac.addressService.TablesVersion(),
	})
}

// writeNormalizeError maps pipeline errors onto HTTP statuses.
func writeNormalizeError(c *gin.Context, err error) {
	var inputErr *normalize.InputError
	var configErr *normalize.ConfigurationError
	var unavailErr *geocode.UnavailableError
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrInvalidInput,
			Message: err.Error(),
		})
	case errors.As(err, &configErr):
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   responses.ErrConfiguration,
			Message: err.Error(),
		})
	case errors.As(err, &unavailErr):
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   responses.ErrGeocoderUnavailable,
			Message: err.Error(),
		})
	default:
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   responses.ErrInternal,
			Message: err.Error(),
		})
	}
}
