package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/address-normalizer/app/requests"
	"github.com/address-normalizer/app/responses"
	"github.com/address-normalizer/app/services"
	"github.com/address-normalizer/internal/normalize"
)

// AdminController handles table management and operational endpoints.
type AdminController struct {
	adminService *services.AdminService
	logger       *zap.Logger
}

// NewAdminController wires the controller.
func NewAdminController(adminService *services.AdminService, logger *zap.Logger) *AdminController {
	return &AdminController{
		adminService: adminService,
		logger:       logger,
	}
}

// GetTables describes the active table set.
func (adc *AdminController) GetTables(c *gin.Context) {
	c.JSON(http.StatusOK, responses.TablesInfoResponse{
		TablesVersion: adc.adminService.TablesVersion(),
		Counts:        adc.adminService.TableCounts(),
	})
}

// ReloadTables re-reads the override document from disk.
func (adc *AdminController) ReloadTables(c *gin.Context) {
	version, err := adc.adminService.ReloadTables(c.Request.Context())
	if err != nil {
		writeTablesError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.TablesResponse{
		TablesVersion: version,
		Message:       "tables reloaded",
	})
}

// OverrideTables applies an override document sent in the request
// body.
func (adc *AdminController) OverrideTables(c *gin.Context) {
	var req requests.OverrideTablesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrInvalidRequest,
			Message: "invalid request: " + err.Error(),
		})
		return
	}

	version, err := adc.adminService.ApplyOverride(c.Request.Context(), []byte(req.Document))
	if err != nil {
		writeTablesError(c, err)
		return
	}
	c.JSON(http.StatusOK, responses.TablesResponse{
		TablesVersion: version,
		Message:       "override applied",
	})
}

// InvalidateCache drops cache entries from stale table sets.
func (adc *AdminController) InvalidateCache(c *gin.Context) {
	if err := adc.adminService.InvalidateCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
			Error:   responses.ErrInternal,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "cache invalidated"})
}

// RebuildIndexSettings pushes the search index settings again.
func (adc *AdminController) RebuildIndexSettings(c *gin.Context) {
	if err := adc.adminService.RebuildIndexSettings(); err != nil {
		c.JSON(http.StatusServiceUnavailable, responses.ErrorResponse{
			Error:   responses.ErrFeatureNotConfigured,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "index settings submitted"})
}

// GetStats returns the admin stats payload.
func (adc *AdminController) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, adc.adminService.Stats(c.Request.Context()))
}

func writeTablesError(c *gin.Context, err error) {
	var configErr *normalize.ConfigurationError
	if errors.As(err, &configErr) {
		c.JSON(http.StatusBadRequest, responses.ErrorResponse{
			Error:   responses.ErrConfiguration,
			Message: err.Error(),
		})
		return
	}
	c.JSON(http.StatusInternalServerError, responses.ErrorResponse{
		Error:   responses.ErrInternal,
		Message: err.Error(),
	})
}
