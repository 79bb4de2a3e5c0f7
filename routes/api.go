package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/address-normalizer/app/controllers"
)

// SetupAPIRoutes registers the versioned API.
func SetupAPIRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	v1 := router.Group("/v1")
	{
		addresses := v1.Group("/addresses")
		{
			addresses.POST("/normalize", addressController.NormalizeAddress)
			addresses.POST("/jobs", addressController.BatchNormalize)
			addresses.GET("/jobs/:jobID/status", addressController.GetJobStatus)
			addresses.GET("/jobs/:jobID/results", addressController.GetJobResults)
			addresses.POST("/similar", addressController.Similar)
			addresses.POST("/geocode", addressController.Geocode)
			addresses.POST("/components", addressController.Components)
		}

		admin := v1.Group("/admin")
		{
			admin.GET("/tables", adminController.GetTables)
			admin.POST("/tables/reload", adminController.ReloadTables)
			admin.POST("/tables/override", adminController.OverrideTables)
			admin.POST("/cache/invalidate", adminController.InvalidateCache)
			admin.POST("/indexes/build", adminController.RebuildIndexSettings)
			admin.GET("/stats", adminController.GetStats)
		}

		v1.GET("/health", addressController.HealthCheck)
	}
}
