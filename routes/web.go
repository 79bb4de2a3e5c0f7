package routes

import (
	"github.com/gin-gonic/gin"
)

// SetupWebRoutes registers the landing and docs routes.
func SetupWebRoutes(router *gin.Engine) {
	web := router.Group("/")
	{
		web.GET("/", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"message": "Address Normalizer Service",
				"version": "1.0.0",
				"docs":    "/docs",
			})
		})

		web.GET("/docs", func(c *gin.Context) {
			c.JSON(200, gin.H{
				"api": "Address Normalizer API v1",
				"endpoints": map[string]string{
					"normalize":   "POST /v1/addresses/normalize",
					"batch":       "POST /v1/addresses/jobs",
					"job_status":  "GET /v1/addresses/jobs/:jobID/status",
					"job_results": "GET /v1/addresses/jobs/:jobID/results",
					"similar":     "POST /v1/addresses/similar",
					"geocode":     "POST /v1/addresses/geocode",
					"components":  "POST /v1/addresses/components",
					"health":      "GET /v1/health",
				},
			})
		})
	}
}
