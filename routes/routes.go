// Package routes wires the HTTP surface.
//
// Layout:
// - api.go: versioned API routes (/v1/*)
// - web.go: landing and docs routes
// - routes.go: composition and middleware
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/address-normalizer/app/controllers"
)

// SetupAllRoutes composes middleware and every route group.
func SetupAllRoutes(router *gin.Engine, addressController *controllers.AddressController, adminController *controllers.AdminController) {
	setupMiddleware(router)

	SetupWebRoutes(router)
	SetupHealthRoutes(router, addressController)
	SetupAPIRoutes(router, addressController, adminController)

	router.NoRoute(func(c *gin.Context) {
		c.JSON(404, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})
}

// SetupHealthRoutes registers liveness and readiness probes.
func SetupHealthRoutes(router *gin.Engine, addressController *controllers.AddressController) {
	router.GET("/health", addressController.HealthCheck)
	router.GET("/ready", addressController.HealthCheck)
	router.GET("/live", addressController.HealthCheck)
}

func setupMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
}
