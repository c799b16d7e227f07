package api

import (
	"net/http"

	"app-builder-api/internal/metrics"
	"app-builder-api/internal/middleware"
	"app-builder-api/internal/services"
	"app-builder-api/internal/storage"

	"github.com/gin-gonic/gin"
)

// Dependencies are the service handles the routes are served from
type Dependencies struct {
	Submissions *services.SubmissionService
	Payments    *services.PaymentService
	RateLimiter *middleware.RateLimiter
	UploadRoot  string
	ServiceName string
}

// SetupRoutes sets up all routes
func SetupRoutes(r *gin.Engine, deps Dependencies) {
	h := &handler{
		submissions: deps.Submissions,
		payments:    deps.Payments,
	}

	r.Use(middleware.Metrics())

	// Liveness
	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "App builder API is running")
	})

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"service": deps.ServiceName,
		})
	})

	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	// Uploaded assets and generated builds, read only
	r.Static(storage.URLPrefix, deps.UploadRoot)

	// API route group
	api := r.Group("/api")
	if deps.RateLimiter != nil {
		api.Use(deps.RateLimiter.Handler())
	}
	{
		api.GET("/checkApp", h.CheckApp)
		api.POST("/submit", h.Submit)
		api.GET("/search", h.Search)

		payment := api.Group("/payment")
		{
			payment.POST("/order", h.CreateOrder)
			payment.POST("/verify", h.VerifyPayment)
		}
	}
}

type handler struct {
	submissions *services.SubmissionService
	payments    *services.PaymentService
}
