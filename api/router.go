package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/linkpreview/api/handler"
	"github.com/use-agent/linkpreview/api/middleware"
	"github.com/use-agent/linkpreview/config"
	"github.com/use-agent/linkpreview/unfurl"
	"github.com/use-agent/linkpreview/webhook"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit (one token per request, one per URL for batches)
//
// Health stays outside auth and rate limiting.
func NewRouter(svc *unfurl.Service, cfg *config.Config, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	r.GET("/api/v1/health", handler.Health(startTime))

	protected := r.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}

	// One bucket per identity, shared by every route.
	limiter := middleware.NewRateLimiter(cfg.RateLimit)
	perRequest := limiter.Limit(middleware.PerRequest)

	// Legacy path kept for existing clients.
	protected.POST("/api/preview", perRequest, handler.Preview(svc))

	v1 := protected.Group("/api/v1")
	v1.POST("/preview", perRequest, handler.Preview(svc))
	v1.POST("/preview/cards", perRequest, handler.PreviewCards(svc))
	v1.POST("/preview/batch",
		limiter.Limit(middleware.PerBatchURL),
		handler.PreviewBatch(svc, cfg.Batch, webhook.NewNotifier(cfg.Batch.WebhookSecret)),
	)

	// Browser page rendering every platform card.
	protected.GET("/cards", perRequest, handler.CardsPage(svc))

	return r
}
