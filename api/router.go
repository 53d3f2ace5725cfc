package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pagepix/pagepix/api/handler"
	"github.com/pagepix/pagepix/api/middleware"
	"github.com/pagepix/pagepix/browser"
	"github.com/pagepix/pagepix/cache"
	"github.com/pagepix/pagepix/config"
	"github.com/pagepix/pagepix/pipeline"
)

// NewRouter creates a configured Gin engine with all routes and middleware.
//
// Middleware chain:
//
//	Global:  Recovery → Logger
//	API:     Auth (if enabled) → RateLimit
//
// Health endpoint is intentionally outside auth so monitoring probes always work.
func NewRouter(p *pipeline.Pipeline, b *browser.Browser, cfg *config.Config, cc *cache.Cache, startTime time.Time) *gin.Engine {
	gin.SetMode(cfg.Server.Mode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.Logger())

	v1 := r.Group("/api/v1")

	// Health endpoint stays outside auth.
	v1.GET("/health", handler.Health(b, startTime))

	// Protected group with auth and rate limiting.
	protected := v1.Group("")
	if cfg.Auth.Enabled {
		protected.Use(middleware.Auth(cfg.Auth.APIKeys))
	}
	protected.Use(middleware.RateLimit(cfg.RateLimit))

	// Image candidates only.
	protected.POST("/images", handler.Images(p, cc))

	// Images plus content extraction and screenshot.
	protected.POST("/page", handler.Page(p, cc))

	return r
}
