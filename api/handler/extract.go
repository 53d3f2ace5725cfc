package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pagepix/pagepix/cache"
	"github.com/pagepix/pagepix/models"
)

// Runner executes one extraction request. Satisfied by pipeline.Pipeline;
// tests substitute a fake.
type Runner interface {
	Run(ctx context.Context, req *models.ExtractRequest) *models.ExtractResponse
}

// Images returns a handler for POST /api/v1/images: deduplicated image
// candidates only. Screenshot and content flags are ignored on this route.
func Images(p Runner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindRequest(c)
		if !ok {
			return
		}
		req.Screenshot = false
		req.Content = false
		serve(c, p, cc, req)
	}
}

// Page returns a handler for POST /api/v1/page: the image pipeline plus
// optional content extraction and a screenshot.
func Page(p Runner, cc *cache.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, ok := bindRequest(c)
		if !ok {
			return
		}
		serve(c, p, cc, req)
	}
}

func bindRequest(c *gin.Context) (*models.ExtractRequest, bool) {
	var req models.ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ExtractResponse{
			Success: false,
			Error: &models.ErrorDetail{
				Code:    models.ErrCodeInvalidInput,
				Message: err.Error(),
			},
		})
		return nil, false
	}
	req.Defaults()
	return &req, true
}

func serve(c *gin.Context, p Runner, cc *cache.Cache, req *models.ExtractRequest) {
	start := time.Now()

	if cc != nil && req.MaxAge > 0 {
		key := cache.Key(req)
		if cached, hit := cc.Get(key, req.MaxAge); hit {
			cached.CacheStatus = "hit"
			cached.Timing.TotalMs = time.Since(start).Milliseconds()
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	resp := p.Run(c.Request.Context(), req)

	if !resp.Success {
		c.JSON(statusFor(resp.Error), resp)
		return
	}

	if cc != nil && req.MaxAge > 0 {
		cc.Set(cache.Key(req), resp)
		resp.CacheStatus = "miss"
	}

	c.JSON(http.StatusOK, resp)
}

// statusFor translates error codes to HTTP status codes.
func statusFor(e *models.ErrorDetail) int {
	if e == nil {
		return http.StatusInternalServerError
	}
	switch e.Code {
	case models.ErrCodeLoadTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput, models.ErrCodeInvalidURL:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
