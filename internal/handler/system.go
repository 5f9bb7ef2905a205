package handlers

import (
	"net/http"

	"SecuroHub/pkg/middleware"
	"SecuroHub/pkg/response"

	"github.com/gin-gonic/gin"
)

// UpdateRateLimiterConfig swaps the API rate limiter settings at runtime.
func (h *Handlers) UpdateRateLimiterConfig(c *gin.Context) {
	if h.RateLimiter == nil {
		response.Fail(c, "rate limiter disabled", nil)
		return
	}
	var cfg middleware.RateLimiterConfig
	if err := c.ShouldBindJSON(&cfg); err != nil {
		response.Fail(c, "invalid request", nil)
		return
	}
	h.RateLimiter.UpdateConfig(cfg)
	response.Success(c, "rate limiter config updated", nil)
}

func (h *Handlers) HealthCheck(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database connection failed"})
		return
	}
	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": "database ping failed"})
		return
	}

	streams := 0
	if h.Hub != nil {
		streams = h.Hub.ClientCount()
	}
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "streams": streams})
}
