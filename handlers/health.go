package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	serviceName    = "starides-api"
	serviceVersion = "1.0.0"
	pingTimeout    = 2 * time.Second
)

func (h *Handler) pingDB(ctx context.Context) error {
	sqlDB, err := h.db.DB()
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	return sqlDB.PingContext(ctx)
}

func (h *Handler) redisStatus(ctx context.Context) string {
	if h.redis == nil {
		return "disabled"
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := h.redis.Ping(ctx).Err(); err != nil {
		return "down"
	}
	return "up"
}

// Health godoc
// @Summary Service health
// @Tags Health
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	status, database := "healthy", "up"
	if err := h.pingDB(ctx); err != nil {
		h.log.Warn("database ping failed", "action", "health", "error", err)
		status, database = "degraded", "down"
	}
	c.JSON(http.StatusOK, gin.H{
		"status":   status,
		"service":  serviceName,
		"version":  serviceVersion,
		"database": database,
		"redis":    h.redisStatus(ctx),
	})
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Success 200 {object} map[string]interface{}
// @Router /health/live [get]
func (h *Handler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// Ready godoc
// @Summary Readiness probe
// @Description 503 until the database answers
// @Tags Health
// @Success 200 {object} map[string]interface{}
// @Failure 503 {object} map[string]interface{}
// @Router /health/ready [get]
func (h *Handler) Ready(c *gin.Context) {
	if err := h.pingDB(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
