package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"mocktest-service/internal/service"
)

type HealthHandler struct {
	registry    *service.Registry
	serviceName string
	version     string
	startedAt   time.Time
}

func NewHealthHandler(registry *service.Registry, serviceName, version string) *HealthHandler {
	return &HealthHandler{
		registry:    registry,
		serviceName: serviceName,
		version:     version,
		startedAt:   time.Now(),
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"service":  h.serviceName,
		"version":  h.version,
		"attempts": h.registry.Len(),
		"uptime":   time.Since(h.startedAt).Round(time.Second).String(),
	})
}
