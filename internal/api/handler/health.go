package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	aiConfigured bool
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(aiConfigured bool) *HealthHandler {
	return &HealthHandler{aiConfigured: aiConfigured}
}

// Health returns liveness plus whether AI credentials are configured.
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":            "healthy",
		"openai_configured": h.aiConfigured,
	})
}
