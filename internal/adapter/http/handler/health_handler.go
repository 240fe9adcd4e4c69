package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/akramsystems/llm-n-class-classifier/internal/domain/service"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	client service.CompletionClient
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client service.CompletionClient) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string            `json:"status"`
	Components map[string]string `json:"components"`
}

// Health handles GET /health. The remote provider is not called.
func (h *HealthHandler) Health(c *gin.Context) {
	components := map[string]string{"completion_provider": "not configured"}
	if h.client != nil {
		components["completion_provider"] = h.client.Provider()
		components["model"] = h.client.Model()
	}

	c.JSON(http.StatusOK, HealthStatus{
		Status:     "healthy",
		Components: components,
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if h.client == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "reason": "completion provider not configured"})
		return
	}

	respondSuccess(c, http.StatusOK, gin.H{"status": "ready", "provider": h.client.Provider()})
}
