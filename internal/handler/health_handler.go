package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthFlags reports which collaborators are configured.
type HealthFlags struct {
	LLMConfigured     bool `json:"llmConfigured"`
	StorageConfigured bool `json:"storageConfigured"`
	SecretConfigured  bool `json:"secretConfigured"`
}

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	db      Pinger
	version string
	flags   HealthFlags
	now     func() time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, version string, flags HealthFlags) *HealthHandler {
	return &HealthHandler{db: db, version: version, flags: flags, now: time.Now}
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"version":   h.version,
		"timestamp": h.now().UTC().Format(time.RFC3339),
		"config":    h.flags,
	})
}

// Readiness handles GET /readyz
func (h *HealthHandler) Readiness(c *gin.Context) {
	if err := h.db.Ping(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": "database not reachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
