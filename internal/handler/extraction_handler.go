package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"coverline/internal/middleware"
	"coverline/internal/service"
)

// ExtractionSubmitter queues a document for background extraction.
type ExtractionSubmitter interface {
	Submit(docID uuid.UUID) (*service.Job, error)
}

// ExtractionHandler handles extraction intake.
type ExtractionHandler struct {
	pool ExtractionSubmitter
}

// NewExtractionHandler creates a new ExtractionHandler.
func NewExtractionHandler(pool ExtractionSubmitter) *ExtractionHandler {
	return &ExtractionHandler{pool: pool}
}

// Extract handles POST /extract. It acknowledges before any extraction work
// begins; the outcome is observable only through the document status.
func (h *ExtractionHandler) Extract(c *gin.Context) {
	var req struct {
		DocumentID string `json:"documentId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "documentId is required")
		return
	}

	docID, err := uuid.Parse(req.DocumentID)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return
	}

	if _, err := h.pool.Submit(docID); err != nil {
		HandleError(c, err)
		return
	}

	middleware.LoggerFrom(c).Info("extractionHandler.Extract: extraction queued",
		zap.String("document_id", docID.String()))

	c.JSON(http.StatusOK, gin.H{
		"success":    true,
		"message":    "Extraction started",
		"documentId": docID.String(),
	})
}
