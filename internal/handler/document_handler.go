package handler

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coverline/internal/domain"
	"coverline/internal/middleware"
	"coverline/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// DocumentHandler handles document status, benefit listing, export, and deletion.
type DocumentHandler struct {
	documentService service.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(documentService service.DocumentService) *DocumentHandler {
	return &DocumentHandler{documentService: documentService}
}

// documentStatus is the polling contract of a document.
type documentStatus struct {
	ID                uuid.UUID               `json:"id"`
	ProcessingStatus  domain.ProcessingStatus `json:"processing_status"`
	ErrorMessage      *string                 `json:"error_message"`
	OverallConfidence *float64                `json:"overall_confidence"`
}

func parseDocumentID(c *gin.Context) (uuid.UUID, bool) {
	docID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid document ID")
		return uuid.Nil, false
	}
	return docID, true
}

// Status handles GET /api/v1/documents/:id/status
func (h *DocumentHandler) Status(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	doc, err := h.documentService.GetByID(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, documentStatus{
		ID:                doc.ID,
		ProcessingStatus:  doc.ProcessingStatus,
		ErrorMessage:      doc.ErrorMessage,
		OverallConfidence: doc.OverallConfidence,
	})
}

// ListBenefits handles GET /api/v1/documents/:id/benefits
func (h *DocumentHandler) ListBenefits(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	benefits, err := h.documentService.ListBenefits(c.Request.Context(), docID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, benefits)
}

// ExportBenefits handles GET /api/v1/documents/:id/benefits/export?format=csv|xlsx
func (h *DocumentHandler) ExportBenefits(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}
	format := domain.ExportFormat(strings.ToLower(c.DefaultQuery("format", string(domain.ExportFormatCSV))))

	// Buffered so a failed export still returns a JSON error.
	var buf bytes.Buffer
	filename, err := h.documentService.ExportBenefits(c.Request.Context(), docID, format, &buf)
	if err != nil {
		HandleError(c, err)
		return
	}

	contentType := "text/csv; charset=utf-8"
	if format == domain.ExportFormatXLSX {
		contentType = xlsxContentType
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

// Delete handles DELETE /api/v1/documents/:id
func (h *DocumentHandler) Delete(c *gin.Context) {
	docID, ok := parseDocumentID(c)
	if !ok {
		return
	}

	var actorID *string
	if reviewerID, err := middleware.GetReviewerID(c); err == nil {
		actorID = &reviewerID
	}

	if err := h.documentService.Delete(c.Request.Context(), docID, actorID); err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, gin.H{"message": "document deleted"})
}
