package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"coverline/internal/middleware"
	"coverline/internal/service"
)

// BenefitHandler handles the review workflow for extracted benefits.
type BenefitHandler struct {
	reviewService service.ReviewService
}

// NewBenefitHandler creates a new BenefitHandler.
func NewBenefitHandler(reviewService service.ReviewService) *BenefitHandler {
	return &BenefitHandler{reviewService: reviewService}
}

func parseBenefitID(c *gin.Context) (uuid.UUID, bool) {
	benefitID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_ID", "invalid benefit ID")
		return uuid.Nil, false
	}
	return benefitID, true
}

func reviewerFromContext(c *gin.Context) (string, bool) {
	reviewerID, err := middleware.GetReviewerID(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing reviewer context")
		return "", false
	}
	return reviewerID, true
}

func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}

// ReviewQueue handles GET /api/v1/benefits/review-queue
func (h *BenefitHandler) ReviewQueue(c *gin.Context) {
	offset, limit := parsePagination(c)

	benefits, total, err := h.reviewService.ListReviewQueue(c.Request.Context(), offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondPaginated(c, benefits, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/benefits/:id
func (h *BenefitHandler) GetByID(c *gin.Context) {
	benefitID, ok := parseBenefitID(c)
	if !ok {
		return
	}

	b, err := h.reviewService.GetBenefit(c.Request.Context(), benefitID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, b)
}

// Approve handles POST /api/v1/benefits/:id/approve
func (h *BenefitHandler) Approve(c *gin.Context) {
	h.decide(c, true)
}

// Reject handles POST /api/v1/benefits/:id/reject
func (h *BenefitHandler) Reject(c *gin.Context) {
	h.decide(c, false)
}

func (h *BenefitHandler) decide(c *gin.Context, approve bool) {
	reviewerID, ok := reviewerFromContext(c)
	if !ok {
		return
	}
	benefitID, ok := parseBenefitID(c)
	if !ok {
		return
	}

	review := h.reviewService.Reject
	if approve {
		review = h.reviewService.Approve
	}
	b, err := review(c.Request.Context(), benefitID, reviewerID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, b)
}

// UpdateData handles PUT /api/v1/benefits/:id/data
func (h *BenefitHandler) UpdateData(c *gin.Context) {
	reviewerID, ok := reviewerFromContext(c)
	if !ok {
		return
	}
	benefitID, ok := parseBenefitID(c)
	if !ok {
		return
	}

	var req struct {
		ExtractedData json.RawMessage `json:"extracted_data" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_REQUEST", "extracted_data is required")
		return
	}

	b, err := h.reviewService.UpdateBenefitData(c.Request.Context(), benefitID, req.ExtractedData, &reviewerID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, b)
}

// Revisions handles GET /api/v1/benefits/:id/revisions
func (h *BenefitHandler) Revisions(c *gin.Context) {
	benefitID, ok := parseBenefitID(c)
	if !ok {
		return
	}

	revisions, err := h.reviewService.ListRevisions(c.Request.Context(), benefitID)
	if err != nil {
		HandleError(c, err)
		return
	}

	RespondOK(c, revisions)
}
