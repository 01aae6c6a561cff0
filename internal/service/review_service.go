package service

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coverline/internal/domain"
	"coverline/internal/port"
)

const (
	defaultReviewPageSize = 20
	maxReviewPageSize     = 100
)

// ReviewService defines the human review contract for extracted benefits.
type ReviewService interface {
	GetBenefit(ctx context.Context, benefitID uuid.UUID) (*domain.ExtractedBenefit, error)
	ListReviewQueue(ctx context.Context, offset, limit int) ([]domain.ExtractedBenefit, int, error)
	Approve(ctx context.Context, benefitID uuid.UUID, reviewerID string) (*domain.ExtractedBenefit, error)
	Reject(ctx context.Context, benefitID uuid.UUID, reviewerID string) (*domain.ExtractedBenefit, error)
	// UpdateBenefitData replaces the payload regardless of approval state.
	UpdateBenefitData(ctx context.Context, benefitID uuid.UUID, payload json.RawMessage, editorID *string) (*domain.ExtractedBenefit, error)
	ListRevisions(ctx context.Context, benefitID uuid.UUID) ([]domain.BenefitRevision, error)
}

type reviewService struct {
	benefitRepo port.BenefitRepository
	logger      *zap.Logger
	now         func() time.Time
}

// NewReviewService creates a new ReviewService implementation.
func NewReviewService(benefitRepo port.BenefitRepository, logger *zap.Logger) ReviewService {
	return &reviewService{
		benefitRepo: benefitRepo,
		logger:      logger.Named("review"),
		now:         time.Now,
	}
}

func (s *reviewService) GetBenefit(ctx context.Context, benefitID uuid.UUID) (*domain.ExtractedBenefit, error) {
	return s.benefitRepo.GetByID(ctx, benefitID)
}

func (s *reviewService) ListReviewQueue(ctx context.Context, offset, limit int) ([]domain.ExtractedBenefit, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit <= 0 {
		limit = defaultReviewPageSize
	}
	if limit > maxReviewPageSize {
		limit = maxReviewPageSize
	}
	return s.benefitRepo.ListPendingReview(ctx, offset, limit)
}

func (s *reviewService) Approve(ctx context.Context, benefitID uuid.UUID, reviewerID string) (*domain.ExtractedBenefit, error) {
	return s.decide(ctx, benefitID, true, reviewerID)
}

func (s *reviewService) Reject(ctx context.Context, benefitID uuid.UUID, reviewerID string) (*domain.ExtractedBenefit, error) {
	return s.decide(ctx, benefitID, false, reviewerID)
}

func (s *reviewService) decide(ctx context.Context, benefitID uuid.UUID, approved bool, reviewerID string) (*domain.ExtractedBenefit, error) {
	b, err := s.benefitRepo.SetApproval(ctx, benefitID, approved, reviewerID, s.now().UTC())
	if err != nil {
		return nil, err
	}
	s.logger.Info("reviewService.decide: review recorded",
		zap.String("benefit_id", benefitID.String()),
		zap.Bool("approved", approved),
		zap.String("reviewer_id", reviewerID),
	)
	return b, nil
}

func (s *reviewService) UpdateBenefitData(ctx context.Context, benefitID uuid.UUID, payload json.RawMessage, editorID *string) (*domain.ExtractedBenefit, error) {
	if !isJSONObject(payload) {
		return nil, domain.ErrInvalidPayload
	}
	b, err := s.benefitRepo.UpdateData(ctx, benefitID, payload, editorID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("reviewService.UpdateBenefitData: payload replaced",
		zap.String("benefit_id", benefitID.String()), zap.Int("version", b.Version))
	return b, nil
}

func (s *reviewService) ListRevisions(ctx context.Context, benefitID uuid.UUID) ([]domain.BenefitRevision, error) {
	if _, err := s.benefitRepo.GetByID(ctx, benefitID); err != nil {
		return nil, err
	}
	revisions, err := s.benefitRepo.ListRevisions(ctx, benefitID)
	if err != nil {
		return nil, err
	}
	if revisions == nil {
		revisions = []domain.BenefitRevision{}
	}
	return revisions, nil
}

func isJSONObject(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false
	}
	return json.Valid(trimmed)
}
