package mocks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coverline/internal/domain"
)

// MockReviewService is a mock implementation of service.ReviewService.
type MockReviewService struct {
	mock.Mock
}

func (m *MockReviewService) GetBenefit(ctx context.Context, benefitID uuid.UUID) (*domain.ExtractedBenefit, error) {
	args := m.Called(ctx, benefitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedBenefit), args.Error(1)
}

func (m *MockReviewService) ListReviewQueue(ctx context.Context, offset, limit int) ([]domain.ExtractedBenefit, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExtractedBenefit), args.Int(1), args.Error(2)
}

func (m *MockReviewService) Approve(ctx context.Context, benefitID uuid.UUID, reviewerID string) (*domain.ExtractedBenefit, error) {
	args := m.Called(ctx, benefitID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedBenefit), args.Error(1)
}

func (m *MockReviewService) Reject(ctx context.Context, benefitID uuid.UUID, reviewerID string) (*domain.ExtractedBenefit, error) {
	args := m.Called(ctx, benefitID, reviewerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedBenefit), args.Error(1)
}

func (m *MockReviewService) UpdateBenefitData(ctx context.Context, benefitID uuid.UUID, payload json.RawMessage, editorID *string) (*domain.ExtractedBenefit, error) {
	args := m.Called(ctx, benefitID, payload, editorID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedBenefit), args.Error(1)
}

func (m *MockReviewService) ListRevisions(ctx context.Context, benefitID uuid.UUID) ([]domain.BenefitRevision, error) {
	args := m.Called(ctx, benefitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BenefitRevision), args.Error(1)
}
