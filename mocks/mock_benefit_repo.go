package mocks

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coverline/internal/domain"
)

// MockBenefitRepo is a mock implementation of port.BenefitRepository.
type MockBenefitRepo struct {
	mock.Mock
}

func (m *MockBenefitRepo) CreateBatch(ctx context.Context, benefits []domain.ExtractedBenefit) error {
	args := m.Called(ctx, benefits)
	return args.Error(0)
}

func (m *MockBenefitRepo) GetByID(ctx context.Context, benefitID uuid.UUID) (*domain.ExtractedBenefit, error) {
	args := m.Called(ctx, benefitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedBenefit), args.Error(1)
}

func (m *MockBenefitRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.ExtractedBenefit, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractedBenefit), args.Error(1)
}

func (m *MockBenefitRepo) ListPendingReview(ctx context.Context, offset, limit int) ([]domain.ExtractedBenefit, int, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]domain.ExtractedBenefit), args.Int(1), args.Error(2)
}

func (m *MockBenefitRepo) SetApproval(ctx context.Context, benefitID uuid.UUID, approved bool, reviewerID string, reviewedAt time.Time) (*domain.ExtractedBenefit, error) {
	args := m.Called(ctx, benefitID, approved, reviewerID, reviewedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedBenefit), args.Error(1)
}

func (m *MockBenefitRepo) UpdateData(ctx context.Context, benefitID uuid.UUID, data json.RawMessage, editedBy *string) (*domain.ExtractedBenefit, error) {
	args := m.Called(ctx, benefitID, data, editedBy)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ExtractedBenefit), args.Error(1)
}

func (m *MockBenefitRepo) ListRevisions(ctx context.Context, benefitID uuid.UUID) ([]domain.BenefitRevision, error) {
	args := m.Called(ctx, benefitID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.BenefitRevision), args.Error(1)
}

func (m *MockBenefitRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) (int64, error) {
	args := m.Called(ctx, docID)
	return args.Get(0).(int64), args.Error(1)
}
