package mocks

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coverline/internal/domain"
)

// MockDocumentService is a mock implementation of service.DocumentService.
type MockDocumentService struct {
	mock.Mock
}

func (m *MockDocumentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Document), args.Error(1)
}

func (m *MockDocumentService) ListBenefits(ctx context.Context, docID uuid.UUID) ([]domain.ExtractedBenefit, error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractedBenefit), args.Error(1)
}

func (m *MockDocumentService) ExportBenefits(ctx context.Context, docID uuid.UUID, format domain.ExportFormat, w io.Writer) (string, error) {
	args := m.Called(ctx, docID, format, w)
	return args.String(0), args.Error(1)
}

func (m *MockDocumentService) Delete(ctx context.Context, docID uuid.UUID, actorID *string) error {
	args := m.Called(ctx, docID, actorID)
	return args.Error(0)
}
