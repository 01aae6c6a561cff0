package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coverline/internal/service"
)

// MockExtractionService is a mock implementation of service.ExtractionService.
type MockExtractionService struct {
	mock.Mock
}

func (m *MockExtractionService) Process(ctx context.Context, docID uuid.UUID) service.ExtractionOutcome {
	args := m.Called(ctx, docID)
	return args.Get(0).(service.ExtractionOutcome)
}
