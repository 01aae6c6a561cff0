package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"coverline/internal/domain"
)

// MockReviewNotifier is a mock implementation of port.ReviewNotifier.
type MockReviewNotifier struct {
	mock.Mock
}

func (m *MockReviewNotifier) NotifyReviewRequired(ctx context.Context, doc *domain.Document, benefits []domain.ExtractedBenefit) error {
	args := m.Called(ctx, doc, benefits)
	return args.Error(0)
}
