package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockExtractionLock is a mock implementation of port.ExtractionLock.
type MockExtractionLock struct {
	mock.Mock
}

func (m *MockExtractionLock) Acquire(ctx context.Context, docID uuid.UUID) (func(), error) {
	args := m.Called(ctx, docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(func()), args.Error(1)
}
