package mocks

import (
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coverline/internal/service"
)

// MockExtractionSubmitter is a mock implementation of handler.ExtractionSubmitter.
type MockExtractionSubmitter struct {
	mock.Mock
}

func (m *MockExtractionSubmitter) Submit(docID uuid.UUID) (*service.Job, error) {
	args := m.Called(docID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Job), args.Error(1)
}
