package port

import (
	"context"

	"github.com/google/uuid"

	"coverline/internal/domain"
)

// DocumentRepository defines the contract for document persistence.
type DocumentRepository interface {
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	// Transition applies change only if the stored status still equals change.From.
	Transition(ctx context.Context, change *domain.StatusChange) error
	Delete(ctx context.Context, docID uuid.UUID) error
	Ping(ctx context.Context) error
}
