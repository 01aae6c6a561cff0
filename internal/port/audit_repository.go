package port

import (
	"context"

	"github.com/google/uuid"

	"coverline/internal/domain"
)

// AuditRepository defines the contract for the append-only audit log.
type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]domain.AuditEntry, error)
}
