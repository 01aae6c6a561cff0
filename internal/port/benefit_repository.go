package port

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"coverline/internal/domain"
)

// BenefitRepository defines the contract for extracted benefit persistence.
type BenefitRepository interface {
	// CreateBatch inserts all rows in one transaction; either every row is stored or none.
	CreateBatch(ctx context.Context, benefits []domain.ExtractedBenefit) error
	GetByID(ctx context.Context, benefitID uuid.UUID) (*domain.ExtractedBenefit, error)
	ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.ExtractedBenefit, error)
	ListPendingReview(ctx context.Context, offset, limit int) ([]domain.ExtractedBenefit, int, error)
	SetApproval(ctx context.Context, benefitID uuid.UUID, approved bool, reviewerID string, reviewedAt time.Time) (*domain.ExtractedBenefit, error)
	// UpdateData replaces the payload and appends the superseded one to the revision history.
	UpdateData(ctx context.Context, benefitID uuid.UUID, data json.RawMessage, editedBy *string) (*domain.ExtractedBenefit, error)
	ListRevisions(ctx context.Context, benefitID uuid.UUID) ([]domain.BenefitRevision, error)
	DeleteByDocument(ctx context.Context, docID uuid.UUID) (int64, error)
}
