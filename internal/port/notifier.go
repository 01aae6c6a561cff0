package port

import (
	"context"

	"coverline/internal/domain"
)

// ReviewNotifier tells human reviewers that a completed extraction needs attention.
type ReviewNotifier interface {
	NotifyReviewRequired(ctx context.Context, doc *domain.Document, benefits []domain.ExtractedBenefit) error
}
