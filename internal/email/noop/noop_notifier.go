package noop

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"coverline/internal/domain"
	"coverline/internal/port"
)

type noopNotifier struct {
	frontendURL string
	logger      *zap.Logger
}

// NewNoopNotifier creates a ReviewNotifier that only logs the review link.
func NewNoopNotifier(frontendURL string, logger *zap.Logger) port.ReviewNotifier {
	return &noopNotifier{frontendURL: frontendURL, logger: logger}
}

func (n *noopNotifier) NotifyReviewRequired(_ context.Context, doc *domain.Document, benefits []domain.ExtractedBenefit) error {
	flagged := 0
	for i := range benefits {
		if benefits[i].RequiresReview {
			flagged++
		}
	}
	n.logger.Info("[NOOP EMAIL] review required",
		zap.String("document_id", doc.ID.String()),
		zap.Int("flagged", flagged),
		zap.String("url", fmt.Sprintf("%s/review/%s", n.frontendURL, doc.ID)),
	)
	return nil
}
