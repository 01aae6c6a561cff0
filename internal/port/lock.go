package port

import (
	"context"

	"github.com/google/uuid"
)

// ExtractionLock guards a document for the duration of one extraction run.
// Acquire returns domain.ErrExtractionInProgress when another holder exists.
type ExtractionLock interface {
	Acquire(ctx context.Context, docID uuid.UUID) (release func(), err error)
}
