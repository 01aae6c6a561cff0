package port

import "context"

// ObjectStorage abstracts the collaborator-owned file store holding uploaded documents.
type ObjectStorage interface {
	Download(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}
