package lock

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"coverline/internal/domain"
	"coverline/internal/port"
)

// MemoryLock is a process-local ExtractionLock.
type MemoryLock struct {
	mu   sync.Mutex
	held map[uuid.UUID]struct{}
}

// NewMemoryLock creates an in-process lock.
func NewMemoryLock() *MemoryLock {
	return &MemoryLock{held: make(map[uuid.UUID]struct{})}
}

var _ port.ExtractionLock = (*MemoryLock)(nil)

func (l *MemoryLock) Acquire(_ context.Context, docID uuid.UUID) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.held[docID]; ok {
		return nil, domain.ErrExtractionInProgress
	}
	l.held[docID] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			delete(l.held, docID)
			l.mu.Unlock()
		})
	}, nil
}
