// Package poller observes a document's extraction status from the client side
// and turns the observed lifecycle into exactly one terminal callback.
package poller

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coverline/internal/domain"
)

const (
	DefaultInterval    = time.Second
	DefaultMaxAttempts = 30

	// FallbackFailureReason is reported when a failed document carries no message.
	FallbackFailureReason = "Extraction failed"
)

var errEmptySnapshot = errors.New("status source returned no snapshot")

// StatusSnapshot is one observation of a document's processing status.
type StatusSnapshot struct {
	DocumentID        uuid.UUID               `json:"id"`
	Status            domain.ProcessingStatus `json:"processing_status"`
	ErrorMessage      *string                 `json:"error_message"`
	OverallConfidence *float64                `json:"overall_confidence"`
}

// StatusSource reads the current status of a document.
type StatusSource interface {
	GetStatus(ctx context.Context, docID uuid.UUID) (*StatusSnapshot, error)
}

// Config holds the polling cadence and attempt budget.
type Config struct {
	Interval    time.Duration
	MaxAttempts int
}

// Callbacks are the terminal outcomes of a session. At most one fires per
// session. Nil callbacks are skipped.
type Callbacks struct {
	OnComplete func(docID uuid.UUID)
	OnFailed   func(docID uuid.UUID, reason string)
	OnTimeout  func(docID uuid.UUID)
}

type session struct {
	docID  uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc
}

// Coordinator runs at most one polling session at a time. Each cycle issues
// one status query and schedules the next cycle only after that query has
// returned.
type Coordinator struct {
	source StatusSource
	cfg    Config
	cb     Callbacks
	logger *zap.Logger

	mu       sync.Mutex
	current  *session
	attempts int
	closed   bool

	// cbMu serializes callbacks so Close can wait for one already running.
	cbMu sync.Mutex
}

// New creates a Coordinator. Zero config values take the defaults.
func New(source StatusSource, cfg Config, cb Callbacks, logger *zap.Logger) *Coordinator {
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultMaxAttempts
	}
	return &Coordinator{
		source: source,
		cfg:    cfg,
		cb:     cb,
		logger: logger.Named("poller"),
	}
}

// StartPolling begins observing docID. Any prior session is superseded and the
// attempt budget resets. The first query is issued immediately.
func (c *Coordinator) StartPolling(docID uuid.UUID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.current != nil {
		c.current.cancel()
	}

	ctx, cancel := context.WithCancel(context.Background())
	s := &session{docID: docID, ctx: ctx, cancel: cancel}
	c.current = s
	c.attempts = 0

	go c.loop(s)
}

// StopPolling cancels the active session, if any, and resets state. It is
// safe to call repeatedly.
func (c *Coordinator) StopPolling() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

// Close tears the coordinator down. After Close returns no callback runs and
// no state changes, even for a query that was already in flight. Close must
// not be called from inside a callback.
func (c *Coordinator) Close() {
	c.mu.Lock()
	c.closed = true
	c.stopLocked()
	c.mu.Unlock()

	c.cbMu.Lock()
	c.cbMu.Unlock() //nolint:staticcheck // waits out a running callback
}

// Active reports whether a session is in progress.
func (c *Coordinator) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil
}

// Attempts returns the number of cycles counted in the current or most recent session.
func (c *Coordinator) Attempts() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attempts
}

func (c *Coordinator) stopLocked() {
	if c.current != nil {
		c.current.cancel()
		c.current = nil
	}
	c.attempts = 0
}

// live reports whether s is still the coordinator's session. Caller holds mu.
func (c *Coordinator) live(s *session) bool {
	return !c.closed && c.current == s
}

func (c *Coordinator) loop(s *session) {
	log := c.logger.With(zap.String("document_id", s.docID.String()))
	for {
		c.mu.Lock()
		if !c.live(s) {
			c.mu.Unlock()
			return
		}
		c.attempts++
		if c.attempts > c.cfg.MaxAttempts {
			attempts := c.attempts - 1
			c.mu.Unlock()
			log.Info("coordinator.loop: attempt budget exhausted", zap.Int("attempts", attempts))
			c.finish(s, func() {
				if c.cb.OnTimeout != nil {
					c.cb.OnTimeout(s.docID)
				}
			})
			return
		}
		c.mu.Unlock()

		snap, err := c.source.GetStatus(s.ctx, s.docID)
		if err == nil && snap == nil {
			err = errEmptySnapshot
		}
		if err != nil {
			log.Debug("coordinator.loop: status query failed, retrying", zap.Error(err))
		} else {
			switch snap.Status {
			case domain.ProcessingStatusCompleted:
				c.finish(s, func() {
					if c.cb.OnComplete != nil {
						c.cb.OnComplete(s.docID)
					}
				})
				return
			case domain.ProcessingStatusFailed:
				reason := FallbackFailureReason
				if snap.ErrorMessage != nil && *snap.ErrorMessage != "" {
					reason = *snap.ErrorMessage
				}
				c.finish(s, func() {
					if c.cb.OnFailed != nil {
						c.cb.OnFailed(s.docID, reason)
					}
				})
				return
			}
		}

		timer := time.NewTimer(c.cfg.Interval)
		select {
		case <-s.ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
}

// finish ends s and runs fire if s was still live.
func (c *Coordinator) finish(s *session, fire func()) {
	c.cbMu.Lock()
	defer c.cbMu.Unlock()

	c.mu.Lock()
	if !c.live(s) {
		c.mu.Unlock()
		return
	}
	c.current = nil
	s.cancel()
	c.mu.Unlock()

	fire()
}
