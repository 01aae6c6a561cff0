package llm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"coverline/internal/port"
)

// circuitState tracks rate-limit backoff for a single provider.
type circuitState struct {
	mu      sync.RWMutex
	resetAt time.Time // zero value = closed
}

func (c *circuitState) isOpenWithReset(now time.Time) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.resetAt, !c.resetAt.IsZero() && now.Before(c.resetAt)
}

func (c *circuitState) open(resetAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetAt = resetAt
}

// NamedExtractor pairs an extractor with the provider name used in logs.
type NamedExtractor struct {
	Name      string
	Extractor port.BenefitExtractor
}

// FallbackExtractor tries providers in order, skipping those whose circuit is
// open. Only rate-limit errors move on to the next provider; any other failure
// is returned as-is so a bad document is never sent twice.
type FallbackExtractor struct {
	providers []NamedExtractor
	circuits  []*circuitState
	logger    *zap.Logger
	now       func() time.Time
}

// NewFallbackExtractor creates a FallbackExtractor from an ordered provider list.
func NewFallbackExtractor(providers []NamedExtractor, logger *zap.Logger) *FallbackExtractor {
	circuits := make([]*circuitState, len(providers))
	for i := range circuits {
		circuits[i] = &circuitState{}
	}
	return &FallbackExtractor{
		providers: providers,
		circuits:  circuits,
		logger:    logger,
		now:       time.Now,
	}
}

func (f *FallbackExtractor) Extract(ctx context.Context, input port.ExtractInput) (*port.ExtractOutput, error) {
	now := f.now()
	var earliestReset time.Time

	for i, p := range f.providers {
		if resetAt, open := f.circuits[i].isOpenWithReset(now); open {
			f.logger.Info("llm.FallbackExtractor: skipping provider, circuit open",
				zap.String("provider", p.Name),
				zap.Time("reset_at", resetAt),
			)
			earliestReset = earlier(earliestReset, resetAt)
			continue
		}

		out, err := p.Extractor.Extract(ctx, input)
		if err == nil {
			return out, nil
		}

		var rlErr *RateLimitError
		if !errors.As(err, &rlErr) {
			return nil, err
		}

		resetAt := now.Add(rlErr.RetryAfter)
		f.circuits[i].open(resetAt)
		earliestReset = earlier(earliestReset, resetAt)
		f.logger.Warn("llm.FallbackExtractor: provider rate limited",
			zap.String("provider", p.Name),
			zap.Duration("retry_after", rlErr.RetryAfter),
		)
	}

	retryAfter := earliestReset.Sub(now)
	if retryAfter < time.Second {
		retryAfter = time.Second
	}
	return nil, NewRateLimitError("all", fmt.Errorf("all providers rate limited"), int(retryAfter.Seconds()))
}

func earlier(current, candidate time.Time) time.Time {
	if current.IsZero() || candidate.Before(current) {
		return candidate
	}
	return current
}
