package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coverline/internal/port"
	"coverline/mocks"
)

func newTestFallback(primary, secondary *mocks.MockBenefitExtractor, now time.Time) *FallbackExtractor {
	f := NewFallbackExtractor([]NamedExtractor{
		{Name: "claude", Extractor: primary},
		{Name: "gemini", Extractor: secondary},
	}, zap.NewNop())
	f.now = func() time.Time { return now }
	return f
}

func TestFallbackExtractor_PrimarySucceeds(t *testing.T) {
	primary, secondary := new(mocks.MockBenefitExtractor), new(mocks.MockBenefitExtractor)
	want := &port.ExtractOutput{ModelUsed: "claude-sonnet"}
	primary.On("Extract", mock.Anything, mock.Anything).Return(want, nil).Once()

	out, err := newTestFallback(primary, secondary, time.Now()).Extract(context.Background(), port.ExtractInput{})

	require.NoError(t, err)
	assert.Same(t, want, out)
	secondary.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestFallbackExtractor_RateLimitFallsThrough(t *testing.T) {
	primary, secondary := new(mocks.MockBenefitExtractor), new(mocks.MockBenefitExtractor)
	want := &port.ExtractOutput{ModelUsed: "gemini-2.0-flash"}
	primary.On("Extract", mock.Anything, mock.Anything).
		Return(nil, NewRateLimitError("claude", errors.New("429"), 30)).Once()
	secondary.On("Extract", mock.Anything, mock.Anything).Return(want, nil).Twice()

	now := time.Now()
	f := newTestFallback(primary, secondary, now)

	out, err := f.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Same(t, want, out)

	// Circuit is open for the primary, so the second call goes straight to the secondary.
	out, err = f.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)
	assert.Same(t, want, out)

	primary.AssertNumberOfCalls(t, "Extract", 1)
	secondary.AssertExpectations(t)
}

func TestFallbackExtractor_CircuitCloses(t *testing.T) {
	primary, secondary := new(mocks.MockBenefitExtractor), new(mocks.MockBenefitExtractor)
	primary.On("Extract", mock.Anything, mock.Anything).
		Return(nil, NewRateLimitError("claude", errors.New("429"), 10)).Once()
	primary.On("Extract", mock.Anything, mock.Anything).Return(&port.ExtractOutput{}, nil).Once()
	secondary.On("Extract", mock.Anything, mock.Anything).Return(&port.ExtractOutput{}, nil).Once()

	now := time.Now()
	f := newTestFallback(primary, secondary, now)
	_, err := f.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)

	f.now = func() time.Time { return now.Add(11 * time.Second) }
	_, err = f.Extract(context.Background(), port.ExtractInput{})
	require.NoError(t, err)

	primary.AssertNumberOfCalls(t, "Extract", 2)
	secondary.AssertNumberOfCalls(t, "Extract", 1)
}

func TestFallbackExtractor_NonRateLimitErrorNotRetried(t *testing.T) {
	primary, secondary := new(mocks.MockBenefitExtractor), new(mocks.MockBenefitExtractor)
	malformed := errors.Join(ErrMalformedOutput, errors.New("unexpected token"))
	primary.On("Extract", mock.Anything, mock.Anything).Return(nil, malformed).Once()

	_, err := newTestFallback(primary, secondary, time.Now()).Extract(context.Background(), port.ExtractInput{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedOutput))
	secondary.AssertNotCalled(t, "Extract", mock.Anything, mock.Anything)
}

func TestFallbackExtractor_AllRateLimited(t *testing.T) {
	primary, secondary := new(mocks.MockBenefitExtractor), new(mocks.MockBenefitExtractor)
	primary.On("Extract", mock.Anything, mock.Anything).
		Return(nil, NewRateLimitError("claude", errors.New("429"), 45)).Once()
	secondary.On("Extract", mock.Anything, mock.Anything).
		Return(nil, NewRateLimitError("gemini", errors.New("429"), 20)).Once()

	now := time.Now()
	f := newTestFallback(primary, secondary, now)

	_, err := f.Extract(context.Background(), port.ExtractInput{})
	var rlErr *RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "all", rlErr.Provider)
	assert.Equal(t, 20*time.Second, rlErr.RetryAfter)

	// Both circuits open: no provider is called, earliest reset wins.
	f.now = func() time.Time { return now.Add(5 * time.Second) }
	_, err = f.Extract(context.Background(), port.ExtractInput{})
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, 15*time.Second, rlErr.RetryAfter)

	primary.AssertNumberOfCalls(t, "Extract", 1)
	secondary.AssertNumberOfCalls(t, "Extract", 1)
}
