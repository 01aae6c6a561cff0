package service_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coverline/internal/domain"
	"coverline/internal/service"
	"coverline/mocks"
)

// fakeEngine runs fn for every document; a nil fn completes immediately.
type fakeEngine struct {
	fn func(ctx context.Context, docID uuid.UUID) service.ExtractionOutcome
}

func (e *fakeEngine) Process(ctx context.Context, docID uuid.UUID) service.ExtractionOutcome {
	if e.fn == nil {
		return service.OutcomeCompleted
	}
	return e.fn(ctx, docID)
}

func startPool(t *testing.T, engine service.ExtractionService, docRepo *mocks.MockDocumentRepo, cfg service.ExtractionPoolConfig) (*service.ExtractionPool, func()) {
	t.Helper()
	pool := service.NewExtractionPool(engine, docRepo, cfg, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Start(ctx)
		close(done)
	}()
	stop := func() {
		cancel()
		<-done
	}
	return pool, stop
}

func waitCtx(t *testing.T) context.Context {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)
	return ctx
}

func TestExtractionPool_RunsSubmittedJob(t *testing.T) {
	docID := uuid.New()
	engine := new(mocks.MockExtractionService)
	engine.On("Process", mock.Anything, docID).Return(service.OutcomeCompleted).Once()

	pool, stop := startPool(t, engine, new(mocks.MockDocumentRepo), service.ExtractionPoolConfig{Concurrency: 2, QueueSize: 4})
	defer stop()

	job, err := pool.Submit(docID)
	require.NoError(t, err)

	outcome, err := job.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeCompleted, outcome)
	assert.Equal(t, 0, pool.Pending())
	engine.AssertExpectations(t)
}

func TestExtractionPool_ReportsEngineOutcome(t *testing.T) {
	docID := uuid.New()
	engine := new(mocks.MockExtractionService)
	engine.On("Process", mock.Anything, docID).Return(service.OutcomeFailed).Once()

	pool, stop := startPool(t, engine, new(mocks.MockDocumentRepo), service.ExtractionPoolConfig{Concurrency: 1, QueueSize: 1})
	defer stop()

	job, err := pool.Submit(docID)
	require.NoError(t, err)

	outcome, err := job.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeFailed, outcome)
	engine.AssertExpectations(t)
}

func TestExtractionPool_DeduplicatesActiveDocument(t *testing.T) {
	release := make(chan struct{})
	var calls int32
	engine := &fakeEngine{fn: func(_ context.Context, _ uuid.UUID) service.ExtractionOutcome {
		atomic.AddInt32(&calls, 1)
		<-release
		return service.OutcomeCompleted
	}}
	pool, stop := startPool(t, engine, new(mocks.MockDocumentRepo), service.ExtractionPoolConfig{Concurrency: 1, QueueSize: 4})
	defer stop()

	docID := uuid.New()
	first, err := pool.Submit(docID)
	require.NoError(t, err)
	second, err := pool.Submit(docID)
	require.NoError(t, err)
	assert.Same(t, first, second)

	close(release)
	_, err = first.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestExtractionPool_QueueFull(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	engine := &fakeEngine{fn: func(_ context.Context, _ uuid.UUID) service.ExtractionOutcome {
		started <- struct{}{}
		<-release
		return service.OutcomeCompleted
	}}
	pool, stop := startPool(t, engine, new(mocks.MockDocumentRepo), service.ExtractionPoolConfig{Concurrency: 1, QueueSize: 1})
	defer stop()
	defer close(release)

	_, err := pool.Submit(uuid.New())
	require.NoError(t, err)
	<-started // worker busy

	_, err = pool.Submit(uuid.New())
	require.NoError(t, err) // fills the queue

	_, err = pool.Submit(uuid.New())
	assert.ErrorIs(t, err, domain.ErrExtractionQueueFull)
}

func TestExtractionPool_ConcurrencyCap(t *testing.T) {
	var running, peak int32
	engine := &fakeEngine{fn: func(_ context.Context, _ uuid.UUID) service.ExtractionOutcome {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return service.OutcomeCompleted
	}}
	pool, stop := startPool(t, engine, new(mocks.MockDocumentRepo), service.ExtractionPoolConfig{Concurrency: 2, QueueSize: 10})
	defer stop()

	var jobs []*service.Job
	for i := 0; i < 6; i++ {
		job, err := pool.Submit(uuid.New())
		require.NoError(t, err)
		jobs = append(jobs, job)
	}
	for _, job := range jobs {
		_, err := job.Wait(waitCtx(t))
		require.NoError(t, err)
	}

	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(2))
}

func TestExtractionPool_PanicRecordedAsFailure(t *testing.T) {
	docRepo := new(mocks.MockDocumentRepo)
	docID := uuid.New()
	docRepo.On("Transition", mock.Anything, mock.MatchedBy(func(c *domain.StatusChange) bool {
		return c.DocumentID == docID &&
			c.From == domain.ProcessingStatusProcessing &&
			c.To == domain.ProcessingStatusFailed &&
			c.ErrorMessage != nil
	})).Return(nil)

	engine := &fakeEngine{fn: func(_ context.Context, id uuid.UUID) service.ExtractionOutcome {
		if id == docID {
			panic("nil map write")
		}
		return service.OutcomeCompleted
	}}
	pool, stop := startPool(t, engine, docRepo, service.ExtractionPoolConfig{Concurrency: 1, QueueSize: 1})
	defer stop()

	job, err := pool.Submit(docID)
	require.NoError(t, err)

	outcome, err := job.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeFailed, outcome)
	docRepo.AssertExpectations(t)

	// The pool keeps serving after a panic.
	next, err := pool.Submit(uuid.New())
	require.NoError(t, err)
	<-next.Done()
}

func TestExtractionPool_ShutdownAbandonsQueuedJobs(t *testing.T) {
	started := make(chan struct{}, 1)
	release := make(chan struct{})
	engine := &fakeEngine{fn: func(_ context.Context, _ uuid.UUID) service.ExtractionOutcome {
		started <- struct{}{}
		<-release
		return service.OutcomeCompleted
	}}
	pool := service.NewExtractionPool(engine, new(mocks.MockDocumentRepo),
		service.ExtractionPoolConfig{Concurrency: 1, QueueSize: 2}, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pool.Start(ctx)
		close(done)
	}()

	inflight, err := pool.Submit(uuid.New())
	require.NoError(t, err)
	<-started
	queued, err := pool.Submit(uuid.New())
	require.NoError(t, err)

	cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		outcome, err := queued.Wait(waitCtx(t))
		assert.NoError(t, err)
		assert.Equal(t, service.OutcomeAborted, outcome)
	}()

	// Start does not return while an extraction is still running.
	select {
	case <-done:
		t.Fatal("pool stopped with an extraction in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	<-done
	wg.Wait()

	outcome, err := inflight.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeCompleted, outcome)

	_, err = pool.Submit(uuid.New())
	assert.ErrorIs(t, err, domain.ErrPoolStopped)
}

func TestExtractionPool_JobTimeoutPropagates(t *testing.T) {
	engine := &fakeEngine{fn: func(ctx context.Context, _ uuid.UUID) service.ExtractionOutcome {
		<-ctx.Done()
		return service.OutcomeFailed
	}}
	pool, stop := startPool(t, engine, new(mocks.MockDocumentRepo), service.ExtractionPoolConfig{
		Concurrency: 1, QueueSize: 1, JobTimeout: 30 * time.Millisecond,
	})
	defer stop()

	job, err := pool.Submit(uuid.New())
	require.NoError(t, err)

	outcome, err := job.Wait(waitCtx(t))
	require.NoError(t, err)
	assert.Equal(t, service.OutcomeFailed, outcome)
}
