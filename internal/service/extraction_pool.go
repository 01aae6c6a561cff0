package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"coverline/internal/domain"
	"coverline/internal/metrics"
	"coverline/internal/port"
)

// ExtractionPoolConfig holds settings for the extraction worker pool.
type ExtractionPoolConfig struct {
	Concurrency int
	QueueSize   int
	// RatePerSec paces job dispatch across all workers; 0 disables pacing.
	RatePerSec float64
	Burst      int
	// JobTimeout bounds a single run; 0 means no deadline.
	JobTimeout time.Duration
}

// Job is the handle for one submitted extraction.
type Job struct {
	DocumentID uuid.UUID

	done    chan struct{}
	outcome ExtractionOutcome
}

func newJob(docID uuid.UUID) *Job {
	return &Job{DocumentID: docID, done: make(chan struct{})}
}

// Done is closed when the job has finished or was abandoned at shutdown.
func (j *Job) Done() <-chan struct{} {
	return j.done
}

// Wait blocks until the job finishes or ctx is done.
func (j *Job) Wait(ctx context.Context) (ExtractionOutcome, error) {
	select {
	case <-j.done:
		return j.outcome, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// ExtractionPool runs extractions on a bounded queue drained by a fixed number of workers.
type ExtractionPool struct {
	engine  ExtractionService
	docRepo port.DocumentRepository
	cfg     ExtractionPoolConfig
	limiter *rate.Limiter
	logger  *zap.Logger

	queue chan *Job

	mu      sync.Mutex
	active  map[uuid.UUID]*Job
	stopped bool

	wg sync.WaitGroup
}

// NewExtractionPool creates a pool. docRepo is used to record panicked runs as failed.
func NewExtractionPool(engine ExtractionService, docRepo port.DocumentRepository, cfg ExtractionPoolConfig, logger *zap.Logger) *ExtractionPool {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.QueueSize < 0 {
		cfg.QueueSize = 0
	}
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)
	}
	return &ExtractionPool{
		engine:  engine,
		docRepo: docRepo,
		cfg:     cfg,
		limiter: limiter,
		logger:  logger.Named("pool"),
		queue:   make(chan *Job, cfg.QueueSize),
		active:  make(map[uuid.UUID]*Job),
	}
}

// Submit queues an extraction for docID. A document that is already queued or
// running in this process returns its existing job.
func (p *ExtractionPool) Submit(docID uuid.UUID) (*Job, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopped {
		metrics.JobsRejected.WithLabelValues("stopped").Inc()
		return nil, domain.ErrPoolStopped
	}
	if job, ok := p.active[docID]; ok {
		return job, nil
	}

	job := newJob(docID)
	select {
	case p.queue <- job:
	default:
		metrics.JobsRejected.WithLabelValues("queue_full").Inc()
		return nil, domain.ErrExtractionQueueFull
	}
	p.active[docID] = job
	metrics.JobsSubmitted.Inc()
	metrics.QueueDepth.Set(float64(len(p.queue)))
	return job, nil
}

// Start runs the workers until ctx is canceled. It blocks until all in-flight
// extractions have finished. Jobs still queued at shutdown are abandoned and
// their documents stay pending.
func (p *ExtractionPool) Start(ctx context.Context) {
	p.logger.Info("extractionPool: started",
		zap.Int("concurrency", p.cfg.Concurrency),
		zap.Int("queue_size", p.cfg.QueueSize),
		zap.Float64("rate_per_sec", p.cfg.RatePerSec),
	)

	for i := 0; i < p.cfg.Concurrency; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}

	<-ctx.Done()
	p.logger.Info("extractionPool: shutting down, waiting for in-flight extractions...")

	p.mu.Lock()
	p.stopped = true
	p.mu.Unlock()

	p.wg.Wait()
	abandoned := p.drain()
	p.logger.Info("extractionPool: shutdown complete", zap.Int("abandoned", abandoned))
}

func (p *ExtractionPool) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-p.queue:
			metrics.QueueDepth.Set(float64(len(p.queue)))
			if err := p.limiter.Wait(ctx); err != nil {
				p.finish(job, OutcomeAborted)
				return
			}
			p.run(job)
		}
	}
}

// run executes one job under a recover boundary. The job gets a fresh context
// so in-flight extractions complete even during shutdown.
func (p *ExtractionPool) run(job *Job) {
	metrics.InFlight.Inc()
	defer metrics.InFlight.Dec()

	var (
		jobCtx context.Context
		cancel context.CancelFunc
	)
	if p.cfg.JobTimeout > 0 {
		jobCtx, cancel = context.WithTimeout(context.Background(), p.cfg.JobTimeout)
	} else {
		jobCtx, cancel = context.WithCancel(context.Background())
	}
	defer cancel()

	outcome := OutcomeFailed
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("extractionPool: extraction panicked",
				zap.String("document_id", job.DocumentID.String()),
				zap.Any("panic", r),
				zap.Stack("stack"),
			)
			p.failAfterPanic(job.DocumentID, r)
			metrics.ExtractionOutcomes.WithLabelValues(string(OutcomeFailed)).Inc()
			outcome = OutcomeFailed
		}
		p.finish(job, outcome)
	}()

	p.logger.Debug("extractionPool: dispatching document", zap.String("document_id", job.DocumentID.String()))
	outcome = p.engine.Process(jobCtx, job.DocumentID)
}

// failAfterPanic records a failed status if the run had already claimed the
// document. A document still pending is left untouched.
func (p *ExtractionPool) failAfterPanic(docID uuid.UUID, recovered interface{}) {
	ctx, cancel := context.WithTimeout(context.Background(), statusWriteTimeout)
	defer cancel()

	msg := domain.TruncateErrorMessage(fmt.Sprintf("extraction panicked: %v", recovered))
	err := p.docRepo.Transition(ctx, &domain.StatusChange{
		DocumentID:   docID,
		From:         domain.ProcessingStatusProcessing,
		To:           domain.ProcessingStatusFailed,
		ErrorMessage: &msg,
	})
	if err != nil {
		p.logger.Warn("extractionPool: no failure recorded after panic",
			zap.String("document_id", docID.String()), zap.Error(err))
	}
}

func (p *ExtractionPool) finish(job *Job, outcome ExtractionOutcome) {
	p.mu.Lock()
	if p.active[job.DocumentID] == job {
		delete(p.active, job.DocumentID)
	}
	p.mu.Unlock()

	job.outcome = outcome
	close(job.done)
}

// drain abandons every job left in the queue and returns how many there were.
func (p *ExtractionPool) drain() int {
	n := 0
	for {
		select {
		case job := <-p.queue:
			p.finish(job, OutcomeAborted)
			n++
		default:
			metrics.QueueDepth.Set(0)
			return n
		}
	}
}

// Pending returns the number of jobs queued or running.
func (p *ExtractionPool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.active)
}
