// Package metrics holds the Prometheus collectors for the extraction pipeline.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "coverline"

var (
	// JobsSubmitted counts extraction jobs accepted by the pool.
	JobsSubmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_submitted_total",
			Help:      "Total number of extraction jobs accepted into the queue",
		},
	)

	// JobsRejected counts submissions refused because the queue was full or stopped.
	// Labels: reason (queue_full, stopped)
	JobsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_rejected_total",
			Help:      "Total number of extraction jobs rejected at submission",
		},
		[]string{"reason"},
	)

	// QueueDepth is the number of jobs waiting for a worker.
	QueueDepth = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "queue_depth",
			Help:      "Number of extraction jobs waiting for a worker",
		},
	)

	// InFlight is the number of jobs currently being processed.
	InFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "jobs_in_flight",
			Help:      "Number of extraction jobs currently running",
		},
	)

	// ExtractionOutcomes counts finished extraction runs.
	// Labels: outcome (completed, failed, aborted)
	ExtractionOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "runs_total",
			Help:      "Total number of extraction runs by outcome",
		},
		[]string{"outcome"},
	)

	// ExtractionDuration tracks end-to-end extraction time.
	ExtractionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "duration_seconds",
			Help:      "Duration of extraction runs in seconds",
			Buckets:   []float64{1, 2.5, 5, 10, 20, 40, 60, 120, 300},
		},
	)

	// BenefitsWritten counts stored benefit rows.
	// Labels: benefit_type, requires_review (true, false)
	BenefitsWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "extraction",
			Name:      "benefits_written_total",
			Help:      "Total number of benefit rows written",
		},
		[]string{"benefit_type", "requires_review"},
	)

	// LLMTokens counts tokens reported by the model provider.
	// Labels: direction (input, output)
	LLMTokens = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "llm",
			Name:      "tokens_total",
			Help:      "Total number of model tokens consumed",
		},
		[]string{"direction"},
	)
)
