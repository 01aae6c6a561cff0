package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coverline/internal/domain"
	"coverline/internal/metrics"
	"coverline/internal/port"
)

// statusWriteTimeout bounds the failure-path status write, which runs even
// after the job context has expired.
const statusWriteTimeout = 10 * time.Second

// ExtractionOutcome is how one extraction run ended.
type ExtractionOutcome string

const (
	OutcomeCompleted ExtractionOutcome = "completed"
	OutcomeFailed    ExtractionOutcome = "failed"
	// OutcomeAborted means the run stopped before claiming the document.
	OutcomeAborted ExtractionOutcome = "aborted"
)

// ExtractionService runs the extraction pipeline for a single document.
type ExtractionService interface {
	// Process never returns an error. Every failure after the document is
	// claimed is recorded on the document itself.
	Process(ctx context.Context, docID uuid.UUID) ExtractionOutcome
}

// ExtractionDeps groups the collaborators of the extraction engine.
type ExtractionDeps struct {
	Documents port.DocumentRepository
	Benefits  port.BenefitRepository
	Audit     port.AuditRepository
	Storage   port.ObjectStorage
	Extractor port.BenefitExtractor
	Lock      port.ExtractionLock
	Notifier  port.ReviewNotifier
}

type extractionService struct {
	docRepo     port.DocumentRepository
	benefitRepo port.BenefitRepository
	auditRepo   port.AuditRepository
	storage     port.ObjectStorage
	extractor   port.BenefitExtractor
	lock        port.ExtractionLock
	notifier    port.ReviewNotifier
	logger      *zap.Logger
	now         func() time.Time
}

// NewExtractionService creates the extraction engine. Notifier may be nil.
func NewExtractionService(deps ExtractionDeps, logger *zap.Logger) ExtractionService {
	return &extractionService{
		docRepo:     deps.Documents,
		benefitRepo: deps.Benefits,
		auditRepo:   deps.Audit,
		storage:     deps.Storage,
		extractor:   deps.Extractor,
		lock:        deps.Lock,
		notifier:    deps.Notifier,
		logger:      logger.Named("extraction"),
		now:         time.Now,
	}
}

func (s *extractionService) Process(ctx context.Context, docID uuid.UUID) ExtractionOutcome {
	start := s.now()
	log := s.logger.With(zap.String("document_id", docID.String()))

	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		log.Warn("extractionService.Process: document not loaded, aborting", zap.Error(err))
		return s.record(OutcomeAborted, start)
	}

	release, err := s.lock.Acquire(ctx, docID)
	if err != nil {
		log.Info("extractionService.Process: extraction lock not acquired, aborting", zap.Error(err))
		return s.record(OutcomeAborted, start)
	}
	defer release()

	err = s.docRepo.Transition(ctx, &domain.StatusChange{
		DocumentID: docID,
		From:       domain.ProcessingStatusPending,
		To:         domain.ProcessingStatusProcessing,
	})
	if err != nil {
		log.Info("extractionService.Process: document not claimable, aborting",
			zap.String("status", string(doc.ProcessingStatus)), zap.Error(err))
		return s.record(OutcomeAborted, start)
	}
	doc.ProcessingStatus = domain.ProcessingStatusProcessing
	doc.ErrorMessage = nil

	log.Info("extractionService.Process: extraction started", zap.String("file_ref", doc.FileRef))

	if !domain.AllowedContentTypes[doc.MimeType] {
		s.fail(ctx, doc, fmt.Sprintf("%v: %s", domain.ErrUnsupportedFileType, doc.MimeType))
		return s.record(OutcomeFailed, start)
	}

	fileBytes, err := s.storage.Download(ctx, doc.FileRef)
	if err != nil {
		s.fail(ctx, doc, fmt.Sprintf("downloading file: %v", err))
		return s.record(OutcomeFailed, start)
	}

	output, err := s.extractor.Extract(ctx, port.ExtractInput{
		FileBytes:   fileBytes,
		ContentType: doc.MimeType,
		CardName:    deref(doc.CardName),
		CardIssuer:  deref(doc.CardIssuer),
	})
	if err != nil {
		s.fail(ctx, doc, fmt.Sprintf("extracting benefits: %v", err))
		return s.record(OutcomeFailed, start)
	}
	metrics.LLMTokens.WithLabelValues("input").Add(float64(output.Usage.InputTokens))
	metrics.LLMTokens.WithLabelValues("output").Add(float64(output.Usage.OutputTokens))

	evaluated, overall := EvaluateConfidence(output.Result)
	records := buildBenefitRecords(doc, output.Result, evaluated)

	if err := s.benefitRepo.CreateBatch(ctx, records); err != nil {
		s.fail(ctx, doc, fmt.Sprintf("writing benefits: %v", err))
		return s.record(OutcomeFailed, start)
	}
	for i := range records {
		metrics.BenefitsWritten.WithLabelValues(
			string(records[i].BenefitType), strconv.FormatBool(records[i].RequiresReview),
		).Inc()
	}

	processedAt := s.now().UTC()
	err = s.docRepo.Transition(ctx, &domain.StatusChange{
		DocumentID:        docID,
		From:              domain.ProcessingStatusProcessing,
		To:                domain.ProcessingStatusCompleted,
		OverallConfidence: &overall,
		ProcessedAt:       &processedAt,
	})
	if err != nil {
		log.Error("extractionService.Process: failed to mark document completed", zap.Error(err))
		return s.record(OutcomeFailed, start)
	}
	doc.ProcessingStatus = domain.ProcessingStatusCompleted
	doc.OverallConfidence = &overall
	doc.ProcessedAt = &processedAt

	duration := s.now().Sub(start)
	s.audit(ctx, doc, output, records, duration)

	log.Info("extractionService.Process: extraction completed",
		zap.Int("benefits", len(records)),
		zap.Float64("overall_confidence", overall),
		zap.String("model", output.ModelUsed),
		zap.Duration("duration", duration),
	)

	if s.notifier != nil && anyRequiresReview(records) {
		if err := s.notifier.NotifyReviewRequired(ctx, doc, records); err != nil {
			log.Warn("extractionService.Process: review notification failed", zap.Error(err))
		}
	}

	return s.record(OutcomeCompleted, start)
}

// fail moves the document to failed with a bounded error message. It uses a
// context detached from the job so an expired deadline still gets recorded.
func (s *extractionService) fail(ctx context.Context, doc *domain.Document, errMsg string) {
	msg := domain.TruncateErrorMessage(errMsg)
	s.logger.Warn("extractionService.fail: extraction failed",
		zap.String("document_id", doc.ID.String()), zap.String("error", msg))

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), statusWriteTimeout)
	defer cancel()

	err := s.docRepo.Transition(writeCtx, &domain.StatusChange{
		DocumentID:   doc.ID,
		From:         domain.ProcessingStatusProcessing,
		To:           domain.ProcessingStatusFailed,
		ErrorMessage: &msg,
	})
	if err != nil {
		s.logger.Error("extractionService.fail: failed to record failure",
			zap.String("document_id", doc.ID.String()), zap.Error(err))
		return
	}
	doc.ProcessingStatus = domain.ProcessingStatusFailed
	doc.ErrorMessage = &msg
}

// audit records a completed extraction. Failures are logged but never change the outcome.
func (s *extractionService) audit(ctx context.Context, doc *domain.Document, output *port.ExtractOutput, records []domain.ExtractedBenefit, duration time.Duration) {
	flagged := 0
	for i := range records {
		if records[i].RequiresReview {
			flagged++
		}
	}
	details, _ := json.Marshal(map[string]interface{}{
		"model":              output.ModelUsed,
		"benefits_count":     len(records),
		"requires_review":    flagged,
		"overall_confidence": doc.OverallConfidence,
	})
	entry := &domain.AuditEntry{
		ID:           uuid.New(),
		Action:       domain.AuditExtractionCompleted,
		EntityType:   domain.AuditEntityDocument,
		EntityID:     doc.ID,
		InputTokens:  output.Usage.InputTokens,
		OutputTokens: output.Usage.OutputTokens,
		DurationMs:   duration.Milliseconds(),
		Details:      details,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.Error("extractionService.audit: failed to write audit entry",
			zap.String("document_id", doc.ID.String()), zap.Error(err))
	}
}

func (s *extractionService) record(outcome ExtractionOutcome, start time.Time) ExtractionOutcome {
	metrics.ExtractionOutcomes.WithLabelValues(string(outcome)).Inc()
	if outcome != OutcomeAborted {
		metrics.ExtractionDuration.Observe(s.now().Sub(start).Seconds())
	}
	return outcome
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
