package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coverline/internal/domain"
	"coverline/internal/export"
	"coverline/internal/port"
)

// DocumentService defines the document read, export, and deletion contract.
type DocumentService interface {
	GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error)
	ListBenefits(ctx context.Context, docID uuid.UUID) ([]domain.ExtractedBenefit, error)
	// ExportBenefits writes the document's benefits to w and returns a download filename.
	ExportBenefits(ctx context.Context, docID uuid.UUID, format domain.ExportFormat, w io.Writer) (string, error)
	Delete(ctx context.Context, docID uuid.UUID, actorID *string) error
}

type documentService struct {
	docRepo     port.DocumentRepository
	benefitRepo port.BenefitRepository
	auditRepo   port.AuditRepository
	storage     port.ObjectStorage
	logger      *zap.Logger
	now         func() time.Time
}

// NewDocumentService creates a new DocumentService implementation.
func NewDocumentService(
	docRepo port.DocumentRepository,
	benefitRepo port.BenefitRepository,
	auditRepo port.AuditRepository,
	storage port.ObjectStorage,
	logger *zap.Logger,
) DocumentService {
	return &documentService{
		docRepo:     docRepo,
		benefitRepo: benefitRepo,
		auditRepo:   auditRepo,
		storage:     storage,
		logger:      logger.Named("documents"),
		now:         time.Now,
	}
}

func (s *documentService) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	return s.docRepo.GetByID(ctx, docID)
}

func (s *documentService) ListBenefits(ctx context.Context, docID uuid.UUID) ([]domain.ExtractedBenefit, error) {
	if _, err := s.docRepo.GetByID(ctx, docID); err != nil {
		return nil, err
	}
	benefits, err := s.benefitRepo.ListByDocument(ctx, docID)
	if err != nil {
		return nil, err
	}
	if benefits == nil {
		benefits = []domain.ExtractedBenefit{}
	}
	return benefits, nil
}

func (s *documentService) ExportBenefits(ctx context.Context, docID uuid.UUID, format domain.ExportFormat, w io.Writer) (string, error) {
	if format != domain.ExportFormatCSV && format != domain.ExportFormatXLSX {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidExportFormat, format)
	}

	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return "", err
	}
	benefits, err := s.benefitRepo.ListByDocument(ctx, docID)
	if err != nil {
		return "", err
	}

	label := doc.ID.String()
	if doc.CardName != nil && *doc.CardName != "" {
		label = *doc.CardName
	}
	filename := export.BuildFilename(label, format, s.now())

	switch format {
	case domain.ExportFormatXLSX:
		if err := export.WriteXLSX(w, benefits); err != nil {
			return "", err
		}
	default:
		if _, err := w.Write(export.BOM); err != nil {
			return "", fmt.Errorf("documentService.ExportBenefits: %w", err)
		}
		cw := export.NewCSVWriter(w)
		if err := cw.WriteHeader(); err != nil {
			return "", fmt.Errorf("documentService.ExportBenefits: %w", err)
		}
		if err := cw.WriteBenefits(benefits); err != nil {
			return "", fmt.Errorf("documentService.ExportBenefits: %w", err)
		}
		cw.Flush()
		if err := cw.Error(); err != nil {
			return "", fmt.Errorf("documentService.ExportBenefits: %w", err)
		}
	}
	return filename, nil
}

// Delete removes a document with its benefits and stored file. Benefit and file
// cleanup failures are logged and do not block deleting the document row.
func (s *documentService) Delete(ctx context.Context, docID uuid.UUID, actorID *string) error {
	doc, err := s.docRepo.GetByID(ctx, docID)
	if err != nil {
		return err
	}
	log := s.logger.With(zap.String("document_id", docID.String()))

	removed, err := s.benefitRepo.DeleteByDocument(ctx, docID)
	if err != nil {
		log.Warn("documentService.Delete: failed to delete benefits", zap.Error(err))
	}

	if doc.FileRef != "" {
		if err := s.storage.Delete(ctx, doc.FileRef); err != nil {
			log.Warn("documentService.Delete: failed to delete stored file",
				zap.String("file_ref", doc.FileRef), zap.Error(err))
		}
	}

	if err := s.docRepo.Delete(ctx, docID); err != nil {
		return err
	}

	details, _ := json.Marshal(map[string]interface{}{
		"file_ref":         doc.FileRef,
		"benefits_deleted": removed,
	})
	entry := &domain.AuditEntry{
		ID:         uuid.New(),
		Action:     domain.AuditDocumentDeleted,
		EntityType: domain.AuditEntityDocument,
		EntityID:   docID,
		ActorID:    actorID,
		Details:    details,
		CreatedAt:  s.now().UTC(),
	}
	if err := s.auditRepo.Create(ctx, entry); err != nil {
		log.Error("documentService.Delete: failed to write audit entry", zap.Error(err))
	}

	log.Info("documentService.Delete: document deleted", zap.Int64("benefits_deleted", removed))
	return nil
}
