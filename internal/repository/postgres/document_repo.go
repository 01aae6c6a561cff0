package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coverline/internal/domain"
	"coverline/internal/port"
)

type documentRepo struct {
	db *sqlx.DB
}

// NewDocumentRepo creates a new PostgreSQL-backed DocumentRepository.
func NewDocumentRepo(db *sqlx.DB) port.DocumentRepository {
	return &documentRepo{db: db}
}

func (r *documentRepo) GetByID(ctx context.Context, docID uuid.UUID) (*domain.Document, error) {
	var doc domain.Document
	err := r.db.GetContext(ctx, &doc,
		"SELECT * FROM documents WHERE id = $1", docID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrDocumentNotFound
		}
		return nil, fmt.Errorf("documentRepo.GetByID: %w", err)
	}
	return &doc, nil
}

// Transition moves a document between lifecycle states. The UPDATE only matches
// while the row still holds change.From, so two writers cannot both win.
func (r *documentRepo) Transition(ctx context.Context, change *domain.StatusChange) error {
	if !change.From.CanTransitionTo(change.To) {
		return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidStatusTransition, change.From, change.To)
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE documents SET
			processing_status = $1, error_message = $2,
			overall_confidence = COALESCE($3, overall_confidence),
			processed_at = COALESCE($4, processed_at),
			updated_at = $5
		 WHERE id = $6 AND processing_status = $7`,
		change.To, change.ErrorMessage,
		change.OverallConfidence, change.ProcessedAt,
		time.Now().UTC(),
		change.DocumentID, change.From)
	if err != nil {
		return fmt.Errorf("documentRepo.Transition: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows > 0 {
		return nil
	}

	var exists bool
	err = r.db.GetContext(ctx, &exists,
		"SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)", change.DocumentID)
	if err != nil {
		return fmt.Errorf("documentRepo.Transition exists: %w", err)
	}
	if !exists {
		return domain.ErrDocumentNotFound
	}
	return fmt.Errorf("%w: document %s is no longer %s", domain.ErrInvalidStatusTransition, change.DocumentID, change.From)
}

func (r *documentRepo) Delete(ctx context.Context, docID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM documents WHERE id = $1", docID)
	if err != nil {
		return fmt.Errorf("documentRepo.Delete: %w", err)
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return domain.ErrDocumentNotFound
	}
	return nil
}

func (r *documentRepo) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}
