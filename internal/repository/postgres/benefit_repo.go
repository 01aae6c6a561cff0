package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"coverline/internal/domain"
	"coverline/internal/port"
)

const benefitColumns = 11

type benefitRepo struct {
	db *sqlx.DB
}

// NewBenefitRepo creates a new PostgreSQL-backed BenefitRepository.
func NewBenefitRepo(db *sqlx.DB) port.BenefitRepository {
	return &benefitRepo{db: db}
}

func (r *benefitRepo) CreateBatch(ctx context.Context, benefits []domain.ExtractedBenefit) error {
	if len(benefits) == 0 {
		return nil
	}

	now := time.Now().UTC()
	valueStrings := make([]string, 0, len(benefits))
	valueArgs := make([]interface{}, 0, len(benefits)*benefitColumns)

	for i := range benefits {
		b := &benefits[i]
		b.CreatedAt = now
		b.UpdatedAt = now
		if b.Version == 0 {
			b.Version = 1
		}
		base := i * benefitColumns
		valueStrings = append(valueStrings, fmt.Sprintf(
			"($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8, base+9, base+10, base+11))
		valueArgs = append(valueArgs,
			b.ID, b.DocumentID, b.CardID, b.BenefitType,
			b.ExtractedData, b.ConfidenceScore, b.SourceExcerpts,
			b.RequiresReview, b.Version, b.CreatedAt, b.UpdatedAt)
	}

	query := fmt.Sprintf(
		`INSERT INTO extracted_benefits (
			id, document_id, card_id, benefit_type,
			extracted_data, confidence_score, source_excerpts,
			requires_review, version, created_at, updated_at
		) VALUES %s`,
		strings.Join(valueStrings, ", "))

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("benefitRepo.CreateBatch begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("benefitRepo.CreateBatch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("benefitRepo.CreateBatch commit: %w", err)
	}
	return nil
}

func (r *benefitRepo) GetByID(ctx context.Context, benefitID uuid.UUID) (*domain.ExtractedBenefit, error) {
	var b domain.ExtractedBenefit
	err := r.db.GetContext(ctx, &b,
		"SELECT * FROM extracted_benefits WHERE id = $1", benefitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBenefitNotFound
		}
		return nil, fmt.Errorf("benefitRepo.GetByID: %w", err)
	}
	return &b, nil
}

func (r *benefitRepo) ListByDocument(ctx context.Context, docID uuid.UUID) ([]domain.ExtractedBenefit, error) {
	var benefits []domain.ExtractedBenefit
	err := r.db.SelectContext(ctx, &benefits,
		"SELECT * FROM extracted_benefits WHERE document_id = $1 ORDER BY benefit_type",
		docID)
	if err != nil {
		return nil, fmt.Errorf("benefitRepo.ListByDocument: %w", err)
	}
	return benefits, nil
}

func (r *benefitRepo) ListPendingReview(ctx context.Context, offset, limit int) ([]domain.ExtractedBenefit, int, error) {
	var total int
	err := r.db.GetContext(ctx, &total,
		"SELECT COUNT(*) FROM extracted_benefits WHERE requires_review = TRUE AND is_approved IS NULL")
	if err != nil {
		return nil, 0, fmt.Errorf("benefitRepo.ListPendingReview count: %w", err)
	}

	var benefits []domain.ExtractedBenefit
	err = r.db.SelectContext(ctx, &benefits,
		`SELECT * FROM extracted_benefits
		 WHERE requires_review = TRUE AND is_approved IS NULL
		 ORDER BY confidence_score ASC, created_at ASC
		 LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("benefitRepo.ListPendingReview: %w", err)
	}
	return benefits, total, nil
}

func (r *benefitRepo) SetApproval(ctx context.Context, benefitID uuid.UUID, approved bool, reviewerID string, reviewedAt time.Time) (*domain.ExtractedBenefit, error) {
	var b domain.ExtractedBenefit
	err := r.db.GetContext(ctx, &b,
		`UPDATE extracted_benefits SET
			is_approved = $1, reviewed_by = $2, reviewed_at = $3, updated_at = $4
		 WHERE id = $5
		 RETURNING *`,
		approved, reviewerID, reviewedAt, time.Now().UTC(), benefitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBenefitNotFound
		}
		return nil, fmt.Errorf("benefitRepo.SetApproval: %w", err)
	}
	return &b, nil
}

func (r *benefitRepo) UpdateData(ctx context.Context, benefitID uuid.UUID, data json.RawMessage, editedBy *string) (*domain.ExtractedBenefit, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("benefitRepo.UpdateData begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var current struct {
		ExtractedData json.RawMessage `db:"extracted_data"`
		Version       int             `db:"version"`
	}
	err = tx.GetContext(ctx, &current,
		"SELECT extracted_data, version FROM extracted_benefits WHERE id = $1 FOR UPDATE",
		benefitID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrBenefitNotFound
		}
		return nil, fmt.Errorf("benefitRepo.UpdateData select: %w", err)
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO benefit_revisions (id, benefit_id, version, previous_data, edited_by, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), benefitID, current.Version, current.ExtractedData, editedBy, now)
	if err != nil {
		return nil, fmt.Errorf("benefitRepo.UpdateData revision: %w", err)
	}

	var b domain.ExtractedBenefit
	err = tx.GetContext(ctx, &b,
		`UPDATE extracted_benefits SET
			extracted_data = $1, version = version + 1, updated_at = $2
		 WHERE id = $3
		 RETURNING *`,
		data, now, benefitID)
	if err != nil {
		return nil, fmt.Errorf("benefitRepo.UpdateData: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("benefitRepo.UpdateData commit: %w", err)
	}
	return &b, nil
}

func (r *benefitRepo) ListRevisions(ctx context.Context, benefitID uuid.UUID) ([]domain.BenefitRevision, error) {
	var revisions []domain.BenefitRevision
	err := r.db.SelectContext(ctx, &revisions,
		"SELECT * FROM benefit_revisions WHERE benefit_id = $1 ORDER BY version DESC",
		benefitID)
	if err != nil {
		return nil, fmt.Errorf("benefitRepo.ListRevisions: %w", err)
	}
	return revisions, nil
}

func (r *benefitRepo) DeleteByDocument(ctx context.Context, docID uuid.UUID) (int64, error) {
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM extracted_benefits WHERE document_id = $1", docID)
	if err != nil {
		return 0, fmt.Errorf("benefitRepo.DeleteByDocument: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}
