package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverline/internal/domain"
)

func TestBenefitRepo_CreateBatch_Commits(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBenefitRepo(db)
	docID := uuid.New()

	benefits := []domain.ExtractedBenefit{
		{ID: uuid.New(), DocumentID: docID, BenefitType: domain.BenefitRental, ExtractedData: json.RawMessage(`{}`), SourceExcerpts: json.RawMessage(`[]`), ConfidenceScore: 0.9},
		{ID: uuid.New(), DocumentID: docID, BenefitType: domain.BenefitTravelPerks, ExtractedData: json.RawMessage(`{}`), SourceExcerpts: json.RawMessage(`[]`), ConfidenceScore: 0.4, RequiresReview: true},
	}

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO extracted_benefits").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	require.NoError(t, repo.CreateBatch(context.Background(), benefits))
	assert.Equal(t, 1, benefits[0].Version)
	assert.False(t, benefits[1].CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBenefitRepo_CreateBatch_RollsBack(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBenefitRepo(db)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO extracted_benefits").
		WillReturnError(errors.New("check constraint violated"))
	mock.ExpectRollback()

	err := repo.CreateBatch(context.Background(), []domain.ExtractedBenefit{
		{ID: uuid.New(), DocumentID: uuid.New(), BenefitType: domain.BenefitRental},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "benefitRepo.CreateBatch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBenefitRepo_CreateBatch_Empty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBenefitRepo(db)

	require.NoError(t, repo.CreateBatch(context.Background(), nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBenefitRepo_SetApproval_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBenefitRepo(db)
	id := uuid.New()

	mock.ExpectQuery("UPDATE extracted_benefits SET").
		WithArgs(true, "reviewer-1", sqlmock.AnyArg(), sqlmock.AnyArg(), id).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := repo.SetApproval(context.Background(), id, true, "reviewer-1", time.Now())

	assert.ErrorIs(t, err, domain.ErrBenefitNotFound)
}

func TestBenefitRepo_UpdateData_WritesRevision(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBenefitRepo(db)
	id := uuid.New()
	editor := "reviewer-2"

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT extracted_data, version FROM extracted_benefits").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"extracted_data", "version"}).AddRow([]byte(`{"max_days":15}`), 1))
	mock.ExpectExec("INSERT INTO benefit_revisions").
		WithArgs(sqlmock.AnyArg(), id, 1, []byte(`{"max_days":15}`), editor, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("UPDATE extracted_benefits SET").
		WillReturnRows(sqlmock.NewRows([]string{"id", "benefit_type", "extracted_data", "version"}).
			AddRow(id.String(), "rental", []byte(`{"max_days":31}`), 2))
	mock.ExpectCommit()

	b, err := repo.UpdateData(context.Background(), id, json.RawMessage(`{"max_days":31}`), &editor)

	require.NoError(t, err)
	assert.Equal(t, 2, b.Version)
	assert.JSONEq(t, `{"max_days":31}`, string(b.ExtractedData))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBenefitRepo_UpdateData_Missing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBenefitRepo(db)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT extracted_data, version FROM extracted_benefits").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows([]string{"extracted_data", "version"}))
	mock.ExpectRollback()

	_, err := repo.UpdateData(context.Background(), id, json.RawMessage(`{}`), nil)

	assert.ErrorIs(t, err, domain.ErrBenefitNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBenefitRepo_DeleteByDocument(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewBenefitRepo(db)
	docID := uuid.New()

	mock.ExpectExec("DELETE FROM extracted_benefits").
		WithArgs(docID).
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.DeleteByDocument(context.Background(), docID)

	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}
