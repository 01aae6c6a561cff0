package postgres

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverline/internal/domain"
)

func TestAuditRepo_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewAuditRepo(db)
	entry := &domain.AuditEntry{
		ID:           uuid.New(),
		Action:       domain.AuditExtractionCompleted,
		EntityType:   domain.AuditEntityDocument,
		EntityID:     uuid.New(),
		InputTokens:  1500,
		OutputTokens: 420,
		DurationMs:   8200,
		Details:      json.RawMessage(`{"benefits_count":3}`),
	}

	mock.ExpectExec("INSERT INTO audit_log").
		WithArgs(entry.ID, domain.AuditExtractionCompleted, "document", entry.EntityID, nil,
			1500, 420, int64(8200), []byte(`{"benefits_count":3}`), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), entry))
	assert.False(t, entry.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}
