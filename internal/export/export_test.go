package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"coverline/internal/domain"
)

func sampleBenefits() []domain.ExtractedBenefit {
	approved := true
	reviewer := "reviewer-7"
	reviewedAt := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	card := "card-42"
	return []domain.ExtractedBenefit{
		{
			ID:              uuid.New(),
			DocumentID:      uuid.New(),
			CardID:          &card,
			BenefitType:     domain.BenefitRental,
			ExtractedData:   json.RawMessage(`{ "coverage_type": "primary",  "max_days": 31 }`),
			ConfidenceScore: 0.92,
			SourceExcerpts:  json.RawMessage(`["Primary coverage","Up to 31 days"]`),
			IsApproved:      &approved,
			ReviewedBy:      &reviewer,
			ReviewedAt:      &reviewedAt,
			Version:         2,
			CreatedAt:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
		{
			ID:              uuid.New(),
			DocumentID:      uuid.New(),
			BenefitType:     domain.BenefitTravelPerks,
			ExtractedData:   json.RawMessage(`{}`),
			ConfidenceScore: 0.4,
			RequiresReview:  true,
			Version:         1,
			CreatedAt:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
		},
	}
}

func TestCSVWriter_HeaderAndRows(t *testing.T) {
	var buf bytes.Buffer
	w := NewCSVWriter(&buf)
	require.NoError(t, w.WriteHeader())
	require.NoError(t, w.WriteBenefits(sampleBenefits()))
	w.Flush()
	require.NoError(t, w.Error())

	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, "Benefit ID", rows[0][0])
	assert.Len(t, rows[0], len(columns))

	first := rows[1]
	assert.Equal(t, "card-42", first[2])
	assert.Equal(t, "rental", first[3])
	assert.Equal(t, "0.92", first[4])
	assert.Equal(t, "No", first[5])
	assert.Equal(t, "Approved", first[6])
	assert.Equal(t, "reviewer-7", first[7])
	assert.Equal(t, "2026-03-02T10:00:00Z", first[8])
	assert.Equal(t, `{"coverage_type":"primary","max_days":31}`, first[10])
	assert.Equal(t, "Primary coverage | Up to 31 days", first[11])

	second := rows[2]
	assert.Equal(t, "", second[2])
	assert.Equal(t, "Yes", second[5])
	assert.Equal(t, "Pending", second[6])
	assert.Equal(t, "", second[11])
}

func TestApprovalLabel(t *testing.T) {
	yes, no := true, false
	assert.Equal(t, "Pending", approvalLabel(nil))
	assert.Equal(t, "Approved", approvalLabel(&yes))
	assert.Equal(t, "Rejected", approvalLabel(&no))
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sampleBenefits()))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "Benefit Type", rows[0][3])
	assert.Equal(t, "rental", rows[1][3])
	assert.Equal(t, "travelPerks", rows[2][3])
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Sapphire Reserve Guide", "Sapphire_Reserve_Guide"},
		{"  card//2026  ", "card_2026"},
		{"already-clean_name", "already-clean_name"},
		{"***", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, SanitizeFilename(tt.in), tt.in)
	}
}

func TestBuildFilename(t *testing.T) {
	now := time.Date(2026, 10, 14, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "Gold_Card_benefits_2026-10-14.csv", BuildFilename("Gold Card", domain.ExportFormatCSV, now))
	assert.Equal(t, "document_benefits_2026-10-14.xlsx", BuildFilename("", domain.ExportFormatXLSX, now))
}
