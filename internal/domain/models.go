package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Document is one uploaded benefit guide and its extraction lifecycle.
type Document struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	FileRef           string           `db:"file_ref" json:"file_ref"`
	MimeType          string           `db:"mime_type" json:"mime_type"`
	ProcessingStatus  ProcessingStatus `db:"processing_status" json:"processing_status"`
	ErrorMessage      *string          `db:"error_message" json:"error_message"`
	OwnerID           string           `db:"owner_id" json:"owner_id"`
	CardID            *string          `db:"card_id" json:"card_id"`
	CardName          *string          `db:"card_name" json:"card_name"`
	CardIssuer        *string          `db:"card_issuer" json:"card_issuer"`
	OverallConfidence *float64         `db:"overall_confidence" json:"overall_confidence"`
	ProcessedAt       *time.Time       `db:"processed_at" json:"processed_at"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time        `db:"updated_at" json:"updated_at"`
}

// StatusChange describes one compare-and-set lifecycle transition of a document.
type StatusChange struct {
	DocumentID        uuid.UUID
	From              ProcessingStatus
	To                ProcessingStatus
	ErrorMessage      *string
	OverallConfidence *float64
	ProcessedAt       *time.Time
}

// ExtractedBenefit is one coverage category extracted from a document.
type ExtractedBenefit struct {
	ID              uuid.UUID       `db:"id" json:"id"`
	DocumentID      uuid.UUID       `db:"document_id" json:"document_id"`
	CardID          *string         `db:"card_id" json:"card_id"`
	BenefitType     BenefitType     `db:"benefit_type" json:"benefit_type"`
	ExtractedData   json.RawMessage `db:"extracted_data" json:"extracted_data"`
	ConfidenceScore float64         `db:"confidence_score" json:"confidence_score"`
	SourceExcerpts  json.RawMessage `db:"source_excerpts" json:"source_excerpts"`
	RequiresReview  bool            `db:"requires_review" json:"requires_review"`
	IsApproved      *bool           `db:"is_approved" json:"is_approved"`
	ReviewedBy      *string         `db:"reviewed_by" json:"reviewed_by"`
	ReviewedAt      *time.Time      `db:"reviewed_at" json:"reviewed_at"`
	Version         int             `db:"version" json:"version"`
	CreatedAt       time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time       `db:"updated_at" json:"updated_at"`
}

// BenefitRevision keeps a payload that was replaced by a manual correction.
type BenefitRevision struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	BenefitID    uuid.UUID       `db:"benefit_id" json:"benefit_id"`
	Version      int             `db:"version" json:"version"`
	PreviousData json.RawMessage `db:"previous_data" json:"previous_data"`
	EditedBy     *string         `db:"edited_by" json:"edited_by"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// AuditEntry is an append-only record of a completed extraction or a deletion.
type AuditEntry struct {
	ID           uuid.UUID       `db:"id" json:"id"`
	Action       AuditAction     `db:"action" json:"action"`
	EntityType   string          `db:"entity_type" json:"entity_type"`
	EntityID     uuid.UUID       `db:"entity_id" json:"entity_id"`
	ActorID      *string         `db:"actor_id" json:"actor_id"`
	InputTokens  int             `db:"input_tokens" json:"input_tokens"`
	OutputTokens int             `db:"output_tokens" json:"output_tokens"`
	DurationMs   int64           `db:"duration_ms" json:"duration_ms"`
	Details      json.RawMessage `db:"details" json:"details"`
	CreatedAt    time.Time       `db:"created_at" json:"created_at"`
}

// ExtractionResult is the parsed, schema-shaped output of the model.
type ExtractionResult struct {
	CardName          *string                         `json:"card_name"`
	Issuer            *string                         `json:"issuer"`
	OverallConfidence *float64                        `json:"overall_confidence"`
	Benefits          map[BenefitType]json.RawMessage `json:"benefits"`
	ConfidenceScores  map[BenefitType]float64         `json:"confidence_scores"`
	SourceExcerpts    map[BenefitType][]string        `json:"source_excerpts"`
}
