package port

import (
	"context"

	"coverline/internal/domain"
)

// ExtractInput carries the data needed for one model call.
type ExtractInput struct {
	FileBytes   []byte
	ContentType string
	CardName    string
	CardIssuer  string
}

// TokenUsage reports model token consumption for one call.
type TokenUsage struct {
	InputTokens  int
	OutputTokens int
}

// ExtractOutput contains the parsed model result and call metadata.
type ExtractOutput struct {
	Result    *domain.ExtractionResult
	ModelUsed string
	Usage     TokenUsage
}

// BenefitExtractor abstracts LLM-based benefit extraction.
type BenefitExtractor interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractOutput, error)
}
