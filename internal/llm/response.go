package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"coverline/internal/domain"
)

// ParseModelOutput decodes the model's text into an ExtractionResult. Any
// decode failure wraps ErrMalformedOutput.
func ParseModelOutput(text string) (*domain.ExtractionResult, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: empty output", ErrMalformedOutput)
	}

	var result domain.ExtractionResult
	if err := json.Unmarshal([]byte(trimmed), &result); err != nil {
		return nil, fmt.Errorf("%w: %v (raw: %s)", ErrMalformedOutput, err, Truncate(trimmed, 200))
	}
	if result.Benefits == nil {
		result.Benefits = map[domain.BenefitType]json.RawMessage{}
	}
	if result.ConfidenceScores == nil {
		result.ConfidenceScores = map[domain.BenefitType]float64{}
	}
	if result.SourceExcerpts == nil {
		result.SourceExcerpts = map[domain.BenefitType][]string{}
	}
	return &result, nil
}
