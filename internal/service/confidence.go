package service

import (
	"bytes"
	"encoding/json"

	"coverline/internal/domain"
)

// ReviewThreshold is the per-category confidence below which a benefit needs human review.
const ReviewThreshold = 0.8

// EvaluatedBenefit is one known category from the model output with its review decision.
type EvaluatedBenefit struct {
	Type           domain.BenefitType
	Data           json.RawMessage
	Confidence     float64
	Excerpts       []string
	RequiresReview bool
}

// EvaluateConfidence scores every known category present in result.Benefits and
// returns the overall confidence. Categories come back in domain.BenefitTypes order.
func EvaluateConfidence(result *domain.ExtractionResult) ([]EvaluatedBenefit, float64) {
	var evaluated []EvaluatedBenefit
	for _, bt := range domain.BenefitTypes {
		data, ok := result.Benefits[bt]
		if !ok || isAbsent(data) {
			continue
		}
		conf := clamp(result.ConfidenceScores[bt])
		evaluated = append(evaluated, EvaluatedBenefit{
			Type:           bt,
			Data:           data,
			Confidence:     conf,
			Excerpts:       result.SourceExcerpts[bt],
			RequiresReview: conf < ReviewThreshold,
		})
	}
	return evaluated, overallConfidence(result)
}

// overallConfidence uses the model's stated value when present, otherwise the
// mean of the known-category scores, or 0 when there are none.
func overallConfidence(result *domain.ExtractionResult) float64 {
	if result.OverallConfidence != nil {
		return clamp(*result.OverallConfidence)
	}
	var sum float64
	var n int
	for bt, score := range result.ConfidenceScores {
		if !bt.IsValid() {
			continue
		}
		sum += clamp(score)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// isAbsent treats an explicit JSON null as a category the model did not report.
func isAbsent(data json.RawMessage) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

func clamp(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
