package service_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coverline/internal/domain"
	"coverline/internal/llm"
	"coverline/internal/service"
)

func floatPtr(v float64) *float64 { return &v }

func TestEvaluateConfidence_ReviewFlagFollowsThreshold(t *testing.T) {
	result := &domain.ExtractionResult{
		Benefits: map[domain.BenefitType]json.RawMessage{
			domain.BenefitRental:              json.RawMessage(`{}`),
			domain.BenefitTripProtection:      json.RawMessage(`{}`),
			domain.BenefitExtendedWarranty:    json.RawMessage(`{}`),
			domain.BenefitCellPhoneProtection: json.RawMessage(`{}`),
		},
		ConfidenceScores: map[domain.BenefitType]float64{
			domain.BenefitRental:           0.9,
			domain.BenefitTripProtection:   0.5,
			domain.BenefitExtendedWarranty: 0.8, // exactly at threshold
		},
	}

	evaluated, _ := service.EvaluateConfidence(result)
	require.Len(t, evaluated, 4)

	byType := map[domain.BenefitType]service.EvaluatedBenefit{}
	for _, ev := range evaluated {
		byType[ev.Type] = ev
		assert.Equal(t, ev.Confidence < service.ReviewThreshold, ev.RequiresReview, ev.Type)
	}
	assert.False(t, byType[domain.BenefitRental].RequiresReview)
	assert.True(t, byType[domain.BenefitTripProtection].RequiresReview)
	assert.False(t, byType[domain.BenefitExtendedWarranty].RequiresReview)

	// A category without a stated score counts as zero confidence.
	assert.Equal(t, 0.0, byType[domain.BenefitCellPhoneProtection].Confidence)
	assert.True(t, byType[domain.BenefitCellPhoneProtection].RequiresReview)
}

func TestEvaluateConfidence_UnknownCategoriesIgnored(t *testing.T) {
	result := &domain.ExtractionResult{
		Benefits: map[domain.BenefitType]json.RawMessage{
			domain.BenefitRental: json.RawMessage(`{}`),
			"concierge":          json.RawMessage(`{}`),
		},
		ConfidenceScores: map[domain.BenefitType]float64{
			domain.BenefitRental: 0.6,
			"concierge":          1.0,
		},
	}

	evaluated, overall := service.EvaluateConfidence(result)

	require.Len(t, evaluated, 1)
	assert.Equal(t, domain.BenefitRental, evaluated[0].Type)
	assert.InDelta(t, 0.6, overall, 1e-9)
}

func TestEvaluateConfidence_OverallMeanFallback(t *testing.T) {
	result := &domain.ExtractionResult{
		Benefits: map[domain.BenefitType]json.RawMessage{
			domain.BenefitRental:         json.RawMessage(`{}`),
			domain.BenefitTripProtection: json.RawMessage(`{}`),
		},
		ConfidenceScores: map[domain.BenefitType]float64{
			domain.BenefitRental:         0.9,
			domain.BenefitTripProtection: 0.5,
			domain.BenefitTravelPerks:    0.7,
		},
	}

	_, overall := service.EvaluateConfidence(result)

	assert.InDelta(t, (0.9+0.5+0.7)/3, overall, 1e-9)
}

func TestEvaluateConfidence_StatedOverallWins(t *testing.T) {
	result := &domain.ExtractionResult{
		OverallConfidence: floatPtr(0.42),
		ConfidenceScores:  map[domain.BenefitType]float64{domain.BenefitRental: 0.99},
	}

	_, overall := service.EvaluateConfidence(result)

	assert.Equal(t, 0.42, overall)
}

func TestEvaluateConfidence_NoScores(t *testing.T) {
	evaluated, overall := service.EvaluateConfidence(&domain.ExtractionResult{})

	assert.Empty(t, evaluated)
	assert.Equal(t, 0.0, overall)
}

func TestEvaluateConfidence_Clamped(t *testing.T) {
	result := &domain.ExtractionResult{
		OverallConfidence: floatPtr(1.7),
		Benefits: map[domain.BenefitType]json.RawMessage{
			domain.BenefitRental:      json.RawMessage(`{}`),
			domain.BenefitTravelPerks: json.RawMessage(`{}`),
		},
		ConfidenceScores: map[domain.BenefitType]float64{
			domain.BenefitRental:      -0.3,
			domain.BenefitTravelPerks: 12,
		},
	}

	evaluated, overall := service.EvaluateConfidence(result)

	assert.Equal(t, 1.0, overall)
	assert.Equal(t, 0.0, evaluated[0].Confidence)
	assert.Equal(t, 1.0, evaluated[1].Confidence)
	assert.False(t, evaluated[1].RequiresReview)
}

func TestEvaluateConfidence_NullCategoryIsAbsent(t *testing.T) {
	result := &domain.ExtractionResult{
		Benefits: map[domain.BenefitType]json.RawMessage{
			domain.BenefitRental:         json.RawMessage(`null`),
			domain.BenefitTripProtection: json.RawMessage(`{"coverage":"trip delay"}`),
		},
		ConfidenceScores: map[domain.BenefitType]float64{
			domain.BenefitTripProtection: 0.9,
		},
	}

	evaluated, _ := service.EvaluateConfidence(result)

	require.Len(t, evaluated, 1)
	assert.Equal(t, domain.BenefitTripProtection, evaluated[0].Type)
}

func TestEvaluateConfidence_NullCategoryFromModelOutput(t *testing.T) {
	result, err := llm.ParseModelOutput(`{"benefits":{"rental":null,"travelPerks":{"lounge":true}},"confidence_scores":{"travelPerks":0.95}}`)
	require.NoError(t, err)

	evaluated, _ := service.EvaluateConfidence(result)

	require.Len(t, evaluated, 1)
	assert.Equal(t, domain.BenefitTravelPerks, evaluated[0].Type)
}
