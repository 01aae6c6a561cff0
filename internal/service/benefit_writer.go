package service

import (
	"encoding/json"

	"github.com/google/uuid"

	"coverline/internal/domain"
)

// buildBenefitRecords turns evaluated categories into rows for one document.
func buildBenefitRecords(doc *domain.Document, result *domain.ExtractionResult, evaluated []EvaluatedBenefit) []domain.ExtractedBenefit {
	cardRef := cardReference(doc, result)

	records := make([]domain.ExtractedBenefit, 0, len(evaluated))
	for _, ev := range evaluated {
		excerpts := ev.Excerpts
		if excerpts == nil {
			excerpts = []string{}
		}
		excerptsJSON, err := json.Marshal(excerpts)
		if err != nil {
			excerptsJSON = json.RawMessage("[]")
		}
		data := ev.Data
		if len(data) == 0 {
			data = json.RawMessage("{}")
		}
		records = append(records, domain.ExtractedBenefit{
			ID:              uuid.New(),
			DocumentID:      doc.ID,
			CardID:          cardRef,
			BenefitType:     ev.Type,
			ExtractedData:   data,
			ConfidenceScore: ev.Confidence,
			SourceExcerpts:  excerptsJSON,
			RequiresReview:  ev.RequiresReview,
			Version:         1,
		})
	}
	return records
}

// cardReference is the document's card when known, the new-card sentinel when
// the model named a card, and nil otherwise.
func cardReference(doc *domain.Document, result *domain.ExtractionResult) *string {
	if doc.CardID != nil && *doc.CardID != "" {
		id := *doc.CardID
		return &id
	}
	if result.CardName != nil && *result.CardName != "" {
		sentinel := domain.NewCardSentinel
		return &sentinel
	}
	return nil
}

func anyRequiresReview(records []domain.ExtractedBenefit) bool {
	for i := range records {
		if records[i].RequiresReview {
			return true
		}
	}
	return false
}
