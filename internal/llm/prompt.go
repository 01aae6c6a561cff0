package llm

import (
	"strings"

	"coverline/internal/domain"
)

const systemPrompt = `You are an insurance and credit-card benefit extraction assistant. Analyze the provided benefit guide or policy document and extract every coverage category it describes.

IMPORTANT INSTRUCTIONS:
- Return ONLY valid JSON with no markdown formatting, no code fences, no explanation. Just the raw JSON object.
- Only include a category under "benefits" if the document actually describes it. Omit categories that are not present.
- Use these category keys exactly: {{CATEGORIES}}.
- Amounts are numbers without currency symbols. Durations are whole days unless the document states otherwise.
- For every category you include, give a confidence between 0.0 and 1.0 in "confidence_scores" and quote the supporting text in "source_excerpts".

The JSON object must follow this schema:
{
  "card_name": "",
  "issuer": "",
  "overall_confidence": 0.0,
  "benefits": {
    "rental": {"coverage_type": "primary|secondary", "max_coverage": 0, "max_days": 0, "excluded_vehicles": [], "excluded_countries": [], "conditions": []},
    "tripProtection": {"cancellation_max": 0, "interruption_max": 0, "delay_hours": 0, "delay_max": 0, "covered_reasons": [], "conditions": []},
    "baggageProtection": {"lost_max": 0, "delayed_hours": 0, "delayed_max": 0, "conditions": []},
    "purchaseProtection": {"max_per_claim": 0, "max_per_year": 0, "coverage_days": 0, "exclusions": []},
    "extendedWarranty": {"additional_years": 0, "max_original_warranty_years": 0, "max_per_claim": 0, "exclusions": []},
    "cellPhoneProtection": {"max_per_claim": 0, "max_claims_per_year": 0, "deductible": 0, "conditions": []},
    "roadsideAssistance": {"provider": "", "phone": "", "services": [], "cost": ""},
    "emergencyAssistance": {"phone": "", "services": [], "medical_evacuation_max": 0},
    "returnProtection": {"max_per_item": 0, "max_per_year": 0, "return_window_days": 0, "exclusions": []},
    "travelPerks": {"lounge_access": "", "credits": [], "insurance_extras": [], "other": []}
  },
  "confidence_scores": {"<category>": 0.0},
  "source_excerpts": {"<category>": [""]}
}

Use 0.0 confidence for anything you had to guess. If the card name or issuer is not stated, use null.`

// BuildBenefitPrompt returns the schema-constrained extraction prompt. Known card
// name and issuer are appended as hints.
func BuildBenefitPrompt(cardName, cardIssuer string) string {
	keys := make([]string, len(domain.BenefitTypes))
	for i, t := range domain.BenefitTypes {
		keys[i] = string(t)
	}

	var b strings.Builder
	b.WriteString(strings.Replace(systemPrompt, "{{CATEGORIES}}", strings.Join(keys, ", "), 1))
	if cardName != "" || cardIssuer != "" {
		b.WriteString("\n\nHINTS (previously known, verify against the document):")
		if cardName != "" {
			b.WriteString("\n- Card name: " + cardName)
		}
		if cardIssuer != "" {
			b.WriteString("\n- Issuer: " + cardIssuer)
		}
	}
	return b.String()
}
