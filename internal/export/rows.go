package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"coverline/internal/domain"
)

// columns defines the header row shared by the CSV and XLSX exports.
var columns = []string{
	"Benefit ID",
	"Document ID",
	"Card ID",
	"Benefit Type",
	"Confidence",
	"Requires Review",
	"Approval",
	"Reviewed By",
	"Reviewed At",
	"Version",
	"Extracted Data",
	"Source Excerpts",
	"Created At",
}

// Columns returns a copy of the export header row.
func Columns() []string {
	out := make([]string, len(columns))
	copy(out, columns)
	return out
}

// benefitToRow converts one benefit to a row aligned with columns.
func benefitToRow(b *domain.ExtractedBenefit) []string {
	row := make([]string, len(columns))
	row[0] = b.ID.String()
	row[1] = b.DocumentID.String()
	if b.CardID != nil {
		row[2] = *b.CardID
	}
	row[3] = string(b.BenefitType)
	row[4] = strconv.FormatFloat(b.ConfidenceScore, 'f', 2, 64)
	row[5] = formatBool(b.RequiresReview)
	row[6] = approvalLabel(b.IsApproved)
	if b.ReviewedBy != nil {
		row[7] = *b.ReviewedBy
	}
	row[8] = formatTime(b.ReviewedAt)
	row[9] = strconv.Itoa(b.Version)
	row[10] = compactJSON(b.ExtractedData)
	row[11] = joinExcerpts(b.SourceExcerpts)
	row[12] = b.CreatedAt.Format(time.RFC3339)
	return row
}

func approvalLabel(v *bool) string {
	switch {
	case v == nil:
		return "Pending"
	case *v:
		return "Approved"
	default:
		return "Rejected"
	}
}

func formatBool(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(time.RFC3339)
}

func compactJSON(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}

func joinExcerpts(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var excerpts []string
	if err := json.Unmarshal(raw, &excerpts); err != nil {
		return compactJSON(raw)
	}
	return strings.Join(excerpts, " | ")
}

// nonAlphanumeric matches characters that are not alphanumeric, hyphen, or underscore.
var nonAlphanumeric = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)

// multiUnderscore matches consecutive underscores.
var multiUnderscore = regexp.MustCompile(`_{2,}`)

// SanitizeFilename cleans a label for use in Content-Disposition.
// Replaces non-alphanumeric chars (except - _) with _, collapses consecutive
// underscores, and truncates to 100 chars.
func SanitizeFilename(name string) string {
	s := nonAlphanumeric.ReplaceAllString(name, "_")
	s = multiUnderscore.ReplaceAllString(s, "_")
	s = strings.Trim(s, "_")
	if len(s) > 100 {
		s = s[:100]
	}
	return s
}

// BuildFilename returns {sanitized_label}_benefits_{YYYY-MM-DD}.{format}.
func BuildFilename(label string, format domain.ExportFormat, now time.Time) string {
	sanitized := SanitizeFilename(label)
	if sanitized == "" {
		sanitized = "document"
	}
	return fmt.Sprintf("%s_benefits_%s.%s", sanitized, now.Format("2006-01-02"), format)
}
