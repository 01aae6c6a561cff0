package ses

import (
	"context"
	"fmt"
	"html"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"coverline/internal/config"
	"coverline/internal/domain"
	"coverline/internal/port"
)

type sesNotifier struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
	reviewInbox string
	frontendURL string
}

// NewSESNotifier creates an SES-backed ReviewNotifier mailing cfg.ReviewInbox.
func NewSESNotifier(cfg *config.EmailConfig) (port.ReviewNotifier, error) {
	if cfg.ReviewInbox == "" {
		return nil, fmt.Errorf("email.review_inbox is required for the ses provider")
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	return &sesNotifier{
		client:      sesv2.NewFromConfig(awsCfg),
		fromAddress: cfg.FromAddress,
		fromName:    cfg.FromName,
		reviewInbox: cfg.ReviewInbox,
		frontendURL: cfg.FrontendURL,
	}, nil
}

func (s *sesNotifier) NotifyReviewRequired(ctx context.Context, doc *domain.Document, benefits []domain.ExtractedBenefit) error {
	reviewURL := fmt.Sprintf("%s/review/%s", s.frontendURL, doc.ID)
	flagged := flaggedTypes(benefits)

	card := "Unknown card"
	if doc.CardName != nil && *doc.CardName != "" {
		card = *doc.CardName
	}

	subject := fmt.Sprintf("Review needed: %s (%d categories)", card, len(flagged))
	htmlBody := buildReviewHTML(card, flagged, reviewURL)
	textBody := fmt.Sprintf("Extraction for %s finished with low confidence in:\n- %s\n\nReview it at:\n%s\n",
		card, strings.Join(flagged, "\n- "), reviewURL)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{s.reviewInbox},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func flaggedTypes(benefits []domain.ExtractedBenefit) []string {
	var out []string
	for i := range benefits {
		if benefits[i].RequiresReview {
			out = append(out, fmt.Sprintf("%s (%.2f)", benefits[i].BenefitType, benefits[i].ConfidenceScore))
		}
	}
	return out
}

func buildReviewHTML(card string, flagged []string, reviewURL string) string {
	var items strings.Builder
	for _, f := range flagged {
		items.WriteString("<li>" + html.EscapeString(f) + "</li>")
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Benefit extraction needs review</h2>
  <p>The extraction for <strong>%s</strong> finished, but these categories fell below the confidence threshold:</p>
  <ul>%s</ul>
  <p style="text-align: center; margin: 30px 0;">
    <a href="%s" style="background-color: #4F46E5; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Open Review</a>
  </p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">Coverline - Benefit Extraction</p>
</body>
</html>`, html.EscapeString(card), items.String(), reviewURL)
}
