package service

import (
	"context"
	"fmt"
	"log"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

// EmailService sends RSVP receipts via Amazon SES. All sends are best-effort;
// callers log failures and move on.
type EmailService struct {
	client     *sesv2.Client
	fromEmail  string
	fromName   string
	appBaseURL string
	enabled    bool
}

// NewEmailService creates a new email service. An empty fromEmail yields a
// disabled service that skips every send.
func NewEmailService(awsRegion, fromEmail, fromName, appBaseURL string) (*EmailService, error) {
	if fromEmail == "" {
		log.Println("Email service disabled: SES_FROM_EMAIL not configured")
		return &EmailService{enabled: false}, nil
	}

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithRegion(awsRegion),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := sesv2.NewFromConfig(cfg)

	log.Printf("Email service enabled: from=%s, region=%s", fromEmail, awsRegion)

	return &EmailService{
		client:     client,
		fromEmail:  fromEmail,
		fromName:   fromName,
		appBaseURL: appBaseURL,
		enabled:    true,
	}, nil
}

// IsEnabled returns whether the email service is enabled
func (s *EmailService) IsEnabled() bool {
	return s.enabled
}

// SendPublicRSVPReceipt emails an unauthenticated respondent their edit token.
func (s *EmailService) SendPublicRSVPReceipt(ctx context.Context, toEmail, toName, eventTitle, token string) error {
	if !s.enabled {
		log.Printf("Skipping email send (service disabled): rsvp receipt to %s", toEmail)
		return nil
	}

	editLink := fmt.Sprintf("%s/rsvp/edit?token=%s", s.appBaseURL, token)

	subject := fmt.Sprintf("Your RSVP for %s", eventTitle)
	htmlBody := fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Thanks for responding to <strong>%s</strong>.</p>
		<p>If you need to change or cancel your RSVP, use this link:</p>
		<p><a href="%s">%s</a></p>
		<p>Keep it private; anyone with the link can edit your response.</p>
	`, toName, eventTitle, editLink, editLink)
	textBody := fmt.Sprintf(
		"Hi %s,\n\nThanks for responding to %s.\n\nTo change or cancel your RSVP, open:\n%s\n\nKeep the link private; anyone with it can edit your response.\n",
		toName, eventTitle, editLink)

	return s.send(ctx, toEmail, subject, htmlBody, textBody)
}

func (s *EmailService) send(ctx context.Context, toEmail, subject, htmlBody, textBody string) error {
	from := s.fromEmail
	if s.fromName != "" {
		from = fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{
					Data: aws.String(subject),
				},
				Body: &types.Body{
					Html: &types.Content{
						Data: aws.String(htmlBody),
					},
					Text: &types.Content{
						Data: aws.String(textBody),
					},
				},
			},
		},
	}

	if _, err := s.client.SendEmail(ctx, input); err != nil {
		return fmt.Errorf("failed to send email to %s: %w", toEmail, err)
	}

	log.Printf("Email sent to %s: %s", toEmail, subject)
	return nil
}
