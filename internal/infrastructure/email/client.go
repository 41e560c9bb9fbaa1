// Package email provides the email client for sending transactional emails.
package email

import (
	"fmt"
	"os"

	"github.com/AuZanPs/fitmatch-go/internal/infrastructure/email/templates"
	"github.com/resendlabs/resend-go"
)

// Service defines the interface for sending emails, allowing for mock implementations in tests.
type Service interface {
	SendAnalysisReportEmail(toEmail, firstName string, report templates.AnalysisReportProps) error
}

// ResendClient is the concrete implementation of the email Service using the Resend API.
type ResendClient struct {
	client    *resend.Client
	fromEmail string
	fromName  string
}

// NewService creates a new email service client, returning the Service interface.
func NewService() (Service, error) {
	apiKey := os.Getenv("RESEND_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("RESEND_API_KEY environment variable is required")
	}

	fromEmail := os.Getenv("EMAIL_FROM")
	if fromEmail == "" {
		fromEmail = "noreply@fitmatch.app"
	}

	fromName := os.Getenv("EMAIL_FROM_NAME")
	if fromName == "" {
		fromName = "FitMatch"
	}

	return &ResendClient{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  fromName,
	}, nil
}

// SendAnalysisReportEmail composes and sends the wardrobe analysis report.
func (c *ResendClient) SendAnalysisReportEmail(toEmail, firstName string, report templates.AnalysisReportProps) error {
	if report.Name == "" {
		report.Name = firstName
	}
	if report.Name == "" {
		report.Name = "there"
	}

	content := templates.GetAnalysisReportContent(report)
	htmlContent := templates.GetEmailLayout(templates.EmailLayoutProps{
		Preheader: "Your wardrobe analysis is ready",
		Content:   content,
	})

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("%s <%s>", c.fromName, c.fromEmail),
		To:      []string{toEmail},
		Subject: "Your FitMatch wardrobe analysis",
		Html:    htmlContent,
	}

	_, err := c.client.Emails.Send(params)
	if err != nil {
		return fmt.Errorf("failed to send analysis email via Resend: %w", err)
	}

	return nil
}
