package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"

	"github.com/resend/resend-go/v3"

	"lab-preauth/internal/config"
)

// Service delivers notification emails through Resend. Callers treat every
// send as fire-and-forget; a failed delivery never propagates into workflow
// state.
type Service interface {
	SendStatusEmail(ctx context.Context, toEmail, recipientName, requestID, statusLabel, message string) error
	SendReviewAssignmentEmail(ctx context.Context, toEmail, recipientName, requestID string) error
}

type service struct {
	client *resend.Client
	config *config.Config
}

func NewService(cfg *config.Config) Service {
	return &service{
		client: resend.NewClient(cfg.ResendAPIKey),
		config: cfg,
	}
}

var statusTmpl = template.Must(template.New("status").Parse(`
<h2>Pre-Authorization Update</h2>
<p>Dear {{.Name}},</p>
<p>Request <strong>{{.RequestID}}</strong> is now <strong>{{.Status}}</strong>.</p>
{{if .Message}}<p>{{.Message}}</p>{{end}}
<p>Sign in to view the full request.</p>
`))

var assignmentTmpl = template.Must(template.New("assignment").Parse(`
<h2>Request Awaiting Review</h2>
<p>Dear {{.Name}},</p>
<p>Request <strong>{{.RequestID}}</strong> requires your review.</p>
<p>Sign in to start the review.</p>
`))

func (s *service) SendStatusEmail(ctx context.Context, toEmail, recipientName, requestID, statusLabel, message string) error {
	data := struct {
		Name, RequestID, Status, Message string
	}{recipientName, requestID, statusLabel, message}

	subject := fmt.Sprintf("Request %s: %s", requestID, statusLabel)
	return s.send(toEmail, subject, statusTmpl, data)
}

func (s *service) SendReviewAssignmentEmail(ctx context.Context, toEmail, recipientName, requestID string) error {
	data := struct {
		Name, RequestID string
	}{recipientName, requestID}

	subject := fmt.Sprintf("Request %s awaiting review", requestID)
	return s.send(toEmail, subject, assignmentTmpl, data)
}

func (s *service) send(toEmail, subject string, tmpl *template.Template, data interface{}) error {
	if s.config.ResendAPIKey == "" {
		return nil
	}

	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	params := &resend.SendEmailRequest{
		From:    fmt.Sprintf("Pre-Authorization System <%s>", s.config.FromEmail),
		To:      []string{toEmail},
		Html:    body.String(),
		Subject: subject,
	}

	_, err := s.client.Emails.Send(params)
	return err
}
