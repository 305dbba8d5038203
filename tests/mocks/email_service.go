package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type EmailService struct {
	mock.Mock
}

func (m *EmailService) SendStatusEmail(ctx context.Context, toEmail, recipientName, requestID, statusLabel, message string) error {
	args := m.Called(ctx, toEmail, recipientName, requestID, statusLabel, message)
	return args.Error(0)
}

func (m *EmailService) SendReviewAssignmentEmail(ctx context.Context, toEmail, recipientName, requestID string) error {
	args := m.Called(ctx, toEmail, recipientName, requestID)
	return args.Error(0)
}
