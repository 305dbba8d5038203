package unit_test

import (
	"context"
	"path/filepath"
	"testing"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/pkg/i18n"
	"lab-preauth/internal/service/notification"
	"lab-preauth/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newNotificationFixture() (notification.Service, *mocks.NotificationRepository, *mocks.UserRepository, *mocks.EmailService) {
	notifRepo := new(mocks.NotificationRepository)
	userRepo := new(mocks.UserRepository)
	emailSvc := new(mocks.EmailService)
	return notification.NewService(notifRepo, userRepo, emailSvc), notifRepo, userRepo, emailSvc
}

func reviewerUser(name string) *domain.User {
	return &domain.User{
		ID:       uuid.New(),
		Username: "huda",
		Email:    "huda@example.com",
		NameEN:   name,
		Role:     domain.RoleReviewer,
		IsActive: true,
	}
}

func transferIntent(recipientName string) domain.NotificationIntent {
	return domain.NotificationIntent{
		RecipientName: recipientName,
		Type:          domain.NotifRequestTransferred,
		Title:         "Request transferred to you",
		Message:       "Request REQ-2026-001 was transferred to you: workload",
		RequestID:     "REQ-2026-001",
	}
}

func TestNotificationService_Dispatch(t *testing.T) {
	ctx := context.Background()

	t.Run("Name Addressed Intent Reaches The Matching User", func(t *testing.T) {
		svc, notifRepo, userRepo, emailSvc := newNotificationFixture()
		user := reviewerUser("Dr. Huda")

		userRepo.On("GetByName", ctx, "Dr. Huda").Return(user, nil).Once()
		notifRepo.On("Create", ctx, mock.MatchedBy(func(n *domain.Notification) bool {
			return n.UserID == user.ID && n.Type == domain.NotifRequestTransferred
		})).Return(nil).Once()
		emailSvc.On("SendReviewAssignmentEmail", ctx, user.Email, user.NameEN, "REQ-2026-001").Return(nil).Once()

		svc.Dispatch(ctx, []domain.NotificationIntent{transferIntent("Dr. Huda")})

		notifRepo.AssertExpectations(t)
		emailSvc.AssertExpectations(t)
	})

	t.Run("Inactive Named Recipient Is Skipped", func(t *testing.T) {
		svc, notifRepo, userRepo, _ := newNotificationFixture()
		user := reviewerUser("Dr. Huda")
		user.IsActive = false

		userRepo.On("GetByName", ctx, "Dr. Huda").Return(user, nil).Once()

		svc.Dispatch(ctx, []domain.NotificationIntent{transferIntent("Dr. Huda")})

		notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Unknown Name Drops The Intent", func(t *testing.T) {
		svc, notifRepo, userRepo, _ := newNotificationFixture()

		userRepo.On("GetByName", ctx, "Dr. Nobody").Return(nil, domain.ErrUserNotFound).Once()

		svc.Dispatch(ctx, []domain.NotificationIntent{transferIntent("Dr. Nobody")})

		notifRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Decision Email Carries The Status Label", func(t *testing.T) {
		require.NoError(t, i18n.LoadTranslations(filepath.Join("..", "..", "locales")))

		svc, notifRepo, userRepo, emailSvc := newNotificationFixture()
		user := reviewerUser("Dr. Huda")
		recipientID := user.ID

		userRepo.On("GetByID", ctx, recipientID).Return(user, nil).Once()
		notifRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil).Once()
		emailSvc.On("SendStatusEmail", ctx, user.Email, user.NameEN, "REQ-2026-001", "Approved", mock.Anything).Return(nil).Once()

		svc.Dispatch(ctx, []domain.NotificationIntent{{
			RecipientID: &recipientID,
			Type:        domain.NotifRequestApproved,
			Title:       "Request approved",
			Message:     "Request REQ-2026-001 was approved. Approval number: AUTH-1.",
			RequestID:   "REQ-2026-001",
		}})

		emailSvc.AssertExpectations(t)
	})

	t.Run("Role Intent Fans Out To Active Reviewers", func(t *testing.T) {
		svc, notifRepo, userRepo, emailSvc := newNotificationFixture()
		first := reviewerUser("Dr. Huda")
		second := reviewerUser("Dr. Omar")
		second.Email = "omar@example.com"
		reviewerRole := domain.RoleReviewer

		userRepo.On("ListByRole", ctx, domain.RoleReviewer, true).Return([]domain.User{*first, *second}, nil).Once()
		notifRepo.On("Create", ctx, mock.AnythingOfType("*domain.Notification")).Return(nil).Twice()
		emailSvc.On("SendReviewAssignmentEmail", ctx, mock.Anything, mock.Anything, "REQ-2026-001").Return(nil).Twice()

		svc.Dispatch(ctx, []domain.NotificationIntent{{
			RecipientRole: &reviewerRole,
			Type:          domain.NotifRequestSubmitted,
			Title:         "New request submitted",
			Message:       "Request REQ-2026-001 is awaiting review.",
			RequestID:     "REQ-2026-001",
		}})

		notifRepo.AssertExpectations(t)
		emailSvc.AssertExpectations(t)
	})
}
