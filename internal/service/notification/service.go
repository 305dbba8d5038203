package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/google/uuid"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/pkg/i18n"
	"lab-preauth/internal/repository"
	"lab-preauth/internal/service/email"
)

// statusLabelKeys maps decision notifications to the label catalog entry for
// the status they announce.
var statusLabelKeys = map[domain.NotificationType]string{
	domain.NotifRequestApproved:    "status.approved",
	domain.NotifRequestRejected:    "status.rejected",
	domain.NotifMoreInfoNeeded:     "status.more_info_needed",
	domain.NotifRequestResubmitted: "status.submitted",
}

func statusLabel(typ domain.NotificationType) string {
	if key, ok := statusLabelKeys[typ]; ok {
		return i18n.Translate("en", key)
	}
	return string(typ)
}

// Service turns notification intents into persisted notifications and
// best-effort emails. Intents addressed to a role fan out to every active
// user holding that role.
type Service interface {
	Dispatch(ctx context.Context, intents []domain.NotificationIntent)
	ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error)
	MarkAsRead(ctx context.Context, id uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	CountUnread(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct {
	notifRepo repository.NotificationRepository
	userRepo  repository.UserRepository
	email     email.Service
}

func NewService(notifRepo repository.NotificationRepository, userRepo repository.UserRepository, emailService email.Service) Service {
	return &service{
		notifRepo: notifRepo,
		userRepo:  userRepo,
		email:     emailService,
	}
}

func (s *service) Dispatch(ctx context.Context, intents []domain.NotificationIntent) {
	for _, intent := range intents {
		recipients, err := s.resolveRecipients(ctx, intent)
		if err != nil {
			log.Printf("Failed to resolve notification recipients for %s: %v", intent.RequestID, err)
			continue
		}

		for _, user := range recipients {
			s.deliver(ctx, user, intent)
		}
	}
}

func (s *service) resolveRecipients(ctx context.Context, intent domain.NotificationIntent) ([]domain.User, error) {
	if intent.RecipientID != nil {
		user, err := s.userRepo.GetByID(ctx, *intent.RecipientID)
		if err != nil {
			return nil, err
		}
		if !user.IsActive {
			return nil, nil
		}
		return []domain.User{*user}, nil
	}

	if intent.RecipientName != "" {
		user, err := s.userRepo.GetByName(ctx, intent.RecipientName)
		if err != nil {
			return nil, err
		}
		if !user.IsActive {
			return nil, nil
		}
		return []domain.User{*user}, nil
	}

	if intent.RecipientRole != nil {
		return s.userRepo.ListByRole(ctx, *intent.RecipientRole, true)
	}

	return nil, nil
}

func (s *service) deliver(ctx context.Context, user domain.User, intent domain.NotificationIntent) {
	data, _ := json.Marshal(map[string]string{"request_id": intent.RequestID})

	notif := &domain.Notification{
		ID:      uuid.New(),
		UserID:  user.ID,
		Type:    intent.Type,
		Title:   intent.Title,
		Message: intent.Message,
		Data:    data,
	}
	if err := s.notifRepo.Create(ctx, notif); err != nil {
		log.Printf("Failed to persist notification for user %s: %v", user.ID, err)
		return
	}

	if user.Email == "" {
		return
	}
	var err error
	if intent.Type == domain.NotifRequestSubmitted || intent.Type == domain.NotifRequestTransferred {
		err = s.email.SendReviewAssignmentEmail(ctx, user.Email, user.NameEN, intent.RequestID)
	} else {
		err = s.email.SendStatusEmail(ctx, user.Email, user.NameEN, intent.RequestID, statusLabel(intent.Type), intent.Message)
	}
	if err != nil {
		log.Printf("Failed to send notification email to %s: %v", user.Email, err)
	}
}

func (s *service) ListByUser(ctx context.Context, userID uuid.UUID, unreadOnly bool, params domain.PaginationParams) (domain.PaginatedResponse[domain.Notification], error) {
	notifications, total, err := s.notifRepo.ListByUser(ctx, userID, unreadOnly, params)
	if err != nil {
		return domain.PaginatedResponse[domain.Notification]{}, err
	}
	return domain.NewPaginatedResponse(notifications, params.Page, params.PageSize, total), nil
}

func (s *service) MarkAsRead(ctx context.Context, id uuid.UUID) error {
	return s.notifRepo.MarkAsRead(ctx, id)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	return s.notifRepo.MarkAllAsRead(ctx, userID)
}

func (s *service) CountUnread(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.notifRepo.CountUnread(ctx, userID)
}
