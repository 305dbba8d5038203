package lifecycle

import (
	"context"
	"fmt"
	"log"
	"time"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/repository"
	"lab-preauth/internal/service/activity"
	"lab-preauth/internal/service/notification"
	"lab-preauth/internal/service/reviewerstats"
)

// transitions is the complete edge table of the request workflow. A status
// absent from the map is terminal.
var transitions = map[domain.RequestStatus][]domain.RequestStatus{
	domain.StatusDraft:          {domain.StatusSubmitted, domain.StatusCancelled},
	domain.StatusSubmitted:      {domain.StatusUnderReview, domain.StatusCancelled},
	domain.StatusUnderReview:    {domain.StatusApproved, domain.StatusRejected, domain.StatusMoreInfoNeeded, domain.StatusSubmitted},
	domain.StatusMoreInfoNeeded: {domain.StatusSubmitted},
}

// Service is the status engine. Every status change in the system goes
// through Transition, which validates the edge and the metadata, applies the
// side effects for that edge, persists the request atomically and only then
// emits notifications.
type Service interface {
	Transition(ctx context.Context, requestID string, target domain.RequestStatus, actor domain.Actor, meta domain.TransitionMetadata) (*domain.Request, error)
	CanTransition(from, to domain.RequestStatus) bool
	AllowedTargets(from domain.RequestStatus) []domain.RequestStatus
}

type service struct {
	requestRepo repository.RequestRepository
	stats       reviewerstats.Service
	activity    activity.Service
	notifier    notification.Service
}

func NewService(
	requestRepo repository.RequestRepository,
	statsService reviewerstats.Service,
	activityService activity.Service,
	notifier notification.Service,
) Service {
	return &service{
		requestRepo: requestRepo,
		stats:       statsService,
		activity:    activityService,
		notifier:    notifier,
	}
}

func (s *service) CanTransition(from, to domain.RequestStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func (s *service) AllowedTargets(from domain.RequestStatus) []domain.RequestStatus {
	targets := transitions[from]
	out := make([]domain.RequestStatus, len(targets))
	copy(out, targets)
	return out
}

func (s *service) Transition(ctx context.Context, requestID string, target domain.RequestStatus, actor domain.Actor, meta domain.TransitionMetadata) (*domain.Request, error) {
	req, err := s.requestRepo.GetByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !s.CanTransition(req.Status, target) {
		return nil, &domain.IllegalTransitionError{From: req.Status, To: target}
	}
	if missing := missingMetadata(target, meta); len(missing) > 0 {
		return nil, &domain.MissingMetadataError{Target: target, Fields: missing}
	}

	now := time.Now()
	from := req.Status
	event := domain.StatusEvent{
		Status:    target,
		Timestamp: now,
		Actor:     actor.Name,
	}

	var intents []domain.NotificationIntent
	var decision *reviewerstats.Outcome
	trackAssignment := false

	switch target {
	case domain.StatusSubmitted:
		switch from {
		case domain.StatusDraft:
			req.SubmittedAt = &now
			reviewerRole := domain.RoleReviewer
			intents = append(intents, domain.NotificationIntent{
				RecipientRole: &reviewerRole,
				Type:          domain.NotifRequestSubmitted,
				Title:         "New request submitted",
				Message:       fmt.Sprintf("Request %s for %s (%s) is awaiting review.", req.ID, req.PatientName, req.TestName),
				RequestID:     req.ID,
			})
		case domain.StatusMoreInfoNeeded:
			req.ResubmittedAt = &now
			if req.ReviewerID != nil {
				intents = append(intents, domain.NotificationIntent{
					RecipientID: req.ReviewerID,
					Type:        domain.NotifRequestResubmitted,
					Title:       "Request resubmitted",
					Message:     fmt.Sprintf("Request %s was resubmitted with additional information.", req.ID),
					RequestID:   req.ID,
				})
			}
		case domain.StatusUnderReview:
			// Transfer to another reviewer. The request returns to the
			// queue addressed to the named recipient.
			req.TransferredAt = &now
			req.TransferReason = &meta.TransferReason
			req.PreviousReviewerID = req.ReviewerID
			req.PreviousReviewerName = req.ReviewerName
			req.ReviewerID = nil
			req.ReviewerName = nil
			event.Metadata = map[string]string{"transfer_reason": meta.TransferReason}
			switch {
			case meta.NewReviewerID != nil:
				intents = append(intents, domain.NotificationIntent{
					RecipientID: meta.NewReviewerID,
					Type:        domain.NotifRequestTransferred,
					Title:       "Request transferred to you",
					Message:     fmt.Sprintf("Request %s was transferred to you: %s", req.ID, meta.TransferReason),
					RequestID:   req.ID,
				})
			case meta.NewReviewerName != "":
				intents = append(intents, domain.NotificationIntent{
					RecipientName: meta.NewReviewerName,
					Type:          domain.NotifRequestTransferred,
					Title:         "Request transferred to you",
					Message:       fmt.Sprintf("Request %s was transferred to you: %s", req.ID, meta.TransferReason),
					RequestID:     req.ID,
				})
			}
		}

	case domain.StatusUnderReview:
		req.ReviewerID = &actor.ID
		name := actor.Name
		req.ReviewerName = &name
		req.ReviewStartedAt = &now
		trackAssignment = true

	case domain.StatusApproved:
		req.ApprovedAt = &now
		req.ApprovalNumber = &meta.ApprovalNumber
		req.ExpirationDate = meta.ExpirationDate
		if meta.Notes != "" {
			req.ApprovalNotes = &meta.Notes
		}
		event.Metadata = map[string]string{"approval_number": meta.ApprovalNumber}
		outcome := reviewerstats.OutcomeApproved
		decision = &outcome
		intents = append(intents, s.requesterIntent(req, domain.NotifRequestApproved,
			"Request approved",
			fmt.Sprintf("Request %s was approved. Approval number: %s.", req.ID, meta.ApprovalNumber)))

	case domain.StatusRejected:
		req.RejectedAt = &now
		req.RejectionReason = &meta.Reason
		if meta.Details != "" {
			req.RejectionDetails = &meta.Details
		}
		event.Metadata = map[string]string{"reason": meta.Reason}
		outcome := reviewerstats.OutcomeRejected
		decision = &outcome
		intents = append(intents, s.requesterIntent(req, domain.NotifRequestRejected,
			"Request rejected",
			fmt.Sprintf("Request %s was rejected: %s", req.ID, meta.Reason)))

	case domain.StatusMoreInfoNeeded:
		req.MoreInfoRequestedAt = &now
		req.ReviewerMessage = &meta.Message
		event.Metadata = map[string]string{"message": meta.Message}
		intents = append(intents, s.requesterIntent(req, domain.NotifMoreInfoNeeded,
			"More information needed",
			fmt.Sprintf("Request %s needs more information: %s", req.ID, meta.Message)))

	case domain.StatusCancelled:
		req.CancelledAt = &now
		req.CancellationReason = &meta.Reason
		event.Metadata = map[string]string{"reason": meta.Reason}
	}

	req.Status = target
	req.StatusHistory = append(req.StatusHistory, event)
	req.UpdatedAt = now

	if err := s.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}

	// Everything past the persist is best effort. Counter or notification
	// failures are logged without failing the transition.
	if trackAssignment {
		if err := s.stats.TrackAssignment(ctx, actor.ID); err != nil {
			log.Printf("Failed to track assignment for reviewer %s: %v", actor.ID, err)
		}
	}
	if decision != nil && req.ReviewerID != nil {
		if err := s.stats.RecordDecision(ctx, *req.ReviewerID, *decision); err != nil {
			log.Printf("Failed to record decision for reviewer %s: %v", *req.ReviewerID, err)
		}
	}

	if err := s.activity.Record(ctx, actor.Name,
		fmt.Sprintf("Changed status of %s to %s", req.ID, target),
		fmt.Sprintf("%s -> %s", from, target),
		statusChangeCategory(from, target),
	); err != nil {
		log.Printf("Failed to record activity for request %s: %v", req.ID, err)
	}

	if len(intents) > 0 {
		go s.notifier.Dispatch(context.Background(), intents)
	}

	return req, nil
}

// requesterIntent addresses a decision notification to whoever created the
// request.
func (s *service) requesterIntent(req *domain.Request, typ domain.NotificationType, title, message string) domain.NotificationIntent {
	createdBy := req.CreatedBy
	return domain.NotificationIntent{
		RecipientID: &createdBy,
		Type:        typ,
		Title:       title,
		Message:     message,
		RequestID:   req.ID,
	}
}

func statusChangeCategory(from, to domain.RequestStatus) domain.ActivityCategory {
	if from == domain.StatusUnderReview && to == domain.StatusSubmitted {
		return domain.ActivityTransfer
	}
	return domain.ActivityStatusChange
}

// missingMetadata lists the mandatory metadata fields absent for a target
// status. An empty result means the transition may proceed.
func missingMetadata(target domain.RequestStatus, meta domain.TransitionMetadata) []string {
	var missing []string
	switch target {
	case domain.StatusApproved:
		if meta.ApprovalNumber == "" {
			missing = append(missing, "approval_number")
		}
		if meta.ExpirationDate == nil {
			missing = append(missing, "expiration_date")
		}
	case domain.StatusRejected:
		if meta.Reason == "" {
			missing = append(missing, "reason")
		}
	case domain.StatusMoreInfoNeeded:
		if meta.Message == "" {
			missing = append(missing, "message")
		}
	case domain.StatusCancelled:
		if meta.Reason == "" {
			missing = append(missing, "reason")
		}
	}
	return missing
}
