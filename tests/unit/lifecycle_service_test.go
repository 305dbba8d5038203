package unit_test

import (
	"context"
	"testing"
	"time"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/service/lifecycle"
	"lab-preauth/internal/service/reviewerstats"
	"lab-preauth/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newLifecycleFixture() (lifecycle.Service, *mocks.RequestRepository, *mocks.ReviewerStatsService, *mocks.ActivityService, *mocks.NotificationService) {
	requestRepo := new(mocks.RequestRepository)
	statsSvc := new(mocks.ReviewerStatsService)
	activitySvc := new(mocks.ActivityService)
	notifSvc := new(mocks.NotificationService)
	svc := lifecycle.NewService(requestRepo, statsSvc, activitySvc, notifSvc)
	return svc, requestRepo, statsSvc, activitySvc, notifSvc
}

func draftRequest(creator domain.Actor) *domain.Request {
	now := time.Now().Add(-time.Hour)
	return &domain.Request{
		ID:          "REQ-2026-001",
		PatientName: "Sara Ahmed",
		PatientID:   "P-1001",
		Age:         45,
		Gender:      domain.GenderFemale,
		TestID:      uuid.New(),
		TestCode:    "TSH",
		TestName:    "Thyroid Stimulating Hormone",
		Priority:    domain.PriorityNormal,
		Status:      domain.StatusDraft,
		StatusHistory: domain.StatusHistory{{
			Status:    domain.StatusDraft,
			Timestamp: now,
			Actor:     creator.Name,
		}},
		CreatedBy:     creator.ID,
		CreatedByName: creator.Name,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}

func underReviewRequest(creator, reviewer domain.Actor) *domain.Request {
	req := draftRequest(creator)
	req.Status = domain.StatusUnderReview
	req.ReviewerID = &reviewer.ID
	name := reviewer.Name
	req.ReviewerName = &name
	return req
}

func TestLifecycleService_Transition(t *testing.T) {
	ctx := context.Background()
	creator := domain.Actor{ID: uuid.New(), Name: "Dr. Layla", Role: domain.RoleReviewer}
	reviewer := domain.Actor{ID: uuid.New(), Name: "Dr. Omar", Role: domain.RoleReviewer}

	t.Run("Submit From Draft", func(t *testing.T) {
		svc, requestRepo, _, activitySvc, notifSvc := newLifecycleFixture()
		req := draftRequest(creator)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()
		activitySvc.On("Record", ctx, creator.Name, mock.Anything, mock.Anything, domain.ActivityStatusChange).Return(nil).Once()
		notifSvc.On("Dispatch", mock.Anything, mock.AnythingOfType("[]domain.NotificationIntent")).Maybe()

		updated, err := svc.Transition(ctx, req.ID, domain.StatusSubmitted, creator, domain.TransitionMetadata{})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, updated.Status)
		require.NotNil(t, updated.SubmittedAt)
		require.Len(t, updated.StatusHistory, 2)
		assert.Equal(t, domain.StatusSubmitted, updated.StatusHistory[1].Status)
		assert.Equal(t, creator.Name, updated.StatusHistory[1].Actor)

		requestRepo.AssertExpectations(t)
	})

	t.Run("Illegal Transition Leaves Request Untouched", func(t *testing.T) {
		svc, requestRepo, _, _, _ := newLifecycleFixture()
		req := draftRequest(creator)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()

		_, err := svc.Transition(ctx, req.ID, domain.StatusApproved, reviewer, domain.TransitionMetadata{
			ApprovalNumber: "APP-1",
			ExpirationDate: timePtr(time.Now().AddDate(0, 3, 0)),
		})

		var illegal *domain.IllegalTransitionError
		require.ErrorAs(t, err, &illegal)
		assert.Equal(t, domain.StatusDraft, illegal.From)
		assert.Equal(t, domain.StatusApproved, illegal.To)

		// No persistence attempted.
		requestRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Equal(t, domain.StatusDraft, req.Status)
		assert.Len(t, req.StatusHistory, 1)
	})

	t.Run("Terminal Statuses Accept Nothing", func(t *testing.T) {
		for _, terminal := range []domain.RequestStatus{domain.StatusApproved, domain.StatusRejected, domain.StatusCancelled} {
			svc, requestRepo, _, _, _ := newLifecycleFixture()
			req := draftRequest(creator)
			req.Status = terminal

			requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()

			_, err := svc.Transition(ctx, req.ID, domain.StatusSubmitted, creator, domain.TransitionMetadata{})

			var illegal *domain.IllegalTransitionError
			require.ErrorAs(t, err, &illegal, "status %s must be terminal", terminal)
		}
	})

	t.Run("Approve Requires Metadata Before Any Mutation", func(t *testing.T) {
		svc, requestRepo, _, _, _ := newLifecycleFixture()
		req := underReviewRequest(creator, reviewer)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()

		_, err := svc.Transition(ctx, req.ID, domain.StatusApproved, reviewer, domain.TransitionMetadata{})

		var missing *domain.MissingMetadataError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, domain.StatusApproved, missing.Target)
		assert.ElementsMatch(t, []string{"approval_number", "expiration_date"}, missing.Fields)

		requestRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
		assert.Equal(t, domain.StatusUnderReview, req.Status)
	})

	t.Run("Approve Stamps Artifacts And Records Decision", func(t *testing.T) {
		svc, requestRepo, statsSvc, activitySvc, notifSvc := newLifecycleFixture()
		req := underReviewRequest(creator, reviewer)
		expiry := time.Now().AddDate(0, 3, 0)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()
		statsSvc.On("RecordDecision", ctx, reviewer.ID, reviewerstats.OutcomeApproved).Return(nil).Once()
		activitySvc.On("Record", ctx, reviewer.Name, mock.Anything, mock.Anything, domain.ActivityStatusChange).Return(nil).Once()
		notifSvc.On("Dispatch", mock.Anything, mock.AnythingOfType("[]domain.NotificationIntent")).Maybe()

		updated, err := svc.Transition(ctx, req.ID, domain.StatusApproved, reviewer, domain.TransitionMetadata{
			ApprovalNumber: "APP-2026-009",
			ExpirationDate: &expiry,
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusApproved, updated.Status)
		require.NotNil(t, updated.ApprovalNumber)
		assert.Equal(t, "APP-2026-009", *updated.ApprovalNumber)
		require.NotNil(t, updated.ApprovedAt)
		assert.Equal(t, "APP-2026-009", updated.StatusHistory[len(updated.StatusHistory)-1].Metadata["approval_number"])

		statsSvc.AssertExpectations(t)
	})

	t.Run("Reject Requires Reason", func(t *testing.T) {
		svc, requestRepo, _, _, _ := newLifecycleFixture()
		req := underReviewRequest(creator, reviewer)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()

		_, err := svc.Transition(ctx, req.ID, domain.StatusRejected, reviewer, domain.TransitionMetadata{})

		var missing *domain.MissingMetadataError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"reason"}, missing.Fields)
	})

	t.Run("Reject Records Rejected Outcome", func(t *testing.T) {
		svc, requestRepo, statsSvc, activitySvc, notifSvc := newLifecycleFixture()
		req := underReviewRequest(creator, reviewer)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()
		statsSvc.On("RecordDecision", ctx, reviewer.ID, reviewerstats.OutcomeRejected).Return(nil).Once()
		activitySvc.On("Record", ctx, reviewer.Name, mock.Anything, mock.Anything, domain.ActivityStatusChange).Return(nil).Once()
		notifSvc.On("Dispatch", mock.Anything, mock.AnythingOfType("[]domain.NotificationIntent")).Maybe()

		updated, err := svc.Transition(ctx, req.ID, domain.StatusRejected, reviewer, domain.TransitionMetadata{
			Reason: "criteria not met",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusRejected, updated.Status)
		require.NotNil(t, updated.RejectionReason)
		assert.Equal(t, "criteria not met", *updated.RejectionReason)

		statsSvc.AssertExpectations(t)
	})

	t.Run("Start Review Assigns Reviewer And Tracks Assignment", func(t *testing.T) {
		svc, requestRepo, statsSvc, activitySvc, notifSvc := newLifecycleFixture()
		req := draftRequest(creator)
		req.Status = domain.StatusSubmitted

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()
		statsSvc.On("TrackAssignment", ctx, reviewer.ID).Return(nil).Once()
		activitySvc.On("Record", ctx, reviewer.Name, mock.Anything, mock.Anything, domain.ActivityStatusChange).Return(nil).Once()
		notifSvc.On("Dispatch", mock.Anything, mock.AnythingOfType("[]domain.NotificationIntent")).Maybe()

		updated, err := svc.Transition(ctx, req.ID, domain.StatusUnderReview, reviewer, domain.TransitionMetadata{})

		require.NoError(t, err)
		require.NotNil(t, updated.ReviewerID)
		assert.Equal(t, reviewer.ID, *updated.ReviewerID)
		require.NotNil(t, updated.ReviewerName)
		assert.Equal(t, reviewer.Name, *updated.ReviewerName)
		require.NotNil(t, updated.ReviewStartedAt)

		statsSvc.AssertExpectations(t)
	})

	t.Run("Transfer Returns Request To Queue", func(t *testing.T) {
		svc, requestRepo, _, activitySvc, notifSvc := newLifecycleFixture()
		req := underReviewRequest(creator, reviewer)
		newReviewerID := uuid.New()

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()
		activitySvc.On("Record", ctx, reviewer.Name, mock.Anything, mock.Anything, domain.ActivityTransfer).Return(nil).Once()
		notifSvc.On("Dispatch", mock.Anything, mock.AnythingOfType("[]domain.NotificationIntent")).Maybe()

		updated, err := svc.Transition(ctx, req.ID, domain.StatusSubmitted, reviewer, domain.TransitionMetadata{
			TransferReason:  "conflict of interest",
			NewReviewerID:   &newReviewerID,
			NewReviewerName: "Dr. Huda",
		})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, updated.Status)
		assert.Nil(t, updated.ReviewerID)
		assert.Nil(t, updated.ReviewerName)
		require.NotNil(t, updated.PreviousReviewerID)
		assert.Equal(t, reviewer.ID, *updated.PreviousReviewerID)
		require.NotNil(t, updated.TransferredAt)
		require.NotNil(t, updated.TransferReason)
		assert.Equal(t, "conflict of interest", *updated.TransferReason)

		activitySvc.AssertExpectations(t)
	})

	t.Run("Transfer By Name Notifies The Named Reviewer", func(t *testing.T) {
		svc, requestRepo, _, activitySvc, notifSvc := newLifecycleFixture()
		req := underReviewRequest(creator, reviewer)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()
		activitySvc.On("Record", ctx, reviewer.Name, mock.Anything, mock.Anything, domain.ActivityTransfer).Return(nil).Once()

		dispatched := make(chan []domain.NotificationIntent, 1)
		notifSvc.On("Dispatch", mock.Anything, mock.AnythingOfType("[]domain.NotificationIntent")).
			Run(func(args mock.Arguments) {
				dispatched <- args.Get(1).([]domain.NotificationIntent)
			}).Once()

		_, err := svc.Transition(ctx, req.ID, domain.StatusSubmitted, reviewer, domain.TransitionMetadata{
			TransferReason:  "workload",
			NewReviewerName: "Dr. Huda",
		})
		require.NoError(t, err)

		select {
		case intents := <-dispatched:
			require.Len(t, intents, 1)
			assert.Nil(t, intents[0].RecipientID)
			assert.Equal(t, "Dr. Huda", intents[0].RecipientName)
			assert.Equal(t, domain.NotifRequestTransferred, intents[0].Type)
			assert.Equal(t, req.ID, intents[0].RequestID)
		case <-time.After(time.Second):
			t.Fatal("no notification dispatched for name-addressed transfer")
		}
	})

	t.Run("Resubmission After More Info", func(t *testing.T) {
		svc, requestRepo, _, activitySvc, notifSvc := newLifecycleFixture()
		req := underReviewRequest(creator, reviewer)
		req.Status = domain.StatusMoreInfoNeeded

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()
		activitySvc.On("Record", ctx, creator.Name, mock.Anything, mock.Anything, domain.ActivityStatusChange).Return(nil).Once()
		notifSvc.On("Dispatch", mock.Anything, mock.AnythingOfType("[]domain.NotificationIntent")).Maybe()

		updated, err := svc.Transition(ctx, req.ID, domain.StatusSubmitted, creator, domain.TransitionMetadata{})

		require.NoError(t, err)
		assert.Equal(t, domain.StatusSubmitted, updated.Status)
		require.NotNil(t, updated.ResubmittedAt)
		// The prior reviewer assignment survives a resubmission.
		require.NotNil(t, updated.ReviewerID)
		assert.Equal(t, reviewer.ID, *updated.ReviewerID)
	})

	t.Run("More Info Requires Message", func(t *testing.T) {
		svc, requestRepo, _, _, _ := newLifecycleFixture()
		req := underReviewRequest(creator, reviewer)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()

		_, err := svc.Transition(ctx, req.ID, domain.StatusMoreInfoNeeded, reviewer, domain.TransitionMetadata{})

		var missing *domain.MissingMetadataError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"message"}, missing.Fields)
	})

	t.Run("Cancel Requires Reason", func(t *testing.T) {
		svc, requestRepo, _, _, _ := newLifecycleFixture()
		req := draftRequest(creator)

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()

		_, err := svc.Transition(ctx, req.ID, domain.StatusCancelled, creator, domain.TransitionMetadata{})

		var missing *domain.MissingMetadataError
		require.ErrorAs(t, err, &missing)
		assert.Equal(t, []string{"reason"}, missing.Fields)
	})

	t.Run("Unknown Request", func(t *testing.T) {
		svc, requestRepo, _, _, _ := newLifecycleFixture()

		requestRepo.On("GetByID", ctx, "REQ-2026-999").Return(nil, domain.ErrRequestNotFound).Once()

		_, err := svc.Transition(ctx, "REQ-2026-999", domain.StatusSubmitted, creator, domain.TransitionMetadata{})
		assert.ErrorIs(t, err, domain.ErrRequestNotFound)
	})
}

func TestLifecycleService_CanTransition(t *testing.T) {
	svc, _, _, _, _ := newLifecycleFixture()

	assert.True(t, svc.CanTransition(domain.StatusDraft, domain.StatusSubmitted))
	assert.True(t, svc.CanTransition(domain.StatusDraft, domain.StatusCancelled))
	assert.True(t, svc.CanTransition(domain.StatusSubmitted, domain.StatusUnderReview))
	assert.True(t, svc.CanTransition(domain.StatusSubmitted, domain.StatusCancelled))
	assert.True(t, svc.CanTransition(domain.StatusUnderReview, domain.StatusApproved))
	assert.True(t, svc.CanTransition(domain.StatusUnderReview, domain.StatusRejected))
	assert.True(t, svc.CanTransition(domain.StatusUnderReview, domain.StatusMoreInfoNeeded))
	assert.True(t, svc.CanTransition(domain.StatusUnderReview, domain.StatusSubmitted))
	assert.True(t, svc.CanTransition(domain.StatusMoreInfoNeeded, domain.StatusSubmitted))

	assert.False(t, svc.CanTransition(domain.StatusDraft, domain.StatusApproved))
	assert.False(t, svc.CanTransition(domain.StatusSubmitted, domain.StatusApproved))
	assert.False(t, svc.CanTransition(domain.StatusMoreInfoNeeded, domain.StatusCancelled))
	assert.False(t, svc.CanTransition(domain.StatusApproved, domain.StatusSubmitted))
	assert.False(t, svc.CanTransition(domain.StatusRejected, domain.StatusSubmitted))
	assert.False(t, svc.CanTransition(domain.StatusCancelled, domain.StatusDraft))
}

func timePtr(t time.Time) *time.Time {
	return &t
}
