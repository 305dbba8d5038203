package unit_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/service/request"
	"lab-preauth/internal/service/validation"
	"lab-preauth/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const duplicateLookback = 30 * 24 * time.Hour

func newRequestFixture() (request.Service, *mocks.RequestRepository, *mocks.TestRepository) {
	requestRepo := new(mocks.RequestRepository)
	testRepo := new(mocks.TestRepository)
	svc := request.NewService(requestRepo, testRepo, validation.NewService(), nil, "preauth-documents", duplicateLookback)
	return svc, requestRepo, testRepo
}

func activeTest() *domain.TestDefinition {
	def := tshTest()
	def.ID = uuid.New()
	return &def
}

func createInput(testID uuid.UUID) domain.CreateRequestInput {
	return domain.CreateRequestInput{
		PatientName:     "Sara Ahmed",
		PatientID:       "P-1001",
		Age:             45,
		Gender:          domain.GenderFemale,
		InsuranceNumber: "INS-555",
		TestID:          testID,
		Justification:   strings.Repeat("persistent fatigue with documented weight changes over months ", 4),
		Symptoms:        []string{"fatigue", "weight gain"},
		ICD10Codes:      []string{"E03.9"},
	}
}

func TestRequestService_Create(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{ID: uuid.New(), Name: "Dr. Layla", Role: domain.RoleReviewer}

	t.Run("Creates Draft With Generated Code", func(t *testing.T) {
		svc, requestRepo, testRepo := newRequestFixture()
		def := activeTest()

		testRepo.On("GetByID", ctx, def.ID).Return(def, nil).Once()
		requestRepo.On("FindDuplicate", ctx, "P-1001", def.ID, mock.AnythingOfType("time.Time")).Return(nil, nil).Once()
		requestRepo.On("NextCode", ctx, time.Now().Year()).Return("REQ-2026-003", nil).Once()
		requestRepo.On("Create", ctx, mock.MatchedBy(func(r *domain.Request) bool {
			return r.ID == "REQ-2026-003" &&
				r.Status == domain.StatusDraft &&
				r.TestCode == def.Code &&
				r.CreatedBy == actor.ID &&
				len(r.StatusHistory) == 1 &&
				r.StatusHistory[0].Status == domain.StatusDraft
		})).Return(nil).Once()

		created, err := svc.Create(ctx, createInput(def.ID), actor)

		require.NoError(t, err)
		assert.Equal(t, "REQ-2026-003", created.ID)
		assert.Equal(t, domain.PriorityNormal, created.Priority)

		requestRepo.AssertExpectations(t)
	})

	t.Run("Rejects Inactive Test", func(t *testing.T) {
		svc, requestRepo, testRepo := newRequestFixture()
		def := activeTest()
		def.IsActive = false

		testRepo.On("GetByID", ctx, def.ID).Return(def, nil).Once()

		_, err := svc.Create(ctx, createInput(def.ID), actor)

		assert.ErrorIs(t, err, domain.ErrTestInactive)
		requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Reports Recent Duplicate", func(t *testing.T) {
		svc, requestRepo, testRepo := newRequestFixture()
		def := activeTest()
		existing := &domain.Request{ID: "REQ-2026-001", Status: domain.StatusSubmitted}

		testRepo.On("GetByID", ctx, def.ID).Return(def, nil).Once()
		requestRepo.On("FindDuplicate", ctx, "P-1001", def.ID, mock.MatchedBy(func(since time.Time) bool {
			return time.Since(since) > duplicateLookback-time.Minute
		})).Return(existing, nil).Once()

		_, err := svc.Create(ctx, createInput(def.ID), actor)

		var dup *domain.DuplicateRequestError
		require.ErrorAs(t, err, &dup)
		assert.Equal(t, "REQ-2026-001", dup.ExistingID)
		requestRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Duplicate Override Skips The Check", func(t *testing.T) {
		svc, requestRepo, testRepo := newRequestFixture()
		def := activeTest()

		input := createInput(def.ID)
		input.AllowDuplicate = true

		testRepo.On("GetByID", ctx, def.ID).Return(def, nil).Once()
		requestRepo.On("NextCode", ctx, time.Now().Year()).Return("REQ-2026-004", nil).Once()
		requestRepo.On("Create", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()

		_, err := svc.Create(ctx, input, actor)

		require.NoError(t, err)
		requestRepo.AssertNotCalled(t, "FindDuplicate", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRequestService_UpdateClinical(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{ID: uuid.New(), Name: "Dr. Layla", Role: domain.RoleReviewer}

	t.Run("Draft Is Editable", func(t *testing.T) {
		svc, requestRepo, _ := newRequestFixture()
		req := &domain.Request{ID: "REQ-2026-001", Status: domain.StatusDraft}

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()
		requestRepo.On("Update", ctx, mock.AnythingOfType("*domain.Request")).Return(nil).Once()

		input := createInput(uuid.New())
		updated, err := svc.UpdateClinical(ctx, req.ID, input, actor)

		require.NoError(t, err)
		assert.Equal(t, input.PatientName, updated.PatientName)
		assert.Equal(t, domain.StatusDraft, updated.Status)
	})

	t.Run("Submitted Request Is Not Editable", func(t *testing.T) {
		svc, requestRepo, _ := newRequestFixture()
		req := &domain.Request{ID: "REQ-2026-001", Status: domain.StatusSubmitted}

		requestRepo.On("GetByID", ctx, req.ID).Return(req, nil).Once()

		_, err := svc.UpdateClinical(ctx, req.ID, createInput(uuid.New()), actor)

		var illegal *domain.IllegalTransitionError
		assert.ErrorAs(t, err, &illegal)
		requestRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestRequestService_Precheck(t *testing.T) {
	ctx := context.Background()
	svc, _, testRepo := newRequestFixture()
	def := activeTest()

	testRepo.On("GetByID", ctx, def.ID).Return(def, nil).Once()

	report, err := svc.Precheck(ctx, createInput(def.ID))

	require.NoError(t, err)
	assert.Len(t, report.Verdicts, len(domain.Criteria))
	assert.False(t, report.HasFailures())
}
