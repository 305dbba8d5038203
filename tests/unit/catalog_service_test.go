package unit_test

import (
	"context"
	"testing"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/service/catalog"
	"lab-preauth/tests/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCatalogFixture() (catalog.Service, *mocks.TestRepository, *mocks.ICD10Repository, *mocks.ActivityService) {
	testRepo := new(mocks.TestRepository)
	icd10Repo := new(mocks.ICD10Repository)
	activitySvc := new(mocks.ActivityService)
	activitySvc.On("Record", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	return catalog.NewService(testRepo, icd10Repo, activitySvc), testRepo, icd10Repo, activitySvc
}

func createTestInput() domain.CreateTestInput {
	return domain.CreateTestInput{
		Code:                  "tsh",
		NameEN:                "Thyroid Stimulating Hormone",
		NameAR:                "الهرمون المنبه للغدة الدرقية",
		Category:              "hormones",
		PreAuthRequired:       true,
		RequiredSymptoms:      []string{"fatigue", "weight gain"},
		MinSymptoms:           2,
		ApprovedICD10:         []string{"E03.9"},
		MinJustificationWords: 20,
	}
}

func TestCatalogService_CreateTest(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{Name: "Admin", Role: domain.RoleAdmin}

	t.Run("Normalizes Code On Create", func(t *testing.T) {
		svc, testRepo, _, _ := newCatalogFixture()

		testRepo.On("ExistsByCode", ctx, "TSH", mock.Anything).Return(false, nil).Once()
		testRepo.On("Create", ctx, mock.MatchedBy(func(test *domain.TestDefinition) bool {
			return test.Code == "TSH" && test.ID != uuid.Nil
		})).Return(nil).Once()

		created, err := svc.CreateTest(ctx, createTestInput(), actor)

		require.NoError(t, err)
		assert.Equal(t, "TSH", created.Code)
		testRepo.AssertExpectations(t)
	})

	t.Run("Rejects Duplicate Code", func(t *testing.T) {
		svc, testRepo, _, _ := newCatalogFixture()

		testRepo.On("ExistsByCode", ctx, "TSH", mock.Anything).Return(true, nil).Once()

		_, err := svc.CreateTest(ctx, createTestInput(), actor)

		assert.ErrorIs(t, err, domain.ErrDuplicateCode)
		testRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("Rejects Invalid Input", func(t *testing.T) {
		svc, testRepo, _, _ := newCatalogFixture()

		cases := []struct {
			name   string
			mutate func(*domain.CreateTestInput)
		}{
			{"Missing Code", func(in *domain.CreateTestInput) { in.Code = "  " }},
			{"Missing English Name", func(in *domain.CreateTestInput) { in.NameEN = "" }},
			{"Unknown Category", func(in *domain.CreateTestInput) { in.Category = "genetics" }},
			{"Zero Min Symptoms", func(in *domain.CreateTestInput) { in.MinSymptoms = 0 }},
			{"Negative Min Age", func(in *domain.CreateTestInput) { age := -1; in.MinAge = &age }},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				input := createTestInput()
				tc.mutate(&input)

				_, err := svc.CreateTest(ctx, input, actor)

				assert.Error(t, err)
			})
		}
		testRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCatalogService_ImportTests(t *testing.T) {
	ctx := context.Background()
	actor := domain.Actor{Name: "Admin", Role: domain.RoleAdmin}

	goodRow := domain.TestImportRow{
		Code:                  "FT4",
		NameEN:                "Free Thyroxine",
		Category:              "hormones",
		MinSymptoms:           1,
		RequiredSymptoms:      "fatigue;palpitations",
		ApprovedICD10:         "E05.90;E03.9",
		MinJustificationWords: 15,
	}

	t.Run("Bad Rows Do Not Block Good Ones", func(t *testing.T) {
		svc, testRepo, _, _ := newCatalogFixture()

		badRow := goodRow
		badRow.Code = "VITD"
		badRow.Category = "supplements"

		duplicateRow := goodRow
		duplicateRow.Code = "CBC"

		testRepo.On("ExistsByCode", ctx, "FT4", mock.Anything).Return(false, nil).Once()
		testRepo.On("ExistsByCode", ctx, "CBC", mock.Anything).Return(true, nil).Once()
		testRepo.On("Create", ctx, mock.MatchedBy(func(test *domain.TestDefinition) bool {
			return test.Code == "FT4" && len(test.RequiredSymptoms) == 2
		})).Return(nil).Once()

		result, err := svc.ImportTests(ctx, []domain.TestImportRow{goodRow, badRow, duplicateRow}, actor)

		require.NoError(t, err)
		assert.Equal(t, 1, result.SuccessCount)
		assert.Equal(t, 2, result.ErrorCount)
		require.Len(t, result.Errors, 2)
		assert.Equal(t, 2, result.Errors[0].Row)
		assert.Contains(t, result.Errors[0].Error, "supplements")
		assert.Equal(t, 3, result.Errors[1].Row)
		assert.Equal(t, domain.ErrDuplicateCode.Error(), result.Errors[1].Error)
		testRepo.AssertExpectations(t)
	})

	t.Run("Empty Batch", func(t *testing.T) {
		svc, _, _, _ := newCatalogFixture()

		result, err := svc.ImportTests(ctx, nil, actor)

		require.NoError(t, err)
		assert.Zero(t, result.SuccessCount)
		assert.Zero(t, result.ErrorCount)
		assert.Empty(t, result.Errors)
	})
}

func TestCatalogService_ImportErrorReport(t *testing.T) {
	svc, _, _, _ := newCatalogFixture()

	result := &domain.ImportResult{
		ErrorCount: 2,
		Errors: []domain.ImportRowError{
			{Row: 2, Error: "unknown category \"supplements\""},
			{Row: 5, Error: "test code already exists"},
		},
	}

	report, err := svc.ImportErrorReport(result)

	require.NoError(t, err)
	assert.Equal(t,
		"row,error\n2,\"unknown category \"\"supplements\"\"\"\n5,test code already exists\n",
		string(report))
}
