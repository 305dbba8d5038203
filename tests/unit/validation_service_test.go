package unit_test

import (
	"strings"
	"testing"

	"lab-preauth/internal/domain"
	"lab-preauth/internal/service/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tshTest() domain.TestDefinition {
	minAge := 18
	return domain.TestDefinition{
		Code:                  "TSH",
		NameEN:                "Thyroid Stimulating Hormone",
		Category:              "hormones",
		IsActive:              true,
		PreAuthRequired:       true,
		RequiredSymptoms:      domain.StringList{"fatigue", "weight gain", "hair loss", "cold intolerance"},
		MinSymptoms:           2,
		ApprovedICD10:         domain.StringList{"E03.9", "E05.90"},
		SuspectedICD10:        domain.StringList{"R53.83"},
		MinAge:                &minAge,
		GenderRestriction:     domain.GenderBoth,
		ProhibitedWords:       domain.StringList{"Routine", "Screening"},
		MinJustificationWords: 20,
	}
}

func passingPayload() domain.ClinicalPayload {
	return domain.ClinicalPayload{
		Age:           45,
		Gender:        domain.GenderFemale,
		Symptoms:      []string{"fatigue", "weight gain"},
		ICD10Codes:    []string{"E03.9"},
		Justification: strings.Repeat("patient presents with persistent symptoms requiring evaluation ", 5),
	}
}

func TestValidationService_Evaluate(t *testing.T) {
	svc := validation.NewService()
	test := tshTest()

	t.Run("All Criteria Pass", func(t *testing.T) {
		report := svc.Evaluate(passingPayload(), test)

		require.Len(t, report.Verdicts, len(domain.Criteria))
		assert.False(t, report.HasFailures())
		assert.False(t, report.HasWarnings())
	})

	t.Run("Report Preserves Criterion Order", func(t *testing.T) {
		report := svc.Evaluate(passingPayload(), test)

		for i, criterion := range domain.Criteria {
			assert.Equal(t, criterion, report.Verdicts[i].Criterion)
		}
	})

	t.Run("Insufficient Symptoms", func(t *testing.T) {
		payload := passingPayload()
		payload.Symptoms = []string{"fatigue"}

		report := svc.Evaluate(payload, test)

		v := report.Verdict(domain.CriterionSymptoms)
		assert.Equal(t, domain.VerdictFail, v.Status)
		assert.Equal(t, "1 of 2 required symptoms (need 1 more)", v.Message)
	})

	t.Run("Symptom Matching Is Case Insensitive", func(t *testing.T) {
		payload := passingPayload()
		payload.Symptoms = []string{"Fatigue", "WEIGHT GAIN"}

		report := svc.Evaluate(payload, test)
		assert.Equal(t, domain.VerdictPass, report.Verdict(domain.CriterionSymptoms).Status)
	})

	t.Run("Unrecognized Symptoms Do Not Count", func(t *testing.T) {
		payload := passingPayload()
		payload.Symptoms = []string{"fatigue", "headache", "nausea"}

		report := svc.Evaluate(payload, test)
		assert.Equal(t, domain.VerdictFail, report.Verdict(domain.CriterionSymptoms).Status)
	})

	t.Run("No ICD10 Codes", func(t *testing.T) {
		payload := passingPayload()
		payload.ICD10Codes = nil

		report := svc.Evaluate(payload, test)

		v := report.Verdict(domain.CriterionICD10)
		assert.Equal(t, domain.VerdictFail, v.Status)
		assert.Equal(t, "no ICD-10 codes selected", v.Message)
	})

	t.Run("Suspected ICD10 Yields Warning", func(t *testing.T) {
		payload := passingPayload()
		payload.ICD10Codes = []string{"E03.9", "R53.83"}

		report := svc.Evaluate(payload, test)

		v := report.Verdict(domain.CriterionICD10)
		assert.Equal(t, domain.VerdictWarning, v.Status)
		assert.Contains(t, v.Message, "R53.83")
		assert.True(t, report.HasWarnings())
		assert.False(t, report.HasFailures())
	})

	t.Run("Unknown ICD10 Fails Even Alongside Approved", func(t *testing.T) {
		payload := passingPayload()
		payload.ICD10Codes = []string{"E03.9", "Z00.0"}

		report := svc.Evaluate(payload, test)

		v := report.Verdict(domain.CriterionICD10)
		assert.Equal(t, domain.VerdictFail, v.Status)
		assert.Contains(t, v.Message, "Z00.0")
	})

	t.Run("Below Minimum Age", func(t *testing.T) {
		payload := passingPayload()
		payload.Age = 15

		report := svc.Evaluate(payload, test)
		assert.Equal(t, domain.VerdictFail, report.Verdict(domain.CriterionAge).Status)
	})

	t.Run("No Age Restriction", func(t *testing.T) {
		noAge := test
		noAge.MinAge = nil
		payload := passingPayload()
		payload.Age = 1

		report := svc.Evaluate(payload, noAge)
		assert.Equal(t, domain.VerdictPass, report.Verdict(domain.CriterionAge).Status)
	})

	t.Run("Gender Restriction", func(t *testing.T) {
		restricted := test
		restricted.GenderRestriction = domain.GenderFemale

		payload := passingPayload()
		payload.Gender = domain.GenderMale

		report := svc.Evaluate(payload, restricted)
		assert.Equal(t, domain.VerdictFail, report.Verdict(domain.CriterionGender).Status)

		payload.Gender = domain.GenderFemale
		report = svc.Evaluate(payload, restricted)
		assert.Equal(t, domain.VerdictPass, report.Verdict(domain.CriterionGender).Status)
	})

	t.Run("Prohibited Words", func(t *testing.T) {
		payload := passingPayload()
		payload.Justification = "This is a routine check " + payload.Justification

		report := svc.Evaluate(payload, test)

		v := report.Verdict(domain.CriterionProhibitedWords)
		assert.Equal(t, domain.VerdictFail, v.Status)
		assert.Equal(t, "prohibited words found: Routine", v.Message)
	})

	t.Run("Justification Too Brief", func(t *testing.T) {
		payload := passingPayload()
		payload.Justification = "short text"

		report := svc.Evaluate(payload, test)

		v := report.Verdict(domain.CriterionJustification)
		assert.Equal(t, domain.VerdictFail, v.Status)
		assert.Equal(t, "too brief (2 words - need 20+)", v.Message)
	})

	t.Run("Justification Borderline Warning", func(t *testing.T) {
		payload := passingPayload()
		payload.Justification = strings.TrimSpace(strings.Repeat("word ", 25))

		report := svc.Evaluate(payload, test)
		assert.Equal(t, domain.VerdictWarning, report.Verdict(domain.CriterionJustification).Status)
	})

	t.Run("Documents Required", func(t *testing.T) {
		withDocs := test
		withDocs.RequireDocuments = true
		withDocs.MinDocuments = 2

		payload := passingPayload()
		payload.DocumentCount = 1

		report := svc.Evaluate(payload, withDocs)
		assert.Equal(t, domain.VerdictFail, report.Verdict(domain.CriterionDocuments).Status)

		payload.DocumentCount = 2
		report = svc.Evaluate(payload, withDocs)
		assert.Equal(t, domain.VerdictPass, report.Verdict(domain.CriterionDocuments).Status)
	})

	t.Run("Deterministic For Identical Input", func(t *testing.T) {
		first := svc.Evaluate(passingPayload(), test)
		second := svc.Evaluate(passingPayload(), test)
		assert.Equal(t, first, second)
	})
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, validation.CountWords(""))
	assert.Equal(t, 0, validation.CountWords("   \t\n"))
	assert.Equal(t, 3, validation.CountWords("one two three"))
	assert.Equal(t, 3, validation.CountWords("  one\ttwo\n three  "))
}

func TestFindProhibitedWords(t *testing.T) {
	prohibited := []string{"Routine", "Screening"}

	t.Run("Case Insensitive Substring Match", func(t *testing.T) {
		found := validation.FindProhibitedWords("annual SCREENING requested", prohibited)
		assert.Equal(t, []string{"Screening"}, found)
	})

	t.Run("Preserves List Order", func(t *testing.T) {
		found := validation.FindProhibitedWords("screening as part of routine care", prohibited)
		assert.Equal(t, []string{"Routine", "Screening"}, found)
	})

	t.Run("Duplicates Reported Once", func(t *testing.T) {
		found := validation.FindProhibitedWords("routine routine routine", []string{"routine", "ROUTINE"})
		assert.Equal(t, []string{"routine"}, found)
	})

	t.Run("Empty Inputs", func(t *testing.T) {
		assert.Nil(t, validation.FindProhibitedWords("", prohibited))
		assert.Nil(t, validation.FindProhibitedWords("anything", nil))
	})
}
