package validation

import (
	"fmt"
	"strings"

	"lab-preauth/internal/domain"
)

// justificationWarningMargin is the band above the minimum word count in
// which a justification passes but is flagged as borderline.
const justificationWarningMargin = 10

// Service scores a request's clinical payload against a test's rules. It is
// pure: no I/O, no mutation, identical inputs always yield identical
// reports. The same engine runs speculatively before submission and
// authoritatively during review.
type Service interface {
	Evaluate(payload domain.ClinicalPayload, test domain.TestDefinition) domain.ValidationReport
}

type service struct{}

func NewService() Service {
	return &service{}
}

// Evaluate runs every criterion; there is no early exit, so the caller
// always receives a full report.
func (s *service) Evaluate(payload domain.ClinicalPayload, test domain.TestDefinition) domain.ValidationReport {
	report := domain.ValidationReport{
		Verdicts: make([]domain.CriterionVerdict, 0, len(domain.Criteria)),
	}

	for _, criterion := range domain.Criteria {
		var verdict domain.CriterionVerdict
		switch criterion {
		case domain.CriterionSymptoms:
			verdict = evaluateSymptoms(payload, test)
		case domain.CriterionICD10:
			verdict = evaluateICD10(payload, test)
		case domain.CriterionAge:
			verdict = evaluateAge(payload, test)
		case domain.CriterionGender:
			verdict = evaluateGender(payload, test)
		case domain.CriterionProhibitedWords:
			verdict = evaluateProhibitedWords(payload, test)
		case domain.CriterionJustification:
			verdict = evaluateJustification(payload, test)
		case domain.CriterionDocuments:
			verdict = evaluateDocuments(payload, test)
		}
		report.Verdicts = append(report.Verdicts, verdict)
	}

	return report
}

func evaluateSymptoms(payload domain.ClinicalPayload, test domain.TestDefinition) domain.CriterionVerdict {
	recognized := make(map[string]struct{}, len(test.RequiredSymptoms))
	for _, s := range test.RequiredSymptoms {
		recognized[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}

	matched := 0
	for _, s := range payload.Symptoms {
		if _, ok := recognized[strings.ToLower(strings.TrimSpace(s))]; ok {
			matched++
		}
	}

	if matched >= test.MinSymptoms {
		return verdict(domain.CriterionSymptoms, domain.VerdictPass,
			fmt.Sprintf("%d of %d required symptoms present", matched, test.MinSymptoms))
	}
	return verdict(domain.CriterionSymptoms, domain.VerdictFail,
		fmt.Sprintf("%d of %d required symptoms (need %d more)", matched, test.MinSymptoms, test.MinSymptoms-matched))
}

func evaluateICD10(payload domain.ClinicalPayload, test domain.TestDefinition) domain.CriterionVerdict {
	if len(payload.ICD10Codes) == 0 {
		return verdict(domain.CriterionICD10, domain.VerdictFail, "no ICD-10 codes selected")
	}

	approved := codeSet(test.ApprovedICD10)
	suspected := codeSet(test.SuspectedICD10)

	var suspectedCodes, unknownCodes []string
	for _, code := range payload.ICD10Codes {
		key := strings.ToUpper(strings.TrimSpace(code))
		switch {
		case inSet(approved, key):
		case inSet(suspected, key):
			suspectedCodes = append(suspectedCodes, code)
		default:
			unknownCodes = append(unknownCodes, code)
		}
	}

	if len(unknownCodes) > 0 {
		return verdict(domain.CriterionICD10, domain.VerdictFail,
			fmt.Sprintf("codes not in approved list: %s", strings.Join(unknownCodes, ", ")))
	}
	if len(suspectedCodes) > 0 {
		return verdict(domain.CriterionICD10, domain.VerdictWarning,
			fmt.Sprintf("codes in suspected list: %s", strings.Join(suspectedCodes, ", ")))
	}
	return verdict(domain.CriterionICD10, domain.VerdictPass,
		fmt.Sprintf("%d approved ICD-10 codes", len(payload.ICD10Codes)))
}

func evaluateAge(payload domain.ClinicalPayload, test domain.TestDefinition) domain.CriterionVerdict {
	if test.MinAge == nil {
		return verdict(domain.CriterionAge, domain.VerdictPass, "no age restriction")
	}
	if payload.Age >= *test.MinAge {
		return verdict(domain.CriterionAge, domain.VerdictPass,
			fmt.Sprintf("patient %d years (required >=%d)", payload.Age, *test.MinAge))
	}
	return verdict(domain.CriterionAge, domain.VerdictFail,
		fmt.Sprintf("patient %d years, below required minimum of %d", payload.Age, *test.MinAge))
}

func evaluateGender(payload domain.ClinicalPayload, test domain.TestDefinition) domain.CriterionVerdict {
	if test.GenderRestriction == "" || test.GenderRestriction == domain.GenderBoth {
		return verdict(domain.CriterionGender, domain.VerdictPass, "no gender restriction")
	}
	if strings.EqualFold(string(test.GenderRestriction), string(payload.Gender)) {
		return verdict(domain.CriterionGender, domain.VerdictPass,
			fmt.Sprintf("%s (required)", payload.Gender))
	}
	return verdict(domain.CriterionGender, domain.VerdictFail,
		fmt.Sprintf("test restricted to %s patients", test.GenderRestriction))
}

func evaluateProhibitedWords(payload domain.ClinicalPayload, test domain.TestDefinition) domain.CriterionVerdict {
	found := FindProhibitedWords(payload.Justification, test.ProhibitedWords)
	if len(found) > 0 {
		return verdict(domain.CriterionProhibitedWords, domain.VerdictFail,
			fmt.Sprintf("prohibited words found: %s", strings.Join(found, ", ")))
	}
	return verdict(domain.CriterionProhibitedWords, domain.VerdictPass, "no prohibited words found")
}

func evaluateJustification(payload domain.ClinicalPayload, test domain.TestDefinition) domain.CriterionVerdict {
	words := CountWords(payload.Justification)
	min := test.MinJustificationWords

	switch {
	case words < min:
		return verdict(domain.CriterionJustification, domain.VerdictFail,
			fmt.Sprintf("too brief (%d words - need %d+)", words, min))
	case words < min+justificationWarningMargin:
		return verdict(domain.CriterionJustification, domain.VerdictWarning,
			fmt.Sprintf("borderline (%d words, minimum %d)", words, min))
	default:
		return verdict(domain.CriterionJustification, domain.VerdictPass,
			fmt.Sprintf("adequate (%d words)", words))
	}
}

func evaluateDocuments(payload domain.ClinicalPayload, test domain.TestDefinition) domain.CriterionVerdict {
	if !test.RequireDocuments {
		return verdict(domain.CriterionDocuments, domain.VerdictPass, "no documents required")
	}
	if payload.DocumentCount >= test.MinDocuments {
		return verdict(domain.CriterionDocuments, domain.VerdictPass,
			fmt.Sprintf("%d of %d required documents attached", payload.DocumentCount, test.MinDocuments))
	}
	return verdict(domain.CriterionDocuments, domain.VerdictFail,
		fmt.Sprintf("%d of %d required documents attached", payload.DocumentCount, test.MinDocuments))
}

func verdict(c domain.Criterion, status domain.VerdictStatus, message string) domain.CriterionVerdict {
	return domain.CriterionVerdict{Criterion: c, Status: status, Message: message}
}

// CountWords counts whitespace-delimited tokens.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// FindProhibitedWords returns the prohibited words appearing in text as
// case-insensitive substrings, preserving list order.
func FindProhibitedWords(text string, prohibited []string) []string {
	if text == "" || len(prohibited) == 0 {
		return nil
	}

	lower := strings.ToLower(text)
	var found []string
	seen := make(map[string]struct{})
	for _, word := range prohibited {
		key := strings.ToLower(word)
		if _, dup := seen[key]; dup {
			continue
		}
		if strings.Contains(lower, key) {
			found = append(found, word)
			seen[key] = struct{}{}
		}
	}
	return found
}

func codeSet(codes []string) map[string]struct{} {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return set
}

func inSet(set map[string]struct{}, key string) bool {
	_, ok := set[key]
	return ok
}
