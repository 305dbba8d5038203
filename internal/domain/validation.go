package domain

// Validation verdicts are data, not errors: the UI displays them and may let
// the submitter proceed over warnings. A failed criterion never raises.

type VerdictStatus string

const (
	VerdictPass    VerdictStatus = "pass"
	VerdictWarning VerdictStatus = "warning"
	VerdictFail    VerdictStatus = "fail"
)

type Criterion string

const (
	CriterionSymptoms        Criterion = "symptoms"
	CriterionICD10           Criterion = "icd10"
	CriterionAge             Criterion = "age"
	CriterionGender          Criterion = "gender"
	CriterionProhibitedWords Criterion = "prohibited_words"
	CriterionJustification   Criterion = "justification"
	CriterionDocuments       Criterion = "documents"
)

// Criteria is the fixed evaluation order. Every report contains exactly
// these entries, in this order.
var Criteria = []Criterion{
	CriterionSymptoms,
	CriterionICD10,
	CriterionAge,
	CriterionGender,
	CriterionProhibitedWords,
	CriterionJustification,
	CriterionDocuments,
}

type CriterionVerdict struct {
	Criterion Criterion     `json:"criterion"`
	Status    VerdictStatus `json:"status"`
	Message   string        `json:"message"`
}

type ValidationReport struct {
	Verdicts []CriterionVerdict `json:"verdicts"`
}

func (r ValidationReport) HasFailures() bool {
	for _, v := range r.Verdicts {
		if v.Status == VerdictFail {
			return true
		}
	}
	return false
}

func (r ValidationReport) HasWarnings() bool {
	for _, v := range r.Verdicts {
		if v.Status == VerdictWarning {
			return true
		}
	}
	return false
}

// Verdict returns the entry for one criterion, or a zero value if absent.
func (r ValidationReport) Verdict(c Criterion) CriterionVerdict {
	for _, v := range r.Verdicts {
		if v.Criterion == c {
			return v
		}
	}
	return CriterionVerdict{}
}

// ClinicalPayload is the slice of a request the validation engine scores.
type ClinicalPayload struct {
	Age           int
	Gender        Gender
	Symptoms      []string
	ICD10Codes    []string
	Justification string
	DocumentCount int
}

// Payload extracts the validatable fields of a request.
func (r *Request) Payload() ClinicalPayload {
	return ClinicalPayload{
		Age:           r.Age,
		Gender:        r.Gender,
		Symptoms:      r.Symptoms,
		ICD10Codes:    r.ICD10Codes,
		Justification: r.Justification,
		DocumentCount: len(r.Documents),
	}
}
