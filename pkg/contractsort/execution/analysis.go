package execution

import (
	"strings"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

// maxReportedEvidence caps the evidence listed in an Analysis.
const maxReportedEvidence = 5

// KeywordScores are the draft/supporting/final keyword scores for a document.
// They are informational only: Status is decided by evidence alone and never
// consults these scores.
type KeywordScores struct {
	Draft      int `json:"draft"`
	Supporting int `json:"supporting"`
	Final      int `json:"final"`
}

// Analysis is an operator-facing report of a detection run.
type Analysis struct {
	HasSignatures  bool                  `json:"has_signatures"`
	SignatureCount int                   `json:"signature_count"`
	Evidence       []string              `json:"signatures_found"`
	Categories     []string              `json:"signature_types"`
	Confidence     model.Confidence      `json:"confidence"`
	Status         model.ExecutionStatus `json:"status"`
	Keywords       KeywordScores         `json:"keyword_scores"`
}

// Analyze runs Detect and summarizes the result together with keyword scores.
func (d *Detector) Analyze(filename, text string) Analysis {
	res := d.Detect(text)

	evidence := res.Evidence
	if len(evidence) > maxReportedEvidence {
		evidence = evidence[:maxReportedEvidence]
	}

	return Analysis{
		HasSignatures:  len(res.Evidence) > 0,
		SignatureCount: len(res.Evidence),
		Evidence:       evidence,
		Categories:     res.Categories,
		Confidence:     res.Confidence,
		Status:         res.Status,
		Keywords:       d.KeywordScores(filename, text),
	}
}

// KeywordScores scores filename keywords 3 points each and content keywords 1 point each.
func (d *Detector) KeywordScores(filename, text string) KeywordScores {
	name := strings.ToLower(filename)
	content := strings.ToLower(text)
	return KeywordScores{
		Draft:      keywordScore(name, content, d.statusKW.Draft),
		Supporting: keywordScore(name, content, d.statusKW.Supporting),
		Final:      keywordScore(name, content, d.statusKW.Final),
	}
}

func keywordScore(name, content string, set KeywordSet) int {
	score := 0
	for _, kw := range set.Filename {
		if strings.Contains(name, kw) {
			score += 3
		}
	}
	if content == "" {
		return score
	}
	for _, kw := range set.Content {
		if strings.Contains(content, kw) {
			score++
		}
	}
	return score
}
