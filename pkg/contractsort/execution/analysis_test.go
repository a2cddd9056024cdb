package execution

import (
	"testing"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

func TestAnalyzeCapsEvidence(t *testing.T) {
	text := "Signature page. Signature block. Notary Public. Attested by. Signature line. Please sign here. Wet signature."
	a := MustDefault().Analyze("msa.pdf", text)

	if !a.HasSignatures {
		t.Fatal("Expected signatures")
	}
	if a.SignatureCount <= maxReportedEvidence {
		t.Fatalf("Expected more than %d signatures, got %d", maxReportedEvidence, a.SignatureCount)
	}
	if len(a.Evidence) != maxReportedEvidence {
		t.Errorf("Expected evidence capped at %d, got %d", maxReportedEvidence, len(a.Evidence))
	}
	if a.Status != model.StatusFinal {
		t.Errorf("Expected final, got %s", a.Status)
	}
}

func TestKeywordScoresDoNotChangeStatus(t *testing.T) {
	a := MustDefault().Analyze("draft_v2.docx", "For review only")

	if a.Keywords.Draft != 7 {
		t.Errorf("Expected draft score 7, got %d", a.Keywords.Draft)
	}
	if a.Status != model.StatusSupporting {
		t.Errorf("Draft keywords must not produce a draft status, got %s", a.Status)
	}
}

func TestKeywordScoresFinal(t *testing.T) {
	scores := MustDefault().KeywordScores("Final_Executed_MSA.pdf", "This fully executed master service agreement")

	// filename: final, executed, msa (3 each); content: fully executed, master service agreement
	if scores.Final != 11 {
		t.Errorf("Expected final score 11, got %d", scores.Final)
	}
}
