package execution

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

const executedMSA = `MASTER SERVICE AGREEMENT
...
IN WITNESS WHEREOF, the parties have executed this Agreement as of the date below.

By: ______________________
Name: John Smith
Title: CEO

DocuSign Envelope ID: 123`

func TestDetectEmpty(t *testing.T) {
	d := MustDefault()

	for _, text := range []string{"", "   \n\t"} {
		res := d.Detect(text)
		if res.Status != model.StatusSupporting {
			t.Errorf("Expected supporting for %q, got %s", text, res.Status)
		}
		if res.Confidence != model.ConfidenceNone || len(res.Evidence) != 0 {
			t.Errorf("Expected no evidence for %q, got %v (%s)", text, res.Evidence, res.Confidence)
		}
	}
}

func TestDetectExecutedAgreement(t *testing.T) {
	res := MustDefault().Detect(executedMSA)

	if res.Status != model.StatusFinal {
		t.Fatalf("Expected final, got %s", res.Status)
	}
	if res.Confidence != model.ConfidenceHigh {
		t.Errorf("Expected high confidence, got %s", res.Confidence)
	}

	want := map[string]bool{"in witness whereof": false, "docusign envelope id": false}
	for _, e := range res.Evidence {
		if _, ok := want[strings.ToLower(e)]; ok {
			want[strings.ToLower(e)] = true
		}
	}
	for phrase, found := range want {
		if !found {
			t.Errorf("Expected evidence %q in %v", phrase, res.Evidence)
		}
	}
}

func TestDetectOrderAndMediumConfidence(t *testing.T) {
	res := MustDefault().Detect("Signature page follows. Sent via PandaDoc.")

	if len(res.Evidence) != 2 {
		t.Fatalf("Expected 2 evidence items, got %v", res.Evidence)
	}
	if res.Evidence[0] != "Signature page" || res.Evidence[1] != "PandaDoc" {
		t.Errorf("Unexpected evidence order: %v", res.Evidence)
	}
	if res.Confidence != model.ConfidenceMedium {
		t.Errorf("Expected medium confidence, got %s", res.Confidence)
	}
	if len(res.Categories) != 2 || res.Categories[0] != "signature_blocks" || res.Categories[1] != "esignature_platform" {
		t.Errorf("Unexpected categories: %v", res.Categories)
	}
}

func TestDetectIgnoresTextOutsideSections(t *testing.T) {
	filler := strings.Repeat("lorem ipsum ", 40)
	res := MustDefault().Detect("PandaDoc " + filler + "signature")

	if res.Status != model.StatusSupporting {
		t.Errorf("Platform name far from any keyword should not count, got %v", res.Evidence)
	}
	if res.Sections != 1 {
		t.Errorf("Expected one section, got %d", res.Sections)
	}
}

func TestDetectDeduplicatesCaseInsensitively(t *testing.T) {
	res := MustDefault().Detect("Notary Public\n\nsworn before a NOTARY   PUBLIC")

	count := 0
	for _, e := range res.Evidence {
		if strings.EqualFold(e, "notary public") {
			count++
		}
	}
	if count != 1 {
		t.Errorf("Expected one notary public entry, got %d in %v", count, res.Evidence)
	}
	if res.Evidence[0] != "Notary Public" {
		t.Errorf("First-seen form should be kept, got %q", res.Evidence[0])
	}
}

func TestDetectThreeItemsIsHigh(t *testing.T) {
	res := MustDefault().Detect("Signature page. Signature block. Notary Public.")

	if len(res.Evidence) != 3 {
		t.Fatalf("Expected 3 evidence items, got %v", res.Evidence)
	}
	if res.Confidence != model.ConfidenceHigh {
		t.Errorf("Expected high confidence from count, got %s", res.Confidence)
	}
}

func TestConfidenceMonotonicWithHighPhrase(t *testing.T) {
	d := MustDefault()
	base := "Signature page follows."

	before := d.Detect(base)
	after := d.Detect(base + "\n\nIn witness whereof the parties sign below.")

	if after.Confidence.Rank() < before.Confidence.Rank() {
		t.Errorf("Confidence decreased from %s to %s", before.Confidence, after.Confidence)
	}
	if after.Confidence != model.ConfidenceHigh {
		t.Errorf("Expected high after adding witness clause, got %s", after.Confidence)
	}
}

func TestFinalIffEvidence(t *testing.T) {
	d := MustDefault()
	texts := []string{
		"", "hello world", executedMSA, "Exhibit A - pricing schedule",
		"/s/ Jane Doe", "executed on 03/15/2024", "by: ____ date: ____",
	}
	for _, text := range texts {
		res := d.Detect(text)
		if (res.Status == model.StatusFinal) != (len(res.Evidence) > 0) {
			t.Errorf("Status %s inconsistent with evidence %v for %q", res.Status, res.Evidence, text)
		}
		if (res.Confidence == model.ConfidenceNone) != (len(res.Evidence) == 0) {
			t.Errorf("Confidence %s inconsistent with evidence %v for %q", res.Confidence, res.Evidence, text)
		}
	}
}

func TestSectionsKeepValidUTF8(t *testing.T) {
	d := MustDefault()
	text := strings.Repeat("é", 300) + " signature page " + strings.Repeat("ü", 300)

	sections := d.Sections(text)
	if len(sections) == 0 {
		t.Fatal("Expected at least one section")
	}
	for _, s := range sections {
		if !utf8.ValidString(s) {
			t.Errorf("Section is not valid UTF-8: %q", s)
		}
	}
}

func TestNewRequiresKeywords(t *testing.T) {
	tables := DefaultTables()
	tables.SectionKeywords = nil
	if _, err := New(tables); err == nil {
		t.Error("Expected error with no section keywords")
	}

	tables = DefaultTables()
	tables.Categories = append(tables.Categories, Category{Name: "bad", Patterns: []string{"[a-"}})
	if _, err := New(tables); err == nil {
		t.Error("Expected error for invalid pattern")
	}
}

func TestWithWindowNarrowsSections(t *testing.T) {
	d := MustDefault(WithWindow(5))
	sections := d.Sections("aaaaaaaaaa notary bbbbbbbbbb")
	if len(sections) != 1 || sections[0] != "aaaa notary bbbb" {
		t.Errorf("Unexpected sections: %q", sections)
	}
}
