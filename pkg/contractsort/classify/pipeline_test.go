package classify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/contractsort/pkg/contractsort/dates"
	"github.com/cognicore/contractsort/pkg/contractsort/doctype"
	"github.com/cognicore/contractsort/pkg/contractsort/execution"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/vendor"
)

const executedMSA = `IN WITNESS WHEREOF, the parties have executed this Agreement.
By: ______________________
Name: John Smith
Title: CEO
DocuSign Envelope ID: 123`

func TestProcessExecutedMSA(t *testing.T) {
	rec := Default().Process(Input{
		Path:   "/contracts/Acme Inc/msa_acme.pdf",
		Vendor: "Acme Inc",
		Text:   executedMSA,
	})

	assert.Equal(t, "msa_acme.pdf", rec.Filename)
	assert.Equal(t, model.TypeMSA, rec.DocumentType)
	assert.Equal(t, model.StatusFinal, rec.ExecutionStatus)
	assert.Equal(t, model.ConfidenceHigh, rec.SignatureConfidence)
	assert.NotEmpty(t, rec.SignatureEvidence)
	assert.Equal(t, "acme", rec.VendorNormalized)
	assert.Equal(t, model.RetentionIndefinite, rec.RetentionCategory)
}

func TestProcessUnsignedExhibit(t *testing.T) {
	p := Default()
	text := "EXHIBIT A — Statement of Work, Purchase Order #123"

	rec := p.Process(Input{Filename: "exhibit_a.pdf", Text: text})
	assert.Equal(t, model.StatusSupporting, rec.ExecutionStatus)
	assert.Empty(t, rec.SignatureEvidence)
	assert.Equal(t, model.ConfidenceNone, rec.SignatureConfidence)
	assert.Equal(t, model.DeriveRetention(string(rec.DocumentType), false), rec.RetentionCategory)

	po := p.Process(Input{Filename: "po_123.pdf", Text: text})
	require.Equal(t, model.TypePO, po.DocumentType)
	assert.Equal(t, model.RetentionShortTerm, po.RetentionCategory)
	assert.Equal(t, model.StatusSupporting, po.ExecutionStatus)
}

func TestProcessEmptyText(t *testing.T) {
	rec := Default().Process(Input{Path: "/x/scan.pdf"})

	assert.Equal(t, model.TypeContract, rec.DocumentType)
	assert.Equal(t, model.StatusSupporting, rec.ExecutionStatus)
	assert.Empty(t, rec.DateRoles.Found())
	assert.Empty(t, rec.FileDate)
	assert.Equal(t, model.RetentionIndefinite, rec.RetentionCategory)
}

func TestProcessDatesAndRetention(t *testing.T) {
	text := "This Master Service Agreement is effective as of January 15, 2024. " +
		"This Agreement shall expire on March 1, 2027."

	rec := Default().Process(Input{Filename: "acme.pdf", Text: text})
	assert.Equal(t, "2024-01-15", rec.DateRoles.Effective)
	assert.Equal(t, "2027-03-01", rec.DateRoles.Expiration)
	assert.Equal(t, "20270301", rec.FileDate)
	assert.Equal(t, model.RetentionLongTerm, rec.RetentionCategory)
}

func TestProcessVendorMatching(t *testing.T) {
	p := NewPipeline(doctype.MustDefault(), execution.MustDefault(), dates.MustDefault(),
		vendor.NewMatcher([]string{"Globex Corporation", "Acme Corporation"}, 80))

	rec := p.Process(Input{Filename: "a.pdf", Vendor: "ACME Corp."})
	assert.Equal(t, "Acme Corporation", rec.VendorMatched)
	assert.Equal(t, 100.0, rec.VendorScore)
	assert.Equal(t, "Acme Corporation", rec.Vendor())

	rec = p.Process(Input{Filename: "a.pdf", Vendor: "Initech"})
	assert.Empty(t, rec.VendorMatched)
	assert.Equal(t, "Initech", rec.Vendor())
}

func TestProcessStampsTime(t *testing.T) {
	p := Default()
	fixed := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	assert.Equal(t, fixed, p.Process(Input{Filename: "a.pdf"}).ProcessedAt)
}
