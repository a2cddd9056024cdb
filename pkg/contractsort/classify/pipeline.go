// Package classify merges every classifier's view of a document into one record.
package classify

import (
	"path/filepath"
	"time"

	"github.com/cognicore/contractsort/pkg/contractsort/config"
	"github.com/cognicore/contractsort/pkg/contractsort/dates"
	"github.com/cognicore/contractsort/pkg/contractsort/doctype"
	"github.com/cognicore/contractsort/pkg/contractsort/execution"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/vendor"
)

// Pipeline runs the classification flow for one document:
// vendor → document type → execution evidence → date roles → retention
type Pipeline struct {
	docTypes  *doctype.Classifier
	execution *execution.Detector
	dates     *dates.Extractor
	vendors   *vendor.Matcher
	now       func() time.Time
}

// NewPipeline creates a pipeline with the given components. A nil vendors
// matcher disables master-list matching.
func NewPipeline(docTypes *doctype.Classifier, exec *execution.Detector, ext *dates.Extractor, vendors *vendor.Matcher) *Pipeline {
	return &Pipeline{
		docTypes:  docTypes,
		execution: exec,
		dates:     ext,
		vendors:   vendors,
		now:       time.Now,
	}
}

// FromComponents wires a pipeline from loaded configuration.
func FromComponents(c *config.Components) *Pipeline {
	return NewPipeline(c.DocTypes, c.Execution, c.Dates, c.Vendors)
}

// Default returns a pipeline over the built-in tables and no vendor list.
func Default() *Pipeline {
	return NewPipeline(doctype.MustDefault(), execution.MustDefault(), dates.MustDefault(), nil)
}

// Input is one document as seen by the classifiers.
type Input struct {
	Path     string
	Filename string // defaults to the base of Path
	Vendor   string // raw vendor name, usually from the containing folder
	Text     string // extracted text, possibly empty
}

// Process classifies a document. It never fails: empty text degrades every
// classifier to its empty-input default.
func (p *Pipeline) Process(in Input) model.DocumentRecord {
	filename := in.Filename
	if filename == "" && in.Path != "" {
		filename = filepath.Base(in.Path)
	}

	rec := model.DocumentRecord{
		Path:             in.Path,
		Filename:         filename,
		VendorRaw:        in.Vendor,
		VendorNormalized: vendor.Normalize(in.Vendor),
		ProcessedAt:      p.now(),
	}

	if p.vendors != nil && p.vendors.Len() > 0 && in.Vendor != "" {
		if name, score := p.vendors.Match(in.Vendor); score > 0 {
			rec.VendorMatched = name
			rec.VendorScore = score
		}
	}

	rec.DocumentType = p.docTypes.Identify(in.Text, filename)

	sig := p.execution.Detect(in.Text)
	rec.ExecutionStatus = sig.Status
	rec.SignatureEvidence = sig.Evidence
	rec.SignatureConfidence = sig.Confidence

	rec.DateRoles = p.dates.Roles(in.Text)
	rec.FileDate = p.dates.FileDate(in.Text, filename)

	rec.RetentionCategory = model.DeriveRetention(string(rec.DocumentType), rec.HasExpiration())
	return rec
}

// Analyze reports the detailed signature analysis for a document.
func (p *Pipeline) Analyze(filename, text string) execution.Analysis {
	return p.execution.Analyze(filename, text)
}

// FileDate returns the most recent date in text or filename as YYYYMMDD.
func (p *Pipeline) FileDate(text, filename string) string {
	return p.dates.FileDate(text, filename)
}
