package organize

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/registry"
)

// maxReportedErrors bounds the error reasons shown in a summary.
const maxReportedErrors = 5

// Batch is the outcome of one Process run.
type Batch struct {
	ID        string
	Started   time.Time
	Finished  time.Time
	Successes []Success
	Failures  []Failure
	// Skipped lists documents left untouched because the batch was cancelled.
	Skipped   []string
	// Registry is the registry state after the batch, nil without a registry.
	Registry  *registry.Document
}

// Success describes a filed document.
type Success struct {
	OriginalPath string
	NewPath      string
	Vendor       string
	TrackingID   string
	Record       model.DocumentRecord
}

// Failure describes a document that could not be filed.
type Failure struct {
	Path      string
	ErrorPath string // empty when the document could not be moved
	Reason    string
}

// Summary is the operator-facing roll-up of a batch.
type Summary struct {
	BatchID             string
	Successful          int
	Errors              int
	Skipped             int
	ByVendor            map[string]int
	FinalWithSignatures int
	Supporting          int
	FirstErrors         []Failure
	Registry            *registry.Summary
}

// Summarize rolls up the batch. now anchors the registry expiration window.
func (b *Batch) Summarize(now time.Time) Summary {
	s := Summary{
		BatchID:    b.ID,
		Successful: len(b.Successes),
		Errors:     len(b.Failures),
		Skipped:    len(b.Skipped),
		ByVendor:   make(map[string]int),
	}
	for _, ok := range b.Successes {
		s.ByVendor[ok.Vendor]++
		switch {
		case ok.Record.ExecutionStatus == model.StatusFinal && len(ok.Record.SignatureEvidence) > 0:
			s.FinalWithSignatures++
		case ok.Record.ExecutionStatus == model.StatusSupporting:
			s.Supporting++
		}
	}

	failures := append([]Failure(nil), b.Failures...)
	sort.Slice(failures, func(i, j int) bool { return failures[i].Path < failures[j].Path })
	if len(failures) > maxReportedErrors {
		failures = failures[:maxReportedErrors]
	}
	s.FirstErrors = failures

	if b.Registry != nil {
		rs := b.Registry.Summarize(now)
		s.Registry = &rs
	}
	return s
}

// Write prints the summary as plain text.
func (s Summary) Write(w io.Writer) {
	fmt.Fprintf(w, "Batch %s\n", s.BatchID)
	fmt.Fprintf(w, "Successfully processed: %d\n", s.Successful)
	fmt.Fprintf(w, "Errors: %d\n", s.Errors)
	fmt.Fprintf(w, "Total files: %d\n", s.Successful+s.Errors)
	if s.Skipped > 0 {
		fmt.Fprintf(w, "Left for the next run (cancelled): %d\n", s.Skipped)
	}

	if len(s.ByVendor) > 0 {
		fmt.Fprintln(w, "\nProcessed by vendor:")
		vendors := make([]string, 0, len(s.ByVendor))
		for v := range s.ByVendor {
			vendors = append(vendors, v)
		}
		sort.Strings(vendors)
		for _, v := range vendors {
			fmt.Fprintf(w, "  %s: %d files\n", v, s.ByVendor[v])
		}
		fmt.Fprintf(w, "\nFinal documents (with signatures): %d\n", s.FinalWithSignatures)
		fmt.Fprintf(w, "Supporting documents: %d\n", s.Supporting)
	}

	if len(s.FirstErrors) > 0 {
		fmt.Fprintln(w, "\nErrors:")
		for _, f := range s.FirstErrors {
			fmt.Fprintf(w, "  %s: %s\n", f.Path, f.Reason)
		}
		if s.Errors > len(s.FirstErrors) {
			fmt.Fprintf(w, "  ... and %d more errors\n", s.Errors-len(s.FirstErrors))
		}
	}

	if s.Registry != nil {
		WriteRegistrySummary(w, *s.Registry)
	}
}

// WriteRegistrySummary prints registry counters and upcoming expirations.
func WriteRegistrySummary(w io.Writer, rs registry.Summary) {
	fmt.Fprintln(w, "\nTracking registry:")
	fmt.Fprintf(w, "  Total documents: %d\n", rs.TotalDocuments)
	fmt.Fprintf(w, "  Documents with expiration dates: %d\n", rs.DocumentsWithExpiration)

	cats := make([]string, 0, len(rs.RetentionCategories))
	for c := range rs.RetentionCategories {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		fmt.Fprintf(w, "  %s: %d\n", c, rs.RetentionCategories[c])
	}

	if len(rs.ExpiringWithinYear) == 0 {
		fmt.Fprintln(w, "  No documents expiring in the next 12 months")
		return
	}
	fmt.Fprintf(w, "  Expiring within 12 months: %d\n", len(rs.ExpiringWithinYear))
	for i, e := range rs.ExpiringWithinYear {
		if i == maxReportedErrors {
			fmt.Fprintf(w, "    ... and %d more\n", len(rs.ExpiringWithinYear)-i)
			break
		}
		fmt.Fprintf(w, "    %s - %s (%s)\n", e.Expiration(), e.Vendor, e.DocumentType)
	}
}
