// Package naming generates target filenames and resolves collisions.
package naming

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

// Format selects the filename scheme.
type Format string

const (
	// FormatEnhanced renders {ABBR}_{Vendor}_{typeDescription}_{NNN}{ext}.
	FormatEnhanced Format = "enhanced"
	// FormatSimple renders {YYYYMMDD}_{Vendor}_{original}.
	FormatSimple Format = "simple"
)

// maxConflicts caps the disambiguator search.
const maxConflicts = 9999

var abbreviations = map[string]string{
	"MSA": "AGMT", "SOW": "AGMT", "NDA": "AGMT", "AGREEMENT": "AGMT",
	"PO": "K", "LICENSE": "K", "CONTRACT": "K",
	"AMD": "AMD",
}

var descriptions = map[string]string{
	"MSA":       "masterServiceAgreement",
	"SOW":       "statementOfWork",
	"NDA":       "nonDisclosureAgreement",
	"PO":        "purchaseOrder",
	"AMD":       "amendment",
	"LICENSE":   "licenseAgreement",
	"CONTRACT":  "serviceAgreement",
	"AGREEMENT": "serviceAgreement",
}

// Abbreviation returns the filename prefix for a type tag, K when unknown.
func Abbreviation(docType model.DocumentType) string {
	if a, ok := abbreviations[string(docType)]; ok {
		return a
	}
	return "K"
}

// Description returns the camel-cased type description, "document" when unknown.
func Description(docType model.DocumentType) string {
	if d, ok := descriptions[string(docType)]; ok {
		return d
	}
	return "document"
}

// Enhanced builds K_Vendor_type_001.ext style names.
func Enhanced(vendor string, docType model.DocumentType, original string, ordinal int) string {
	return fmt.Sprintf("%s_%s_%s_%03d%s",
		Abbreviation(docType), vendor, Description(docType), ordinal, filepath.Ext(original))
}

// Simple prefixes the original name with the file date (when known) and vendor.
func Simple(vendor, original, date string) string {
	if date != "" {
		return date + "_" + vendor + "_" + original
	}
	return vendor + "_" + original
}

// ConflictName returns the n-th disambiguated variant of path.
func ConflictName(path string, n int) string {
	ext := filepath.Ext(path)
	return fmt.Sprintf("%s_conflict%02d%s", strings.TrimSuffix(path, ext), n, ext)
}

// Reserve claims a free path at or near target by creating an empty
// placeholder there, so concurrent callers never receive the same path.
// The caller renames its file over the placeholder, or removes it on failure.
func Reserve(target string) (string, error) {
	candidate := target
	for n := 1; n <= maxConflicts+1; n++ {
		f, err := os.OpenFile(candidate, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
		if err == nil {
			return candidate, f.Close()
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", err
		}
		candidate = ConflictName(target, n)
	}
	return "", fmt.Errorf("no free name for %s after %d attempts", target, maxConflicts)
}

// TargetFolder returns where a document with status lands inside its vendor folder.
func TargetFolder(vendorPath, folderName string, status model.ExecutionStatus, subfolders bool) string {
	if !subfolders {
		return vendorPath
	}
	return filepath.Join(vendorPath, folderName+"_"+string(status))
}

// EnsureSubfolders creates the final and supporting folders of a vendor folder.
func EnsureSubfolders(vendorPath, folderName string) error {
	for _, status := range []model.ExecutionStatus{model.StatusFinal, model.StatusSupporting} {
		if err := os.MkdirAll(TargetFolder(vendorPath, folderName, status, true), 0755); err != nil {
			return err
		}
	}
	return nil
}

// MetadataPath is the sidecar location for a document.
func MetadataPath(docPath string) string {
	return strings.TrimSuffix(docPath, filepath.Ext(docPath)) + ".metadata.json"
}
