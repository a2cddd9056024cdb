package model

import (
	"strings"
	"time"
)

// DocumentType is the contract class assigned by the type classifier.
type DocumentType string

const (
	TypeMSA      DocumentType = "MSA"
	TypeSOW      DocumentType = "SOW"
	TypeNDA      DocumentType = "NDA"
	TypePO       DocumentType = "PO"
	TypeAMD      DocumentType = "AMD"
	TypeLicense  DocumentType = "LICENSE"
	TypeContract DocumentType = "CONTRACT"
)

// DocumentTypes lists every tag the classifier may return, in declaration order.
// CONTRACT is the fallback and always last.
var DocumentTypes = []DocumentType{TypeMSA, TypeSOW, TypeNDA, TypePO, TypeAMD, TypeLicense, TypeContract}

// ParseDocumentType maps a tag (any case) to a DocumentType.
func ParseDocumentType(s string) (DocumentType, bool) {
	upper := DocumentType(strings.ToUpper(strings.TrimSpace(s)))
	for _, t := range DocumentTypes {
		if t == upper {
			return t, true
		}
	}
	return "", false
}

// ExecutionStatus is binary: a document either carries execution evidence or it does not.
type ExecutionStatus string

const (
	StatusFinal      ExecutionStatus = "final"
	StatusSupporting ExecutionStatus = "supporting"
)

// Confidence grades the signature evidence.
type Confidence string

const (
	ConfidenceNone   Confidence = "none"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Rank orders confidence levels so callers can compare them.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 2
	case ConfidenceMedium:
		return 1
	default:
		return 0
	}
}

// DocumentRecord is produced once per processed file.
type DocumentRecord struct {
	Path     string `json:"path"`
	Filename string `json:"filename"`

	VendorRaw        string  `json:"vendor_raw"`
	VendorNormalized string  `json:"vendor_normalized"`
	VendorMatched    string  `json:"vendor_matched,omitempty"`
	VendorScore      float64 `json:"vendor_score"`

	DocumentType        DocumentType    `json:"document_type"`
	ExecutionStatus     ExecutionStatus `json:"execution_status"`
	SignatureEvidence   []string        `json:"signature_evidence"`
	SignatureConfidence Confidence      `json:"signature_confidence"`

	DateRoles DateRoles `json:"date_roles"`
	// FileDate is the best single date for the file (YYYYMMDD), empty when none survived.
	FileDate string `json:"file_date,omitempty"`

	RetentionCategory RetentionCategory `json:"retention_category"`
	ProcessedAt       time.Time         `json:"processed_at"`
}

// Vendor returns the matched vendor when one exists, else the raw name.
func (r *DocumentRecord) Vendor() string {
	if r.VendorMatched != "" {
		return r.VendorMatched
	}
	return r.VendorRaw
}

// HasExpiration reports whether an expiration date was extracted.
func (r *DocumentRecord) HasExpiration() bool {
	return r.DateRoles.Expiration != ""
}
