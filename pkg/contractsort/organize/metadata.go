package organize

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
	"github.com/cognicore/contractsort/pkg/contractsort/naming"
)

// Metadata is the JSON sidecar written beside every filed document.
type Metadata struct {
	TrackingID       string `json:"tracking_id"`
	BatchID          string `json:"batch_id"`
	OriginalFilename string `json:"original_filename"`
	OriginalPath     string `json:"original_path"`
	NewFilename      string `json:"new_filename"`
	NewPath          string `json:"new_path"`
	Vendor           string `json:"vendor"`
	VendorMatched    string `json:"vendor_matched,omitempty"`
	FolderSource     string `json:"folder_source"`

	DocumentType        string   `json:"document_type"`
	DocumentStatus      string   `json:"document_status"`
	SignatureEvidence   []string `json:"signature_evidence"`
	SignatureConfidence string   `json:"signature_confidence"`

	EffectiveDate   *string `json:"effective_date"`
	ExpirationDate  *string `json:"expiration_date"`
	SignatureDate   *string `json:"signature_date"`
	RenewalDate     *string `json:"renewal_date"`
	TerminationDate *string `json:"termination_date"`
	ReviewDate      *string `json:"review_date"`
	FileDate        string  `json:"file_date,omitempty"`

	ProcessingDate    time.Time `json:"processing_date"`
	FileSizeBytes     int64     `json:"file_size_bytes"`
	FileExtension     string    `json:"file_extension"`
	UniqueID          *int      `json:"unique_id"`
	NamingFormatUsed  string    `json:"naming_format_used"`
	CreatedSubfolders bool      `json:"created_subfolders"`

	RequiresRetentionReview   bool       `json:"requires_retention_review"`
	DestructionReviewRequired bool       `json:"destruction_review_required"`
	RetentionCategory         string     `json:"retention_category"`
	LastReviewed              *time.Time `json:"last_reviewed"`
	DestructionScheduled      *time.Time `json:"destruction_scheduled"`
	BackendNotes              string     `json:"backend_notes"`

	FileModifiedTimestamp    time.Time `json:"file_modified_timestamp"`
	MetadataCreatedTimestamp time.Time `json:"metadata_created_timestamp"`
	MetadataLocation         string    `json:"metadata_location"`
}

type metadataInput struct {
	trackingID   string
	batchID      string
	originalPath string
	folder       string
	cleanVendor  string
	ordinal      int
}

func (p *Processor) metadata(rec model.DocumentRecord, in metadataInput) Metadata {
	roles := rec.DateRoles
	m := Metadata{
		TrackingID:       in.trackingID,
		BatchID:          in.batchID,
		OriginalFilename: filepath.Base(in.originalPath),
		OriginalPath:     in.originalPath,
		NewFilename:      rec.Filename,
		NewPath:          rec.Path,
		Vendor:           in.cleanVendor,
		VendorMatched:    rec.VendorMatched,
		FolderSource:     in.folder,

		DocumentType:        string(rec.DocumentType),
		DocumentStatus:      string(rec.ExecutionStatus),
		SignatureEvidence:   append([]string{}, rec.SignatureEvidence...),
		SignatureConfidence: string(rec.SignatureConfidence),

		EffectiveDate:   optional(roles.Effective),
		ExpirationDate:  optional(roles.Expiration),
		SignatureDate:   optional(roles.Signature),
		RenewalDate:     optional(roles.Renewal),
		TerminationDate: optional(roles.Termination),
		ReviewDate:      optional(roles.Review),
		FileDate:        rec.FileDate,

		ProcessingDate:    rec.ProcessedAt,
		FileExtension:     strings.ToLower(filepath.Ext(rec.Path)),
		NamingFormatUsed:  string(p.opts.NamingFormat),
		CreatedSubfolders: p.opts.CreateSubfolders,

		RequiresRetentionReview:   rec.HasExpiration(),
		DestructionReviewRequired: rec.HasExpiration(),
		RetentionCategory:         string(rec.RetentionCategory),
		BackendNotes:              "Expiration tracking: No",

		MetadataCreatedTimestamp: p.now(),
		MetadataLocation:         naming.MetadataPath(rec.Path),
	}
	if rec.HasExpiration() {
		m.BackendNotes = "Expiration tracking: Yes"
	}
	if p.opts.NamingFormat == naming.FormatEnhanced {
		ordinal := in.ordinal
		m.UniqueID = &ordinal
	}
	if info, err := os.Stat(rec.Path); err == nil {
		m.FileSizeBytes = info.Size()
		m.FileModifiedTimestamp = info.ModTime()
	}
	return m
}

// WriteMetadata writes m to its sidecar location.
func WriteMetadata(m Metadata) error {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(m.MetadataLocation), 0755); err != nil {
		return err
	}
	return os.WriteFile(m.MetadataLocation, data, 0644)
}

// ReadMetadata loads the sidecar of a filed document.
func ReadMetadata(docPath string) (Metadata, error) {
	var m Metadata
	data, err := os.ReadFile(naming.MetadataPath(docPath))
	if err != nil {
		return m, err
	}
	err = json.Unmarshal(data, &m)
	return m, err
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
