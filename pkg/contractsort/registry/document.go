package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

// DefaultFilename is the registry file kept at the root of a watched folder.
const DefaultFilename = "_backend_tracking_registry.json"

// Document is the on-disk registry: aggregate counters plus the expiration
// tracking list, sorted ascending by expiration date.
type Document struct {
	RegistryCreated         time.Time      `json:"registry_created"`
	RegistryLocation        string         `json:"registry_location,omitempty"`
	LastUpdated             *time.Time     `json:"last_updated"`
	TotalDocuments          int            `json:"total_documents"`
	DocumentsWithExpiration int            `json:"documents_with_expiration"`
	RetentionCategories     map[string]int `json:"retention_categories"`
	ExpirationTracking      []Entry        `json:"expiration_tracking"`
	// JournalSeq is the last journal entry folded into this document.
	JournalSeq int64 `json:"journal_seq,omitempty"`
}

// Entry is one tracked document.
type Entry struct {
	TrackingID                string  `json:"tracking_id"`
	Vendor                    string  `json:"vendor"`
	DocumentType              string  `json:"document_type"`
	Filename                  string  `json:"filename"`
	FilePath                  string  `json:"file_path"`
	ExpirationDate            *string `json:"expiration_date"`
	RenewalDate               *string `json:"renewal_date"`
	ReviewDate                *string `json:"review_date"`
	RetentionCategory         string  `json:"retention_category"`
	DestructionReviewRequired bool    `json:"destruction_review_required"`
	ProcessingDate            string  `json:"processing_date"`
}

// Expiration returns the expiration date or "".
func (e Entry) Expiration() string {
	return deref(e.ExpirationDate)
}

// NewDocument returns an empty registry created at now.
func NewDocument(location string, now time.Time) *Document {
	return &Document{
		RegistryCreated:     now,
		RegistryLocation:    location,
		RetentionCategories: make(map[string]int),
		ExpirationTracking:  []Entry{},
	}
}

// EntryFor builds the tracking entry for rec.
func EntryFor(trackingID string, rec model.DocumentRecord) Entry {
	return Entry{
		TrackingID:                trackingID,
		Vendor:                    rec.Vendor(),
		DocumentType:              string(rec.DocumentType),
		Filename:                  rec.Filename,
		FilePath:                  rec.Path,
		ExpirationDate:            optional(rec.DateRoles.Expiration),
		RenewalDate:               optional(rec.DateRoles.Renewal),
		ReviewDate:                optional(rec.DateRoles.Review),
		RetentionCategory:         string(rec.RetentionCategory),
		DestructionReviewRequired: rec.HasExpiration(),
		ProcessingDate:            rec.ProcessedAt.Format(time.RFC3339),
	}
}

// Apply folds one record into the counters. Only records with an expiration
// date join the tracking list.
func (d *Document) Apply(trackingID string, rec model.DocumentRecord, at time.Time) {
	if d.RetentionCategories == nil {
		d.RetentionCategories = make(map[string]int)
	}
	updated := at
	d.LastUpdated = &updated
	d.TotalDocuments++

	category := string(rec.RetentionCategory)
	if category == "" {
		category = "unknown"
	}
	d.RetentionCategories[category]++

	if rec.HasExpiration() {
		d.DocumentsWithExpiration++
		d.ExpirationTracking = append(d.ExpirationTracking, EntryFor(trackingID, rec))
		d.sortTracking()
	}
}

// sortTracking orders by expiration date; entries without one sort last.
func (d *Document) sortTracking() {
	key := func(e Entry) string {
		if s := e.Expiration(); s != "" {
			return s
		}
		return "9999-12-31"
	}
	sort.SliceStable(d.ExpirationTracking, func(i, j int) bool {
		return key(d.ExpirationTracking[i]) < key(d.ExpirationTracking[j])
	})
}

// Clone returns a deep copy.
func (d *Document) Clone() Document {
	c := *d
	if d.LastUpdated != nil {
		t := *d.LastUpdated
		c.LastUpdated = &t
	}
	c.RetentionCategories = make(map[string]int, len(d.RetentionCategories))
	for k, v := range d.RetentionCategories {
		c.RetentionCategories[k] = v
	}
	c.ExpirationTracking = append([]Entry(nil), d.ExpirationTracking...)
	return c
}

// Load reads a registry file. A missing file is not an error: the
// returned document is new and exists reports false.
func Load(path string) (doc *Document, exists bool, err error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	doc = &Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, true, fmt.Errorf("decode registry %s: %w", path, err)
	}
	if doc.RetentionCategories == nil {
		doc.RetentionCategories = make(map[string]int)
	}
	if doc.ExpirationTracking == nil {
		doc.ExpirationTracking = []Entry{}
	}
	return doc, true, nil
}

// Save writes the registry atomically through a temporary file.
func (d *Document) Save(path string) error {
	data, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".registry-*.json")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
