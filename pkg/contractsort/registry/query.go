package registry

import (
	"math"
	"strings"
	"time"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

// ExpiringSoonDays is the horizon of the EXPIRING_SOON status.
const ExpiringSoonDays = 90

// Expiration statuses of exported rows.
const (
	StatusExpired      = "EXPIRED"
	StatusExpiringSoon = "EXPIRING_SOON"
	StatusActive       = "ACTIVE"
	StatusNoExpiration = "NO_EXPIRATION"
)

// Expiring is a tracked entry annotated with whole days until expiration.
type Expiring struct {
	Entry
	DaysUntilExpiration int `json:"days_until_expiration"`
}

// daysUntil returns whole days from now until the start of date, floored.
func daysUntil(date string, now time.Time) (int, time.Time, bool) {
	exp, err := time.ParseInLocation(model.ISODate, date, now.Location())
	if err != nil {
		return 0, time.Time{}, false
	}
	return int(math.Floor(exp.Sub(now).Hours() / 24)), exp, true
}

// ExpiringWithin lists entries expiring between now and now + 30*months
// days, ascending by expiration date.
func (d *Document) ExpiringWithin(now time.Time, months int) []Expiring {
	return d.expiringBefore(now, now.AddDate(0, 0, 30*months))
}

func (d *Document) expiringBefore(now, until time.Time) []Expiring {
	var out []Expiring
	for _, e := range d.ExpirationTracking {
		days, exp, ok := daysUntil(e.Expiration(), now)
		if !ok || exp.Before(now) || exp.After(until) {
			continue
		}
		out = append(out, Expiring{Entry: e, DaysUntilExpiration: days})
	}
	// ExpirationTracking is kept sorted, so out already is.
	return out
}

// ByCategory returns entries whose retention category equals category,
// ignoring case. An empty category returns every entry.
func (d *Document) ByCategory(category string) []Entry {
	if category == "" {
		return append([]Entry(nil), d.ExpirationTracking...)
	}
	var out []Entry
	for _, e := range d.ExpirationTracking {
		if strings.EqualFold(e.RetentionCategory, category) {
			out = append(out, e)
		}
	}
	return out
}

// Row is one line of the tabular export.
type Row struct {
	Entry
	DaysUntilExpiration *int   `json:"days_until_expiration"`
	ExpirationStatus    string `json:"expiration_status"`
}

// ExpirationStatus classifies days until expiration; nil means no date.
func ExpirationStatus(days *int) string {
	switch {
	case days == nil:
		return StatusNoExpiration
	case *days < 0:
		return StatusExpired
	case *days <= ExpiringSoonDays:
		return StatusExpiringSoon
	default:
		return StatusActive
	}
}

// Rows returns every tracked entry with its derived expiration status.
func (d *Document) Rows(now time.Time) []Row {
	rows := make([]Row, 0, len(d.ExpirationTracking))
	for _, e := range d.ExpirationTracking {
		row := Row{Entry: e}
		if days, _, ok := daysUntil(e.Expiration(), now); ok {
			row.DaysUntilExpiration = &days
		}
		row.ExpirationStatus = ExpirationStatus(row.DaysUntilExpiration)
		rows = append(rows, row)
	}
	return rows
}

// Summary is the roll-up printed after a batch or by the query command.
type Summary struct {
	LastUpdated             *time.Time     `json:"last_updated"`
	TotalDocuments          int            `json:"total_documents"`
	DocumentsWithExpiration int            `json:"documents_with_expiration"`
	RetentionCategories     map[string]int `json:"retention_categories"`
	ExpiringWithinYear      []Expiring     `json:"expiring_within_year"`
}

// Summarize rolls up the registry, listing documents expiring within 365 days.
func (d *Document) Summarize(now time.Time) Summary {
	s := Summary{
		LastUpdated:             d.LastUpdated,
		TotalDocuments:          d.TotalDocuments,
		DocumentsWithExpiration: d.DocumentsWithExpiration,
		RetentionCategories:     make(map[string]int, len(d.RetentionCategories)),
		ExpiringWithinYear:      d.expiringBefore(now, now.AddDate(0, 0, 365)),
	}
	for k, v := range d.RetentionCategories {
		s.RetentionCategories[k] = v
	}
	return s
}
