// Package dates finds dates in contract text and assigns them semantic roles.
package dates

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// Kind identifies the surface form of a date candidate.
type Kind int

const (
	KindMonthName Kind = iota // March 1, 2025
	KindDayMonth              // 1st day of March, 2025
	KindNumeric               // 03/01/2025, 3-1-2025
	KindISO                   // 2025-03-01, 2025/03/01
	KindCompact               // 20250301
	KindYear                  // 2025
)

const monthPattern = `(jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?)`

var candidatePatterns = []struct {
	kind Kind
	re   *regexp.Regexp
}{
	{KindMonthName, regexp.MustCompile(`(?i)\b` + monthPattern + `\.?\s+(\d{1,2})(?:st|nd|rd|th)?,?\s+(\d{4})\b`)},
	{KindDayMonth, regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(?:day\s+of\s+)?` + monthPattern + `\.?,?\s+(\d{4})\b`)},
	{KindNumeric, regexp.MustCompile(`\b(\d{1,2})[/-](\d{1,2})[/-](\d{4})\b`)},
	{KindISO, regexp.MustCompile(`\b(\d{4})[/-](\d{1,2})[/-](\d{1,2})\b`)},
	{KindCompact, regexp.MustCompile(`\b((?:199\d|20[0-3]\d)(?:0[1-9]|1[0-2])(?:0[1-9]|[12]\d|3[01]))\b`)},
	{KindYear, regexp.MustCompile(`\b(199\d|20[0-3]\d)\b`)},
}

var months = map[string]time.Month{
	"jan": time.January, "feb": time.February, "mar": time.March, "apr": time.April,
	"may": time.May, "jun": time.June, "jul": time.July, "aug": time.August,
	"sep": time.September, "oct": time.October, "nov": time.November, "dec": time.December,
}

// Candidate is a date found in text.
type Candidate struct {
	Text  string
	Start int
	End   int
	Kind  Kind
	Date  time.Time
}

type rawMatch struct {
	kind   Kind
	start  int
	end    int
	groups []string
}

// Scan returns every parseable date in text in position order. When forms
// overlap the longer, earlier one wins, so "March 1, 2025" does not also
// yield a bare 2025. Strings that look like dates but do not parse are dropped
// along with anything nested inside them.
func Scan(text string) []Candidate {
	if text == "" {
		return nil
	}

	var raw []rawMatch
	for _, cp := range candidatePatterns {
		for _, loc := range cp.re.FindAllStringSubmatchIndex(text, -1) {
			m := rawMatch{kind: cp.kind, start: loc[0], end: loc[1]}
			for g := 2; g+1 < len(loc); g += 2 {
				m.groups = append(m.groups, text[loc[g]:loc[g+1]])
			}
			raw = append(raw, m)
		}
	}

	sort.SliceStable(raw, func(i, j int) bool {
		if raw[i].start != raw[j].start {
			return raw[i].start < raw[j].start
		}
		return raw[i].end-raw[i].start > raw[j].end-raw[j].start
	})

	var out []Candidate
	covered := -1
	for _, m := range raw {
		if m.start < covered {
			continue
		}
		covered = m.end
		date, ok := parse(m)
		if !ok {
			continue
		}
		out = append(out, Candidate{
			Text:  text[m.start:m.end],
			Start: m.start,
			End:   m.end,
			Kind:  m.kind,
			Date:  date,
		})
	}
	return out
}

// Parse parses a single date string of any supported form.
func Parse(s string) (time.Time, bool) {
	cands := Scan(strings.TrimSpace(s))
	if len(cands) == 0 {
		return time.Time{}, false
	}
	return cands[0].Date, true
}

func parse(m rawMatch) (time.Time, bool) {
	var layoutFree string
	switch m.kind {
	case KindMonthName:
		layoutFree = canonicalMonthDay(m.groups[0], m.groups[1], m.groups[2])
	case KindDayMonth:
		layoutFree = canonicalMonthDay(m.groups[1], m.groups[0], m.groups[2])
	case KindNumeric:
		layoutFree = fmt.Sprintf("%s/%s/%s", m.groups[0], m.groups[1], m.groups[2])
	case KindISO:
		mo, _ := strconv.Atoi(m.groups[1])
		d, _ := strconv.Atoi(m.groups[2])
		layoutFree = fmt.Sprintf("%s-%02d-%02d", m.groups[0], mo, d)
	case KindCompact:
		layoutFree = m.groups[0]
	case KindYear:
		y, err := strconv.Atoi(m.groups[0])
		if err != nil {
			return time.Time{}, false
		}
		return time.Date(y, time.January, 1, 0, 0, 0, 0, time.UTC), true
	}
	if layoutFree == "" {
		return time.Time{}, false
	}

	t, err := dateparse.ParseIn(layoutFree, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
}

// canonicalMonthDay renders "March 1, 2025" from loose month/day/year parts.
// It returns "" for impossible days so that overflow never rolls into the next month.
func canonicalMonthDay(month, day, year string) string {
	key := strings.ToLower(month)
	if len(key) > 3 {
		key = key[:3]
	}
	mo, ok := months[key]
	if !ok {
		return ""
	}
	d, err := strconv.Atoi(day)
	if err != nil || d < 1 {
		return ""
	}
	y, err := strconv.Atoi(year)
	if err != nil {
		return ""
	}
	if d > daysIn(mo, y) {
		return ""
	}
	return fmt.Sprintf("%s %d, %d", mo.String(), d, y)
}

func daysIn(m time.Month, year int) int {
	return time.Date(year, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
