// Package execution decides whether a document was executed by looking for
// signature evidence near signature-related keywords.
//
// Detection runs in two passes. The first pass finds every occurrence of a
// coarse keyword ("signature", "by:", "docusign", ...) and cuts a window of
// text around it. The second pass runs the categorized fine patterns over
// those windows only, so boilerplate far from any signature area cannot
// produce evidence.
package execution

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

// DefaultWindow is the number of bytes kept on each side of a keyword hit.
const DefaultWindow = 200

// highCountThreshold is the number of distinct evidence items that alone
// yields high confidence.
const highCountThreshold = 3

type compiledCategory struct {
	name     string
	patterns []*regexp.Regexp
}

// Detector finds execution evidence in document text.
type Detector struct {
	keywords   []*regexp.Regexp
	categories []compiledCategory
	high       []string
	statusKW   KeywordTables
	window     int
	logger     *zap.Logger
}

// Option configures a Detector.
type Option func(*Detector)

// WithLogger attaches a logger for detection events.
func WithLogger(l *zap.Logger) Option {
	return func(d *Detector) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithWindow overrides the section half-width.
func WithWindow(n int) Option {
	return func(d *Detector) {
		if n > 0 {
			d.window = n
		}
	}
}

// New compiles tables into a Detector.
func New(t Tables, opts ...Option) (*Detector, error) {
	d := &Detector{
		window:   DefaultWindow,
		logger:   zap.NewNop(),
		statusKW: t.Keywords,
	}
	for _, opt := range opts {
		opt(d)
	}

	for _, kw := range t.SectionKeywords {
		if strings.TrimSpace(kw) == "" {
			continue
		}
		d.keywords = append(d.keywords, regexp.MustCompile(`(?i)`+regexp.QuoteMeta(kw)))
	}
	if len(d.keywords) == 0 {
		return nil, fmt.Errorf("%w: no section keywords", internalerr.ErrInvalidConfig)
	}

	for _, cat := range t.Categories {
		cc := compiledCategory{name: cat.Name}
		for _, p := range cat.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("%w: category %s pattern %q: %v", internalerr.ErrInvalidConfig, cat.Name, p, err)
			}
			cc.patterns = append(cc.patterns, re)
		}
		d.categories = append(d.categories, cc)
	}

	for _, h := range t.HighConfidence {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			d.high = append(d.high, h)
		}
	}
	return d, nil
}

// MustDefault returns a Detector over DefaultTables.
func MustDefault(opts ...Option) *Detector {
	d, err := New(DefaultTables(), opts...)
	if err != nil {
		panic(err)
	}
	return d
}

// Result is the outcome of detection on one document.
type Result struct {
	Status     model.ExecutionStatus
	Confidence model.Confidence
	// Evidence is deduplicated case-insensitively, whitespace-normalized and
	// kept in first-seen order.
	Evidence []string
	// Categories lists the pattern categories that produced evidence, first-seen order.
	Categories []string
	// Sections is the number of keyword windows searched.
	Sections int
}

// Detect classifies text. Empty text is supporting with no evidence.
func (d *Detector) Detect(text string) Result {
	res := Result{Status: model.StatusSupporting, Confidence: model.ConfidenceNone}
	if strings.TrimSpace(text) == "" {
		return res
	}

	sections := d.Sections(text)
	res.Sections = len(sections)

	seen := make(map[string]struct{})
	seenCat := make(map[string]struct{})
	for _, section := range sections {
		for _, cat := range d.categories {
			for _, re := range cat.patterns {
				for _, m := range re.FindAllString(section, -1) {
					clean := strings.Join(strings.Fields(m), " ")
					if clean == "" {
						continue
					}
					key := strings.ToLower(clean)
					if _, dup := seen[key]; dup {
						continue
					}
					seen[key] = struct{}{}
					res.Evidence = append(res.Evidence, clean)
					if _, ok := seenCat[cat.name]; !ok {
						seenCat[cat.name] = struct{}{}
						res.Categories = append(res.Categories, cat.name)
					}
				}
			}
		}
	}

	res.Confidence = d.confidence(res.Evidence)
	if len(res.Evidence) > 0 {
		res.Status = model.StatusFinal
		d.logger.Info("execution evidence found",
			zap.Int("sections", res.Sections),
			zap.Int("evidence_count", len(res.Evidence)),
			zap.String("confidence", string(res.Confidence)),
			zap.Strings("categories", res.Categories),
		)
	} else {
		d.logger.Debug("no execution evidence", zap.Int("sections", res.Sections))
	}
	return res
}

// Sections returns every keyword window in text: keywords in table order,
// occurrences in position order. Overlapping windows are all kept.
func (d *Detector) Sections(text string) []string {
	var out []string
	for _, kw := range d.keywords {
		for _, loc := range kw.FindAllStringIndex(text, -1) {
			start := runeFloor(text, loc[0]-d.window)
			end := runeCeil(text, loc[1]+d.window)
			out = append(out, text[start:end])
		}
	}
	return out
}

func (d *Detector) confidence(evidence []string) model.Confidence {
	if len(evidence) == 0 {
		return model.ConfidenceNone
	}
	if len(evidence) >= highCountThreshold {
		return model.ConfidenceHigh
	}
	for _, e := range evidence {
		lower := strings.ToLower(e)
		for _, h := range d.high {
			if strings.Contains(lower, h) {
				return model.ConfidenceHigh
			}
		}
	}
	return model.ConfidenceMedium
}

// runeFloor clamps i into text and moves it back to a rune start.
func runeFloor(text string, i int) int {
	if i <= 0 {
		return 0
	}
	if i >= len(text) {
		return len(text)
	}
	for i > 0 && !utf8.RuneStart(text[i]) {
		i--
	}
	return i
}

// runeCeil clamps i into text and moves it forward to a rune start.
func runeCeil(text string, i int) int {
	if i >= len(text) {
		return len(text)
	}
	if i < 0 {
		return 0
	}
	for i < len(text) && !utf8.RuneStart(text[i]) {
		i++
	}
	return i
}
