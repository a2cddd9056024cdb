package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

// Year window for the single most-recent document date.
const (
	MinFileYear = 1990
	MaxFileYear = 2035
)

// FileDateLayout is the compact layout used in generated filenames.
const FileDateLayout = "20060102"

const defaultMaxMatches = 3

// RoleRule lists the phrases that introduce one date role. The first
// capture group of each pattern is the phrase searched for a date; without
// a group the whole match is used.
type RoleRule struct {
	Role       model.Role `yaml:"role"`
	MaxMatches int        `yaml:"max_matches"`
	Patterns   []string   `yaml:"patterns"`
}

// DefaultRoleRules returns the built-in role table in resolution order.
func DefaultRoleRules() []RoleRule {
	const phrase = `([^.;\n]+)`
	return []RoleRule{
		{Role: model.RoleEffective, MaxMatches: 3, Patterns: []string{
			`\beffective\s+(?:date\s+)?(?:of\s+)?(?:as\s+of\s+)?(?:on\s+)?` + phrase,
			`\bcommenc(?:es|ing|ement)\s+(?:on\s+)?` + phrase,
			`\bbeginning\s+(?:on\s+)?` + phrase,
			`\bstarts?\s+(?:on\s+)?` + phrase,
			`\bin\s+effect\s+(?:as\s+of\s+)?` + phrase,
		}},
		{Role: model.RoleExpiration, MaxMatches: 3, Patterns: []string{
			`\bexpir(?:es|ation)\s+(?:date\s+)?(?:on\s+)?(?:of\s+)?` + phrase,
			`\bterminat(?:es|ion)\s+(?:date\s+)?(?:on\s+)?` + phrase,
			`\bend(?:s|ing)\s+(?:on\s+)?` + phrase,
			`\bshall\s+(?:expire|terminate)\s+(?:on\s+)?` + phrase,
			`\bvalid\s+(?:through|until)\s+` + phrase,
			`\bterm\s+(?:expires|ends)\s+(?:on\s+)?` + phrase,
			`\bcontract\s+(?:expires|terminates)\s+(?:on\s+)?` + phrase,
			`\bagreement\s+(?:expires|terminates)\s+(?:on\s+)?` + phrase,
			`\bthis\s+agreement\s+shall\s+remain\s+in\s+effect\s+until\s+` + phrase,
		}},
		{Role: model.RoleSignature, MaxMatches: 3, Patterns: []string{
			`\b(?:signed|executed)\s+(?:on\s+|as\s+of\s+)?(?:this\s+)?` + phrase,
			`\bdate\s+of\s+execution:?\s*` + phrase,
			`\bsignature\s+date:?\s*` + phrase,
			`\bdate\s+signed:?\s*` + phrase,
		}},
		{Role: model.RoleRenewal, MaxMatches: 2, Patterns: []string{
			`\brenew(?:al|s)?\s+(?:date\s+)?(?:on\s+)?` + phrase,
			`\bautomatically\s+renew(?:s|ed)?\s+(?:on\s+)?` + phrase,
			`\brenewal\s+period\s+(?:begins|starts)\s+` + phrase,
		}},
		{Role: model.RoleTermination, MaxMatches: 3, Patterns: []string{
			`\bterminated\s+effective\s+(?:as\s+of\s+)?` + phrase,
			`\btermination\s+effective\s+(?:date\s+)?(?:as\s+of\s+)?` + phrase,
			`\bright\s+to\s+terminate\s+(?:on\s+|after\s+)` + phrase,
		}},
		{Role: model.RoleReview, MaxMatches: 2, Patterns: []string{
			`\breview\s+(?:date\s+)?(?:on\s+)?` + phrase,
			`\bshall\s+be\s+reviewed\s+(?:on\s+)?` + phrase,
			`\bsubject\s+to\s+review\s+(?:on\s+)?` + phrase,
			`\bassess(?:ment)?\s+(?:date\s+)?(?:on\s+)?` + phrase,
		}},
	}
}

type compiledRole struct {
	role       model.Role
	maxMatches int
	patterns   []*regexp.Regexp
}

// Extractor assigns dates to roles and picks the single document date.
type Extractor struct {
	roles  []compiledRole
	logger *zap.Logger
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithLogger attaches a logger for extraction events.
func WithLogger(l *zap.Logger) Option {
	return func(e *Extractor) {
		if l != nil {
			e.logger = l
		}
	}
}

// New compiles rules. A rule for an unknown role, or a pattern that does not
// compile, is a configuration error.
func New(rules []RoleRule, opts ...Option) (*Extractor, error) {
	e := &Extractor{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}

	known := make(map[model.Role]bool, len(model.Roles))
	for _, r := range model.Roles {
		known[r] = true
	}

	for _, r := range rules {
		if !known[r.Role] {
			return nil, fmt.Errorf("%w: date role %q", internalerr.ErrInvalidConfig, r.Role)
		}
		cr := compiledRole{role: r.Role, maxMatches: r.MaxMatches}
		if cr.maxMatches <= 0 {
			cr.maxMatches = defaultMaxMatches
		}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("%w: %s pattern %q: %v", internalerr.ErrInvalidConfig, r.Role, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		e.roles = append(e.roles, cr)
	}
	return e, nil
}

// MustDefault returns an extractor over DefaultRoleRules.
func MustDefault(opts ...Option) *Extractor {
	e, err := New(DefaultRoleRules(), opts...)
	if err != nil {
		panic(err)
	}
	return e
}

// Roles resolves each role independently. For a role, patterns are tried in
// table order and the first phrase holding a date inside the role year
// window wins.
func (e *Extractor) Roles(text string) model.DateRoles {
	var out model.DateRoles
	if text == "" {
		return out
	}

	for _, cr := range e.roles {
		if out.Get(cr.role) != "" {
			continue
		}
		if date, ok := cr.resolve(text); ok {
			out.Set(cr.role, date)
			e.logger.Debug("date role found",
				zap.String("role", string(cr.role)),
				zap.String("date", date),
			)
		}
	}

	if found := out.Found(); len(found) == 0 {
		e.logger.Debug("no role dates found")
	}
	return out
}

func (cr compiledRole) resolve(text string) (string, bool) {
	for _, re := range cr.patterns {
		for _, m := range re.FindAllStringSubmatch(text, cr.maxMatches) {
			phrase := m[0]
			if len(m) > 1 && m[1] != "" {
				phrase = m[1]
			}
			if t, ok := firstInWindow(phrase, model.MinRoleYear, model.MaxRoleYear); ok {
				return t.Format(model.ISODate), true
			}
		}
	}
	return "", false
}

// FileDate returns the most recent date found in text or filename, formatted
// as YYYYMMDD, considering only years in [MinFileYear, MaxFileYear]. It
// returns "" when no date qualifies.
func (e *Extractor) FileDate(text, filename string) string {
	var best time.Time
	for _, src := range []string{text, strings.ReplaceAll(filename, "_", " ")} {
		for _, c := range Scan(src) {
			y := c.Date.Year()
			if y < MinFileYear || y > MaxFileYear {
				continue
			}
			if c.Date.After(best) {
				best = c.Date
			}
		}
	}
	if best.IsZero() {
		return ""
	}
	return best.Format(FileDateLayout)
}

func firstInWindow(phrase string, minYear, maxYear int) (time.Time, bool) {
	for _, c := range Scan(phrase) {
		if y := c.Date.Year(); y >= minYear && y <= maxYear {
			return c.Date, true
		}
	}
	return time.Time{}, false
}
