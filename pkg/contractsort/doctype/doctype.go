// Package doctype scores extracted text and filenames against per-type pattern tables.
package doctype

import (
	"fmt"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/cognicore/contractsort/pkg/contractsort/internalerr"
	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

// FilenameWeight multiplies every pattern occurrence found in the filename.
const FilenameWeight = 3

// Rule lists the patterns that vote for one document type.
type Rule struct {
	Type     model.DocumentType `yaml:"type"`
	Patterns []string           `yaml:"patterns"`
}

// DefaultRules returns the built-in table. Order is significant: on equal
// scores the earlier type wins.
func DefaultRules() []Rule {
	return []Rule{
		{Type: model.TypeMSA, Patterns: []string{
			`\bmaster\s+service\s+agreement\b`,
			`\bmsa\b`,
			`\bmaster\s+agreement\b`,
		}},
		{Type: model.TypeSOW, Patterns: []string{
			`\bstatement\s+of\s+work\b`,
			`\bsow\b`,
			`\bwork\s+statement\b`,
		}},
		{Type: model.TypeNDA, Patterns: []string{
			`\bnon-disclosure\s+agreement\b`,
			`\bnda\b`,
			`\bconfidentiality\s+agreement\b`,
			`\bnon\s+disclosure\b`,
		}},
		{Type: model.TypePO, Patterns: []string{
			`\bpurchase\s+order\b`,
			`\bp\.o\.\b`,
			`\bpo\s+#?\d+\b`,
		}},
		{Type: model.TypeAMD, Patterns: []string{
			`\bamendment\b`,
			`\bamend\b`,
			`\bmodification\b`,
		}},
		{Type: model.TypeLicense, Patterns: []string{
			`\blicense\s+agreement\b`,
			`\blicensing\b`,
			`\bsoftware\s+license\b`,
		}},
	}
}

type compiledRule struct {
	docType  model.DocumentType
	patterns []*regexp.Regexp
}

// Classifier picks the best-scoring document type.
type Classifier struct {
	rules  []compiledRule
	logger *zap.Logger
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithLogger attaches a logger for classification events.
func WithLogger(l *zap.Logger) Option {
	return func(c *Classifier) {
		if l != nil {
			c.logger = l
		}
	}
}

// New compiles rules into a classifier. CONTRACT is reserved for the fallback
// and may not carry patterns.
func New(rules []Rule, opts ...Option) (*Classifier, error) {
	c := &Classifier{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(c)
	}

	for _, r := range rules {
		if _, ok := model.ParseDocumentType(string(r.Type)); !ok || r.Type == model.TypeContract {
			return nil, fmt.Errorf("%w: document type %q", internalerr.ErrInvalidConfig, r.Type)
		}
		cr := compiledRule{docType: r.Type}
		for _, p := range r.Patterns {
			re, err := regexp.Compile(`(?i)` + p)
			if err != nil {
				return nil, fmt.Errorf("%w: %s pattern %q: %v", internalerr.ErrInvalidConfig, r.Type, p, err)
			}
			cr.patterns = append(cr.patterns, re)
		}
		c.rules = append(c.rules, cr)
	}
	return c, nil
}

// MustDefault returns a classifier over DefaultRules.
func MustDefault(opts ...Option) *Classifier {
	c, err := New(DefaultRules(), opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Score is the aggregate vote for one type.
type Score struct {
	Type  model.DocumentType
	Score int
}

// Scores returns the score of every configured type, in table order.
// Filename occurrences count FilenameWeight times, text occurrences once.
func (c *Classifier) Scores(text, filename string) []Score {
	name := filenameForMatching(filename)
	scores := make([]Score, 0, len(c.rules))
	for _, r := range c.rules {
		total := 0
		for _, re := range r.patterns {
			total += FilenameWeight * len(re.FindAllStringIndex(name, -1))
			total += len(re.FindAllStringIndex(text, -1))
		}
		scores = append(scores, Score{Type: r.docType, Score: total})
	}
	return scores
}

// Identify returns the type with the strictly highest score, or CONTRACT
// when nothing matched.
func (c *Classifier) Identify(text, filename string) model.DocumentType {
	best := Score{Type: model.TypeContract}
	for _, s := range c.Scores(text, filename) {
		if s.Score > best.Score {
			best = s
		}
	}

	c.logger.Debug("document type identified",
		zap.String("doc_type", string(best.Type)),
		zap.Int("score", best.Score),
		zap.String("filename", filename),
	)
	return best.Type
}

// filenameForMatching turns separators into spaces so that word boundaries
// fall between filename tokens ("msa_acme.pdf" -> "msa acme.pdf").
func filenameForMatching(filename string) string {
	return strings.NewReplacer("_", " ", "+", " ").Replace(filename)
}
