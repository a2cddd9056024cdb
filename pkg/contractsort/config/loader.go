package config

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/cognicore/contractsort/pkg/contractsort/dates"
	"github.com/cognicore/contractsort/pkg/contractsort/doctype"
	"github.com/cognicore/contractsort/pkg/contractsort/execution"
	"github.com/cognicore/contractsort/pkg/contractsort/vendor"
)

// Loader loads all table files and constructs classifiers
type Loader struct {
	PatternsPath   string
	VendorsPath    string
	MatchThreshold float64
	Logger         *zap.Logger
}

// Components holds all constructed classifiers
type Components struct {
	DocTypes  *doctype.Classifier
	Execution *execution.Detector
	Dates     *dates.Extractor
	Vendors   *vendor.Matcher
}

// Load reads the configured files and returns initialized components.
// An empty path selects the built-in tables or an empty vendor list.
func (l *Loader) Load() (*Components, error) {
	logger := l.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	patterns := DefaultPatterns()
	if l.PatternsPath != "" {
		p, err := LoadPatterns(l.PatternsPath)
		if err != nil {
			return nil, fmt.Errorf("load patterns: %w", err)
		}
		patterns = p
	}

	comp := &Components{}
	var err error

	comp.DocTypes, err = doctype.New(patterns.DocumentTypes, doctype.WithLogger(logger.Named("doctype")))
	if err != nil {
		return nil, fmt.Errorf("document types: %w", err)
	}

	comp.Execution, err = execution.New(*patterns.Execution, execution.WithLogger(logger.Named("execution")))
	if err != nil {
		return nil, fmt.Errorf("execution tables: %w", err)
	}

	comp.Dates, err = dates.New(patterns.DateRoles, dates.WithLogger(logger.Named("dates")))
	if err != nil {
		return nil, fmt.Errorf("date roles: %w", err)
	}

	var master []string
	if l.VendorsPath != "" {
		vl, err := LoadVendors(l.VendorsPath)
		if err != nil {
			return nil, fmt.Errorf("load vendors: %w", err)
		}
		master = vl.Vendors
	}
	comp.Vendors = vendor.NewMatcher(master, l.MatchThreshold)

	return comp, nil
}
