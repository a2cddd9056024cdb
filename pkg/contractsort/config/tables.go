package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cognicore/contractsort/pkg/contractsort/dates"
	"github.com/cognicore/contractsort/pkg/contractsort/doctype"
	"github.com/cognicore/contractsort/pkg/contractsort/execution"
)

// Patterns holds the classification tables. A section left out of the file
// keeps its built-in default.
type Patterns struct {
	DocumentTypes []doctype.Rule    `yaml:"document_types"`
	Execution     *execution.Tables `yaml:"execution"`
	DateRoles     []dates.RoleRule  `yaml:"date_roles"`
}

// DefaultPatterns returns the built-in tables.
func DefaultPatterns() *Patterns {
	exec := execution.DefaultTables()
	return &Patterns{
		DocumentTypes: doctype.DefaultRules(),
		Execution:     &exec,
		DateRoles:     dates.DefaultRoleRules(),
	}
}

// LoadPatterns loads classification tables from a YAML file
func LoadPatterns(path string) (*Patterns, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Patterns
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	def := DefaultPatterns()
	if len(p.DocumentTypes) == 0 {
		p.DocumentTypes = def.DocumentTypes
	}
	if p.Execution == nil {
		p.Execution = def.Execution
	}
	if len(p.DateRoles) == 0 {
		p.DateRoles = def.DateRoles
	}
	return &p, nil
}

// VendorList is the canonical vendor master list
type VendorList struct {
	Vendors []string `yaml:"vendors"`
}

// LoadVendors loads the vendor master list from a YAML file. Blank entries
// are dropped and order is preserved, since it breaks match ties.
func LoadVendors(path string) (*VendorList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var vl VendorList
	if err := yaml.Unmarshal(data, &vl); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	kept := vl.Vendors[:0]
	for _, v := range vl.Vendors {
		if v = strings.TrimSpace(v); v != "" {
			kept = append(kept, v)
		}
	}
	vl.Vendors = kept
	return &vl, nil
}
