package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadPatternsPartialKeepsDefaults(t *testing.T) {
	path := writeFile(t, "patterns.yaml", `document_types:
  - type: NDA
    patterns:
      - '\bmutual\s+secrecy\b'
`)

	p, err := LoadPatterns(path)
	require.NoError(t, err)

	require.Len(t, p.DocumentTypes, 1)
	assert.Equal(t, model.TypeNDA, p.DocumentTypes[0].Type)
	require.NotNil(t, p.Execution)
	assert.NotEmpty(t, p.Execution.Categories)
	assert.NotEmpty(t, p.DateRoles)
}

func TestLoadPatternsDateRoles(t *testing.T) {
	path := writeFile(t, "patterns.yaml", `date_roles:
  - role: review
    max_matches: 1
    patterns:
      - '\baudit\s+on\s+([^.]+)'
`)

	p, err := LoadPatterns(path)
	require.NoError(t, err)
	require.Len(t, p.DateRoles, 1)
	assert.Equal(t, model.RoleReview, p.DateRoles[0].Role)
	assert.Equal(t, 1, p.DateRoles[0].MaxMatches)
}

func TestLoadPatternsInvalidYAML(t *testing.T) {
	path := writeFile(t, "patterns.yaml", "document_types: [unterminated")
	_, err := LoadPatterns(path)
	assert.Error(t, err)
}

func TestLoadVendors(t *testing.T) {
	path := writeFile(t, "vendors.yaml", `vendors:
  - Acme Corporation
  - "  "
  - Globex LLC
`)

	vl, err := LoadVendors(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Acme Corporation", "Globex LLC"}, vl.Vendors)
}

func TestLoadVendorsMissingFile(t *testing.T) {
	_, err := LoadVendors("/nonexistent/vendors.yaml")
	assert.Error(t, err)
}
