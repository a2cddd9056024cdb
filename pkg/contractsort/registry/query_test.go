package registry

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/cognicore/contractsort/pkg/contractsort/model"
)

func sampleDocument(t *testing.T) *Document {
	t.Helper()
	doc := NewDocument("", clock)
	for i, exp := range []string{"2025-05-01", "2025-06-01", "2025-07-15", "2026-03-01", "2027-01-01"} {
		docType := model.TypeMSA
		if i == 2 {
			docType = model.TypeAMD
		}
		doc.Apply("id"+exp, record("Vendor"+exp, docType, exp), clock)
	}
	doc.Apply("undated", record("Undated", model.TypeNDA, ""), clock)
	return doc
}

func TestExpiringWithin(t *testing.T) {
	doc := sampleDocument(t)

	got := doc.ExpiringWithin(clock, 12)
	require.Len(t, got, 2)
	assert.Equal(t, "2025-07-15", got[0].Expiration())
	assert.Equal(t, 43, got[0].DaysUntilExpiration)
	assert.Equal(t, "2026-03-01", got[1].Expiration())

	// 2025-06-01 00:00 is before the 09:00 clock, so it has already passed.
	for _, e := range got {
		assert.NotEqual(t, "2025-06-01", e.Expiration())
	}
}

func TestByCategory(t *testing.T) {
	doc := sampleDocument(t)

	assert.Len(t, doc.ByCategory("LONG_TERM"), 4)
	assert.Len(t, doc.ByCategory("tied_to_parent"), 1)
	assert.Len(t, doc.ByCategory(""), 5)
	assert.Empty(t, doc.ByCategory("short_term"))
}

func TestExpirationStatus(t *testing.T) {
	day := func(n int) *int { return &n }

	assert.Equal(t, StatusNoExpiration, ExpirationStatus(nil))
	assert.Equal(t, StatusExpired, ExpirationStatus(day(-1)))
	assert.Equal(t, StatusExpiringSoon, ExpirationStatus(day(0)))
	assert.Equal(t, StatusExpiringSoon, ExpirationStatus(day(90)))
	assert.Equal(t, StatusActive, ExpirationStatus(day(91)))
}

func TestRows(t *testing.T) {
	rows := sampleDocument(t).Rows(clock)
	require.Len(t, rows, 5)

	statuses := make([]string, len(rows))
	for i, r := range rows {
		statuses[i] = r.ExpirationStatus
	}
	assert.Equal(t, []string{StatusExpired, StatusExpired, StatusExpiringSoon, StatusActive, StatusActive}, statuses)
}

func TestSummarize(t *testing.T) {
	s := sampleDocument(t).Summarize(clock)

	assert.Equal(t, 6, s.TotalDocuments)
	assert.Equal(t, 5, s.DocumentsWithExpiration)
	assert.Equal(t, 1, s.RetentionCategories["indefinite"])
	assert.Len(t, s.ExpiringWithinYear, 2)
}

func TestWorkbookAndExcel(t *testing.T) {
	sheets := sampleDocument(t).Workbook(clock)

	var names []string
	for _, s := range sheets {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"All_Documents", "Expiring_90_Days", "Category_long_term", "Category_tied_to_parent"}, names)

	path := filepath.Join(t.TempDir(), "report.xlsx")
	require.NoError(t, WriteExcel(path, sheets))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, names, f.GetSheetList())
	rows, err := f.GetRows("All_Documents")
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, ReportColumns[0], rows[0][0])
	assert.Equal(t, "id2025-05-01", rows[1][0])
}

func TestWriteExcelRequiresSheets(t *testing.T) {
	assert.Error(t, WriteExcel(filepath.Join(t.TempDir(), "x.xlsx"), nil))
}

func TestSheetNameLimit(t *testing.T) {
	name := sheetName("Category_" + "a/very/long/retention/category/name")
	assert.LessOrEqual(t, len(name), 31)
	assert.NotContains(t, name, "/")
}
