package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// maxSheetName is Excel's sheet name limit.
const maxSheetName = 31

// Sheet is one worksheet of a report.
type Sheet struct {
	Name   string
	Header []string
	Rows   [][]interface{}
}

// ReportColumns is the column order of exported registry rows.
var ReportColumns = []string{
	"tracking_id", "vendor", "document_type", "filename",
	"expiration_date", "days_until_expiration", "expiration_status",
	"retention_category", "renewal_date", "review_date",
	"destruction_review_required", "file_path", "processing_date",
}

func rowValues(r Row) []interface{} {
	var days interface{}
	if r.DaysUntilExpiration != nil {
		days = *r.DaysUntilExpiration
	}
	return []interface{}{
		r.TrackingID, r.Vendor, r.DocumentType, r.Filename,
		r.Expiration(), days, r.ExpirationStatus,
		r.RetentionCategory, deref(r.RenewalDate), deref(r.ReviewDate),
		r.DestructionReviewRequired, r.FilePath, r.ProcessingDate,
	}
}

// Workbook lays out the registry report: every row, rows expiring within
// 90 days (when any), then one sheet per retention category in first-seen order.
func (d *Document) Workbook(now time.Time) []Sheet {
	rows := d.Rows(now)

	all := Sheet{Name: "All_Documents", Header: ReportColumns}
	soon := Sheet{Name: "Expiring_90_Days", Header: ReportColumns}
	byCategory := map[string]*Sheet{}
	var order []string

	for _, r := range rows {
		values := rowValues(r)
		all.Rows = append(all.Rows, values)
		if r.ExpirationStatus == StatusExpiringSoon {
			soon.Rows = append(soon.Rows, values)
		}
		if r.RetentionCategory == "" {
			continue
		}
		s, ok := byCategory[r.RetentionCategory]
		if !ok {
			s = &Sheet{Name: sheetName("Category_" + r.RetentionCategory), Header: ReportColumns}
			byCategory[r.RetentionCategory] = s
			order = append(order, r.RetentionCategory)
		}
		s.Rows = append(s.Rows, values)
	}

	sheets := []Sheet{all}
	if len(soon.Rows) > 0 {
		sheets = append(sheets, soon)
	}
	for _, c := range order {
		sheets = append(sheets, *byCategory[c])
	}
	return sheets
}

func sheetName(name string) string {
	name = strings.NewReplacer("/", "_", "\\", "_", "?", "_", "*", "_", "[", "_", "]", "_", ":", "_").Replace(name)
	if len(name) > maxSheetName {
		name = name[:maxSheetName]
	}
	return name
}

// WriteExcel writes sheets to an .xlsx file. At least one sheet is required.
func WriteExcel(path string, sheets []Sheet) error {
	if len(sheets) == 0 {
		return fmt.Errorf("no sheets to write")
	}

	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		name := sheetName(s.Name)
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), name); err != nil {
				return err
			}
		} else if _, err := f.NewSheet(name); err != nil {
			return err
		}

		header := make([]interface{}, len(s.Header))
		for j, h := range s.Header {
			header[j] = h
		}
		if err := f.SetSheetRow(name, "A1", &header); err != nil {
			return err
		}
		for j, row := range s.Rows {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return err
			}
			values := row
			if err := f.SetSheetRow(name, cell, &values); err != nil {
				return err
			}
		}
	}

	f.SetActiveSheet(0)
	return f.SaveAs(path)
}
