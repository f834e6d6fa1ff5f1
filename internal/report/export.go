package report

import (
	"bytes"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportRows renders rows as delimited text: a header line with the first
// row's columns, then one line per row. Values are not quoted or escaped,
// so a delimiter inside a value splits the column.
func ExportRows(rows []Row, sep string) string {
	if len(rows) == 0 {
		return ""
	}
	cols := rows[0].Columns()
	lines := make([]string, 0, len(rows)+1)
	lines = append(lines, strings.Join(cols, sep))
	for _, r := range rows {
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = r.Value(c)
		}
		lines = append(lines, strings.Join(vals, sep))
	}
	return strings.Join(lines, "\n")
}

// ExportXLSX writes rows to a single-sheet workbook.
func ExportXLSX(rows []Row, sheet string) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if sheet == "" {
		sheet = "Report"
	}
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	if len(rows) > 0 {
		cols := rows[0].Columns()
		for i, c := range cols {
			cell, _ := excelize.CoordinatesToCellName(i+1, 1)
			f.SetCellValue(sheet, cell, c)
		}
		for r, row := range rows {
			for i, c := range cols {
				cell, _ := excelize.CoordinatesToCellName(i+1, r+2)
				if c == MonthKey {
					f.SetCellValue(sheet, cell, row.Month)
				} else {
					f.SetCellValue(sheet, cell, row.Counts[c])
				}
			}
		}
		last, _ := excelize.ColumnNumberToName(len(cols))
		f.SetColWidth(sheet, "A", last, 14)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return &buf, nil
}
