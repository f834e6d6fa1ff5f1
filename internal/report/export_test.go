package report

import (
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

func sampleRows() []Row {
	return AggregateMonthly([]rec{
		{date: "2025-01-15", status: "enviado"},
		{date: "2025-02-01", status: "pendiente"},
	}, recOptions(true))
}

func TestExportRows(t *testing.T) {
	got := ExportRows(sampleRows(), ",")
	want := "month,enviado,pendiente\n2025-01,1,0\n2025-02,0,1"
	if got != want {
		t.Fatalf("ExportRows =\n%s\nwant\n%s", got, want)
	}
}

func TestExportRowsEmpty(t *testing.T) {
	if got := ExportRows(nil, ","); got != "" {
		t.Fatalf("ExportRows(nil) = %q", got)
	}
}

func TestExportRowsDoesNotEscape(t *testing.T) {
	rows := AggregateMonthly([]rec{{date: "2025-01-15", status: "en uso, reparado"}}, recOptions(true))
	got := ExportRows(rows, ",")
	want := "month,en uso, reparado\n2025-01,1"
	if got != want {
		t.Fatalf("ExportRows = %q, want %q", got, want)
	}
}

func TestExportXLSX(t *testing.T) {
	buf, err := ExportXLSX(sampleRows(), "Envios")
	if err != nil {
		t.Fatalf("ExportXLSX: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Envios")
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	if rows[0][0] != "month" || rows[0][2] != "pendiente" {
		t.Fatalf("header = %v", rows[0])
	}
	if rows[2][0] != "2025-02" || rows[2][2] != "1" {
		t.Fatalf("row = %v", rows[2])
	}
}

func TestParseDateLayouts(t *testing.T) {
	for _, s := range []string{
		"2025-06-01",
		"2025-06-01T08:30:00",
		"2025-06-01 08:30:00",
		"2025-06-01T08:30:00Z",
		"2025-06-01T08:30:00.123-06:00",
	} {
		d, ok := ParseDate(s, time.UTC)
		if !ok {
			t.Fatalf("ParseDate(%q) failed", s)
		}
		if d.Month() != time.June {
			t.Fatalf("ParseDate(%q) month = %v", s, d.Month())
		}
	}
	if _, ok := ParseDate("01/06/2025", time.UTC); ok {
		t.Fatal("unsupported layout parsed")
	}
}
