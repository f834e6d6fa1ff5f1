package report

import (
	"encoding/json"
	"testing"
	"time"

	"golfcam/internal/model"
)

type rec struct {
	date   string
	status string
}

func recOptions(split bool) Options[rec] {
	return Options[rec]{
		Date:     func(r rec) string { return r.date },
		Category: func(r rec) string { return r.status },
		Split:    split,
		Location: time.UTC,
	}
}

func TestAggregateMonthlyEmpty(t *testing.T) {
	rows := AggregateMonthly(nil, recOptions(true))
	if rows == nil || len(rows) != 0 {
		t.Fatalf("rows = %#v, want empty slice", rows)
	}
	b, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(b) != "[]" {
		t.Fatalf("json = %s, want []", b)
	}
}

func TestAggregateMonthlySplitFillsGaps(t *testing.T) {
	rows := AggregateMonthly([]rec{
		{date: "2025-01-15", status: "enviado"},
		{date: "2025-04-01", status: "pendiente"},
	}, recOptions(true))

	want := []struct {
		month     string
		enviado   int
		pendiente int
	}{
		{"2025-01", 1, 0},
		{"2025-02", 0, 0},
		{"2025-03", 0, 0},
		{"2025-04", 0, 1},
	}
	if len(rows) != len(want) {
		t.Fatalf("got %d rows, want %d", len(rows), len(want))
	}
	for i, w := range want {
		r := rows[i]
		if r.Month != w.month || r.Counts["enviado"] != w.enviado || r.Counts["pendiente"] != w.pendiente {
			t.Fatalf("row %d = %+v, want %+v", i, r, w)
		}
		if len(r.Counts) != 2 {
			t.Fatalf("row %d has %d categories, want 2", i, len(r.Counts))
		}
	}

	b, err := json.Marshal(rows[1])
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if got := string(b); got != `{"month":"2025-02","enviado":0,"pendiente":0}` {
		t.Fatalf("json = %s", got)
	}
}

func TestAggregateMonthlySingleRecord(t *testing.T) {
	rows := AggregateMonthly([]rec{{date: "2024-07-09"}}, recOptions(false))
	if len(rows) != 1 || rows[0].Month != "2024-07" || rows[0].Counts[CountKey] != 1 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestAggregateMonthlyAcrossYears(t *testing.T) {
	rows := AggregateMonthly([]rec{
		{date: "2024-11-30"},
		{date: "2025-02-01"},
	}, recOptions(false))

	months := []string{"2024-11", "2024-12", "2025-01", "2025-02"}
	if len(rows) != len(months) {
		t.Fatalf("got %d rows, want %d", len(rows), len(months))
	}
	for i, m := range months {
		if rows[i].Month != m {
			t.Fatalf("row %d month = %s, want %s", i, rows[i].Month, m)
		}
	}
}

func TestAggregateMonthlyDropsUnparsableDates(t *testing.T) {
	rows := AggregateMonthly([]rec{
		{date: ""},
		{date: "not a date"},
		{date: "2025-03-02T10:00:00Z"},
	}, recOptions(false))
	if len(rows) != 1 || rows[0].Month != "2025-03" || rows[0].Counts[CountKey] != 1 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestAggregateMonthlyUsesLocation(t *testing.T) {
	mx := time.FixedZone("CST", -6*60*60)
	opts := recOptions(false)
	opts.Location = mx

	// 03:00 UTC on Feb 1 is still Jan 31 at UTC-6.
	rows := AggregateMonthly([]rec{{date: "2025-02-01T03:00:00Z"}}, opts)
	if len(rows) != 1 || rows[0].Month != "2025-01" {
		t.Fatalf("rows = %+v, want 2025-01", rows)
	}

	// Date-only values keep their own calendar month.
	rows = AggregateMonthly([]rec{{date: "2025-02-01"}}, opts)
	if len(rows) != 1 || rows[0].Month != "2025-02" {
		t.Fatalf("rows = %+v, want 2025-02", rows)
	}
}

func TestAggregateMonthlyEmptyCategory(t *testing.T) {
	rows := AggregateMonthly([]rec{
		{date: "2025-01-01", status: ""},
		{date: "2025-01-02", status: "activo"},
	}, recOptions(true))
	if len(rows) != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	if rows[0].Counts[UnknownCategory] != 1 || rows[0].Counts["activo"] != 1 {
		t.Fatalf("counts = %v", rows[0].Counts)
	}
	cols := rows[0].Columns()
	if len(cols) != 3 || cols[0] != MonthKey || cols[1] != "activo" || cols[2] != UnknownCategory {
		t.Fatalf("columns = %v", cols)
	}
}

func TestSplitCountsPartitionTotals(t *testing.T) {
	records := []rec{
		{date: "2024-12-05", status: "activo"},
		{date: "2024-12-20", status: "pendiente"},
		{date: "2025-01-11", status: "terminado"},
		{date: "2025-03-08", status: "activo"},
		{date: "2025-03-09", status: "activo"},
		{date: "2025-03-10"},
		{date: "garbage", status: "activo"},
	}
	split := AggregateMonthly(records, recOptions(true))
	total := AggregateMonthly(records, recOptions(false))

	if len(split) != len(total) {
		t.Fatalf("split has %d rows, total has %d", len(split), len(total))
	}
	for i := range split {
		if split[i].Month != total[i].Month {
			t.Fatalf("row %d month %s != %s", i, split[i].Month, total[i].Month)
		}
		sum := 0
		for _, n := range split[i].Counts {
			sum += n
		}
		if sum != total[i].Counts[CountKey] {
			t.Fatalf("%s: split sum %d != total %d", split[i].Month, sum, total[i].Counts[CountKey])
		}
	}
	for i := 1; i < len(total); i++ {
		if monthAfter(total[i-1].Month) != total[i].Month {
			t.Fatalf("months not contiguous: %s then %s", total[i-1].Month, total[i].Month)
		}
	}
}

func monthAfter(m string) string {
	t, _ := time.Parse("2006-01", m)
	return t.AddDate(0, 1, 0).Format("2006-01")
}

func TestAggregateMonthlyDoesNotMutateInput(t *testing.T) {
	records := []rec{{date: "2025-05-01", status: "b"}, {date: "2025-01-01", status: "a"}}
	first := AggregateMonthly(records, recOptions(true))
	second := AggregateMonthly(records, recOptions(true))
	if ExportRows(first, ",") != ExportRows(second, ",") {
		t.Fatal("aggregation is not deterministic")
	}
	if records[0].date != "2025-05-01" || records[1].date != "2025-01-01" {
		t.Fatal("input reordered")
	}
}

func TestTournamentFilters(t *testing.T) {
	tournaments := []model.Tournament{
		{ID: "T1", Date: "2025-01-10", Days: 3, Holes: model.Holes{1, 2, 3}, Status: model.TournamentActive},
		{ID: "T2", Date: "2025-02-10", Days: 4, Holes: model.Holes{1, 2, 3}, Status: model.TournamentActive},
		{ID: "T3", Date: "2025-03-10", Days: 3, Holes: model.Holes{10, 11}, Status: model.TournamentPending},
	}
	opts := Tournaments(false, DaysEquals(3), HolesContain(2))
	opts.Location = time.UTC

	rows := AggregateMonthly(tournaments, opts)
	if len(rows) != 1 || rows[0].Month != "2025-01" || rows[0].Counts[CountKey] != 1 {
		t.Fatalf("rows = %+v", rows)
	}
}

func TestShipmentStatusFilter(t *testing.T) {
	shipments := []model.Shipment{
		{ID: "S1", Date: "2025-01-10", Status: "enviado"},
		{ID: "S2", Date: "2025-03-10", Status: "entregado"},
		{ID: "S3", Date: "2025-05-10", Status: "enviado"},
	}
	opts := Shipments(true, StatusIs("enviado"))
	opts.Location = time.UTC

	rows := AggregateMonthly(shipments, opts)
	if len(rows) != 5 {
		t.Fatalf("got %d rows, want 5", len(rows))
	}
	if rows[0].Counts["enviado"] != 1 || rows[2].Counts["enviado"] != 0 || rows[4].Counts["enviado"] != 1 {
		t.Fatalf("rows = %+v", rows)
	}
	if _, ok := rows[2].Counts["entregado"]; ok {
		t.Fatal("filtered category leaked into columns")
	}
}

func TestRowJSONKeepsColumnOrder(t *testing.T) {
	rows := AggregateMonthly([]rec{
		{date: "2025-01-05", status: "terminado"},
		{date: "2025-01-06", status: "activo"},
	}, recOptions(true))
	b, err := json.Marshal(rows)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"month":"2025-01","activo":1,"terminado":1}]`
	if string(b) != want {
		t.Fatalf("json = %s, want %s", b, want)
	}

	var back []Row
	if err := json.Unmarshal(b, &back); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if ExportRows(back, ",") != ExportRows(rows, ",") {
		t.Fatalf("decoded rows export %q, want %q", ExportRows(back, ","), ExportRows(rows, ","))
	}
}
