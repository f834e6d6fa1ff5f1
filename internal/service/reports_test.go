package service

import (
	"context"
	"testing"
	"time"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/report"
	"golfcam/internal/store/storetest"
)

func TestReportsWithoutCache(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	for _, tr := range []model.Tournament{
		{ID: "T1", Date: "2025-01-10", Status: model.TournamentFinished, Days: 3, Holes: model.Holes{1, 2}},
		{ID: "T2", Date: "2025-04-02", Status: model.TournamentPending, Days: 4, Holes: model.Holes{1}},
	} {
		tr := tr
		if err := s.Tournaments().Create(ctx, &tr); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	svc := NewReportService(s, nil, 0, time.UTC)
	if err := svc.Publish(ctx, events.New(model.KindTournament, events.ActionCreated, "T1", nil)); err != nil {
		t.Fatalf("publish without redis: %v", err)
	}

	rows, err := svc.TournamentsMonthly(ctx, TournamentReportQuery{Split: true})
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	want := "month,pendiente,terminado\n2025-01,0,1\n2025-02,0,0\n2025-03,0,0\n2025-04,1,0"
	if got := report.ExportRows(rows, ","); got != want {
		t.Fatalf("export =\n%s\nwant\n%s", got, want)
	}

	rows, err = svc.TournamentsMonthly(ctx, TournamentReportQuery{Days: 3, Hole: 2})
	if err != nil {
		t.Fatalf("monthly filtered: %v", err)
	}
	if len(rows) != 1 || rows[0].Counts[report.CountKey] != 1 {
		t.Fatalf("rows = %+v", rows)
	}

	shipments, err := svc.ShipmentsMonthly(ctx, ShipmentReportQuery{})
	if err != nil || len(shipments) != 0 {
		t.Fatalf("shipments = %+v, %v", shipments, err)
	}
}

func TestReportStates(t *testing.T) {
	ctx := context.Background()
	s := seedFleet(t)
	states, err := NewReportService(s, nil, time.Minute, nil).States(ctx, "")
	if err != nil {
		t.Fatalf("states: %v", err)
	}
	var warehouse int
	for _, st := range states {
		if st.State == model.Warehouse {
			warehouse = st.Cameras
		}
	}
	if warehouse != 3 {
		t.Fatalf("states = %+v", states)
	}
}
