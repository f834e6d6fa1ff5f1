package service

import (
	"context"
	"errors"
	"testing"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
	"golfcam/internal/store/storetest"
)

func appendHistory(t *testing.T, s store.Store, cameraID, typ string, details map[string]any) {
	t.Helper()
	if err := s.History().Append(context.Background(), &model.CameraHistory{CameraID: cameraID, Type: typ, Details: details}); err != nil {
		t.Fatalf("append history: %v", err)
	}
}

func historyCount(t *testing.T, s store.Store) int64 {
	t.Helper()
	n, err := s.History().Count(context.Background())
	if err != nil {
		t.Fatalf("count history: %v", err)
	}
	return n
}

func TestShipmentCreateAppendsHistory(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	svc := NewShipmentService(s, nil)

	created, err := svc.Create(ctx, &model.Shipment{ID: "S1", Cameras: []string{"C1", "C2"}, Destination: "Jalisco"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID != "S1" || len(created.Cameras) != 2 {
		t.Fatalf("created = %+v", created)
	}
	rows, err := s.History().List(ctx, store.Filter{"cameraId": "C2"})
	if err != nil {
		t.Fatalf("list history: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != model.HistoryShipment || rows[0].Detail("shipmentId") != "S1" {
		t.Fatalf("history = %+v", rows)
	}
}

func TestShipmentDeleteRemovesOnlyOwnHistory(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	svc := NewShipmentService(s, nil)

	if _, err := svc.Create(ctx, &model.Shipment{ID: "S1", Cameras: []string{"C1", "C2"}}); err != nil {
		t.Fatalf("create S1: %v", err)
	}
	if _, err := svc.Create(ctx, &model.Shipment{ID: "S2", Cameras: []string{"C1"}}); err != nil {
		t.Fatalf("create S2: %v", err)
	}
	appendHistory(t, s, "C1", model.HistoryReturn, map[string]any{"shipmentId": "S1"})
	appendHistory(t, s, "C1", model.HistoryMaintenance, map[string]any{"shipmentId": "S1"})
	appendHistory(t, s, "C1", model.HistoryShipment, map[string]any{})
	appendHistory(t, s, "C1", model.HistoryShipment, map[string]any{"shipmentId": ""})
	appendHistory(t, s, "C2", model.HistoryTournament, map[string]any{"tournamentId": "S1"})

	before := historyCount(t, s)
	res, err := svc.Delete(ctx, "S1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.Deleted || res.HistoryRemoved != 3 {
		t.Fatalf("result = %+v, want deleted with 3 history rows", res)
	}
	if got := historyCount(t, s); got != before-3 {
		t.Fatalf("history count = %d, want %d", got, before-3)
	}
	rows, _ := s.History().List(ctx, nil)
	for _, h := range rows {
		if store.ShipmentScope("S1").Matches(h) {
			t.Fatalf("row %d of S1 survived", h.ID)
		}
	}
	if _, err := s.Shipments().Get(ctx, "S2"); err != nil {
		t.Fatalf("S2 gone: %v", err)
	}
}

func TestShipmentDeleteRollsBackHistory(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	svc := NewShipmentService(s, nil)
	if _, err := svc.Create(ctx, &model.Shipment{ID: "S1", Cameras: []string{"C1"}}); err != nil {
		t.Fatalf("create: %v", err)
	}

	boom := errors.New("boom")
	s.Fail(model.KindShipment, "delete", boom)
	if _, err := svc.Delete(ctx, "S1"); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if got := historyCount(t, s); got != 1 {
		t.Fatalf("history count = %d after rollback, want 1", got)
	}
}

func TestScopedDeleteRejectsEmptyID(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	appendHistory(t, s, "C1", model.HistoryShipment, map[string]any{})

	_, err := NewShipmentService(s, nil).Delete(ctx, " ")
	if !errors.Is(err, store.ErrEmptyScope) {
		t.Fatalf("err = %v, want ErrEmptyScope", err)
	}
	if got := historyCount(t, s); got != 1 {
		t.Fatalf("history touched: count = %d", got)
	}
	if len(s.Ops()) != 1 {
		t.Fatalf("ops = %v, want only the seed append", s.Ops())
	}
}

func TestTournamentCreateDefaultsAndRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	pub := &events.Memory{}
	svc := NewTournamentService(s, pub)

	in := &model.Tournament{ID: "T1", Name: "Abierto", Date: "2025-03-14", Holes: model.Holes{1, 2, 3}, Days: 3, Cameras: []string{"C1"}}
	created, err := svc.Create(ctx, in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	got, err := svc.Get(ctx, "T1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Status != model.TournamentPending || got.Name != "Abierto" || len(got.Holes) != 3 || got.Days != 3 {
		t.Fatalf("got = %+v", got)
	}
	if created.ID != got.ID {
		t.Fatalf("created %q, got %q", created.ID, got.ID)
	}
	evs := pub.Events()
	if len(evs) != 1 || evs[0].Subject() != "golfcam.events.tournament.created" {
		t.Fatalf("events = %+v", evs)
	}
}

func TestTournamentDeleteRemovesTournamentHistory(t *testing.T) {
	ctx := context.Background()
	s := storetest.New()
	svc := NewTournamentService(s, nil)
	if _, err := svc.Create(ctx, &model.Tournament{ID: "T1", Cameras: []string{"C1", "C2"}}); err != nil {
		t.Fatalf("create: %v", err)
	}
	appendHistory(t, s, "C1", model.HistoryShipment, map[string]any{"shipmentId": "T1"})

	res, err := svc.Delete(ctx, "T1")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if !res.Deleted || res.HistoryRemoved != 2 {
		t.Fatalf("result = %+v", res)
	}
	if got := historyCount(t, s); got != 1 {
		t.Fatalf("history count = %d, want 1", got)
	}
}

func TestDeleteMissingIsNotAnError(t *testing.T) {
	res, err := NewTournamentService(storetest.New(), nil).Delete(context.Background(), "nope")
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if res.Deleted || res.HistoryRemoved != 0 {
		t.Fatalf("result = %+v", res)
	}
}
