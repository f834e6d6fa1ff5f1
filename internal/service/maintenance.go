package service

import (
	"context"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/reconcile"
	"golfcam/internal/store"
)

// MaintenanceService runs fleet-wide operations: the warehouse reset and
// the assignment view checks.
type MaintenanceService struct {
	store       store.Store
	reconciler  *reconcile.Reconciler
	assignments *AssignmentService
	events      events.Publisher
}

func NewMaintenanceService(s store.Store, atomic bool, pub events.Publisher) *MaintenanceService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &MaintenanceService{
		store:       s,
		reconciler:  reconcile.New(s, atomic),
		assignments: NewAssignmentService(s, pub),
		events:      pub,
	}
}

// Reset returns every camera to the warehouse and clears the camera lists
// of workers and tournaments.
func (s *MaintenanceService) Reset(ctx context.Context) (*reconcile.Report, error) {
	report, err := s.reconciler.ResetAll(ctx)
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, events.New(events.KindFleet, events.ActionReset, "", report))
	return report, nil
}

// RebuildViews recomputes every worker's camera list.
func (s *MaintenanceService) RebuildViews(ctx context.Context) (*RebuildReport, error) {
	return s.assignments.RebuildViews(ctx)
}

// Verify reports assignment drift.
func (s *MaintenanceService) Verify(ctx context.Context) (*VerifyReport, error) {
	return s.assignments.Verify(ctx)
}

// Counts returns the number of rows per collection.
func (s *MaintenanceService) Counts(ctx context.Context) (map[string]int64, error) {
	st := s.store
	counts := map[string]int64{}
	t, err := st.Tournaments().List(ctx, nil)
	if err != nil {
		return nil, err
	}
	w, err := st.Workers().List(ctx, nil)
	if err != nil {
		return nil, err
	}
	c, err := st.Cameras().List(ctx, nil)
	if err != nil {
		return nil, err
	}
	sh, err := st.Shipments().List(ctx, nil)
	if err != nil {
		return nil, err
	}
	h, err := st.History().Count(ctx)
	if err != nil {
		return nil, err
	}
	counts[model.KindTournament] = int64(len(t))
	counts[model.KindWorker] = int64(len(w))
	counts[model.KindCamera] = int64(len(c))
	counts[model.KindShipment] = int64(len(sh))
	counts[model.KindHistory] = h
	return counts, nil
}
