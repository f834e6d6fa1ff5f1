package service

import (
	"context"
	"errors"
	"testing"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/reconcile"
)

func TestMaintenanceResetPublishesEvent(t *testing.T) {
	ctx := context.Background()
	s := seedFleet(t)
	if _, err := NewAssignmentService(s, nil).Assign(ctx, "C1", "W1"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	pub := &events.Memory{}
	svc := NewMaintenanceService(s, true, pub)

	report, err := svc.Reset(ctx)
	if err != nil {
		t.Fatalf("reset: %v", err)
	}
	if !report.Atomic || len(report.Steps) != 3 {
		t.Fatalf("report = %+v", report)
	}
	c, _ := s.Cameras().Get(ctx, "C1")
	if c.AssignedTo != nil || c.Location != model.Warehouse {
		t.Fatalf("camera = %+v", c)
	}
	evs := pub.Events()
	if len(evs) != 1 || evs[0].Kind != events.KindFleet || evs[0].Action != events.ActionReset {
		t.Fatalf("events = %+v", evs)
	}
	v, err := svc.Verify(ctx)
	if err != nil || !v.OK {
		t.Fatalf("verify after reset = %+v, %v", v, err)
	}
}

func TestMaintenanceStepwiseResetFailure(t *testing.T) {
	ctx := context.Background()
	s := seedFleet(t)
	s.Fail(model.KindTournament, "bulk-update", errors.New("boom"))
	pub := &events.Memory{}

	_, err := NewMaintenanceService(s, false, pub).Reset(ctx)
	var pe *reconcile.PartialBatchError
	if !errors.As(err, &pe) || pe.Failed != reconcile.StepTournaments || len(pe.Completed) != 2 {
		t.Fatalf("err = %v, want partial failure at tournaments", err)
	}
	if len(pub.Events()) != 0 {
		t.Fatal("event published for a failed reset")
	}
}

func TestMaintenanceCounts(t *testing.T) {
	ctx := context.Background()
	s := seedFleet(t)
	counts, err := NewMaintenanceService(s, true, nil).Counts(ctx)
	if err != nil {
		t.Fatalf("counts: %v", err)
	}
	if counts[model.KindCamera] != 3 || counts[model.KindWorker] != 2 || counts[model.KindHistory] != 0 {
		t.Fatalf("counts = %v", counts)
	}
}
