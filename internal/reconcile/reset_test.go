package reconcile

import (
	"context"
	"errors"
	"testing"

	"golfcam/internal/model"
	"golfcam/internal/store/storetest"
)

func strp(s string) *string { return &s }

func seed(t *testing.T) *storetest.Store {
	t.Helper()
	ctx := context.Background()
	s := storetest.New()
	cameras := []model.Camera{
		{ID: "C1", Location: "Jalisco", Status: model.CameraInUse, AssignedTo: strp("W1")},
		{ID: "C2", Location: "Sonora", Status: model.CameraMaintenance},
		{ID: "C3", Location: model.Warehouse, Status: model.CameraAvailable},
	}
	for i := range cameras {
		if err := s.Cameras().Create(ctx, &cameras[i]); err != nil {
			t.Fatalf("create camera: %v", err)
		}
	}
	workers := []model.Worker{
		{ID: "W1", CamerasAssigned: []string{"C1"}},
		{ID: "W2", CamerasAssigned: []string{"C2"}},
	}
	for i := range workers {
		if err := s.Workers().Create(ctx, &workers[i]); err != nil {
			t.Fatalf("create worker: %v", err)
		}
	}
	tournament := model.Tournament{ID: "T1", Cameras: []string{"C1", "C2"}}
	if err := s.Tournaments().Create(ctx, &tournament); err != nil {
		t.Fatalf("create tournament: %v", err)
	}
	return s
}

func assertReset(t *testing.T, s *storetest.Store) {
	t.Helper()
	ctx := context.Background()
	cameras, err := s.Cameras().List(ctx, nil)
	if err != nil {
		t.Fatalf("list cameras: %v", err)
	}
	for _, c := range cameras {
		if c.Location != model.Warehouse || c.AssignedTo != nil || c.Status != model.CameraAvailable {
			t.Fatalf("camera %s not reset: %+v", c.ID, c)
		}
	}
	workers, _ := s.Workers().List(ctx, nil)
	for _, w := range workers {
		if len(w.CamerasAssigned) != 0 {
			t.Fatalf("worker %s still holds %v", w.ID, w.CamerasAssigned)
		}
	}
	tournaments, _ := s.Tournaments().List(ctx, nil)
	for _, tr := range tournaments {
		if len(tr.Cameras) != 0 {
			t.Fatalf("tournament %s still holds %v", tr.ID, tr.Cameras)
		}
	}
}

func TestResetAll(t *testing.T) {
	for _, atomic := range []bool{true, false} {
		s := seed(t)
		report, err := New(s, atomic).ResetAll(context.Background())
		if err != nil {
			t.Fatalf("atomic=%v: ResetAll: %v", atomic, err)
		}
		assertReset(t, s)

		if report.Atomic != atomic {
			t.Fatalf("report.Atomic = %v, want %v", report.Atomic, atomic)
		}
		want := []StepResult{{StepCameras, 3}, {StepWorkers, 2}, {StepTournaments, 1}}
		if len(report.Steps) != len(want) {
			t.Fatalf("steps = %+v", report.Steps)
		}
		for i := range want {
			if report.Steps[i] != want[i] {
				t.Fatalf("step %d = %+v, want %+v", i, report.Steps[i], want[i])
			}
		}
	}
}

func TestResetAllIsIdempotent(t *testing.T) {
	s := seed(t)
	r := New(s, true)
	if _, err := r.ResetAll(context.Background()); err != nil {
		t.Fatalf("first reset: %v", err)
	}
	if _, err := r.ResetAll(context.Background()); err != nil {
		t.Fatalf("second reset: %v", err)
	}
	assertReset(t, s)
}

func TestStepwiseResetReportsPartialFailure(t *testing.T) {
	s := seed(t)
	boom := errors.New("connection reset")
	s.Fail(model.KindWorker, "bulk-update", boom)

	_, err := New(s, false).ResetAll(context.Background())
	var pe *PartialBatchError
	if !errors.As(err, &pe) {
		t.Fatalf("err = %v, want PartialBatchError", err)
	}
	if pe.Failed != StepWorkers || len(pe.Completed) != 1 || pe.Completed[0] != (StepResult{StepCameras, 3}) {
		t.Fatalf("partial = %+v", pe)
	}
	if !errors.Is(err, boom) {
		t.Fatal("cause not wrapped")
	}

	// The camera step stays applied.
	c, err := s.Cameras().Get(context.Background(), "C1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if c.Location != model.Warehouse || c.AssignedTo != nil {
		t.Fatalf("camera step rolled back: %+v", c)
	}
	tr, _ := s.Tournaments().Get(context.Background(), "T1")
	if len(tr.Cameras) != 2 {
		t.Fatalf("tournament step ran after failure: %v", tr.Cameras)
	}
}

func TestAtomicResetRollsBack(t *testing.T) {
	s := seed(t)
	boom := errors.New("connection reset")
	s.Fail(model.KindTournament, "bulk-update", boom)

	_, err := New(s, true).ResetAll(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want wrapped cause", err)
	}
	var pe *PartialBatchError
	if errors.As(err, &pe) {
		t.Fatal("atomic reset reported a partial batch")
	}

	c, _ := s.Cameras().Get(context.Background(), "C1")
	if c.Location != "Jalisco" || c.AssignedTo == nil || *c.AssignedTo != "W1" {
		t.Fatalf("camera not rolled back: %+v", c)
	}
	w, _ := s.Workers().Get(context.Background(), "W1")
	if len(w.CamerasAssigned) != 1 {
		t.Fatalf("worker not rolled back: %+v", w)
	}
}

func TestFirstStepFailureIsNotPartial(t *testing.T) {
	s := seed(t)
	s.Fail(model.KindCamera, "bulk-update", errors.New("down"))

	_, err := New(s, false).ResetAll(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var pe *PartialBatchError
	if errors.As(err, &pe) {
		t.Fatal("nothing was applied, error must not be partial")
	}
}
