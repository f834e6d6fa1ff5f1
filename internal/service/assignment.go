package service

import (
	"context"
	"slices"
	"sort"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

// AssignmentService moves cameras between workers and keeps the worker
// views derived from Camera.AssignedTo.
type AssignmentService struct {
	store  store.Store
	events events.Publisher
}

func NewAssignmentService(s store.Store, pub events.Publisher) *AssignmentService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &AssignmentService{store: s, events: pub}
}

// Assign gives the camera to the worker and marks it in use.
func (s *AssignmentService) Assign(ctx context.Context, cameraID, workerID string) (*model.Camera, error) {
	if workerID == "" {
		return nil, store.Invalid("assign", model.KindCamera, cameraID, "workerId is required")
	}
	var camera *model.Camera
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if _, err := tx.Workers().Get(ctx, workerID); err != nil {
			return err
		}
		before, err := tx.Cameras().Get(ctx, cameraID)
		if err != nil {
			return err
		}
		camera, err = tx.Cameras().Update(ctx, cameraID, store.Fields{
			"assignedTo": workerID,
			"status":     model.CameraInUse,
		})
		if err != nil {
			return err
		}
		from := deref(before.AssignedTo)
		if err := syncWorkerViews(ctx, tx, from, workerID); err != nil {
			return err
		}
		if from == workerID {
			return nil
		}
		return appendAssignmentHistory(ctx, tx, cameraID, from, workerID)
	})
	if err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, events.New(model.KindCamera, events.ActionAssigned, cameraID, camera))
	return camera, nil
}

// Unassign releases the camera from its worker. Releasing an unassigned
// camera is a no-op that returns the camera.
func (s *AssignmentService) Unassign(ctx context.Context, cameraID string) (*model.Camera, error) {
	var camera *model.Camera
	var from string
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		before, err := tx.Cameras().Get(ctx, cameraID)
		if err != nil {
			return err
		}
		from = deref(before.AssignedTo)
		if from == "" {
			camera = before
			return nil
		}
		camera, err = tx.Cameras().Update(ctx, cameraID, store.Fields{
			"assignedTo": nil,
			"status":     model.CameraAvailable,
		})
		if err != nil {
			return err
		}
		if err := syncWorkerViews(ctx, tx, from); err != nil {
			return err
		}
		return appendAssignmentHistory(ctx, tx, cameraID, from, "")
	})
	if err != nil {
		return nil, err
	}
	if from != "" {
		events.Emit(ctx, s.events, events.New(model.KindCamera, events.ActionUnassigned, cameraID, camera))
	}
	return camera, nil
}

// RebuildReport lists the workers whose view was rewritten.
type RebuildReport struct {
	Workers int      `json:"workers"`
	Updated []string `json:"updated"`
}

// RebuildViews recomputes Worker.CamerasAssigned for every worker.
func (s *AssignmentService) RebuildViews(ctx context.Context) (*RebuildReport, error) {
	report := &RebuildReport{Updated: []string{}}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		report.Updated = report.Updated[:0]
		workers, err := tx.Workers().List(ctx, nil)
		if err != nil {
			return err
		}
		cameras, err := tx.Cameras().List(ctx, nil)
		if err != nil {
			return err
		}
		views := expectedViews(cameras)
		report.Workers = len(workers)
		for _, w := range workers {
			want := views[w.ID]
			if want == nil {
				want = []string{}
			}
			if slices.Equal([]string(w.CamerasAssigned), want) {
				continue
			}
			if _, err := tx.Workers().Update(ctx, w.ID, store.Fields{"camerasAssigned": want}); err != nil {
				return err
			}
			report.Updated = append(report.Updated, w.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(report.Updated) > 0 {
		events.Emit(ctx, s.events, events.New(model.KindWorker, events.ActionRebuilt, "", report))
	}
	return report, nil
}

// DanglingAssignment is a camera assigned to a worker that does not exist.
type DanglingAssignment struct {
	CameraID string `json:"cameraId"`
	WorkerID string `json:"workerId"`
}

// StaleView is a worker whose stored camera list differs from the cameras
// assigned to it.
type StaleView struct {
	WorkerID string   `json:"workerId"`
	Stored   []string `json:"stored"`
	Expected []string `json:"expected"`
}

// UnknownCamera is a tournament camera id with no camera row.
type UnknownCamera struct {
	TournamentID string `json:"tournamentId"`
	CameraID     string `json:"cameraId"`
}

// VerifyReport describes drift between the cameras table and the data
// derived from or referring to it.
type VerifyReport struct {
	OK                 bool                 `json:"ok"`
	DanglingAssignment []DanglingAssignment `json:"danglingAssignments"`
	StaleViews         []StaleView          `json:"staleViews"`
	UnknownCameras     []UnknownCamera      `json:"unknownCameras"`
}

// Verify reports assignment drift without changing anything.
func (s *AssignmentService) Verify(ctx context.Context) (*VerifyReport, error) {
	workers, err := s.store.Workers().List(ctx, nil)
	if err != nil {
		return nil, err
	}
	cameras, err := s.store.Cameras().List(ctx, nil)
	if err != nil {
		return nil, err
	}
	tournaments, err := s.store.Tournaments().List(ctx, nil)
	if err != nil {
		return nil, err
	}

	report := &VerifyReport{
		DanglingAssignment: []DanglingAssignment{},
		StaleViews:         []StaleView{},
		UnknownCameras:     []UnknownCamera{},
	}

	known := make(map[string]bool, len(workers))
	for _, w := range workers {
		known[w.ID] = true
	}
	cameraSet := make(map[string]bool, len(cameras))
	for _, c := range cameras {
		cameraSet[c.ID] = true
		if w := deref(c.AssignedTo); w != "" && !known[w] {
			report.DanglingAssignment = append(report.DanglingAssignment, DanglingAssignment{CameraID: c.ID, WorkerID: w})
		}
	}

	views := expectedViews(cameras)
	for _, w := range workers {
		stored := append([]string(nil), w.CamerasAssigned...)
		sort.Strings(stored)
		want := views[w.ID]
		if !slices.Equal(stored, want) {
			if want == nil {
				want = []string{}
			}
			if stored == nil {
				stored = []string{}
			}
			report.StaleViews = append(report.StaleViews, StaleView{WorkerID: w.ID, Stored: stored, Expected: want})
		}
	}

	for _, t := range tournaments {
		for _, c := range t.Cameras {
			if c != "" && !cameraSet[c] {
				report.UnknownCameras = append(report.UnknownCameras, UnknownCamera{TournamentID: t.ID, CameraID: c})
			}
		}
	}

	report.OK = len(report.DanglingAssignment) == 0 && len(report.StaleViews) == 0 && len(report.UnknownCameras) == 0
	return report, nil
}
