package service

import (
	"context"
	"fmt"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

// CameraService manages cameras. Changes to a camera's assignment keep
// the affected workers' views in sync within the same transaction.
type CameraService struct {
	*CrudService[model.Camera]
}

func NewCameraService(s store.Store, pub events.Publisher) *CameraService {
	return &CameraService{newCrudService(s, model.KindCamera, store.Store.Cameras, pub)}
}

// Create stores a camera, defaulting to an available camera in the
// warehouse.
func (s *CameraService) Create(ctx context.Context, camera *model.Camera) (*model.Camera, error) {
	if camera.Status == "" {
		camera.Status = model.CameraAvailable
	}
	if camera.Location == "" {
		camera.Location = model.Warehouse
	}

	var created *model.Camera
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Cameras().Create(ctx, camera); err != nil {
			return err
		}
		if err := syncWorkerViews(ctx, tx, deref(camera.AssignedTo)); err != nil {
			return err
		}
		var err error
		created, err = tx.Cameras().Get(ctx, camera.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionCreated, created)
	return created, nil
}

// Update applies fields. A change of assignedTo updates the old and new
// worker views and appends an assignment history row.
func (s *CameraService) Update(ctx context.Context, id string, fields store.Fields) (*model.Camera, error) {
	_, reassign := fields["assignedTo"]
	if !reassign {
		_, reassign = fields["assigned_to"]
	}
	if !reassign {
		return s.CrudService.Update(ctx, id, fields)
	}

	var updated *model.Camera
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		before, err := tx.Cameras().Get(ctx, id)
		if err != nil {
			return err
		}
		updated, err = tx.Cameras().Update(ctx, id, fields)
		if err != nil {
			return err
		}
		from, to := deref(before.AssignedTo), deref(updated.AssignedTo)
		if from == to {
			return nil
		}
		if err := syncWorkerViews(ctx, tx, from, to); err != nil {
			return err
		}
		return appendAssignmentHistory(ctx, tx, id, from, to)
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionUpdated, updated)
	return updated, nil
}

// Delete removes a camera and drops it from its worker's view.
func (s *CameraService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	res := &DeleteResult{ID: id}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		camera, err := tx.Cameras().Get(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				return nil
			}
			return err
		}
		if res.Deleted, err = tx.Cameras().Delete(ctx, id); err != nil {
			return err
		}
		return syncWorkerViews(ctx, tx, deref(camera.AssignedTo))
	})
	if err != nil {
		return nil, err
	}
	if res.Deleted {
		events.Emit(ctx, s.events, events.New(s.kind, events.ActionDeleted, id, res))
	}
	return res, nil
}

// History returns the camera's history, newest first.
func (s *CameraService) History(ctx context.Context, id string) ([]model.CameraHistory, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	rows, err := s.store.History().List(ctx, store.Filter{"cameraId": id})
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.CameraHistory{}
	}
	return rows, nil
}

func appendAssignmentHistory(ctx context.Context, tx store.Store, cameraID, from, to string) error {
	details := map[string]any{}
	var desc string
	switch {
	case to == "":
		details["workerId"] = from
		desc = fmt.Sprintf("Cámara %s desasignada de %s", cameraID, from)
	case from == "":
		details["workerId"] = to
		desc = fmt.Sprintf("Cámara %s asignada a %s", cameraID, to)
	default:
		details["workerId"] = to
		details["previousWorkerId"] = from
		desc = fmt.Sprintf("Cámara %s reasignada de %s a %s", cameraID, from, to)
	}
	return tx.History().Append(ctx, &model.CameraHistory{
		CameraID:    cameraID,
		Type:        model.HistoryAssignment,
		Description: desc,
		Details:     details,
	})
}
