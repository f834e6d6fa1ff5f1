package service

import (
	"context"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

// WorkerService manages workers. CamerasAssigned is derived from the
// cameras table and never taken from input.
type WorkerService struct {
	*CrudService[model.Worker]
}

func NewWorkerService(s store.Store, pub events.Publisher) *WorkerService {
	return &WorkerService{newCrudService(s, model.KindWorker, store.Store.Workers, pub)}
}

// Create stores a worker with its view computed from current cameras.
func (s *WorkerService) Create(ctx context.Context, worker *model.Worker) (*model.Worker, error) {
	if worker.Status == "" {
		worker.Status = model.WorkerAvailable
	}
	worker.CamerasAssigned = []string{}

	var created *model.Worker
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Workers().Create(ctx, worker); err != nil {
			return err
		}
		if err := syncWorkerViews(ctx, tx, worker.ID); err != nil {
			return err
		}
		var err error
		created, err = tx.Workers().Get(ctx, worker.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionCreated, created)
	return created, nil
}

// Update applies fields except the derived camera view.
func (s *WorkerService) Update(ctx context.Context, id string, fields store.Fields) (*model.Worker, error) {
	clean := make(store.Fields, len(fields))
	for k, v := range fields {
		if k == "camerasAssigned" || k == "cameras_assigned" {
			continue
		}
		clean[k] = v
	}
	return s.CrudService.Update(ctx, id, clean)
}

// Delete removes a worker and unassigns its cameras.
func (s *WorkerService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	res := &DeleteResult{ID: id}
	var released int64
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		if res.Deleted, err = tx.Workers().Delete(ctx, id); err != nil || !res.Deleted {
			return err
		}
		released, err = tx.Cameras().BulkUpdate(ctx, store.Fields{
			"assignedTo": nil,
			"status":     model.CameraAvailable,
		}, store.Filter{"assignedTo": id})
		return err
	})
	if err != nil {
		return nil, err
	}
	if res.Deleted {
		events.Emit(ctx, s.events, events.New(s.kind, events.ActionDeleted, id, map[string]any{
			"id":              id,
			"camerasReleased": released,
		}))
	}
	return res, nil
}
