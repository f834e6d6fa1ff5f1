package service

import (
	"context"
	"fmt"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

// scopedDelete removes the history rows owned by a parent and then the
// parent itself in one transaction. The history scope is validated first,
// so an empty id never reaches the store.
func scopedDelete[T store.Entity](ctx context.Context, s *CrudService[T], id string, scope store.HistoryScope) (*DeleteResult, error) {
	if err := scope.Validate(); err != nil {
		return nil, &store.Error{Op: "delete", Kind: s.kind, ID: id, Err: err}
	}
	res := &DeleteResult{ID: id}
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		removed, err := tx.History().DeleteScoped(ctx, scope)
		if err != nil {
			return fmt.Errorf("delete %s history: %w", s.kind, err)
		}
		deleted, err := s.repo(tx).Delete(ctx, id)
		if err != nil {
			return err
		}
		res.Deleted, res.HistoryRemoved = deleted, removed
		return nil
	})
	if err != nil {
		return nil, err
	}
	if res.Deleted || res.HistoryRemoved > 0 {
		events.Emit(ctx, s.events, events.New(s.kind, events.ActionDeleted, id, res))
	}
	return res, nil
}

// appendCameraHistory writes one row of kind typ per camera, tagged with
// details[key] = id.
func appendCameraHistory(ctx context.Context, tx store.Store, cameras []string, typ, key, id, desc string) error {
	for _, cameraID := range cameras {
		if cameraID == "" {
			continue
		}
		entry := &model.CameraHistory{
			CameraID:    cameraID,
			Type:        typ,
			Description: desc,
			Details:     map[string]any{key: id},
		}
		if err := tx.History().Append(ctx, entry); err != nil {
			return fmt.Errorf("append %s history for camera %s: %w", typ, cameraID, err)
		}
	}
	return nil
}
