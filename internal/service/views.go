package service

import (
	"context"
	"slices"
	"sort"

	"golfcam/internal/model"
	"golfcam/internal/store"
)

// syncWorkerViews recomputes Worker.CamerasAssigned from the cameras
// assigned to each worker. Unknown workers are skipped; their cameras show
// up as dangling in Verify.
func syncWorkerViews(ctx context.Context, tx store.Store, workerIDs ...string) error {
	seen := make(map[string]bool, len(workerIDs))
	for _, id := range workerIDs {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		worker, err := tx.Workers().Get(ctx, id)
		if err != nil {
			if store.IsNotFound(err) {
				continue
			}
			return err
		}
		cameras, err := tx.Cameras().List(ctx, store.Filter{"assignedTo": id})
		if err != nil {
			return err
		}
		want := cameraIDs(cameras)
		if slices.Equal([]string(worker.CamerasAssigned), want) {
			continue
		}
		if _, err := tx.Workers().Update(ctx, id, store.Fields{"camerasAssigned": want}); err != nil {
			return err
		}
	}
	return nil
}

// expectedViews groups camera ids by the worker they are assigned to.
func expectedViews(cameras []model.Camera) map[string][]string {
	views := make(map[string][]string)
	for _, c := range cameras {
		if c.AssignedTo == nil || *c.AssignedTo == "" {
			continue
		}
		views[*c.AssignedTo] = append(views[*c.AssignedTo], c.ID)
	}
	for w := range views {
		sort.Strings(views[w])
	}
	return views
}

func cameraIDs(cameras []model.Camera) []string {
	ids := make([]string, 0, len(cameras))
	for _, c := range cameras {
		ids = append(ids, c.ID)
	}
	sort.Strings(ids)
	return ids
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
