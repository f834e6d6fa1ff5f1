package service

import (
	"context"
	"fmt"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

// TournamentService manages tournaments and the tournament history of
// their cameras.
type TournamentService struct {
	*CrudService[model.Tournament]
}

func NewTournamentService(s store.Store, pub events.Publisher) *TournamentService {
	return &TournamentService{newCrudService(s, model.KindTournament, store.Store.Tournaments, pub)}
}

// Create stores a tournament, pending unless a status is given, and
// appends a tournament history row for each of its cameras.
func (s *TournamentService) Create(ctx context.Context, t *model.Tournament) (*model.Tournament, error) {
	if t.Status == "" {
		t.Status = model.TournamentPending
	}
	if t.Cameras == nil {
		t.Cameras = []string{}
	}
	var created *model.Tournament
	err := s.store.Transaction(ctx, func(tx store.Store) error {
		if err := tx.Tournaments().Create(ctx, t); err != nil {
			return err
		}
		desc := fmt.Sprintf("Torneo %s", t.Name)
		if err := appendCameraHistory(ctx, tx, t.Cameras, model.HistoryTournament, "tournamentId", t.ID, desc); err != nil {
			return err
		}
		var err error
		created, err = tx.Tournaments().Get(ctx, t.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionCreated, created)
	return created, nil
}

// Delete removes the tournament together with its tournament history rows.
func (s *TournamentService) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	return scopedDelete(ctx, s.CrudService, id, store.TournamentScope(id))
}
