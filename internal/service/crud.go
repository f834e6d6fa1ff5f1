package service

import (
	"context"

	"golfcam/internal/events"
	"golfcam/internal/store"
)

// DeleteResult reports a delete by id.
type DeleteResult struct {
	ID      string `json:"id"`
	Deleted bool   `json:"deleted"`
	// HistoryRemoved counts the history rows removed with the entity.
	HistoryRemoved int64 `json:"historyRemoved"`
}

// CrudService is the plain CRUD service of one resource kind. Kind
// specific services embed it and override what they need.
type CrudService[T store.Entity] struct {
	store  store.Store
	kind   string
	repo   func(store.Store) store.Repository[T]
	events events.Publisher
}

func newCrudService[T store.Entity](s store.Store, kind string, repo func(store.Store) store.Repository[T], pub events.Publisher) *CrudService[T] {
	if pub == nil {
		pub = events.Nop{}
	}
	return &CrudService[T]{store: s, kind: kind, repo: repo, events: pub}
}

// Kind returns the resource kind.
func (s *CrudService[T]) Kind() string { return s.kind }

// List returns the rows matching filter.
func (s *CrudService[T]) List(ctx context.Context, filter store.Filter) ([]T, error) {
	rows, err := s.repo(s.store).List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []T{}
	}
	return rows, nil
}

// Get returns one row.
func (s *CrudService[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.repo(s.store).Get(ctx, id)
}

// Create stores row and returns it as stored.
func (s *CrudService[T]) Create(ctx context.Context, row *T) (*T, error) {
	repo := s.repo(s.store)
	if err := repo.Create(ctx, row); err != nil {
		return nil, err
	}
	created, err := repo.Get(ctx, (*row).EntityID())
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionCreated, created)
	return created, nil
}

// Update applies fields to the row with id.
func (s *CrudService[T]) Update(ctx context.Context, id string, fields store.Fields) (*T, error) {
	updated, err := s.repo(s.store).Update(ctx, id, fields)
	if err != nil {
		return nil, err
	}
	s.emit(ctx, events.ActionUpdated, updated)
	return updated, nil
}

// Delete removes the row with id.
func (s *CrudService[T]) Delete(ctx context.Context, id string) (*DeleteResult, error) {
	deleted, err := s.repo(s.store).Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	res := &DeleteResult{ID: id, Deleted: deleted}
	if deleted {
		events.Emit(ctx, s.events, events.New(s.kind, events.ActionDeleted, id, res))
	}
	return res, nil
}

func (s *CrudService[T]) emit(ctx context.Context, action string, row *T) {
	events.Emit(ctx, s.events, events.New(s.kind, action, (*row).EntityID(), row))
}
