package service

import (
	"context"
	"strconv"

	"golfcam/internal/events"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

// HistoryService exposes the camera history log.
type HistoryService struct {
	store  store.Store
	events events.Publisher
}

func NewHistoryService(s store.Store, pub events.Publisher) *HistoryService {
	if pub == nil {
		pub = events.Nop{}
	}
	return &HistoryService{store: s, events: pub}
}

// List returns the rows matching filter, newest first.
func (s *HistoryService) List(ctx context.Context, filter store.Filter) ([]model.CameraHistory, error) {
	rows, err := s.store.History().List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if rows == nil {
		rows = []model.CameraHistory{}
	}
	return rows, nil
}

func (s *HistoryService) Get(ctx context.Context, id uint) (*model.CameraHistory, error) {
	return s.store.History().Get(ctx, id)
}

// Append adds a row. The id is assigned by the store.
func (s *HistoryService) Append(ctx context.Context, entry *model.CameraHistory) (*model.CameraHistory, error) {
	entry.ID = 0
	if entry.Details == nil {
		entry.Details = map[string]any{}
	}
	if err := s.store.History().Append(ctx, entry); err != nil {
		return nil, err
	}
	events.Emit(ctx, s.events, events.New(model.KindHistory, events.ActionCreated, strconv.FormatUint(uint64(entry.ID), 10), entry))
	return entry, nil
}

// Delete removes one row by id.
func (s *HistoryService) Delete(ctx context.Context, id uint) (bool, error) {
	deleted, err := s.store.History().Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		events.Emit(ctx, s.events, events.New(model.KindHistory, events.ActionDeleted, strconv.FormatUint(uint64(id), 10), nil))
	}
	return deleted, nil
}
