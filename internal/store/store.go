// Package store defines the Resource Store contract the services are built on.
package store

import (
	"context"
	"net/url"
	"strings"

	"golfcam/internal/model"
)

// Entity is a row with a caller-supplied string identifier.
type Entity interface {
	EntityID() string
}

// Filter is an exact-match equality filter keyed by JSON field name.
// A nil value matches NULL.
type Filter map[string]any

// Fields is a partial row keyed by JSON field name.
type Fields map[string]any

// Repository is the per-kind CRUD contract.
type Repository[T Entity] interface {
	List(ctx context.Context, filter Filter) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, row *T) error
	Update(ctx context.Context, id string, fields Fields) (*T, error)
	Delete(ctx context.Context, id string) (bool, error)
	// BulkUpdate applies fields to every row matching filter. An empty
	// filter updates all rows.
	BulkUpdate(ctx context.Context, fields Fields, filter Filter) (int64, error)
	// Upsert inserts rows, replacing existing rows with the same id.
	Upsert(ctx context.Context, rows []T) (int64, error)
}

// HistoryRepository stores CameraHistory audit rows.
type HistoryRepository interface {
	List(ctx context.Context, filter Filter) ([]model.CameraHistory, error)
	Get(ctx context.Context, id uint) (*model.CameraHistory, error)
	Append(ctx context.Context, entry *model.CameraHistory) error
	Delete(ctx context.Context, id uint) (bool, error)
	// DeleteScoped removes the rows owned by scope. It returns
	// ErrEmptyScope without touching any row when the scope is empty.
	DeleteScoped(ctx context.Context, scope HistoryScope) (int64, error)
	Count(ctx context.Context) (int64, error)
}

// Store groups the repositories of one database handle.
type Store interface {
	Tournaments() Repository[model.Tournament]
	Workers() Repository[model.Worker]
	Cameras() Repository[model.Camera]
	Shipments() Repository[model.Shipment]
	History() HistoryRepository
	// Transaction runs fn against a Store bound to a single transaction.
	// A non-nil error from fn rolls the transaction back.
	Transaction(ctx context.Context, fn func(tx Store) error) error
}

// FilterFromQuery builds a Filter from URL query parameters. Parameters
// whose name starts with an underscore are reserved for options and are
// skipped. Only the first value of a repeated parameter is used.
func FilterFromQuery(values url.Values) Filter {
	filter := Filter{}
	for key, vals := range values {
		if key == "" || strings.HasPrefix(key, "_") || len(vals) == 0 {
			continue
		}
		filter[key] = vals[0]
	}
	return filter
}
