// Package storetest provides an in-memory store.Store for tests.
package storetest

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"gorm.io/gorm/schema"

	"golfcam/internal/model"
	"golfcam/internal/store"
)

type data struct {
	tournaments map[string]model.Tournament
	workers     map[string]model.Worker
	cameras     map[string]model.Camera
	shipments   map[string]model.Shipment
	history     []model.CameraHistory
	nextID      uint
}

func (d *data) clone() *data {
	c := &data{
		tournaments: cloneMap(d.tournaments),
		workers:     cloneMap(d.workers),
		cameras:     cloneMap(d.cameras),
		shipments:   cloneMap(d.shipments),
		history:     append([]model.CameraHistory(nil), d.history...),
		nextID:      d.nextID,
	}
	return c
}

func cloneMap[T any](m map[string]T) map[string]T {
	c := make(map[string]T, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

// Store is a store.Store kept in memory. Rows are copied on every read and
// write, and Transaction rolls back to a snapshot when fn fails.
type Store struct {
	mu    *sync.Mutex
	state **data
	fails map[string]error
	ops   *[]string
}

var _ store.Store = (*Store)(nil)

// New returns an empty Store.
func New() *Store {
	d := &data{
		tournaments: map[string]model.Tournament{},
		workers:     map[string]model.Worker{},
		cameras:     map[string]model.Camera{},
		shipments:   map[string]model.Shipment{},
		nextID:      1,
	}
	ops := []string{}
	return &Store{mu: &sync.Mutex{}, state: &d, fails: map[string]error{}, ops: &ops}
}

// Fail makes every later call of op on kind return err, e.g.
// Fail("worker", "bulk-update", err). A nil err clears the failure.
func (s *Store) Fail(kind, op string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fails, kind+"."+op)
		return
	}
	s.fails[kind+"."+op] = err
}

// Ops returns the "kind.op" log of mutating calls that succeeded.
func (s *Store) Ops() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), (*s.ops)...)
}

// call runs fn under the lock after checking injected failures.
func (s *Store) call(kind, op string, mutating bool, fn func(d *data) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.fails[kind+"."+op]; err != nil {
		return &store.Error{Op: op, Kind: kind, Err: err}
	}
	if err := fn(*s.state); err != nil {
		return err
	}
	if mutating {
		*s.ops = append(*s.ops, kind+"."+op)
	}
	return nil
}

func (s *Store) Tournaments() store.Repository[model.Tournament] {
	return &repo[model.Tournament]{s: s, kind: model.KindTournament, rows: func(d *data) map[string]model.Tournament { return d.tournaments }}
}

func (s *Store) Workers() store.Repository[model.Worker] {
	return &repo[model.Worker]{s: s, kind: model.KindWorker, rows: func(d *data) map[string]model.Worker { return d.workers }}
}

func (s *Store) Cameras() store.Repository[model.Camera] {
	return &repo[model.Camera]{s: s, kind: model.KindCamera, rows: func(d *data) map[string]model.Camera { return d.cameras }}
}

func (s *Store) Shipments() store.Repository[model.Shipment] {
	return &repo[model.Shipment]{s: s, kind: model.KindShipment, rows: func(d *data) map[string]model.Shipment { return d.shipments }}
}

func (s *Store) History() store.HistoryRepository { return &historyRepo{s: s} }

// Transaction snapshots the whole store and restores it when fn fails.
func (s *Store) Transaction(ctx context.Context, fn func(tx store.Store) error) error {
	s.mu.Lock()
	snapshot := (*s.state).clone()
	opsLen := len(*s.ops)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		*s.state = snapshot
		*s.ops = (*s.ops)[:opsLen]
		s.mu.Unlock()
		return err
	}
	return nil
}

type repo[T store.Entity] struct {
	s    *Store
	kind string
	rows func(d *data) map[string]T
}

func (r *repo[T]) List(ctx context.Context, filter store.Filter) ([]T, error) {
	var out []T
	err := r.s.call(r.kind, "list", false, func(d *data) error {
		for _, row := range r.rows(d) {
			ok, err := matches(r.kind, row, filter)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, row)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID() < out[j].EntityID() })
	return out, err
}

func (r *repo[T]) Get(ctx context.Context, id string) (*T, error) {
	var out *T
	err := r.s.call(r.kind, "get", false, func(d *data) error {
		row, ok := r.rows(d)[id]
		if !ok {
			return store.NotFound("get", r.kind, id)
		}
		out = &row
		return nil
	})
	return out, err
}

func (r *repo[T]) Create(ctx context.Context, row *T) error {
	return r.s.call(r.kind, "create", true, func(d *data) error {
		id := (*row).EntityID()
		if id == "" {
			return store.Invalid("create", r.kind, "", "id is required")
		}
		if _, ok := r.rows(d)[id]; ok {
			return store.Invalid("create", r.kind, id, "duplicate key")
		}
		r.rows(d)[id] = *row
		return nil
	})
}

func (r *repo[T]) Update(ctx context.Context, id string, fields store.Fields) (*T, error) {
	var out *T
	err := r.s.call(r.kind, "update", true, func(d *data) error {
		row, ok := r.rows(d)[id]
		if !ok {
			return store.NotFound("update", r.kind, id)
		}
		updated, err := apply(r.kind, "update", id, row, fields)
		if err != nil {
			return err
		}
		r.rows(d)[id] = updated
		out = &updated
		return nil
	})
	return out, err
}

func (r *repo[T]) Delete(ctx context.Context, id string) (bool, error) {
	var found bool
	err := r.s.call(r.kind, "delete", true, func(d *data) error {
		_, found = r.rows(d)[id]
		delete(r.rows(d), id)
		return nil
	})
	return found, err
}

func (r *repo[T]) BulkUpdate(ctx context.Context, fields store.Fields, filter store.Filter) (int64, error) {
	var n int64
	err := r.s.call(r.kind, "bulk-update", true, func(d *data) error {
		rows := r.rows(d)
		next := make(map[string]T, len(rows))
		for id, row := range rows {
			ok, err := matches(r.kind, row, filter)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
			updated, err := apply(r.kind, "bulk-update", "", row, fields)
			if err != nil {
				return err
			}
			next[id] = updated
		}
		for id, row := range next {
			rows[id] = row
		}
		n = int64(len(next))
		return nil
	})
	return n, err
}

func (r *repo[T]) Upsert(ctx context.Context, rows []T) (int64, error) {
	err := r.s.call(r.kind, "upsert", true, func(d *data) error {
		for _, row := range rows {
			if row.EntityID() == "" {
				return store.Invalid("upsert", r.kind, "", "id is required")
			}
		}
		for _, row := range rows {
			r.rows(d)[row.EntityID()] = row
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

type historyRepo struct {
	s *Store
}

func (r *historyRepo) List(ctx context.Context, filter store.Filter) ([]model.CameraHistory, error) {
	var out []model.CameraHistory
	err := r.s.call(model.KindHistory, "list", false, func(d *data) error {
		for _, h := range d.history {
			ok, err := matches(model.KindHistory, h, filter)
			if err != nil {
				return err
			}
			if ok {
				out = append(out, h)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	return out, err
}

func (r *historyRepo) Get(ctx context.Context, id uint) (*model.CameraHistory, error) {
	var out *model.CameraHistory
	err := r.s.call(model.KindHistory, "get", false, func(d *data) error {
		for _, h := range d.history {
			if h.ID == id {
				h := h
				out = &h
				return nil
			}
		}
		return store.NotFound("get", model.KindHistory, strconv.FormatUint(uint64(id), 10))
	})
	return out, err
}

func (r *historyRepo) Append(ctx context.Context, entry *model.CameraHistory) error {
	return r.s.call(model.KindHistory, "append", true, func(d *data) error {
		if entry.CameraID == "" {
			return store.Invalid("append", model.KindHistory, "", "cameraId is required")
		}
		if !model.ValidHistoryTypes[entry.Type] {
			return store.Invalid("append", model.KindHistory, entry.CameraID, fmt.Sprintf("invalid type %q", entry.Type))
		}
		if entry.Date.IsZero() {
			entry.Date = time.Now()
		}
		entry.ID = d.nextID
		entry.CreatedAt = time.Now()
		d.nextID++
		d.history = append(d.history, *entry)
		return nil
	})
}

func (r *historyRepo) Delete(ctx context.Context, id uint) (bool, error) {
	var found bool
	err := r.s.call(model.KindHistory, "delete", true, func(d *data) error {
		kept := d.history[:0:0]
		for _, h := range d.history {
			if h.ID == id {
				found = true
				continue
			}
			kept = append(kept, h)
		}
		d.history = kept
		return nil
	})
	return found, err
}

func (r *historyRepo) DeleteScoped(ctx context.Context, scope store.HistoryScope) (int64, error) {
	var n int64
	err := r.s.call(model.KindHistory, "delete-scoped", true, func(d *data) error {
		if err := scope.Validate(); err != nil {
			return &store.Error{Op: "delete-scoped", Kind: model.KindHistory, Err: err}
		}
		kept := d.history[:0:0]
		for _, h := range d.history {
			if scope.Matches(h) {
				n++
				continue
			}
			kept = append(kept, h)
		}
		d.history = kept
		return nil
	})
	return n, err
}

func (r *historyRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.s.call(model.KindHistory, "count", false, func(d *data) error {
		n = int64(len(d.history))
		return nil
	})
	return n, err
}

// toMap returns the JSON object form of a row.
func toMap(row any) (map[string]any, error) {
	b, err := json.Marshal(row)
	if err != nil {
		return nil, err
	}
	m := map[string]any{}
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, err
	}
	return m, nil
}

var (
	schemas sync.Map
	aliases sync.Map
)

// columnAliases maps the column names of row's model to its JSON names,
// so fields resolve the same way the postgres store resolves them.
func columnAliases(row any) map[string]string {
	t := reflect.TypeOf(row)
	if v, ok := aliases.Load(t); ok {
		return v.(map[string]string)
	}
	out := map[string]string{}
	if sch, err := schema.Parse(row, &schemas, schema.NamingStrategy{}); err == nil {
		for _, f := range sch.Fields {
			name := strings.Split(f.Tag.Get("json"), ",")[0]
			if f.DBName == "" || name == "-" {
				continue
			}
			if name == "" {
				name = f.Name
			}
			out[f.DBName] = name
		}
	}
	aliases.Store(t, out)
	return out
}

// resolve returns the JSON name for a JSON or column name.
func resolve(row any, m map[string]any, name string) (string, bool) {
	if _, ok := m[name]; ok {
		return name, true
	}
	if alias, ok := columnAliases(row)[name]; ok {
		if _, ok := m[alias]; ok {
			return alias, true
		}
	}
	return name, false
}

func matches(kind string, row any, filter store.Filter) (bool, error) {
	if len(filter) == 0 {
		return true, nil
	}
	m, err := toMap(row)
	if err != nil {
		return false, err
	}
	for name, want := range filter {
		key, ok := resolve(row, m, name)
		got := m[key]
		if !ok {
			return false, &store.Error{Op: "list", Kind: kind, Err: fmt.Errorf("%w: %s", store.ErrUnknownField, name)}
		}
		switch got.(type) {
		case []any, map[string]any:
			return false, store.Invalid("list", kind, "", fmt.Sprintf("filter %s: cannot filter on array values", name))
		}
		if want == nil || got == nil {
			if want != got {
				return false, nil
			}
			continue
		}
		if v := reflect.ValueOf(want); v.Kind() == reflect.Ptr {
			if v.IsNil() {
				return false, nil
			}
			want = v.Elem().Interface()
		}
		if fmt.Sprint(got) != fmt.Sprint(want) {
			return false, nil
		}
	}
	return true, nil
}

// apply overlays fields onto row through its JSON form.
func apply[T any](kind, op, id string, row T, fields store.Fields) (T, error) {
	var zero T
	m, err := toMap(row)
	if err != nil {
		return zero, err
	}
	for name, v := range fields {
		key, ok := resolve(row, m, name)
		if !ok {
			return zero, &store.Error{Op: op, Kind: kind, ID: id, Err: fmt.Errorf("%w: %s", store.ErrUnknownField, name)}
		}
		if key == "id" {
			continue
		}
		m[key] = v
	}
	b, err := json.Marshal(m)
	if err != nil {
		return zero, store.Invalid(op, kind, id, err.Error())
	}
	var out T
	if err := json.Unmarshal(b, &out); err != nil {
		return zero, store.Invalid(op, kind, id, err.Error())
	}
	return out, nil
}
