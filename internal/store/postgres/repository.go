package postgres

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"golfcam/internal/store"
)

const upsertBatchSize = 100

// repository implements store.Repository for one model type.
type repository[T store.Entity] struct {
	db     *gorm.DB
	fields *fieldSet
}

func (r *repository[T]) withDB(db *gorm.DB) *repository[T] {
	return &repository[T]{db: db, fields: r.fields}
}

func (r *repository[T]) List(ctx context.Context, filter store.Filter) ([]T, error) {
	cond, err := r.fields.where("list", filter)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx)
	if len(cond) > 0 {
		q = q.Where(cond)
	}
	var rows []T
	if err := q.Order("id").Find(&rows).Error; err != nil {
		return nil, wrapErr("list", r.fields.kind, "", err)
	}
	return rows, nil
}

func (r *repository[T]) Get(ctx context.Context, id string) (*T, error) {
	var row T
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error; err != nil {
		return nil, wrapErr("get", r.fields.kind, id, err)
	}
	return &row, nil
}

func (r *repository[T]) Create(ctx context.Context, row *T) error {
	id := (*row).EntityID()
	if id == "" {
		return store.Invalid("create", r.fields.kind, "", "id is required")
	}
	return wrapErr("create", r.fields.kind, id, r.db.WithContext(ctx).Create(row).Error)
}

func (r *repository[T]) Update(ctx context.Context, id string, fields store.Fields) (*T, error) {
	value, cols, err := decode[T](r.fields, "update", id, fields)
	if err != nil {
		return nil, err
	}
	if len(cols) == 0 {
		return r.Get(ctx, id)
	}
	res := r.db.WithContext(ctx).Model(new(T)).Where("id = ?", id).Select(cols).Updates(value)
	if res.Error != nil {
		return nil, wrapErr("update", r.fields.kind, id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, store.NotFound("update", r.fields.kind, id)
	}
	return r.Get(ctx, id)
}

func (r *repository[T]) Delete(ctx context.Context, id string) (bool, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return false, wrapErr("delete", r.fields.kind, id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *repository[T]) BulkUpdate(ctx context.Context, fields store.Fields, filter store.Filter) (int64, error) {
	value, cols, err := decode[T](r.fields, "bulk-update", "", fields)
	if err != nil {
		return 0, err
	}
	if len(cols) == 0 {
		return 0, store.Invalid("bulk-update", r.fields.kind, "", "no fields to update")
	}
	cond, err := r.fields.where("bulk-update", filter)
	if err != nil {
		return 0, err
	}

	q := r.db.WithContext(ctx)
	if len(cond) == 0 {
		q = q.Session(&gorm.Session{AllowGlobalUpdate: true})
	}
	q = q.Model(new(T))
	if len(cond) > 0 {
		q = q.Where(cond)
	}
	res := q.Select(cols).Updates(value)
	if res.Error != nil {
		return 0, wrapErr("bulk-update", r.fields.kind, "", res.Error)
	}
	return res.RowsAffected, nil
}

func (r *repository[T]) Upsert(ctx context.Context, rows []T) (int64, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	for _, row := range rows {
		if row.EntityID() == "" {
			return 0, store.Invalid("upsert", r.fields.kind, "", "id is required")
		}
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, upsertBatchSize)
	if res.Error != nil {
		return 0, wrapErr("upsert", r.fields.kind, "", res.Error)
	}
	return res.RowsAffected, nil
}
