package postgres

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"golfcam/internal/model"
	"golfcam/internal/store"
)

type historyRepository struct {
	db     *gorm.DB
	fields *fieldSet
}

func (r *historyRepository) withDB(db *gorm.DB) *historyRepository {
	return &historyRepository{db: db, fields: r.fields}
}

func (r *historyRepository) List(ctx context.Context, filter store.Filter) ([]model.CameraHistory, error) {
	cond, err := r.fields.where("list", filter)
	if err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx)
	if len(cond) > 0 {
		q = q.Where(cond)
	}
	var rows []model.CameraHistory
	if err := q.Order("date DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, wrapErr("list", model.KindHistory, "", err)
	}
	return rows, nil
}

func (r *historyRepository) Get(ctx context.Context, id uint) (*model.CameraHistory, error) {
	var row model.CameraHistory
	if err := r.db.WithContext(ctx).First(&row, id).Error; err != nil {
		return nil, wrapErr("get", model.KindHistory, strconv.FormatUint(uint64(id), 10), err)
	}
	return &row, nil
}

func (r *historyRepository) Append(ctx context.Context, entry *model.CameraHistory) error {
	if err := validateHistory(entry); err != nil {
		return err
	}
	return wrapErr("append", model.KindHistory, entry.CameraID, r.db.WithContext(ctx).Create(entry).Error)
}

func (r *historyRepository) Delete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Delete(&model.CameraHistory{}, id)
	if res.Error != nil {
		return false, wrapErr("delete", model.KindHistory, strconv.FormatUint(uint64(id), 10), res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (r *historyRepository) DeleteScoped(ctx context.Context, scope store.HistoryScope) (int64, error) {
	if err := scope.Validate(); err != nil {
		return 0, &store.Error{Op: "delete-scoped", Kind: model.KindHistory, Err: err}
	}
	res := r.db.WithContext(ctx).
		Where("type IN ?", scope.Types).
		Where(datatypes.JSONQuery("details").Equals(scope.Value, scope.Key)).
		Delete(&model.CameraHistory{})
	if res.Error != nil {
		return 0, wrapErr("delete-scoped", model.KindHistory, scope.Value, res.Error)
	}
	return res.RowsAffected, nil
}

func (r *historyRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.CameraHistory{}).Count(&n).Error; err != nil {
		return 0, wrapErr("count", model.KindHistory, "", err)
	}
	return n, nil
}

// validateHistory checks an entry before it is appended and fills the
// date when it is missing.
func validateHistory(entry *model.CameraHistory) error {
	if entry.CameraID == "" {
		return store.Invalid("append", model.KindHistory, "", "cameraId is required")
	}
	if !model.ValidHistoryTypes[entry.Type] {
		return store.Invalid("append", model.KindHistory, entry.CameraID, fmt.Sprintf("invalid type %q", entry.Type))
	}
	if entry.Date.IsZero() {
		entry.Date = time.Now()
	}
	return nil
}
