package postgres

import (
	"context"

	"golfcam/internal/model"
)

// Users keeps API users and login attempts.
type Users struct {
	s *Store
}

// Users returns the user table accessor.
func (s *Store) Users() *Users { return &Users{s: s} }

func (u *Users) FindUser(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	if err := u.s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, wrapErr("get", "user", username, err)
	}
	return &user, nil
}

func (u *Users) CreateUser(ctx context.Context, user *model.User) error {
	if err := u.s.db.WithContext(ctx).Create(user).Error; err != nil {
		return wrapErr("create", "user", user.Username, err)
	}
	return nil
}

func (u *Users) RecordLoginAttempt(ctx context.Context, attempt *model.LoginAttempt) error {
	if err := u.s.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return wrapErr("create", "login_attempt", attempt.Username, err)
	}
	return nil
}

func (u *Users) ListLoginAttempts(ctx context.Context, username string, limit int) ([]model.LoginAttempt, error) {
	var rows []model.LoginAttempt
	q := u.s.db.WithContext(ctx).Order("created_at DESC, id DESC")
	if username != "" {
		q = q.Where("username = ?", username)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&rows).Error; err != nil {
		return nil, wrapErr("list", "login_attempt", "", err)
	}
	return rows, nil
}
