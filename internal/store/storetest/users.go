package storetest

import (
	"context"
	"sort"
	"sync"

	"golfcam/internal/model"
	"golfcam/internal/store"
)

// Users is an in-memory user store.
type Users struct {
	mu       sync.Mutex
	users    map[string]model.User
	attempts []model.LoginAttempt
	nextID   uint
}

// NewUsers returns an empty Users.
func NewUsers() *Users {
	return &Users{users: map[string]model.User{}, nextID: 1}
}

func (u *Users) FindUser(ctx context.Context, username string) (*model.User, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	user, ok := u.users[username]
	if !ok {
		return nil, store.NotFound("get", "user", username)
	}
	return &user, nil
}

func (u *Users) CreateUser(ctx context.Context, user *model.User) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if _, ok := u.users[user.Username]; ok {
		return store.Invalid("create", "user", user.Username, "username already exists")
	}
	user.ID = u.nextID
	u.nextID++
	u.users[user.Username] = *user
	return nil
}

func (u *Users) RecordLoginAttempt(ctx context.Context, attempt *model.LoginAttempt) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	attempt.ID = uint(len(u.attempts) + 1)
	u.attempts = append(u.attempts, *attempt)
	return nil
}

func (u *Users) ListLoginAttempts(ctx context.Context, username string, limit int) ([]model.LoginAttempt, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	var out []model.LoginAttempt
	for _, a := range u.attempts {
		if username == "" || a.Username == username {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
