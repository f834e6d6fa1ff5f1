package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"golfcam/internal/model"
	"golfcam/internal/store"
	"golfcam/internal/store/storetest"
)

func newAuth(t *testing.T) (*AuthService, *storetest.Users) {
	t.Helper()
	users := storetest.NewUsers()
	svc := NewAuthService(users, "test-secret", time.Hour)
	if _, err := svc.CreateUser(context.Background(), "admin", "s3cret", RoleAdmin); err != nil {
		t.Fatalf("create user: %v", err)
	}
	return svc, users
}

func TestLoginIssuesParseableToken(t *testing.T) {
	ctx := context.Background()
	svc, users := newAuth(t)

	resp, err := svc.Login(ctx, model.LoginRequest{Username: "admin", Password: "s3cret"}, "10.0.0.1", "test")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if resp.Token == "" || resp.User.Username != "admin" || !resp.ExpiresAt.After(time.Now()) {
		t.Fatalf("resp = %+v", resp)
	}
	id, err := svc.ParseToken(resp.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id.Username != "admin" || id.Role != RoleAdmin || id.UserID != resp.User.ID {
		t.Fatalf("identity = %+v", id)
	}

	attempts, _ := users.ListLoginAttempts(ctx, "admin", 10)
	if len(attempts) != 1 || !attempts[0].Success || attempts[0].IP != "10.0.0.1" {
		t.Fatalf("attempts = %+v", attempts)
	}
}

func TestLoginFailuresAreRecorded(t *testing.T) {
	ctx := context.Background()
	svc, _ := newAuth(t)

	if _, err := svc.Login(ctx, model.LoginRequest{Username: "admin", Password: "nope"}, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password err = %v", err)
	}
	if _, err := svc.Login(ctx, model.LoginRequest{Username: "ghost", Password: "x"}, "", ""); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user err = %v", err)
	}
	attempts, err := svc.LoginAttempts(ctx, "", 0)
	if err != nil {
		t.Fatalf("attempts: %v", err)
	}
	if len(attempts) != 2 || attempts[0].Username != "ghost" || attempts[0].Success || attempts[0].Reason == "" {
		t.Fatalf("attempts = %+v", attempts)
	}
}

func TestInactiveUser(t *testing.T) {
	ctx := context.Background()
	users := storetest.NewUsers()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if err := users.CreateUser(ctx, &model.User{Username: "ana", Password: string(hash), Role: RoleUser}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewAuthService(users, "k", time.Hour)
	if _, err := svc.Authenticate(ctx, "ana", "pw", "", ""); !errors.Is(err, ErrUserInactive) {
		t.Fatalf("err = %v, want inactive", err)
	}
}

func TestCreateUserDefaultsRole(t *testing.T) {
	svc, _ := newAuth(t)
	u, err := svc.CreateUser(context.Background(), "luis", "pw", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Role != RoleUser || u.Status != 1 || u.Password == "pw" {
		t.Fatalf("user = %+v", u)
	}
}

func TestParseTokenRejects(t *testing.T) {
	svc, _ := newAuth(t)
	other := NewAuthService(storetest.NewUsers(), "other-secret", time.Hour)
	user := &model.User{ID: 1, Username: "admin", Role: RoleAdmin}

	foreign, _, err := other.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.ParseToken(foreign); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("foreign token err = %v", err)
	}

	expired := NewAuthService(storetest.NewUsers(), "test-secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, _, err := expired.IssueToken(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.ParseToken(old); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("expired token err = %v", err)
	}
	if _, err := svc.ParseToken("garbage"); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("garbage err = %v", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	svc, _ := newAuth(t)
	ctx := context.Background()
	if _, err := svc.CreateUser(ctx, "", "pw", ""); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("empty username err = %v", err)
	}
	if _, err := svc.CreateUser(ctx, "bob", "pw", "root"); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("bad role err = %v", err)
	}
	if _, err := svc.CreateUser(ctx, "admin", "pw", ""); !errors.Is(err, store.ErrValidation) {
		t.Fatalf("duplicate err = %v", err)
	}
}
