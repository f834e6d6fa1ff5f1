package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"golfcam/internal/middleware"
	"golfcam/internal/model"
	"golfcam/internal/store"
)

// Roles.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserInactive       = errors.New("user is inactive")
	ErrInvalidToken       = errors.New("invalid token")
)

// UserStore keeps API users and their login attempts.
type UserStore interface {
	FindUser(ctx context.Context, username string) (*model.User, error)
	CreateUser(ctx context.Context, user *model.User) error
	RecordLoginAttempt(ctx context.Context, attempt *model.LoginAttempt) error
	ListLoginAttempts(ctx context.Context, username string, limit int) ([]model.LoginAttempt, error)
}

// AuthService handles logins and the tokens they issue.
type AuthService struct {
	users  UserStore
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewAuthService(users UserStore, secret string, ttl time.Duration) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{users: users, secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Authenticate validates user credentials and records the attempt.
func (s *AuthService) Authenticate(ctx context.Context, username, password, ip, userAgent string) (*model.User, error) {
	username = strings.TrimSpace(username)
	user, err := s.authenticate(ctx, username, password)

	attempt := &model.LoginAttempt{
		Username:  username,
		IP:        ip,
		UserAgent: userAgent,
		Success:   err == nil,
		CreatedAt: s.now(),
	}
	if err != nil {
		attempt.Reason = err.Error()
	}
	if rerr := s.users.RecordLoginAttempt(ctx, attempt); rerr != nil && err == nil {
		return nil, fmt.Errorf("record login attempt: %w", rerr)
	}
	return user, err
}

func (s *AuthService) authenticate(ctx context.Context, username, password string) (*model.User, error) {
	user, err := s.users.FindUser(ctx, username)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	if user.Status != 1 {
		return nil, ErrUserInactive
	}
	return user, nil
}

// Login authenticates and issues a token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, ip, userAgent string) (*model.LoginResponse, error) {
	user, err := s.Authenticate(ctx, req.Username, req.Password, ip, userAgent)
	if err != nil {
		return nil, err
	}
	token, exp, err := s.IssueToken(user)
	if err != nil {
		return nil, err
	}
	return &model.LoginResponse{Token: token, ExpiresAt: exp, User: *user}, nil
}

// IssueToken signs an HS256 token for user.
func (s *AuthService) IssueToken(user *model.User) (string, time.Time, error) {
	now := s.now().UTC()
	exp := now.Add(s.ttl)
	claims := jwt.MapClaims{
		"sub":      strconv.FormatUint(uint64(user.ID), 10),
		"username": user.Username,
		"role":     user.Role,
		"iat":      now.Unix(),
		"exp":      exp.Unix(),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, exp, nil
}

// ParseToken validates a token issued by IssueToken.
func (s *AuthService) ParseToken(raw string) (*middleware.Identity, error) {
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	sub, _ := claims["sub"].(string)
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}
	username, _ := claims["username"].(string)
	role, _ := claims["role"].(string)
	return &middleware.Identity{UserID: uint(id), Username: username, Role: role}, nil
}

// CreateUser hashes the password and stores the user.
func (s *AuthService) CreateUser(ctx context.Context, username, password, role string) (*model.User, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, store.Invalid("create", "user", username, "username and password are required")
	}
	if role == "" {
		role = RoleUser
	}
	if role != RoleAdmin && role != RoleUser {
		return nil, store.Invalid("create", "user", username, fmt.Sprintf("unknown role %q", role))
	}
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &model.User{Username: username, Password: string(hashed), Role: role, Status: 1}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// LoginAttempts returns the most recent attempts, optionally for one user.
func (s *AuthService) LoginAttempts(ctx context.Context, username string, limit int) ([]model.LoginAttempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	attempts, err := s.users.ListLoginAttempts(ctx, username, limit)
	if err != nil {
		return nil, err
	}
	if attempts == nil {
		attempts = []model.LoginAttempt{}
	}
	return attempts, nil
}
