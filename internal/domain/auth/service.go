package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	CreateSession(ctx context.Context, userID int64, tokenHash string, expires time.Time) error
	UpdateLastLogin(ctx context.Context, userID int64) error
	RevokeSession(ctx context.Context, userID int64, tokenHash string) error
	SessionValid(ctx context.Context, userID int64, tokenHash string) (bool, error)
}

type ActivityRecorder interface {
	Record(ctx context.Context, userID int64, action, description string) error
}

type Service struct {
	Store    StoreAPI
	Activity ActivityRecorder
	Secret   string
	TTL      time.Duration
	Now      func() time.Time
	log      *zap.Logger
}

func NewService(store StoreAPI, activity ActivityRecorder, secret string, ttl time.Duration, log *zap.Logger) *Service {
	if log == nil {
		log = zap.L()
	}
	return &Service{Store: store, Activity: activity, Secret: secret, TTL: ttl, Now: time.Now, log: log.Named("auth.service")}
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Identity  `json:"user"`
}

type Identity struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	user, err := s.Store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return LoginResult{}, ErrInvalidCredentials
		}
		return LoginResult{}, fmt.Errorf("find user: %w", err)
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionID, err := GenerateSecret(32)
	if err != nil {
		return LoginResult{}, fmt.Errorf("generate session: %w", err)
	}
	expires := s.Now().Add(s.TTL)
	if err := s.Store.CreateSession(ctx, user.ID, HashToken(sessionID), expires); err != nil {
		return LoginResult{}, fmt.Errorf("create session: %w", err)
	}

	token, err := GenerateToken(s.Secret, Claims{UserID: user.ID, Name: user.Name, Role: user.Role, SessionID: sessionID}, s.TTL)
	if err != nil {
		return LoginResult{}, fmt.Errorf("sign token: %w", err)
	}

	if err := s.Store.UpdateLastLogin(ctx, user.ID); err != nil {
		s.log.Warn("update last_login failed", zap.Int64("user_id", user.ID), zap.Error(err))
	}
	s.record(ctx, user.ID, "Login", "User login successful")

	return LoginResult{
		Token:     token,
		ExpiresAt: expires,
		User:      Identity{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	}, nil
}

func (s *Service) Logout(ctx context.Context, actor Actor) error {
	if actor.SessionID != "" {
		if err := s.Store.RevokeSession(ctx, actor.UserID, HashToken(actor.SessionID)); err != nil {
			return fmt.Errorf("revoke session: %w", err)
		}
	}
	s.record(ctx, actor.UserID, "Logout", "User logout")
	return nil
}

// SessionActive implements the middleware session check.
func (s *Service) SessionActive(ctx context.Context, userID int64, sessionID string) (bool, error) {
	if sessionID == "" {
		return false, nil
	}
	return s.Store.SessionValid(ctx, userID, HashToken(sessionID))
}

func (s *Service) record(ctx context.Context, userID int64, action, description string) {
	if s.Activity == nil {
		return
	}
	if err := s.Activity.Record(ctx, userID, action, description); err != nil {
		s.log.Warn("activity record failed", zap.String("action", action), zap.Error(err))
	}
}
