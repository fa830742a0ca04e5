package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Xhuk/Habitat-prime/internal/model"
	"github.com/Xhuk/Habitat-prime/internal/repository"
)

const sessionTTL = 24 * time.Hour

// AuthService issues and resolves session tokens. Every login failure maps
// to the same ErrInvalidCredentials so callers cannot probe which accounts
// exist.
type AuthService interface {
	Login(ctx context.Context, email, password string) (Session, error)
	LoginWithAccessCode(ctx context.Context, code string) (Session, error)
	Logout(ctx context.Context, token string) error
	Resolve(ctx context.Context, token string) (model.User, error)
	UpdateNotificationSettings(ctx context.Context, userID string, s model.NotificationSettings) error
}

type Session struct {
	Token string     `json:"token"`
	User  model.User `json:"user"`
}

type authService struct {
	store    repository.Store
	settings repository.SettingsStore
	logger   *slog.Logger

	// demo credential table; a real deployment replaces this with an IdP
	passwords map[model.Role]string
}

func NewAuthService(store repository.Store, settings repository.SettingsStore, logger *slog.Logger) AuthService {
	return &authService{
		store:    store,
		settings: settings,
		logger:   logger,
		passwords: map[model.Role]string{
			model.RoleAdmin:    "admin",
			model.RoleResident: "password",
		},
	}
}

func (s *authService) Login(ctx context.Context, email, password string) (Session, error) {
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}
	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	expected, ok := s.passwords[u.Role]
	if !ok || password != expected {
		return Session{}, ErrInvalidCredentials
	}
	return s.open(ctx, u)
}

func (s *authService) LoginWithAccessCode(ctx context.Context, code string) (Session, error) {
	if code == "" {
		return Session{}, ErrInvalidCredentials
	}
	g, err := s.store.GetGuardByCode(ctx, code)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	u, err := s.store.GetUser(ctx, g.ID)
	if err != nil {
		return Session{}, ErrInvalidCredentials
	}
	return s.open(ctx, u)
}

func (s *authService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.settings.Delete(ctx, "session:"+token)
}

// Resolve maps a bearer token back to its user. Unknown, expired or
// corrupted sessions all read as unauthorized.
func (s *authService) Resolve(ctx context.Context, token string) (model.User, error) {
	if token == "" {
		return model.User{}, ErrUnauthorized
	}
	data, err := s.settings.Get(ctx, "session:"+token)
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	var userID string
	if err := json.Unmarshal(data, &userID); err != nil {
		return model.User{}, ErrUnauthorized
	}
	u, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return model.User{}, ErrUnauthorized
	}
	return u, nil
}

func (s *authService) UpdateNotificationSettings(ctx context.Context, userID string, ns model.NotificationSettings) error {
	return s.store.UpdateNotificationSettings(ctx, userID, ns)
}

func (s *authService) open(ctx context.Context, u model.User) (Session, error) {
	token := uuid.NewString()
	data, err := json.Marshal(u.ID)
	if err != nil {
		return Session{}, fmt.Errorf("encode session: %w", err)
	}
	if err := s.settings.Set(ctx, "session:"+token, data, sessionTTL); err != nil {
		return Session{}, fmt.Errorf("store session: %w", err)
	}
	s.logger.Info("session opened", "user_id", u.ID, "role", u.Role)
	return Session{Token: token, User: u}, nil
}
