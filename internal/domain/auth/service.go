package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
)

const SessionTTL = 8 * time.Hour

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired")
)

type StoreAPI interface {
	FindActiveUserByEmail(ctx context.Context, email string) (AuthUser, error)
	UpdateLastLogin(ctx context.Context, userID string) error
	CreateSession(ctx context.Context, userID, tokenHash string, expires time.Time) error
	SessionValid(ctx context.Context, userID, tokenHash string) (bool, error)
	RotateSession(ctx context.Context, userID, oldHash, newHash string, expires time.Time) error
	RevokeSession(ctx context.Context, userID, tokenHash string) error
	HasPermission(ctx context.Context, roleID, permission string) (bool, error)
}

type Service struct {
	store  StoreAPI
	secret string
	ttl    time.Duration
}

func NewService(store StoreAPI, secret string) *Service {
	return &Service{store: store, secret: secret, ttl: SessionTTL}
}

type LoginResult struct {
	Token string      `json:"token"`
	User  UserContext `json:"-"`
}

// Login checks the password and opens a server-side session bound to the token.
func (s *Service) Login(ctx context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}
	user, err := s.store.FindActiveUserByEmail(ctx, email)
	if err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := CheckPassword(user.Password, password); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	sessionID, err := newSessionID()
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.store.CreateSession(ctx, user.ID, HashToken(sessionID), time.Now().Add(s.ttl)); err != nil {
		return LoginResult{}, err
	}
	uc := UserContext{UserID: user.ID, TenantID: user.TenantID, RoleID: user.RoleID, RoleName: user.RoleName, SessionID: sessionID}
	token, err := s.issue(uc)
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.store.UpdateLastLogin(ctx, user.ID); err != nil {
		slog.Warn("update last_login failed", "userId", user.ID, "err", err)
	}
	return LoginResult{Token: token, User: uc}, nil
}

// Refresh rotates the session behind a still-valid token and issues a new one.
func (s *Service) Refresh(ctx context.Context, token string) (LoginResult, error) {
	claims, err := ParseToken(s.secret, token)
	if err != nil || claims.SessionID == "" {
		return LoginResult{}, ErrSessionExpired
	}
	ok, err := s.store.SessionValid(ctx, claims.UserID, HashToken(claims.SessionID))
	if err != nil {
		return LoginResult{}, err
	}
	if !ok {
		return LoginResult{}, ErrSessionExpired
	}
	sessionID, err := newSessionID()
	if err != nil {
		return LoginResult{}, err
	}
	if err := s.store.RotateSession(ctx, claims.UserID, HashToken(claims.SessionID), HashToken(sessionID), time.Now().Add(s.ttl)); err != nil {
		return LoginResult{}, err
	}
	uc := UserContext{UserID: claims.UserID, TenantID: claims.TenantID, RoleID: claims.RoleID, RoleName: claims.RoleName, SessionID: sessionID}
	next, err := s.issue(uc)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: next, User: uc}, nil
}

func (s *Service) Logout(ctx context.Context, user UserContext) error {
	if user.SessionID == "" {
		return nil
	}
	return s.store.RevokeSession(ctx, user.UserID, HashToken(user.SessionID))
}

func (s *Service) HasPermission(ctx context.Context, roleID, permission string) (bool, error) {
	return s.store.HasPermission(ctx, roleID, permission)
}

func (s *Service) issue(uc UserContext) (string, error) {
	return GenerateToken(s.secret, Claims{
		UserID:    uc.UserID,
		TenantID:  uc.TenantID,
		RoleID:    uc.RoleID,
		RoleName:  uc.RoleName,
		SessionID: uc.SessionID,
	}, s.ttl)
}
