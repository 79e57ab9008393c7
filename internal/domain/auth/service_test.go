package auth

import (
	"context"
	"errors"
	"testing"
	"time"
)

type memoryStore struct {
	users    map[string]AuthUser
	sessions map[string]string
	revoked  map[string]bool
	logins   int
}

func newMemoryStore(t *testing.T, email, password string) *memoryStore {
	t.Helper()
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("hash error: %v", err)
	}
	return &memoryStore{
		users:    map[string]AuthUser{email: {ID: "u1", TenantID: "t1", RoleID: "r1", RoleName: RoleHR, Password: hash}},
		sessions: map[string]string{},
		revoked:  map[string]bool{},
	}
}

func (s *memoryStore) FindActiveUserByEmail(_ context.Context, email string) (AuthUser, error) {
	user, ok := s.users[email]
	if !ok {
		return AuthUser{}, errors.New("no rows")
	}
	return user, nil
}

func (s *memoryStore) UpdateLastLogin(context.Context, string) error {
	s.logins++
	return nil
}

func (s *memoryStore) CreateSession(_ context.Context, userID, tokenHash string, _ time.Time) error {
	s.sessions[tokenHash] = userID
	return nil
}

func (s *memoryStore) SessionValid(_ context.Context, userID, tokenHash string) (bool, error) {
	return s.sessions[tokenHash] == userID && !s.revoked[tokenHash], nil
}

func (s *memoryStore) RotateSession(_ context.Context, userID, oldHash, newHash string, _ time.Time) error {
	delete(s.sessions, oldHash)
	s.sessions[newHash] = userID
	return nil
}

func (s *memoryStore) RevokeSession(_ context.Context, _ string, tokenHash string) error {
	s.revoked[tokenHash] = true
	return nil
}

func (s *memoryStore) HasPermission(_ context.Context, _ string, permission string) (bool, error) {
	return HasDefault(RoleHR, permission), nil
}

func TestLoginIssuesSessionToken(t *testing.T) {
	store := newMemoryStore(t, "hr@example.com", "pass-123")
	svc := NewService(store, "secret")

	res, err := svc.Login(context.Background(), " HR@example.com ", "pass-123")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	claims, err := ParseToken("secret", res.Token)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if claims.TenantID != "t1" || claims.SessionID == "" {
		t.Fatalf("unexpected claims %+v", claims)
	}
	if _, ok := store.sessions[HashToken(claims.SessionID)]; !ok {
		t.Fatal("expected session to be stored hashed")
	}
	if store.logins != 1 {
		t.Fatalf("expected last login update, got %d", store.logins)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	store := newMemoryStore(t, "hr@example.com", "pass-123")
	svc := NewService(store, "secret")

	for _, tc := range []struct{ email, password string }{
		{"hr@example.com", "wrong"},
		{"nobody@example.com", "pass-123"},
		{"", ""},
	} {
		if _, err := svc.Login(context.Background(), tc.email, tc.password); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("%s: expected invalid credentials, got %v", tc.email, err)
		}
	}
}

func TestRefreshRotatesAndLogoutRevokes(t *testing.T) {
	store := newMemoryStore(t, "hr@example.com", "pass-123")
	svc := NewService(store, "secret")

	first, err := svc.Login(context.Background(), "hr@example.com", "pass-123")
	if err != nil {
		t.Fatalf("login error: %v", err)
	}
	second, err := svc.Refresh(context.Background(), first.Token)
	if err != nil {
		t.Fatalf("refresh error: %v", err)
	}
	if second.User.SessionID == first.User.SessionID {
		t.Fatal("expected rotated session id")
	}
	if _, err := svc.Refresh(context.Background(), first.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected old token to be dead, got %v", err)
	}

	if err := svc.Logout(context.Background(), second.User); err != nil {
		t.Fatalf("logout error: %v", err)
	}
	if _, err := svc.Refresh(context.Background(), second.Token); !errors.Is(err, ErrSessionExpired) {
		t.Fatalf("expected revoked session, got %v", err)
	}
}
