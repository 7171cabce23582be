package auth

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/promptloom/backend/internal/models"
)

type mockUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newMockUserStore() *mockUserStore {
	return &mockUserStore{users: make(map[string]*models.User)}
}

func (m *mockUserStore) Create(_ context.Context, u *models.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.users[u.Email]; exists {
		return &pgconn.PgError{Code: "23505"}
	}
	cp := *u
	m.users[u.Email] = &cp
	return nil
}

func (m *mockUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[email]
	if !ok {
		return nil, errors.New("no rows in result set")
	}
	cp := *u
	return &cp, nil
}

func TestRegisterLoginValidate_RoundTrip(t *testing.T) {
	svc := NewService(newMockUserStore(), "test-jwt-secret")
	ctx := context.Background()

	u, err := svc.Register(ctx, "dev@example.com", "hunter22", "")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if u.DisplayName != "dev" {
		t.Errorf("display name fallback: got %q, want %q", u.DisplayName, "dev")
	}

	token, err := svc.Login(ctx, "dev@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	gotID, err := svc.ValidateToken(ctx, token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if gotID != u.ID {
		t.Errorf("token subject: got %s, want %s", gotID, u.ID)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := NewService(newMockUserStore(), "test-jwt-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dev@example.com", "hunter22", "dev"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Register(ctx, "dev@example.com", "other", "dev2"); !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
}

func TestLogin_BadPassword(t *testing.T) {
	svc := NewService(newMockUserStore(), "test-jwt-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dev@example.com", "hunter22", "dev"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.Login(ctx, "dev@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Login(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestValidateToken_Forged(t *testing.T) {
	svc := NewService(newMockUserStore(), "test-jwt-secret")
	other := NewService(newMockUserStore(), "a-different-secret")
	ctx := context.Background()

	if _, err := svc.Register(ctx, "dev@example.com", "hunter22", "dev"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	token, err := svc.Login(ctx, "dev@example.com", "hunter22")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if id, err := other.ValidateToken(ctx, token); err == nil {
		t.Fatalf("token signed with another secret validated as %s", id)
	}
}
