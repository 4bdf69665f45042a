package auth

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/pagecraft/api/internal/apperr"
	"github.com/pagecraft/api/internal/domain"
	"github.com/pagecraft/api/internal/repository"
	"github.com/pagecraft/api/pkg/config"
)

type stubUserRepository struct {
	byID    map[string]domain.User
	byEmail map[string]string
}

func newStubUserRepository() *stubUserRepository {
	return &stubUserRepository{byID: map[string]domain.User{}, byEmail: map[string]string{}}
}

func (s *stubUserRepository) CreateUser(ctx context.Context, user *domain.User) error {
	if _, taken := s.byEmail[user.Email]; taken {
		return repository.ErrDuplicate
	}
	s.byID[user.ID] = *user
	s.byEmail[user.Email] = user.ID
	return nil
}

func (s *stubUserRepository) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	id, ok := s.byEmail[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	user := s.byID[id]
	return &user, nil
}

func (s *stubUserRepository) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := s.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &user, nil
}

func (s *stubUserRepository) UpdateUser(ctx context.Context, user *domain.User) error {
	current, ok := s.byID[user.ID]
	if !ok {
		return repository.ErrNotFound
	}
	if user.Email != current.Email {
		if _, taken := s.byEmail[user.Email]; taken {
			return repository.ErrDuplicate
		}
		delete(s.byEmail, current.Email)
		s.byEmail[user.Email] = user.ID
	}
	s.byID[user.ID] = *user
	return nil
}

func (s *stubUserRepository) SetBillingCustomerID(ctx context.Context, userID, customerID string) error {
	user := s.byID[userID]
	user.BillingCustomerID = customerID
	s.byID[userID] = user
	return nil
}

func newTestService(repo *stubUserRepository) Service {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := config.Config{
		JWTSecret:       "test-secret",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 720 * time.Hour,
	}
	return Service{users: repo, logger: log, cfg: cfg}
}

const strongPassword = "Sup3r-Secret"

func TestRegisterAndLogin(t *testing.T) {
	repo := newStubUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, "alice", "Alice@Example.com", strongPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Fatalf("expected lowercased email, got %q", user.Email)
	}
	if user.Coins != 0 {
		t.Fatalf("new accounts must start with zero coins, got %d", user.Coins)
	}
	if tokens.AccessToken == "" || tokens.RefreshToken == "" {
		t.Fatal("expected tokens to be issued")
	}

	logged, _, err := svc.Login(ctx, "alice@example.com", strongPassword)
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}
	if logged.ID != user.ID {
		t.Fatalf("login returned wrong user: %q", logged.ID)
	}
}

func TestRegisterRejectsWeakPasswords(t *testing.T) {
	svc := newTestService(newStubUserRepository())
	ctx := context.Background()

	for _, password := range []string{"short1!", "alllowercase1!", "ALLUPPERCASE1!", "NoDigits!!", "NoSymbols11"} {
		if _, _, err := svc.Register(ctx, "bob", "bob@example.com", password); apperr.KindOf(err) != apperr.KindValidation {
			t.Fatalf("password %q: expected validation error, got %v", password, err)
		}
	}
}

func TestRegisterRejectsInvalidEmail(t *testing.T) {
	svc := newTestService(newStubUserRepository())

	if _, _, err := svc.Register(context.Background(), "bob", "not-an-email", strongPassword); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestRegisterDuplicateEmailIsConflict(t *testing.T) {
	repo := newStubUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice", "alice@example.com", strongPassword); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}
	if _, _, err := svc.Register(ctx, "alice2", "alice@example.com", strongPassword); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict error, got %v", err)
	}
}

func TestLoginBadCredentials(t *testing.T) {
	repo := newStubUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	if _, _, err := svc.Register(ctx, "alice", "alice@example.com", strongPassword); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, _, err := svc.Login(ctx, "alice@example.com", "WrongPass1!"); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, _, err := svc.Login(ctx, "ghost@example.com", strongPassword); err != ErrInvalidCredentials {
		t.Fatalf("expected ErrInvalidCredentials for unknown email, got %v", err)
	}
}

func TestAuthorizeRoundTrip(t *testing.T) {
	repo := newStubUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	user, tokens, err := svc.Register(ctx, "alice", "alice@example.com", strongPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	got, claims, err := svc.Authorize(ctx, tokens.AccessToken)
	if err != nil {
		t.Fatalf("Authorize returned error: %v", err)
	}
	if got.ID != user.ID || claims.UserID != user.ID {
		t.Fatalf("Authorize resolved wrong user: %q / %q", got.ID, claims.UserID)
	}

	if _, _, err := svc.Authorize(ctx, "not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestUpdateProfile(t *testing.T) {
	repo := newStubUserRepository()
	svc := newTestService(repo)
	ctx := context.Background()

	user, _, err := svc.Register(ctx, "alice", "alice@example.com", strongPassword)
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if _, _, err := svc.Register(ctx, "bob", "bob@example.com", strongPassword); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	updated, err := svc.Update(ctx, user.ID, UpdateInput{Username: "alice-2", Email: "alice2@example.com"})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.Username != "alice-2" || updated.Email != "alice2@example.com" {
		t.Fatalf("unexpected profile after update: %+v", updated)
	}

	if _, err := svc.Update(ctx, user.ID, UpdateInput{Email: "bob@example.com"}); apperr.KindOf(err) != apperr.KindConflict {
		t.Fatalf("expected conflict taking another user's email, got %v", err)
	}
	if _, err := svc.Update(ctx, user.ID, UpdateInput{Password: "weak"}); apperr.KindOf(err) != apperr.KindValidation {
		t.Fatalf("expected validation error for weak password, got %v", err)
	}
}
