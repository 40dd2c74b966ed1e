package service

import (
	"context"
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

type stubUserRepo struct {
	users  map[string]*domain.User
	nextID int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == user.Username || u.Email == user.Email {
			return nil, domain.ErrUserExists
		}
	}
	copy := cloneUser(user)
	r.nextID++
	copy.ID = "user_" + strconv.Itoa(r.nextID)
	r.users[copy.ID] = cloneUser(copy)
	return copy, nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) FindByUsername(_ context.Context, username string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindAll(_ context.Context) ([]domain.User, error) {
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, *u)
	}
	return out, nil
}

func (r *stubUserRepo) UpdateProfile(_ context.Context, id string, patch ports.ProfilePatch) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if patch.Username != "" {
		u.Username = patch.Username
	}
	if patch.Email != "" {
		u.Email = patch.Email
	}
	if patch.TelegramUsername != "" {
		u.TelegramUsername = patch.TelegramUsername
	}
	if patch.WhatsappNumber != "" {
		u.WhatsappNumber = patch.WhatsappNumber
	}
	return cloneUser(u), nil
}

func (r *stubUserRepo) SetPasswordHash(_ context.Context, id string, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return domain.ErrUserNotFound
	}
	u.PasswordHash = hash
	return nil
}

func (r *stubUserRepo) SetActive(_ context.Context, id string, active bool) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	u.IsActive = active
	return cloneUser(u), nil
}

type stubThrottle struct {
	allowed  bool
	failures int
	resets   int
}

func (t *stubThrottle) Allow(_ context.Context, _, _ string) (bool, error) {
	return t.allowed, nil
}

func (t *stubThrottle) RecordFailure(_ context.Context, _, _ string) error {
	t.failures++
	return nil
}

func (t *stubThrottle) Reset(_ context.Context, _, _ string) error {
	t.resets++
	return nil
}

func newAuthService(repo ports.UserRepository, throttle LoginThrottle) *AuthService {
	return NewAuthService(repo, throttle, "secret", time.Hour, zerolog.Nop())
}

func TestAuthService_Register_Defaults(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "alice",
		Email:    "alice@example.com",
		Password: "pass123",
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Role != domain.RoleNormal {
		t.Fatalf("expected role %s, got %s", domain.RoleNormal, user.Role)
	}
	if !user.IsActive {
		t.Fatalf("expected new account to be active")
	}
	if user.PasswordHash == "pass123" {
		t.Fatalf("expected password to be hashed")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pass123")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}

func TestAuthService_Register_Validation(t *testing.T) {
	svc := newAuthService(newStubUserRepo(), nil)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{Username: "bob"}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	in := ports.RegisterInput{Username: "bob", Email: "bob@example.com", Password: "pass123"}
	if _, err := svc.Register(context.Background(), in); err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	if _, err := svc.Register(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{allowed: true}
	svc := newAuthService(repo, throttle)

	if _, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "carol", Email: "carol@example.com", Password: "s3cret",
	}); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	token, user, err := svc.Login(context.Background(), "carol", "s3cret", "10.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token, got empty")
	}
	if user == nil || user.Username != "carol" {
		t.Fatalf("unexpected user: %+v", user)
	}
	if throttle.resets != 1 {
		t.Fatalf("expected throttle reset after success, got %d", throttle.resets)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["id"] != user.ID {
		t.Fatalf("expected id claim %s, got %v", user.ID, claims["id"])
	}
	if claims["role"] != string(domain.RoleNormal) {
		t.Fatalf("expected role claim %s, got %v", domain.RoleNormal, claims["role"])
	}
	if claims["isActive"] != true {
		t.Fatalf("expected isActive claim true, got %v", claims["isActive"])
	}
	if _, ok := claims["exp"]; !ok {
		t.Fatalf("expected exp claim")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{allowed: true}
	svc := newAuthService(repo, throttle)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "dave", Email: "dave@example.com", Password: "goodpass",
	})

	if _, _, err := svc.Login(context.Background(), "dave", "badpass", "10.0.0.1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if throttle.failures != 1 {
		t.Fatalf("expected one recorded failure, got %d", throttle.failures)
	}
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	svc := newAuthService(newStubUserRepo(), nil)

	// Unknown usernames map to the same error as wrong passwords so login
	// cannot be used to enumerate accounts.
	if _, _, err := svc.Login(context.Background(), "ghost", "pass", "10.0.0.1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestAuthService_Login_InactiveAccount(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthService(repo, nil)

	user, err := svc.Register(context.Background(), ports.RegisterInput{
		Username: "erin", Email: "erin@example.com", Password: "s3cret",
	})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if _, err := repo.SetActive(context.Background(), user.ID, false); err != nil {
		t.Fatalf("deactivate failed: %v", err)
	}

	// The inactive check runs before the password compare, so even a wrong
	// password reports the account as inactive rather than bad credentials.
	if _, _, err := svc.Login(context.Background(), "erin", "wrongpass", "10.0.0.1"); !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
	if _, _, err := svc.Login(context.Background(), "erin", "s3cret", "10.0.0.1"); !errors.Is(err, domain.ErrAccountInactive) {
		t.Fatalf("expected ErrAccountInactive, got %v", err)
	}
}

func TestAuthService_Login_Throttled(t *testing.T) {
	repo := newStubUserRepo()
	throttle := &stubThrottle{allowed: false}
	svc := newAuthService(repo, throttle)

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "frank", Email: "frank@example.com", Password: "s3cret",
	})

	if _, _, err := svc.Login(context.Background(), "frank", "s3cret", "10.0.0.1"); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials for throttled login, got %v", err)
	}
}

func TestAuthService_TokenExpiry(t *testing.T) {
	repo := newStubUserRepo()
	svc := NewAuthService(repo, nil, "secret", -time.Minute, zerolog.Nop())
	// Negative TTL falls back to the one hour default.
	if svc.tokenTTL != time.Hour {
		t.Fatalf("expected default TTL of 1h, got %v", svc.tokenTTL)
	}

	_, _ = svc.Register(context.Background(), ports.RegisterInput{
		Username: "gina", Email: "gina@example.com", Password: "s3cret",
	})
	token, _, err := svc.Login(context.Background(), "gina", "s3cret", "10.0.0.1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims := jwt.MapClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	}); err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	exp, ok := claims["exp"].(float64)
	if !ok {
		t.Fatalf("expected numeric exp claim, got %T", claims["exp"])
	}
	remaining := time.Until(time.Unix(int64(exp), 0))
	if remaining < 55*time.Minute || remaining > 65*time.Minute {
		t.Fatalf("expected expiry about one hour out, got %v", remaining)
	}
}
