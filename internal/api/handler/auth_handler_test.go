package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mcms/admin-panel/internal/api/middleware"
	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

type stubAuthService struct {
	registerFn func(ctx context.Context, in ports.RegisterInput) (*domain.User, error)
	loginFn    func(ctx context.Context, username, password, ip string) (string, *domain.User, error)
}

func (s *stubAuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	return s.registerFn(ctx, in)
}

func (s *stubAuthService) Login(ctx context.Context, username, password, ip string) (string, *domain.User, error) {
	return s.loginFn(ctx, username, password, ip)
}

type stubUserService struct {
	profileFn        func(ctx context.Context, actor domain.AuthIdentity) (*domain.User, error)
	updateProfileFn  func(ctx context.Context, actor domain.AuthIdentity, targetID string, patch ports.ProfilePatch) (*domain.User, error)
	changePasswordFn func(ctx context.Context, actor domain.AuthIdentity, currentPassword, newPassword string) error
	listUsersFn      func(ctx context.Context, actor domain.AuthIdentity) ([]domain.User, error)
	setPasswordFn    func(ctx context.Context, actor domain.AuthIdentity, targetID, newPassword string) error
	setActiveFn      func(ctx context.Context, actor domain.AuthIdentity, targetID string, active bool) (*domain.User, error)
}

func (s *stubUserService) Profile(ctx context.Context, actor domain.AuthIdentity) (*domain.User, error) {
	return s.profileFn(ctx, actor)
}

func (s *stubUserService) UpdateProfile(ctx context.Context, actor domain.AuthIdentity, targetID string, patch ports.ProfilePatch) (*domain.User, error) {
	return s.updateProfileFn(ctx, actor, targetID, patch)
}

func (s *stubUserService) ChangePassword(ctx context.Context, actor domain.AuthIdentity, currentPassword, newPassword string) error {
	return s.changePasswordFn(ctx, actor, currentPassword, newPassword)
}

func (s *stubUserService) ListUsers(ctx context.Context, actor domain.AuthIdentity) ([]domain.User, error) {
	return s.listUsersFn(ctx, actor)
}

func (s *stubUserService) SetPassword(ctx context.Context, actor domain.AuthIdentity, targetID, newPassword string) error {
	return s.setPasswordFn(ctx, actor, targetID, newPassword)
}

func (s *stubUserService) SetActive(ctx context.Context, actor domain.AuthIdentity, targetID string, active bool) (*domain.User, error) {
	return s.setActiveFn(ctx, actor, targetID, active)
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = NewValidator()
	return e
}

func jsonRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func TestAuthHandler_Register_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, in ports.RegisterInput) (*domain.User, error) {
			if in.Username != "alice" || in.Email != "alice@example.com" {
				t.Fatalf("unexpected input: %+v", in)
			}
			return &domain.User{ID: "u1", Username: in.Username, Role: domain.RoleNormal, IsActive: true}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := jsonRequest(http.MethodPost, "/auth/register", `{"username":"alice","email":"alice@example.com","password":"secret1"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["message"] == "" {
		t.Fatalf("expected message in response")
	}
}

func TestAuthHandler_Register_Validation(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	cases := []struct {
		name string
		body string
	}{
		{"short username", `{"username":"ab","email":"a@example.com","password":"secret1"}`},
		{"bad email", `{"username":"alice","email":"not-an-email","password":"secret1"}`},
		{"short password", `{"username":"alice","email":"a@example.com","password":"123"}`},
		{"bad username chars", `{"username":"al ice!","email":"a@example.com","password":"secret1"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := jsonRequest(http.MethodPost, "/auth/register", tc.body)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			err := handler.Register(c)
			if err == nil {
				t.Fatalf("expected validation error")
			}
			httpErr, ok := err.(*echo.HTTPError)
			if !ok || httpErr.Code != http.StatusBadRequest {
				t.Fatalf("expected 400 HTTPError, got %v", err)
			}
		})
	}
}

func TestAuthHandler_Register_Duplicate(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		registerFn: func(_ context.Context, _ ports.RegisterInput) (*domain.User, error) {
			return nil, domain.ErrUserExists
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := jsonRequest(http.MethodPost, "/auth/register", `{"username":"alice","email":"a@example.com","password":"secret1"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Register(c); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists to bubble up, got %v", err)
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, username, password, _ string) (string, *domain.User, error) {
			if username != "alice" || password != "secret1" {
				t.Fatalf("unexpected credentials: %s %s", username, password)
			}
			return "tok123", &domain.User{ID: "u1", Username: "alice"}, nil
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"secret1"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp["token"] != "tok123" {
		t.Fatalf("expected token in response, got %v", resp["token"])
	}
	user, ok := resp["user"].(map[string]any)
	if !ok || user["username"] != "alice" {
		t.Fatalf("expected user in response, got %v", resp["user"])
	}
}

func TestAuthHandler_Login_MissingFields(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	req := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Login(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestAuthHandler_Login_InvalidCredentials(t *testing.T) {
	e := newTestEcho()
	stub := &stubAuthService{
		loginFn: func(_ context.Context, _, _, _ string) (string, *domain.User, error) {
			return "", nil, domain.ErrInvalidCredentials
		},
	}
	handler := NewAuthHandler(stub, &stubUserService{})

	req := jsonRequest(http.MethodPost, "/auth/login", `{"username":"alice","password":"wrong"}`)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	if err := handler.Login(c); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials to bubble up, got %v", err)
	}
}

func TestAuthHandler_Profile(t *testing.T) {
	e := newTestEcho()
	stub := &stubUserService{
		profileFn: func(_ context.Context, actor domain.AuthIdentity) (*domain.User, error) {
			if actor.UserID != "u1" {
				t.Fatalf("unexpected actor: %+v", actor)
			}
			return &domain.User{ID: "u1", Username: "alice"}, nil
		},
	}
	handler := NewAuthHandler(&stubAuthService{}, stub)

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set(middleware.CtxIdentity, domain.AuthIdentity{UserID: "u1", Role: domain.RoleNormal, IsActive: true})

	if err := handler.Profile(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthHandler_Profile_MissingIdentity(t *testing.T) {
	e := newTestEcho()
	handler := NewAuthHandler(&stubAuthService{}, &stubUserService{})

	req := httptest.NewRequest(http.MethodGet, "/auth/profile", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	err := handler.Profile(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 HTTPError, got %v", err)
	}
}
