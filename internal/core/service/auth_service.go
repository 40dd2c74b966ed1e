package service

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

// LoginThrottle abstracts the failed-login rate limiter (Redis).
type LoginThrottle interface {
	// Allow reports whether another attempt is permitted for this username/ip pair.
	Allow(ctx context.Context, username, ip string) (bool, error)
	// RecordFailure counts a failed attempt against the pair.
	RecordFailure(ctx context.Context, username, ip string) error
	// Reset clears the counter after a successful login.
	Reset(ctx context.Context, username, ip string) error
}

// AuthService implements registration and login, and issues session tokens.
type AuthService struct {
	repo      ports.UserRepository
	throttle  LoginThrottle
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(repo ports.UserRepository, throttle LoginThrottle, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = time.Hour
	}
	return &AuthService{repo: repo, throttle: throttle, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Register creates a new account. Every account starts with RoleNormal and
// active; role assignment is an admin operation, never part of registration.
func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	if in.Username == "" || in.Password == "" || in.Email == "" {
		return nil, domain.ErrValidation
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &domain.User{
		Username:     in.Username,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         domain.RoleNormal,
		IsActive:     true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("user_id", created.ID).
		Str("username", created.Username).
		Str("role", string(created.Role)).
		Msg("user registered")

	return created, nil
}

// Login verifies credentials and the active flag, then issues a session token.
// The inactive check runs before the password compare so a deactivated account
// cannot be probed for password validity.
func (s *AuthService) Login(ctx context.Context, username, password, ip string) (string, *domain.User, error) {
	if username == "" || password == "" {
		return "", nil, domain.ErrValidation
	}

	if s.throttle != nil {
		allowed, err := s.throttle.Allow(ctx, username, ip)
		if err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle check failed, allowing attempt")
		} else if !allowed {
			s.log.Warn().Str("username", username).Str("ip", ip).Msg("login throttled")
			return "", nil, domain.ErrInvalidCredentials
		}
	}

	user, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		if err == domain.ErrUserNotFound {
			s.recordFailure(ctx, username, ip)
			return "", nil, domain.ErrInvalidCredentials
		}
		return "", nil, err
	}

	if !user.IsActive {
		s.log.Warn().Str("user_id", user.ID).Str("username", username).Msg("login rejected: account inactive")
		return "", nil, domain.ErrAccountInactive
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		s.log.Warn().Str("user_id", user.ID).Str("username", username).Msg("login rejected: wrong password")
		s.recordFailure(ctx, username, ip)
		return "", nil, domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(user)
	if err != nil {
		return "", nil, fmt.Errorf("issue token: %w", err)
	}

	if s.throttle != nil {
		if err := s.throttle.Reset(ctx, username, ip); err != nil {
			s.log.Warn().Err(err).Str("username", username).Msg("login throttle reset failed")
		}
	}

	s.log.Info().
		Str("user_id", user.ID).
		Str("username", user.Username).
		Str("role", string(user.Role)).
		Bool("is_active", user.IsActive).
		Msg("login successful")

	return token, user, nil
}

// issueToken mints the session token. Role and isActive are embedded as claims
// so the access gate needs no database round trip; they are a snapshot valid
// for at most tokenTTL.
func (s *AuthService) issueToken(user *domain.User) (string, error) {
	claims := jwt.MapClaims{
		"id":       user.ID,
		"role":     string(user.Role),
		"isActive": user.IsActive,
		"exp":      time.Now().Add(s.tokenTTL).Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) recordFailure(ctx context.Context, username, ip string) {
	if s.throttle == nil {
		return
	}
	if err := s.throttle.RecordFailure(ctx, username, ip); err != nil {
		s.log.Warn().Err(err).Str("username", username).Msg("login throttle record failed")
	}
}
