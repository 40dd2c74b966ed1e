package service

import (
	"context"
	"fmt"
	"regexp"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

const minPasswordLength = 6

var whatsappPattern = regexp.MustCompile(`^\+\d{10,15}$`)

// UserService implements profile self-service and admin user management.
type UserService struct {
	repo  ports.UserRepository
	audit ports.AuditSink
	log   zerolog.Logger
}

func NewUserService(repo ports.UserRepository, audit ports.AuditSink, log zerolog.Logger) *UserService {
	return &UserService{repo: repo, audit: audit, log: log}
}

// Profile returns the acting user's own record.
func (s *UserService) Profile(ctx context.Context, actor domain.AuthIdentity) (*domain.User, error) {
	return s.repo.FindByID(ctx, actor.UserID)
}

// UpdateProfile applies a profile patch. Non-admin actors may only update
// themselves. The patch type carries no role or active field, so a profile
// update can never escalate privileges regardless of what the caller sent.
func (s *UserService) UpdateProfile(ctx context.Context, actor domain.AuthIdentity, targetID string, patch ports.ProfilePatch) (*domain.User, error) {
	if targetID != actor.UserID && !actor.IsAdmin() {
		s.log.Warn().
			Str("actor_id", actor.UserID).
			Str("target_id", targetID).
			Msg("profile update denied: not owner or admin")
		return nil, domain.ErrForbidden
	}

	if patch.WhatsappNumber != "" && !whatsappPattern.MatchString(patch.WhatsappNumber) {
		return nil, fmt.Errorf("%w: whatsapp number must match +<10-15 digits>", domain.ErrValidation)
	}

	updated, err := s.repo.UpdateProfile(ctx, targetID, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("actor_id", actor.UserID).
		Str("user_id", updated.ID).
		Str("username", updated.Username).
		Msg("user profile updated")

	return updated, nil
}

// ChangePassword replaces the actor's own password after re-verifying the
// current one. A wrong current password leaves the stored hash untouched and
// is an InvalidCredentials failure, not an authorization failure.
func (s *UserService) ChangePassword(ctx context.Context, actor domain.AuthIdentity, currentPassword, newPassword string) error {
	if currentPassword == "" || newPassword == "" {
		return fmt.Errorf("%w: current and new password are required", domain.ErrValidation)
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	user, err := s.repo.FindByID(ctx, actor.UserID)
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)) != nil {
		s.log.Warn().Str("user_id", actor.UserID).Msg("password change rejected: wrong current password")
		return domain.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.SetPasswordHash(ctx, actor.UserID, string(hash)); err != nil {
		return err
	}

	s.log.Info().Str("user_id", actor.UserID).Msg("password changed")
	return nil
}

// ListUsers returns all accounts. Admin only.
func (s *UserService) ListUsers(ctx context.Context, actor domain.AuthIdentity) ([]domain.User, error) {
	if !actor.IsAdmin() {
		s.denied(actor, "list_users")
		return nil, domain.ErrForbidden
	}
	return s.repo.FindAll(ctx)
}

// SetPassword resets another user's password. Admin only.
func (s *UserService) SetPassword(ctx context.Context, actor domain.AuthIdentity, targetID, newPassword string) error {
	if !actor.IsAdmin() {
		s.denied(actor, "set_password")
		return domain.ErrForbidden
	}
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", domain.ErrValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.repo.SetPasswordHash(ctx, targetID, string(hash)); err != nil {
		return err
	}

	s.log.Info().
		Str("actor_id", actor.UserID).
		Str("user_id", targetID).
		Msg("password reset by admin")
	return nil
}

// SetActive toggles another user's active flag. Admin only. Already-issued
// tokens keep their isActive snapshot until they expire.
func (s *UserService) SetActive(ctx context.Context, actor domain.AuthIdentity, targetID string, active bool) (*domain.User, error) {
	if !actor.IsAdmin() {
		s.denied(actor, "set_active")
		return nil, domain.ErrForbidden
	}

	updated, err := s.repo.SetActive(ctx, targetID, active)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("actor_id", actor.UserID).
		Str("user_id", targetID).
		Bool("is_active", active).
		Msg("user activation status updated")

	return updated, nil
}

func (s *UserService) denied(actor domain.AuthIdentity, action string) {
	s.log.Warn().
		Str("actor_id", actor.UserID).
		Str("role", string(actor.Role)).
		Str("action", action).
		Msg("admin operation denied")
	if s.audit != nil {
		s.audit.Record(domain.AuditEvent{
			ActorID: actor.UserID,
			Outcome: domain.AuditDenied,
			Path:    action,
		})
	}
}
