package ports

import (
	"context"

	"github.com/mcms/admin-panel/internal/core/domain"
)

// UserService covers profile self-service and admin user management.
// Every method takes the acting identity so authorization decisions stay
// inside the service rather than scattered across handlers.
type UserService interface {
	Profile(ctx context.Context, actor domain.AuthIdentity) (*domain.User, error)
	UpdateProfile(ctx context.Context, actor domain.AuthIdentity, targetID string, patch ProfilePatch) (*domain.User, error)
	ChangePassword(ctx context.Context, actor domain.AuthIdentity, currentPassword, newPassword string) error

	ListUsers(ctx context.Context, actor domain.AuthIdentity) ([]domain.User, error)
	SetPassword(ctx context.Context, actor domain.AuthIdentity, targetID, newPassword string) error
	SetActive(ctx context.Context, actor domain.AuthIdentity, targetID string, active bool) (*domain.User, error)
}
