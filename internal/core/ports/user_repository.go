package ports

import (
	"context"

	"github.com/mcms/admin-panel/internal/core/domain"
)

// ProfilePatch carries the self-service profile fields. Role and active status
// are structurally absent: a profile update can never change authorization data.
type ProfilePatch struct {
	Username         string
	Email            string
	TelegramUsername string
	WhatsappNumber   string
}

// UserRepository defines persistence for user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindAll(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id string, patch ProfilePatch) (*domain.User, error)
	SetPasswordHash(ctx context.Context, id string, hash string) error
	SetActive(ctx context.Context, id string, active bool) (*domain.User, error)
}
