package ports

import (
	"context"

	"github.com/mcms/admin-panel/internal/core/domain"
)

// RegisterInput carries the self-service registration fields. The role is not
// part of the input: every new account starts as RoleNormal and active.
type RegisterInput struct {
	Username string
	Email    string
	Password string
}

// AuthService implements registration and login.
type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, username, password, ip string) (string, *domain.User, error)
}
