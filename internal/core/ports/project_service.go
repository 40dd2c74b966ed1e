package ports

import (
	"context"

	"github.com/mcms/admin-panel/internal/core/domain"
)

// CreateProjectInput carries the fields for a new project. The creator is
// seeded as the sole projectadmin member in the same document write.
type CreateProjectInput struct {
	Name        string
	Description string
}

// SubProjectInput carries the fields for a new sub-project.
type SubProjectInput struct {
	Name        string
	Description string
}

// ProjectService covers project CRUD and membership-scoped authorization.
// Mutations require the actor to hold the projectadmin role within the project;
// the authorization check always runs before any invariant check so existence
// of nested resources is never leaked to unauthorized callers.
type ProjectService interface {
	Create(ctx context.Context, actor domain.AuthIdentity, in CreateProjectInput) (*domain.Project, error)
	ListForUser(ctx context.Context, actor domain.AuthIdentity) ([]domain.Project, error)
	Get(ctx context.Context, actor domain.AuthIdentity, projectID string) (*domain.Project, error)
	UpdateMeta(ctx context.Context, actor domain.AuthIdentity, projectID string, patch ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, actor domain.AuthIdentity, projectID string) error

	Invite(ctx context.Context, actor domain.AuthIdentity, projectID, username string, role domain.ProjectRole) (*domain.Project, error)
	UpdateMemberRole(ctx context.Context, actor domain.AuthIdentity, projectID, memberID string, role domain.ProjectRole) (*domain.Project, error)
	RemoveMember(ctx context.Context, actor domain.AuthIdentity, projectID, memberID string) (*domain.Project, error)

	AddSubProject(ctx context.Context, actor domain.AuthIdentity, projectID string, in SubProjectInput) (*domain.Project, error)
	UpdateSubProject(ctx context.Context, actor domain.AuthIdentity, projectID, subID string, patch SubProjectPatch) (*domain.Project, error)
}
