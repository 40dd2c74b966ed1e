package ports

import (
	"context"

	"github.com/mcms/admin-panel/internal/core/domain"
)

// ProjectPatch carries the mutable project metadata fields. Empty strings mean
// "leave unchanged"; IsActive is a tri-state pointer for the same reason.
type ProjectPatch struct {
	Name        string
	Description string
	IsActive    *bool
}

// SubProjectPatch carries mutable sub-project fields, same conventions as ProjectPatch.
type SubProjectPatch struct {
	Name        string
	Description string
	IsActive    *bool
}

// ProjectRepository defines persistence for projects and their memberships.
// All mutations are single-document atomic updates.
type ProjectRepository interface {
	Create(ctx context.Context, project *domain.Project) (*domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	FindByMember(ctx context.Context, userID string) ([]domain.Project, error)
	UpdateMeta(ctx context.Context, id string, patch ProjectPatch) (*domain.Project, error)
	Delete(ctx context.Context, id string) error

	// AddMember appends a member atomically, failing with ErrAlreadyMember when
	// the user already appears in the members list.
	AddMember(ctx context.Context, projectID string, member domain.Member) (*domain.Project, error)
	UpdateMemberRole(ctx context.Context, projectID, userID string, role domain.ProjectRole) (*domain.Project, error)
	RemoveMember(ctx context.Context, projectID, userID string) (*domain.Project, error)

	AddSubProject(ctx context.Context, projectID string, sub domain.SubProject) (*domain.Project, error)
	UpdateSubProject(ctx context.Context, projectID, subID string, patch SubProjectPatch) (*domain.Project, error)
}
