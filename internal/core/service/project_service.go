package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcms/admin-panel/internal/api/metrics"
	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

// ProjectService implements project CRUD gated by membership roles.
//
// Every mutation follows the same pipeline: load project, authorize
// (projectadmin membership), then validate invariants. The ordering is fixed so
// an unauthorized caller learns nothing about a project's contents.
type ProjectService struct {
	projects ports.ProjectRepository
	users    ports.UserRepository
	audit    ports.AuditSink
	log      zerolog.Logger
}

func NewProjectService(projects ports.ProjectRepository, users ports.UserRepository, audit ports.AuditSink, log zerolog.Logger) *ProjectService {
	return &ProjectService{projects: projects, users: users, audit: audit, log: log}
}

// Create inserts a new project with the actor seeded as its sole projectadmin
// member in the same document write, so a project can never exist without an
// admin member.
func (s *ProjectService) Create(ctx context.Context, actor domain.AuthIdentity, in ports.CreateProjectInput) (*domain.Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: project name is required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	project := &domain.Project{
		Name:        in.Name,
		Description: in.Description,
		Creator:     actor.UserID,
		Members:     []domain.Member{{UserID: actor.UserID, Role: domain.ProjectRoleAdmin}},
		SubProjects: []domain.SubProject{},
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	created, err := s.projects.Create(ctx, project)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", created.ID).
		Str("creator_id", actor.UserID).
		Msg("project created")

	return created, nil
}

// ListForUser returns the projects the actor is a member of.
func (s *ProjectService) ListForUser(ctx context.Context, actor domain.AuthIdentity) ([]domain.Project, error) {
	return s.projects.FindByMember(ctx, actor.UserID)
}

// Get returns a single project. Readable by its members and by global admins.
func (s *ProjectService) Get(ctx context.Context, actor domain.AuthIdentity, projectID string) (*domain.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !project.IsMember(actor.UserID) && !actor.IsAdmin() {
		s.denied(actor, projectID, "project_read")
		return nil, domain.ErrNotAMember
	}
	return project, nil
}

// UpdateMeta updates project metadata. Requires projectadmin membership.
func (s *ProjectService) UpdateMeta(ctx context.Context, actor domain.AuthIdentity, projectID string, patch ports.ProjectPatch) (*domain.Project, error) {
	if _, err := s.requireProjectAdmin(ctx, actor, projectID, "project_update"); err != nil {
		return nil, err
	}

	updated, err := s.projects.UpdateMeta(ctx, projectID, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", projectID).
		Str("actor_id", actor.UserID).
		Msg("project updated")

	return updated, nil
}

// Delete removes a project. The role check runs first; only then is the
// sub-project emptiness invariant enforced, so non-admins cannot learn whether
// a project has sub-projects.
func (s *ProjectService) Delete(ctx context.Context, actor domain.AuthIdentity, projectID string) error {
	project, err := s.requireProjectAdmin(ctx, actor, projectID, "project_delete")
	if err != nil {
		return err
	}

	if project.HasSubProjects() {
		return domain.ErrHasSubProjects
	}

	if err := s.projects.Delete(ctx, projectID); err != nil {
		return err
	}

	s.log.Info().
		Str("project_id", projectID).
		Str("actor_id", actor.UserID).
		Msg("project deleted")

	return nil
}

// Invite adds a user to the project by username. Requires projectadmin
// membership; the target must exist and must not already be a member.
func (s *ProjectService) Invite(ctx context.Context, actor domain.AuthIdentity, projectID, username string, role domain.ProjectRole) (*domain.Project, error) {
	if role == "" {
		role = domain.ProjectRoleUser
	}
	if !domain.ValidProjectRole(role) {
		return nil, fmt.Errorf("%w: unknown project role %q", domain.ErrValidation, role)
	}

	if _, err := s.requireProjectAdmin(ctx, actor, projectID, "member_invite"); err != nil {
		return nil, err
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}

	updated, err := s.projects.AddMember(ctx, projectID, domain.Member{UserID: user.ID, Role: role})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", projectID).
		Str("actor_id", actor.UserID).
		Str("user_id", user.ID).
		Str("role", string(role)).
		Msg("user added to project")

	return updated, nil
}

// UpdateMemberRole changes an existing member's project role.
func (s *ProjectService) UpdateMemberRole(ctx context.Context, actor domain.AuthIdentity, projectID, memberID string, role domain.ProjectRole) (*domain.Project, error) {
	if !domain.ValidProjectRole(role) {
		return nil, fmt.Errorf("%w: unknown project role %q", domain.ErrValidation, role)
	}

	project, err := s.requireProjectAdmin(ctx, actor, projectID, "member_role_update")
	if err != nil {
		return nil, err
	}
	if !project.IsMember(memberID) {
		return nil, domain.ErrMemberNotFound
	}

	updated, err := s.projects.UpdateMemberRole(ctx, projectID, memberID, role)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", projectID).
		Str("actor_id", actor.UserID).
		Str("member_id", memberID).
		Str("role", string(role)).
		Msg("member role updated")

	return updated, nil
}

// RemoveMember removes a member from the project.
func (s *ProjectService) RemoveMember(ctx context.Context, actor domain.AuthIdentity, projectID, memberID string) (*domain.Project, error) {
	project, err := s.requireProjectAdmin(ctx, actor, projectID, "member_remove")
	if err != nil {
		return nil, err
	}
	if !project.IsMember(memberID) {
		return nil, domain.ErrMemberNotFound
	}

	updated, err := s.projects.RemoveMember(ctx, projectID, memberID)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", projectID).
		Str("actor_id", actor.UserID).
		Str("member_id", memberID).
		Msg("member removed from project")

	return updated, nil
}

// AddSubProject appends a sub-project to the parent. Requires projectadmin
// membership on the parent.
func (s *ProjectService) AddSubProject(ctx context.Context, actor domain.AuthIdentity, projectID string, in ports.SubProjectInput) (*domain.Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("%w: sub-project name is required", domain.ErrValidation)
	}

	if _, err := s.requireProjectAdmin(ctx, actor, projectID, "subproject_add"); err != nil {
		return nil, err
	}

	sub := domain.SubProject{
		Name:        in.Name,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
	}

	updated, err := s.projects.AddSubProject(ctx, projectID, sub)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", projectID).
		Str("actor_id", actor.UserID).
		Str("name", in.Name).
		Msg("sub-project added")

	return updated, nil
}

// UpdateSubProject patches an existing sub-project.
func (s *ProjectService) UpdateSubProject(ctx context.Context, actor domain.AuthIdentity, projectID, subID string, patch ports.SubProjectPatch) (*domain.Project, error) {
	if _, err := s.requireProjectAdmin(ctx, actor, projectID, "subproject_update"); err != nil {
		return nil, err
	}

	updated, err := s.projects.UpdateSubProject(ctx, projectID, subID, patch)
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("project_id", projectID).
		Str("actor_id", actor.UserID).
		Str("sub_id", subID).
		Msg("sub-project updated")

	return updated, nil
}

// requireProjectAdmin loads the project and verifies the actor holds the
// projectadmin role in it. Membership errors are deliberately distinct:
// non-members get ErrNotAMember, members without the role get
// ErrInsufficientRole.
func (s *ProjectService) requireProjectAdmin(ctx context.Context, actor domain.AuthIdentity, projectID, action string) (*domain.Project, error) {
	project, err := s.projects.FindByID(ctx, projectID)
	if err != nil {
		return nil, err
	}

	switch project.MemberRole(actor.UserID) {
	case domain.ProjectRoleAdmin:
		return project, nil
	case domain.ProjectRoleNone:
		s.denied(actor, projectID, action)
		return nil, domain.ErrNotAMember
	default:
		s.denied(actor, projectID, action)
		return nil, domain.ErrInsufficientRole
	}
}

func (s *ProjectService) denied(actor domain.AuthIdentity, projectID, action string) {
	metrics.AuthzDenialsTotal.WithLabelValues("membership").Inc()
	s.log.Warn().
		Str("actor_id", actor.UserID).
		Str("project_id", projectID).
		Str("action", action).
		Msg("project operation denied")
	if s.audit != nil {
		s.audit.Record(domain.AuditEvent{
			ActorID:   actor.UserID,
			Outcome:   domain.AuditDenied,
			ProjectID: projectID,
			Path:      action,
		})
	}
}
