package domain

import "time"

// ProjectRole is the authorization role a user holds within a single project.
// It is a separate type from the account-level Role: membership roles never
// escalate outside their project.
type ProjectRole string

const (
	ProjectRoleAdmin ProjectRole = "projectadmin"
	ProjectRoleUser  ProjectRole = "projectuser"
	// ProjectRoleNone is returned by MemberRole for non-members.
	ProjectRoleNone ProjectRole = ""
)

// ValidProjectRole reports whether r is an assignable membership role.
func ValidProjectRole(r ProjectRole) bool {
	return r == ProjectRoleAdmin || r == ProjectRoleUser
}

// Member links a user to a project with a project-scoped role.
type Member struct {
	UserID string      `json:"user_id" bson:"user_id"`
	Role   ProjectRole `json:"role" bson:"role"`
}

// SubProject is a nested resource living entirely inside its parent project.
type SubProject struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"name" bson:"name"`
	Description string    `json:"description,omitempty" bson:"description,omitempty"`
	IsActive    bool      `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time `json:"created_at" bson:"created_at"`
}

// Project is the aggregate root for project-scoped authorization. The members
// list is the authoritative membership record; user IDs are unique within it.
type Project struct {
	ID          string       `json:"id" bson:"_id,omitempty"`
	Name        string       `json:"name" bson:"name"`
	Description string       `json:"description,omitempty" bson:"description,omitempty"`
	Creator     string       `json:"creator" bson:"creator"`
	Members     []Member     `json:"members" bson:"members"`
	SubProjects []SubProject `json:"sub_projects" bson:"sub_projects"`
	IsActive    bool         `json:"is_active" bson:"is_active"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}

// MemberRole resolves the membership role of userID within the project.
// Returns ProjectRoleNone when the user is not a member.
func (p *Project) MemberRole(userID string) ProjectRole {
	for _, m := range p.Members {
		if m.UserID == userID {
			return m.Role
		}
	}
	return ProjectRoleNone
}

// IsMember reports whether userID appears in the members list.
func (p *Project) IsMember(userID string) bool {
	return p.MemberRole(userID) != ProjectRoleNone
}

// HasSubProjects reports whether the project holds nested sub-projects.
// A project cannot be deleted while this is true.
func (p *Project) HasSubProjects() bool {
	return len(p.SubProjects) > 0
}
