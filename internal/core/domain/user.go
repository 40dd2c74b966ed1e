package domain

import "time"

// Role is the account-level authorization role.
type Role string

const (
	RoleAdmin        Role = "admin"
	RoleContentAdmin Role = "contentadmin"
	RoleNormal       Role = "normal"
)

// ValidRole reports whether r is one of the defined account roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RoleContentAdmin, RoleNormal:
		return true
	}
	return false
}

// User models an authenticated actor in the system.
type User struct {
	ID               string    `json:"id"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	PasswordHash     string    `json:"-"`
	Role             Role      `json:"role"`
	IsActive         bool      `json:"is_active"`
	TelegramUsername string    `json:"telegram_username,omitempty"`
	WhatsappNumber   string    `json:"whatsapp_number,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// AuthIdentity is the identity decoded from a session token and attached to the
// request context by the access gate. It is a snapshot taken at token issuance:
// role/isActive changes after issuance are not reflected until the token expires.
type AuthIdentity struct {
	UserID   string
	Role     Role
	IsActive bool
	// ProjectID is an optional scope hint supplied by the caller
	// (X-Project-ID header or projectId query parameter), not a claim.
	ProjectID string
}

// IsAdmin reports whether the identity carries the top account role.
func (a AuthIdentity) IsAdmin() bool {
	return a.Role == RoleAdmin
}
