package domain

import "errors"

// Authentication errors, resolved by the access gate before business logic runs.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrTokenExpired       = errors.New("token has expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrMalformedClaims    = errors.New("invalid token structure")
)

// Authorization and business errors, raised by services and repositories.
var (
	ErrForbidden          = errors.New("access forbidden")
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("username or email already registered")
	ErrValidation         = errors.New("invalid input")
	ErrProjectNotFound    = errors.New("project not found")
	ErrNotAMember         = errors.New("not a project member")
	ErrInsufficientRole   = errors.New("insufficient project role")
	ErrMemberNotFound     = errors.New("member not found")
	ErrAlreadyMember      = errors.New("user is already a project member")
	ErrHasSubProjects     = errors.New("project cannot be deleted because it contains sub-projects")
	ErrSubProjectNotFound = errors.New("sub-project not found")
)
