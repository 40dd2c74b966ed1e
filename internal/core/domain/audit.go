package domain

import "time"

// AuditOutcome classifies the result of an authentication or authorization
// decision for the audit trail.
type AuditOutcome string

const (
	AuditSuccess         AuditOutcome = "success"
	AuditNoToken         AuditOutcome = "no_token"
	AuditTokenExpired    AuditOutcome = "token_expired"
	AuditTokenInvalid    AuditOutcome = "token_invalid"
	AuditMalformedClaims AuditOutcome = "malformed_claims"
	AuditInactive        AuditOutcome = "account_inactive"
	AuditDenied          AuditOutcome = "denied"
)

// AuditEvent records a single access decision. ActorID may be empty when the
// token never decoded far enough to identify the caller.
type AuditEvent struct {
	ActorID   string       `json:"actor_id,omitempty"`
	Outcome   AuditOutcome `json:"outcome"`
	IP        string       `json:"ip"`
	Method    string       `json:"method"`
	Path      string       `json:"path"`
	ProjectID string       `json:"project_id,omitempty"`
	Timestamp time.Time    `json:"timestamp"`
}
