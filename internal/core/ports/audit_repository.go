package ports

import (
	"context"

	"github.com/mcms/admin-panel/internal/core/domain"
)

// AuditRepository persists access decisions for later review.
type AuditRepository interface {
	Insert(ctx context.Context, event *domain.AuditEvent) error
}

// AuditSink is the write side handed to middleware and services. Implementations
// must not block the request path.
type AuditSink interface {
	Record(event domain.AuditEvent)
}
