// Package metrics defines all custom Prometheus metrics for the admin panel
// API. It is the single source of truth for metric names, labels, and help
// strings. Metrics register themselves with the default registry via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "adminpanel"

// LoginsTotal counts login attempts by result.
// Label:
//   - result: "success", "invalid_credentials", "inactive", "validation", "error"
var LoginsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "logins_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)

// TokenVerificationsTotal counts access-gate decisions by outcome.
// Label:
//   - outcome: "success", "no_token", "token_expired", "token_invalid",
//     "malformed_claims", "account_inactive"
var TokenVerificationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "token_verifications_total",
		Help:      "Total number of token verifications performed by the access gate, by outcome.",
	},
	[]string{"outcome"},
)

// AuthzDenialsTotal counts authorization denials after successful authentication.
// Label:
//   - reason: "role" (account-level RBAC) or "membership" (project-scoped)
var AuthzDenialsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "authz_denials_total",
		Help:      "Total number of authorization denials for authenticated callers, by reason.",
	},
	[]string{"reason"},
)

// RegistrationsTotal counts account registrations by result.
// Label:
//   - result: "created", "conflict", "validation"
var RegistrationsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "registrations_total",
		Help:      "Total number of registration attempts, by result.",
	},
	[]string{"result"},
)
