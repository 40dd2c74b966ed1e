package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/mcms/admin-panel/internal/api/metrics"
	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

// Context keys set by Auth for downstream handlers.
const (
	CtxIdentity  = "identity"
	CtxUserID    = "user_id"
	CtxRole      = "role"
	CtxProjectID = "project_id"
)

// Auth is the access gate: it validates the bearer token and attaches the
// decoded identity to the request context. Checks run in a fixed order:
// header → signature/expiry → claim completeness → active flag. Every outcome,
// success or failure, is logged and recorded to the audit sink.
func Auth(jwtSecret string, audit ports.AuditSink, log zerolog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Optional project scope hint; authorization against it happens in
			// the project service, not here. Resolved up front so every audit
			// entry carries the scope the caller asked for.
			projectID := c.Request().Header.Get("X-Project-ID")
			if projectID == "" {
				projectID = c.QueryParam("projectId")
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				record(c, audit, log, "", projectID, domain.AuditNoToken)
				return echo.NewHTTPError(http.StatusUnauthorized, "no token provided, authorization denied")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				record(c, audit, log, "", projectID, domain.AuditNoToken)
				return echo.NewHTTPError(http.StatusUnauthorized, "no token provided, authorization denied")
			}

			claims := jwt.MapClaims{}
			tkn, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
				if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
					return nil, jwt.ErrTokenSignatureInvalid
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !tkn.Valid {
				if errors.Is(err, jwt.ErrTokenExpired) {
					record(c, audit, log, claimString(claims, "id"), projectID, domain.AuditTokenExpired)
					return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrTokenExpired.Error())
				}
				record(c, audit, log, "", projectID, domain.AuditTokenInvalid)
				return echo.NewHTTPError(http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
			}

			// Claim completeness guards against tokens minted under an
			// incompatible claim schema: distinct from a signature failure.
			role := claimString(claims, "role")
			isActive, hasActive := claims["isActive"].(bool)
			userID := claimString(claims, "id")
			if role == "" || !hasActive {
				record(c, audit, log, userID, projectID, domain.AuditMalformedClaims)
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrMalformedClaims.Error())
			}

			if !isActive {
				record(c, audit, log, userID, projectID, domain.AuditInactive)
				return echo.NewHTTPError(http.StatusForbidden, "your account is inactive, please contact support")
			}

			identity := domain.AuthIdentity{
				UserID:    userID,
				Role:      domain.Role(role),
				IsActive:  isActive,
				ProjectID: projectID,
			}
			c.Set(CtxIdentity, identity)
			c.Set(CtxUserID, userID)
			c.Set(CtxRole, role)
			c.Set(CtxProjectID, projectID)

			record(c, audit, log, userID, projectID, domain.AuditSuccess)
			return next(c)
		}
	}
}

func claimString(claims jwt.MapClaims, key string) string {
	s, _ := claims[key].(string)
	return s
}

func record(c echo.Context, audit ports.AuditSink, log zerolog.Logger, actorID, projectID string, outcome domain.AuditOutcome) {
	metrics.TokenVerificationsTotal.WithLabelValues(string(outcome)).Inc()

	event := log.Info()
	if outcome != domain.AuditSuccess {
		event = log.Warn()
	}
	event.
		Str("actor_id", actorID).
		Str("outcome", string(outcome)).
		Str("ip", c.RealIP()).
		Str("method", c.Request().Method).
		Str("path", c.Request().URL.Path).
		Msg("authorization decision")

	if audit != nil {
		audit.Record(domain.AuditEvent{
			ActorID:   actorID,
			Outcome:   outcome,
			IP:        c.RealIP(),
			Method:    c.Request().Method,
			Path:      c.Request().URL.Path,
			ProjectID: projectID,
			Timestamp: time.Now().UTC(),
		})
	}
}
