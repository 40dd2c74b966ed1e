package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mcms/admin-panel/internal/api/metrics"
	"github.com/mcms/admin-panel/internal/core/domain"
)

// RequireRole enforces account-level role-based access control. It assumes
// Auth has already run; a missing role claim is treated as a denial.
func RequireRole(allowedRoles ...domain.Role) echo.MiddlewareFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, _ := c.Get(CtxIdentity).(domain.AuthIdentity)
			if _, ok := allowed[identity.Role]; !ok {
				metrics.AuthzDenialsTotal.WithLabelValues("role").Inc()
				return echo.NewHTTPError(http.StatusForbidden, domain.ErrForbidden.Error())
			}
			return next(c)
		}
	}
}
