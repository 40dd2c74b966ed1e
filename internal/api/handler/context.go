package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mcms/admin-panel/internal/api/middleware"
	"github.com/mcms/admin-panel/internal/core/domain"
)

// ctxIdentity extracts the identity injected by the Auth middleware and
// performs a fast-fail check before any service call: a missing or empty
// identity means the route was registered without the access gate.
func ctxIdentity(c echo.Context) (domain.AuthIdentity, error) {
	identity, ok := c.Get(middleware.CtxIdentity).(domain.AuthIdentity)
	if !ok || identity.UserID == "" || identity.Role == "" {
		return domain.AuthIdentity{}, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}
	return identity, nil
}
