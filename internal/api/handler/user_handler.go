package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

// UserHandler handles profile self-service and admin user management routes.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// updateProfileRequest is the self-service update shape. Role and isActive are
// deliberately not part of it: extra JSON fields are dropped at bind time, so
// a profile update cannot smuggle an authorization change.
type updateProfileRequest struct {
	Username         string `json:"username" validate:"omitempty,min=3,username"`
	Email            string `json:"email" validate:"omitempty,email"`
	TelegramUsername string `json:"telegram_username"`
	WhatsappNumber   string `json:"whatsapp_number"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

type setPasswordRequest struct {
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

type activateRequest struct {
	IsActive bool `json:"isActive"`
}

type userResponse struct {
	Message string       `json:"message,omitempty"`
	User    *domain.User `json:"user"`
}

// Profile returns the authenticated user's own record.
//
// @Summary      Get own profile
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  profileResponse
// @Failure      401  {object}  map[string]string
// @Router       /users/profile [get]
func (h *UserHandler) Profile(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	user, err := h.service.Profile(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, profileResponse{User: user})
}

// UpdateProfile updates profile fields for a user.
//
// @Summary      Update user profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "User ID"
// @Param        body  body      updateProfileRequest  true  "Profile fields"
// @Success      200   {object}  userResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/update-user/{id} [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	user, err := h.service.UpdateProfile(c.Request().Context(), identity, c.Param("id"), ports.ProfilePatch{
		Username:         req.Username,
		Email:            req.Email,
		TelegramUsername: req.TelegramUsername,
		WhatsappNumber:   req.WhatsappNumber,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, userResponse{Message: "user updated successfully", User: user})
}

// ChangePassword replaces the caller's own password.
//
// @Summary      Change own password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      changePasswordRequest  true  "Current and new password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Router       /users/change-password [put]
func (h *UserHandler) ChangePassword(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "current and new password are required")
	}

	if err := h.service.ChangePassword(c.Request().Context(), identity, req.CurrentPassword, req.NewPassword); err != nil {
		// A wrong current password is a bad request on this route, not a 401:
		// the caller is already authenticated.
		if errors.Is(err, domain.ErrInvalidCredentials) {
			return echo.NewHTTPError(http.StatusBadRequest, "current password is incorrect")
		}
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password updated successfully"})
}

// List returns all user accounts. Admin only (enforced by route middleware and
// re-checked in the service).
//
// @Summary      List all users
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   domain.User
// @Failure      403  {object}  map[string]string
// @Router       /users/users [get]
func (h *UserHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	users, err := h.service.ListUsers(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, users)
}

// SetPassword resets another user's password. Admin only.
//
// @Summary      Set a user's password
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string              true  "User ID"
// @Param        body  body      setPasswordRequest  true  "New password"
// @Success      200   {object}  messageResponse
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/users/{id}/set-password [put]
func (h *UserHandler) SetPassword(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req setPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.service.SetPassword(c.Request().Context(), identity, c.Param("id"), req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "password updated successfully"})
}

// Activate toggles a user's active status. Admin only.
//
// @Summary      Update a user's activation status
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string           true  "User ID"
// @Param        body  body      activateRequest  true  "Activation flag"
// @Success      200   {object}  userResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /users/admin/users/{id}/activate [put]
func (h *UserHandler) Activate(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req activateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	user, err := h.service.SetActive(c.Request().Context(), identity, c.Param("id"), req.IsActive)
	if err != nil {
		return err
	}

	msg := "user deactivated"
	if req.IsActive {
		msg = "user activated"
	}
	return c.JSON(http.StatusOK, userResponse{Message: msg, User: user})
}
