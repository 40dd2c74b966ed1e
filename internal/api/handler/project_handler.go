package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

// ProjectHandler handles project CRUD and membership routes.
type ProjectHandler struct {
	service ports.ProjectService
}

func NewProjectHandler(service ports.ProjectService) *ProjectHandler {
	return &ProjectHandler{service: service}
}

type createProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type updateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

type inviteRequest struct {
	Username string `json:"username" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=projectadmin projectuser"`
}

type memberRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=projectadmin projectuser"`
}

type subProjectRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
}

type updateSubProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    *bool  `json:"isActive"`
}

type projectResponse struct {
	Message string          `json:"message,omitempty"`
	Project *domain.Project `json:"project"`
}

type projectListResponse struct {
	Projects []domain.Project `json:"projects"`
}

// Create creates a new project; the caller becomes its first projectadmin.
//
// @Summary      Create a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createProjectRequest  true  "Project fields"
// @Success      201   {object}  projectResponse
// @Failure      400   {object}  map[string]string
// @Router       /projects [post]
func (h *ProjectHandler) Create(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.service.Create(c.Request().Context(), identity, ports.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, projectResponse{Message: "project created successfully", Project: project})
}

// List returns the projects the caller is a member of.
//
// @Summary      List own projects
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  projectListResponse
// @Router       /projects [get]
func (h *ProjectHandler) List(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	projects, err := h.service.ListForUser(c.Request().Context(), identity)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projectListResponse{Projects: projects})
}

// Get returns a single project.
//
// @Summary      Get a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  projectResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [get]
func (h *ProjectHandler) Get(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	project, err := h.service.Get(c.Request().Context(), identity, c.Param("id"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projectResponse{Project: project})
}

// Update patches project metadata. Projectadmin only.
//
// @Summary      Update a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string                true  "Project ID"
// @Param        body  body      updateProjectRequest  true  "Fields to update"
// @Success      200   {object}  projectResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /projects/{id} [put]
func (h *ProjectHandler) Update(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	project, err := h.service.UpdateMeta(c.Request().Context(), identity, c.Param("id"), ports.ProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projectResponse{Message: "project updated", Project: project})
}

// Delete removes a project. Projectadmin only, and only when it has no
// sub-projects.
//
// @Summary      Delete a project
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Project ID"
// @Success      200  {object}  messageResponse
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /projects/{id} [delete]
func (h *ProjectHandler) Delete(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), identity, c.Param("id")); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, messageResponse{Message: "project deleted successfully"})
}

// Invite adds a user to the project by username. Projectadmin only.
//
// @Summary      Invite a user to a project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string         true  "Project ID"
// @Param        body  body      inviteRequest  true  "Target username and role"
// @Success      200   {object}  projectResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Failure      409   {object}  map[string]string
// @Router       /projects/{id}/invite [post]
func (h *ProjectHandler) Invite(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req inviteRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.service.Invite(c.Request().Context(), identity, c.Param("id"), req.Username, domain.ProjectRole(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projectResponse{Message: "user added to project", Project: project})
}

// UpdateMemberRole changes a member's project role. Projectadmin only.
//
// @Summary      Update a member's role
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      string             true  "Project ID"
// @Param        memberId   path      string             true  "Member user ID"
// @Param        body       body      memberRoleRequest  true  "New role"
// @Success      200        {object}  projectResponse
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /projects/{projectId}/members/{memberId} [put]
func (h *ProjectHandler) UpdateMemberRole(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req memberRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.service.UpdateMemberRole(c.Request().Context(), identity, c.Param("projectId"), c.Param("memberId"), domain.ProjectRole(req.Role))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projectResponse{Message: "member role updated", Project: project})
}

// RemoveMember removes a member from the project. Projectadmin only.
//
// @Summary      Remove a member
// @Tags         projects
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path  string  true  "Project ID"
// @Param        memberId   path  string  true  "Member user ID"
// @Success      200  {object}  projectResponse
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /projects/{projectId}/members/{memberId} [delete]
func (h *ProjectHandler) RemoveMember(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	project, err := h.service.RemoveMember(c.Request().Context(), identity, c.Param("projectId"), c.Param("memberId"))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projectResponse{Message: "member removed from project", Project: project})
}

// AddSubProject appends a sub-project. Projectadmin only.
//
// @Summary      Add a sub-project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Project ID"
// @Param        body  body      subProjectRequest  true  "Sub-project fields"
// @Success      201   {object}  projectResponse
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /projects/{id}/subprojects [post]
func (h *ProjectHandler) AddSubProject(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req subProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project, err := h.service.AddSubProject(c.Request().Context(), identity, c.Param("id"), ports.SubProjectInput{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, projectResponse{Message: "sub-project added", Project: project})
}

// UpdateSubProject patches a sub-project. Projectadmin only.
//
// @Summary      Update a sub-project
// @Tags         projects
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        projectId  path      string                   true  "Project ID"
// @Param        subId      path      string                   true  "Sub-project ID"
// @Param        body       body      updateSubProjectRequest  true  "Fields to update"
// @Success      200        {object}  projectResponse
// @Failure      403        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /projects/{projectId}/subprojects/{subId} [put]
func (h *ProjectHandler) UpdateSubProject(c echo.Context) error {
	identity, err := ctxIdentity(c)
	if err != nil {
		return err
	}

	var req updateSubProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	project, err := h.service.UpdateSubProject(c.Request().Context(), identity, c.Param("projectId"), c.Param("subId"), ports.SubProjectPatch{
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, projectResponse{Message: "sub-project updated", Project: project})
}
