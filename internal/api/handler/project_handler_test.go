package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/mcms/admin-panel/internal/core/domain"
	"github.com/mcms/admin-panel/internal/core/ports"
)

type stubProjectService struct {
	createFn           func(ctx context.Context, actor domain.AuthIdentity, in ports.CreateProjectInput) (*domain.Project, error)
	listForUserFn      func(ctx context.Context, actor domain.AuthIdentity) ([]domain.Project, error)
	getFn              func(ctx context.Context, actor domain.AuthIdentity, projectID string) (*domain.Project, error)
	updateMetaFn       func(ctx context.Context, actor domain.AuthIdentity, projectID string, patch ports.ProjectPatch) (*domain.Project, error)
	deleteFn           func(ctx context.Context, actor domain.AuthIdentity, projectID string) error
	inviteFn           func(ctx context.Context, actor domain.AuthIdentity, projectID, username string, role domain.ProjectRole) (*domain.Project, error)
	updateMemberRoleFn func(ctx context.Context, actor domain.AuthIdentity, projectID, memberID string, role domain.ProjectRole) (*domain.Project, error)
	removeMemberFn     func(ctx context.Context, actor domain.AuthIdentity, projectID, memberID string) (*domain.Project, error)
	addSubProjectFn    func(ctx context.Context, actor domain.AuthIdentity, projectID string, in ports.SubProjectInput) (*domain.Project, error)
	updateSubProjectFn func(ctx context.Context, actor domain.AuthIdentity, projectID, subID string, patch ports.SubProjectPatch) (*domain.Project, error)
}

func (s *stubProjectService) Create(ctx context.Context, actor domain.AuthIdentity, in ports.CreateProjectInput) (*domain.Project, error) {
	return s.createFn(ctx, actor, in)
}

func (s *stubProjectService) ListForUser(ctx context.Context, actor domain.AuthIdentity) ([]domain.Project, error) {
	return s.listForUserFn(ctx, actor)
}

func (s *stubProjectService) Get(ctx context.Context, actor domain.AuthIdentity, projectID string) (*domain.Project, error) {
	return s.getFn(ctx, actor, projectID)
}

func (s *stubProjectService) UpdateMeta(ctx context.Context, actor domain.AuthIdentity, projectID string, patch ports.ProjectPatch) (*domain.Project, error) {
	return s.updateMetaFn(ctx, actor, projectID, patch)
}

func (s *stubProjectService) Delete(ctx context.Context, actor domain.AuthIdentity, projectID string) error {
	return s.deleteFn(ctx, actor, projectID)
}

func (s *stubProjectService) Invite(ctx context.Context, actor domain.AuthIdentity, projectID, username string, role domain.ProjectRole) (*domain.Project, error) {
	return s.inviteFn(ctx, actor, projectID, username, role)
}

func (s *stubProjectService) UpdateMemberRole(ctx context.Context, actor domain.AuthIdentity, projectID, memberID string, role domain.ProjectRole) (*domain.Project, error) {
	return s.updateMemberRoleFn(ctx, actor, projectID, memberID, role)
}

func (s *stubProjectService) RemoveMember(ctx context.Context, actor domain.AuthIdentity, projectID, memberID string) (*domain.Project, error) {
	return s.removeMemberFn(ctx, actor, projectID, memberID)
}

func (s *stubProjectService) AddSubProject(ctx context.Context, actor domain.AuthIdentity, projectID string, in ports.SubProjectInput) (*domain.Project, error) {
	return s.addSubProjectFn(ctx, actor, projectID, in)
}

func (s *stubProjectService) UpdateSubProject(ctx context.Context, actor domain.AuthIdentity, projectID, subID string, patch ports.SubProjectPatch) (*domain.Project, error) {
	return s.updateSubProjectFn(ctx, actor, projectID, subID, patch)
}

func memberIdentity() domain.AuthIdentity {
	return domain.AuthIdentity{UserID: "u1", Role: domain.RoleNormal, IsActive: true}
}

func TestProjectHandler_Create(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		createFn: func(_ context.Context, actor domain.AuthIdentity, in ports.CreateProjectInput) (*domain.Project, error) {
			if actor.UserID != "u1" || in.Name != "site" {
				t.Fatalf("unexpected args: %s %s", actor.UserID, in.Name)
			}
			return &domain.Project{ID: "p1", Name: in.Name, Creator: actor.UserID}, nil
		},
	}
	handler := NewProjectHandler(stub)

	req := jsonRequest(http.MethodPost, "/projects", `{"name":"site","description":"main site"}`)
	c, rec := authedContext(e, req, memberIdentity())

	if err := handler.Create(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}

	var resp map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	project, ok := resp["project"].(map[string]any)
	if !ok || project["name"] != "site" {
		t.Fatalf("expected project in response, got %v", resp["project"])
	}
}

func TestProjectHandler_Create_MissingName(t *testing.T) {
	e := newTestEcho()
	handler := NewProjectHandler(&stubProjectService{})

	req := jsonRequest(http.MethodPost, "/projects", `{"description":"no name"}`)
	c, _ := authedContext(e, req, memberIdentity())

	err := handler.Create(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestProjectHandler_List(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		listForUserFn: func(_ context.Context, actor domain.AuthIdentity) ([]domain.Project, error) {
			return []domain.Project{{ID: "p1"}, {ID: "p2"}}, nil
		},
	}
	handler := NewProjectHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/projects", nil)
	c, rec := authedContext(e, req, memberIdentity())

	if err := handler.List(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp map[string][]map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if len(resp["projects"]) != 2 {
		t.Fatalf("expected 2 projects, got %d", len(resp["projects"]))
	}
}

func TestProjectHandler_Get_NotAMember(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		getFn: func(_ context.Context, _ domain.AuthIdentity, _ string) (*domain.Project, error) {
			return nil, domain.ErrNotAMember
		},
	}
	handler := NewProjectHandler(stub)

	req := httptest.NewRequest(http.MethodGet, "/projects/p1", nil)
	c, _ := authedContext(e, req, memberIdentity())
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := handler.Get(c); !errors.Is(err, domain.ErrNotAMember) {
		t.Fatalf("expected ErrNotAMember to bubble up, got %v", err)
	}
}

func TestProjectHandler_Delete(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		deleteFn: func(_ context.Context, _ domain.AuthIdentity, projectID string) error {
			if projectID != "p1" {
				t.Fatalf("unexpected project id: %s", projectID)
			}
			return nil
		},
	}
	handler := NewProjectHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/projects/p1", nil)
	c, rec := authedContext(e, req, memberIdentity())
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := handler.Delete(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProjectHandler_Delete_HasSubProjects(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		deleteFn: func(_ context.Context, _ domain.AuthIdentity, _ string) error {
			return domain.ErrHasSubProjects
		},
	}
	handler := NewProjectHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/projects/p1", nil)
	c, _ := authedContext(e, req, memberIdentity())
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := handler.Delete(c); !errors.Is(err, domain.ErrHasSubProjects) {
		t.Fatalf("expected ErrHasSubProjects to bubble up, got %v", err)
	}
}

func TestProjectHandler_Invite(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		inviteFn: func(_ context.Context, _ domain.AuthIdentity, projectID, username string, role domain.ProjectRole) (*domain.Project, error) {
			if projectID != "p1" || username != "bob" || role != domain.ProjectRoleUser {
				t.Fatalf("unexpected args: %s %s %s", projectID, username, role)
			}
			return &domain.Project{ID: "p1"}, nil
		},
	}
	handler := NewProjectHandler(stub)

	req := jsonRequest(http.MethodPost, "/projects/p1/invite", `{"username":"bob","role":"projectuser"}`)
	c, rec := authedContext(e, req, memberIdentity())
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := handler.Invite(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProjectHandler_Invite_BadRole(t *testing.T) {
	e := newTestEcho()
	handler := NewProjectHandler(&stubProjectService{})

	req := jsonRequest(http.MethodPost, "/projects/p1/invite", `{"username":"bob","role":"owner"}`)
	c, _ := authedContext(e, req, memberIdentity())
	c.SetParamNames("id")
	c.SetParamValues("p1")

	err := handler.Invite(c)
	httpErr, ok := err.(*echo.HTTPError)
	if !ok || httpErr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 HTTPError, got %v", err)
	}
}

func TestProjectHandler_UpdateMemberRole(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		updateMemberRoleFn: func(_ context.Context, _ domain.AuthIdentity, projectID, memberID string, role domain.ProjectRole) (*domain.Project, error) {
			if projectID != "p1" || memberID != "u2" || role != domain.ProjectRoleAdmin {
				t.Fatalf("unexpected args: %s %s %s", projectID, memberID, role)
			}
			return &domain.Project{ID: "p1"}, nil
		},
	}
	handler := NewProjectHandler(stub)

	req := jsonRequest(http.MethodPut, "/projects/p1/members/u2", `{"role":"projectadmin"}`)
	c, rec := authedContext(e, req, memberIdentity())
	c.SetParamNames("projectId", "memberId")
	c.SetParamValues("p1", "u2")

	if err := handler.UpdateMemberRole(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProjectHandler_RemoveMember(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		removeMemberFn: func(_ context.Context, _ domain.AuthIdentity, projectID, memberID string) (*domain.Project, error) {
			if projectID != "p1" || memberID != "u2" {
				t.Fatalf("unexpected args: %s %s", projectID, memberID)
			}
			return &domain.Project{ID: "p1"}, nil
		},
	}
	handler := NewProjectHandler(stub)

	req := httptest.NewRequest(http.MethodDelete, "/projects/p1/members/u2", nil)
	c, rec := authedContext(e, req, memberIdentity())
	c.SetParamNames("projectId", "memberId")
	c.SetParamValues("p1", "u2")

	if err := handler.RemoveMember(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestProjectHandler_AddSubProject(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		addSubProjectFn: func(_ context.Context, _ domain.AuthIdentity, projectID string, in ports.SubProjectInput) (*domain.Project, error) {
			if projectID != "p1" || in.Name != "child" {
				t.Fatalf("unexpected args: %s %s", projectID, in.Name)
			}
			return &domain.Project{ID: "p1", SubProjects: []domain.SubProject{{ID: "s1", Name: "child"}}}, nil
		},
	}
	handler := NewProjectHandler(stub)

	req := jsonRequest(http.MethodPost, "/projects/p1/subprojects", `{"name":"child"}`)
	c, rec := authedContext(e, req, memberIdentity())
	c.SetParamNames("id")
	c.SetParamValues("p1")

	if err := handler.AddSubProject(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", rec.Code)
	}
}

func TestProjectHandler_UpdateSubProject(t *testing.T) {
	e := newTestEcho()
	stub := &stubProjectService{
		updateSubProjectFn: func(_ context.Context, _ domain.AuthIdentity, projectID, subID string, patch ports.SubProjectPatch) (*domain.Project, error) {
			if projectID != "p1" || subID != "s1" || patch.Name != "renamed" {
				t.Fatalf("unexpected args: %s %s %+v", projectID, subID, patch)
			}
			if patch.IsActive == nil || *patch.IsActive {
				t.Fatalf("expected isActive false in patch")
			}
			return &domain.Project{ID: "p1"}, nil
		},
	}
	handler := NewProjectHandler(stub)

	req := jsonRequest(http.MethodPut, "/projects/p1/subprojects/s1", `{"name":"renamed","isActive":false}`)
	c, rec := authedContext(e, req, memberIdentity())
	c.SetParamNames("projectId", "subId")
	c.SetParamValues("p1", "s1")

	if err := handler.UpdateSubProject(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
