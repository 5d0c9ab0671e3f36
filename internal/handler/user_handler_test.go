package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hitoshi/ideabank/internal/model"
)

type mockAccessService struct {
	setRoleFn     func(ctx context.Context, callerID, targetID string, role model.Role) error
	listMembersFn func(ctx context.Context, callerID string) ([]*model.User, error)
}

func (m *mockAccessService) SetRole(ctx context.Context, callerID, targetID string, role model.Role) error {
	if m.setRoleFn != nil {
		return m.setRoleFn(ctx, callerID, targetID, role)
	}
	return nil
}

func (m *mockAccessService) ListMembers(ctx context.Context, callerID string) ([]*model.User, error) {
	if m.listMembersFn != nil {
		return m.listMembersFn(ctx, callerID)
	}
	return nil, nil
}

// --- ListUsers テスト ---

func TestUserHandler_ListUsers_Success(t *testing.T) {
	svc := &mockAccessService{
		listMembersFn: func(ctx context.Context, callerID string) ([]*model.User, error) {
			if callerID != "admin-1" {
				t.Errorf("callerID = %q, want admin-1", callerID)
			}
			return []*model.User{
				{ID: "user-2", Name: "佐藤花子", Role: model.RoleInternalMember},
				{ID: "user-3", Name: "鈴木一郎", Role: model.RoleExternalMember},
			}, nil
		},
	}
	h := NewUserHandler(svc)

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	req = withUserID(req, "admin-1")
	rec := httptest.NewRecorder()

	h.ListUsers(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusOK)
	}

	var resp []userResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 {
		t.Fatalf("len = %d, want 2", len(resp))
	}
	if resp[0].Role != "internal-member" {
		t.Errorf("role = %q, want internal-member", resp[0].Role)
	}
}

func TestUserHandler_ListUsers_Unauthenticated(t *testing.T) {
	h := NewUserHandler(&mockAccessService{})

	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	rec := httptest.NewRecorder()

	h.ListUsers(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
}

// --- SetRole テスト ---

func TestUserHandler_SetRole_Success(t *testing.T) {
	var gotCaller, gotTarget string
	var gotRole model.Role
	svc := &mockAccessService{
		setRoleFn: func(ctx context.Context, callerID, targetID string, role model.Role) error {
			gotCaller = callerID
			gotTarget = targetID
			gotRole = role
			return nil
		},
	}
	h := NewUserHandler(svc)

	body := strings.NewReader(`{"role": "internal-member"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/users/user-2/role", body)
	req = withUserID(req, "admin-1")
	req = withURLParam(req, "id", "user-2")
	rec := httptest.NewRecorder()

	h.SetRole(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if gotCaller != "admin-1" || gotTarget != "user-2" || gotRole != model.RoleInternalMember {
		t.Errorf("SetRole(%q, %q, %q), want (admin-1, user-2, internal-member)", gotCaller, gotTarget, gotRole)
	}
}

func TestUserHandler_SetRole_SelfChange(t *testing.T) {
	svc := &mockAccessService{
		setRoleFn: func(ctx context.Context, callerID, targetID string, role model.Role) error {
			return model.NewSelfRoleChangeError()
		},
	}
	h := NewUserHandler(svc)

	body := strings.NewReader(`{"role": "external-member"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/users/admin-1/role", body)
	req = withUserID(req, "admin-1")
	req = withURLParam(req, "id", "admin-1")
	rec := httptest.NewRecorder()

	h.SetRole(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}

	var resp apiErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Code != model.ErrCodeSelfRoleChange {
		t.Errorf("error code = %q, want %q", resp.Code, model.ErrCodeSelfRoleChange)
	}
}

func TestUserHandler_SetRole_InvalidRole(t *testing.T) {
	svc := &mockAccessService{
		setRoleFn: func(ctx context.Context, callerID, targetID string, role model.Role) error {
			return model.NewInvalidRoleError(string(role))
		},
	}
	h := NewUserHandler(svc)

	body := strings.NewReader(`{"role": "superuser"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/users/user-2/role", body)
	req = withUserID(req, "admin-1")
	req = withURLParam(req, "id", "user-2")
	rec := httptest.NewRecorder()

	h.SetRole(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
}

func TestUserHandler_SetRole_TargetNotFound(t *testing.T) {
	svc := &mockAccessService{
		setRoleFn: func(ctx context.Context, callerID, targetID string, role model.Role) error {
			return model.NewUserNotFoundError()
		},
	}
	h := NewUserHandler(svc)

	body := strings.NewReader(`{"role": "internal-member"}`)
	req := httptest.NewRequest(http.MethodPut, "/api/users/ghost-user/role", body)
	req = withUserID(req, "admin-1")
	req = withURLParam(req, "id", "ghost-user")
	rec := httptest.NewRecorder()

	h.SetRole(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}
