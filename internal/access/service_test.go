package access

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/ideabank/internal/model"
)

// --- モック ---

type mockUserRepo struct {
	findByIDFn   func(ctx context.Context, id string) (*model.User, error)
	listFn       func(ctx context.Context) ([]*model.User, error)
	updateRoleFn func(ctx context.Context, id string, role model.Role) error
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return nil, nil
}
func (m *mockUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	return nil
}
func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role model.Role) error {
	if m.updateRoleFn != nil {
		return m.updateRoleFn(ctx, id, role)
	}
	return nil
}
func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, name, email, avatarURL string) error {
	return nil
}

type mockRoleMetrics struct {
	recorded []string
}

func (m *mockRoleMetrics) RecordRoleChange(role string) {
	m.recorded = append(m.recorded, role)
}

// --- IsAdministrator テスト ---

func TestService_IsAdministrator_AdminUser(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleAdministrator}, nil
		},
	}
	svc := NewService(repo, nil)

	if !svc.IsAdministrator(context.Background(), "user-1") {
		t.Error("管理者ユーザーに対してtrueを返すべき")
	}
}

func TestService_IsAdministrator_NonAdminUser(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleExternalMember}, nil
		},
	}
	svc := NewService(repo, nil)

	if svc.IsAdministrator(context.Background(), "user-1") {
		t.Error("一般メンバーに対してfalseを返すべき")
	}
}

// フェイルクローズ: 取得エラーは管理者ではないとして扱う。
func TestService_IsAdministrator_RepoError_FailsClosed(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, errors.New("connection refused")
		},
	}
	svc := NewService(repo, nil)

	if svc.IsAdministrator(context.Background(), "user-1") {
		t.Error("取得エラー時はfalseを返すべき（フェイルクローズ）")
	}
}

// フェイルクローズ: ユーザーレコードが存在しない場合もfalse。
func TestService_IsAdministrator_UserMissing_FailsClosed(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, nil)

	if svc.IsAdministrator(context.Background(), "ghost-user") {
		t.Error("ユーザー不在時はfalseを返すべき（フェイルクローズ）")
	}
}

// フェイルクローズ: 役割フィールドが欠落（空文字列）の場合もfalse。
func TestService_IsAdministrator_MissingRole_FailsClosed(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id}, nil
		},
	}
	svc := NewService(repo, nil)

	if svc.IsAdministrator(context.Background(), "user-1") {
		t.Error("役割欠落時はfalseを返すべき（フェイルクローズ）")
	}
}

// --- SetRole テスト ---

func TestService_SetRole_Success(t *testing.T) {
	var updatedID string
	var updatedRole model.Role
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleExternalMember}, nil
		},
		updateRoleFn: func(ctx context.Context, id string, role model.Role) error {
			updatedID = id
			updatedRole = role
			return nil
		},
	}
	metrics := &mockRoleMetrics{}
	svc := NewService(repo, metrics)

	err := svc.SetRole(context.Background(), "admin-1", "user-2", model.RoleInternalMember)
	if err != nil {
		t.Fatalf("SetRole returned error: %v", err)
	}
	if updatedID != "user-2" {
		t.Errorf("updated user = %q, want %q", updatedID, "user-2")
	}
	if updatedRole != model.RoleInternalMember {
		t.Errorf("updated role = %q, want %q", updatedRole, model.RoleInternalMember)
	}
	if len(metrics.recorded) != 1 || metrics.recorded[0] != string(model.RoleInternalMember) {
		t.Errorf("role change metrics = %v, want [internal-member]", metrics.recorded)
	}
}

// 無効な役割値はバリデーションで拒否され、書き込みは一切行われない。
func TestService_SetRole_InvalidRole_NoWrite(t *testing.T) {
	updateCalled := false
	repo := &mockUserRepo{
		updateRoleFn: func(ctx context.Context, id string, role model.Role) error {
			updateCalled = true
			return nil
		},
	}
	svc := NewService(repo, nil)

	err := svc.SetRole(context.Background(), "admin-1", "user-2", model.Role("superuser"))
	if err == nil {
		t.Fatal("無効な役割値に対してエラーを返すべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeInvalidRole {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeInvalidRole)
	}
	if updateCalled {
		t.Error("バリデーション失敗時はUpdateRoleを呼び出すべきではない")
	}
}

func TestService_SetRole_SelfChange_Rejected(t *testing.T) {
	updateCalled := false
	repo := &mockUserRepo{
		updateRoleFn: func(ctx context.Context, id string, role model.Role) error {
			updateCalled = true
			return nil
		},
	}
	svc := NewService(repo, nil)

	err := svc.SetRole(context.Background(), "admin-1", "admin-1", model.RoleExternalMember)
	if err == nil {
		t.Fatal("自分自身の役割変更に対してエラーを返すべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeSelfRoleChange {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeSelfRoleChange)
	}
	if updateCalled {
		t.Error("自己変更拒否時はUpdateRoleを呼び出すべきではない")
	}
}

func TestService_SetRole_TargetNotFound(t *testing.T) {
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return nil, nil
		},
	}
	svc := NewService(repo, nil)

	err := svc.SetRole(context.Background(), "admin-1", "ghost-user", model.RoleInternalMember)
	if err == nil {
		t.Fatal("対象ユーザー不在に対してエラーを返すべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeUserNotFound {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeUserNotFound)
	}
}

// 同一役割への変更は成功扱いだが書き込みは行わない。
func TestService_SetRole_SameRole_NoWrite(t *testing.T) {
	updateCalled := false
	repo := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.User, error) {
			return &model.User{ID: id, Role: model.RoleInternalMember}, nil
		},
		updateRoleFn: func(ctx context.Context, id string, role model.Role) error {
			updateCalled = true
			return nil
		},
	}
	svc := NewService(repo, nil)

	err := svc.SetRole(context.Background(), "admin-1", "user-2", model.RoleInternalMember)
	if err != nil {
		t.Fatalf("SetRole returned error: %v", err)
	}
	if updateCalled {
		t.Error("同一役割への変更時はUpdateRoleを呼び出すべきではない")
	}
}

// --- ListMembers テスト ---

func TestService_ListMembers_ExcludesCaller(t *testing.T) {
	repo := &mockUserRepo{
		listFn: func(ctx context.Context) ([]*model.User, error) {
			return []*model.User{
				{ID: "admin-1", Role: model.RoleAdministrator},
				{ID: "user-2", Role: model.RoleInternalMember},
				{ID: "user-3", Role: model.RoleExternalMember},
			}, nil
		},
	}
	svc := NewService(repo, nil)

	members, err := svc.ListMembers(context.Background(), "admin-1")
	if err != nil {
		t.Fatalf("ListMembers returned error: %v", err)
	}

	if len(members) != 2 {
		t.Fatalf("len(members) = %d, want 2", len(members))
	}
	for _, m := range members {
		if m.ID == "admin-1" {
			t.Error("呼び出し元自身が一覧に含まれるべきではない")
		}
	}
}
