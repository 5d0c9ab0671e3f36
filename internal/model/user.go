// Package model はドメインモデルを定義する。
package model

import "time"

// Role はユーザーの役割を表す。
type Role string

const (
	// RoleAdministrator は管理者。プロジェクト作成と役割管理が許可される。
	RoleAdministrator Role = "administrator"
	// RoleInternalMember は内部メンバー。
	RoleInternalMember Role = "internal-member"
	// RoleExternalMember は外部メンバー。初回ログイン時のデフォルト役割。
	RoleExternalMember Role = "external-member"
)

// IsValid はRoleが3値の列挙に含まれるかを判定する。
func (r Role) IsValid() bool {
	switch r {
	case RoleAdministrator, RoleInternalMember, RoleExternalMember:
		return true
	default:
		return false
	}
}

// User はサービス利用ユーザーを表す。
// アプリケーションからは削除されない（退会機能はスコープ外）。
type User struct {
	ID        string
	Email     string
	Name      string
	AvatarURL string
	Role      Role
	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsAdministrator は保存された役割が管理者かを判定する。
func (u *User) IsAdministrator() bool {
	return u.Role == RoleAdministrator
}

// Identity は外部IdPとの紐付け情報を表す。
// 将来的に複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}
