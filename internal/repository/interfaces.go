// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"database/sql"

	"github.com/hitoshi/ideabank/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindByEmail は指定メールアドレスのユーザーを取得する。見つからない場合はnilを返す。
	// IDでの照合に失敗した場合のフォールバックキーとして使用する。
	FindByEmail(ctx context.Context, email string) (*model.User, error)

	// List は全ユーザーを作成日時順で返す。
	List(ctx context.Context) ([]*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// UpdateRole は指定ユーザーの役割を上書きする。
	// 対象が存在しない場合はエラーを返す。
	UpdateRole(ctx context.Context, id string, role model.Role) error

	// UpdateProfile は表示属性（名前、メール、アバターURL）のみをマージ更新する。
	// 役割と投票状態には触れない。
	UpdateProfile(ctx context.Context, id, name, email, avatarURL string) error
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
}

// ProjectRepository はプロジェクトデータの永続化インターフェース。
// プロジェクトは作成後イミュータブルのため、更新・削除操作は持たない。
type ProjectRepository interface {
	// Create はプロジェクトを作成する。作成日時はサーバー側で割り当てる。
	Create(ctx context.Context, project *model.Project) error

	// FindByID は指定IDのプロジェクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Project, error)

	// List は全プロジェクトを作成日時順で返す。
	List(ctx context.Context) ([]*model.Project, error)
}

// IdeaRepository はアイデアデータの永続化インターフェース。
// カウンターの増減はVoteRepository.ApplyVote経由でのみ行う。
type IdeaRepository interface {
	// Create はカウンターがゼロの新規アイデアを作成する。
	Create(ctx context.Context, idea *model.Idea) error

	// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Idea, error)

	// ListByProject はプロジェクト配下のアイデアを投入順（created_at昇順、同時刻はID昇順）で返す。
	ListByProject(ctx context.Context, projectID string) ([]*model.Idea, error)
}

// VoteRepository は投票状態の永続化インターフェース。
type VoteRepository interface {
	// FindByUserAndIdea はユーザーIDとアイデアIDで現在の投票を取得する。
	// 未投票の場合はnilを返す。
	FindByUserAndIdea(ctx context.Context, userID, ideaID string) (*model.Vote, error)

	// ListByUserAndProject はプロジェクト配下でのユーザーの投票をアイデアID→カテゴリで返す。
	ListByUserAndProject(ctx context.Context, userID, projectID string) (map[string]model.VoteCategory, error)

	// ApplyVote は投票遷移を1トランザクションで適用する。
	// 投票行をFOR UPDATEでロックし、カテゴリをUPSERTした上で
	// アイデアのカウンターをアトミックな増減で更新する。
	// すでに同一カテゴリの場合は書き込みを行わず現在のタリーを返す（changed=false）。
	ApplyVote(ctx context.Context, userID, ideaID string, category model.VoteCategory) (idea *model.Idea, changed bool, err error)
}

// TxBeginner はトランザクション開始用のインターフェース。
type TxBeginner interface {
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}
