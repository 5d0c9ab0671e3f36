// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, vote, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeEmptyIdeaText    = "EMPTY_IDEA_TEXT"
	ErrCodeInvalidVote      = "INVALID_VOTE_CATEGORY"
	ErrCodeInvalidRole      = "INVALID_ROLE"
	ErrCodeSelfRoleChange   = "SELF_ROLE_CHANGE"
	ErrCodeIdeaNotFound     = "IDEA_NOT_FOUND"
	ErrCodeProjectNotFound  = "PROJECT_NOT_FOUND"
	ErrCodeUserNotFound     = "USER_NOT_FOUND"
	ErrCodeWriteFailed      = "WRITE_FAILED"
	ErrCodeForbidden        = "FORBIDDEN"
	ErrCodeEmptyProjectName = "EMPTY_PROJECT_NAME"
)

// NewEmptyIdeaTextError は空のアイデア本文エラーを生成する。
func NewEmptyIdeaTextError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyIdeaText,
		Message:  "アイデアの本文が空です。",
		Category: "validation",
		Action:   "本文を入力してから送信してください。",
	}
}

// NewInvalidVoteCategoryError は無効な投票カテゴリエラーを生成する。
func NewInvalidVoteCategoryError(category string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidVote,
		Message:  fmt.Sprintf("無効な投票カテゴリです: %s", category),
		Category: "validation",
		Action:   "support、reject、neutral のいずれかを指定してください。",
	}
}

// NewInvalidRoleError は無効な役割値エラーを生成する。
func NewInvalidRoleError(role string) *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRole,
		Message:  fmt.Sprintf("無効な役割です: %s", role),
		Category: "validation",
		Action:   "administrator、internal-member、external-member のいずれかを指定してください。",
	}
}

// NewSelfRoleChangeError は自分自身の役割変更エラーを生成する。
func NewSelfRoleChangeError() *APIError {
	return &APIError{
		Code:     ErrCodeSelfRoleChange,
		Message:  "自分自身の役割は変更できません。",
		Category: "validation",
		Action:   "他の管理者に役割の変更を依頼してください。",
	}
}

// NewIdeaNotFoundError はアイデア未検出エラーを生成する。
func NewIdeaNotFoundError(ideaID string) *APIError {
	return &APIError{
		Code:     ErrCodeIdeaNotFound,
		Message:  fmt.Sprintf("指定されたアイデアが見つかりません: %s", ideaID),
		Category: "vote",
		Action:   "アイデアIDを確認してください。",
	}
}

// NewProjectNotFoundError はプロジェクト未検出エラーを生成する。
func NewProjectNotFoundError(projectID string) *APIError {
	return &APIError{
		Code:     ErrCodeProjectNotFound,
		Message:  fmt.Sprintf("指定されたプロジェクトが見つかりません: %s", projectID),
		Category: "vote",
		Action:   "プロジェクトIDを確認してください。",
	}
}

// NewUserNotFoundError はユーザーが見つからない場合のエラーを生成する。
func NewUserNotFoundError() *APIError {
	return &APIError{
		Code:     ErrCodeUserNotFound,
		Message:  "ユーザーが見つかりません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewWriteFailedError は永続化書き込み失敗エラーを生成する。
// 投票は反映されていないため、呼び出し側は操作を再試行できる。
func NewWriteFailedError() *APIError {
	return &APIError{
		Code:     ErrCodeWriteFailed,
		Message:  "データの書き込みに失敗しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewForbiddenError は管理者権限が必要な操作の拒否エラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:     ErrCodeForbidden,
		Message:  "この操作には管理者権限が必要です。",
		Category: "auth",
		Action:   "管理者アカウントでログインしてください。",
	}
}

// NewEmptyProjectNameError は空のプロジェクト名エラーを生成する。
func NewEmptyProjectNameError() *APIError {
	return &APIError{
		Code:     ErrCodeEmptyProjectName,
		Message:  "プロジェクト名が空です。",
		Category: "validation",
		Action:   "プロジェクト名を入力してください。",
	}
}
