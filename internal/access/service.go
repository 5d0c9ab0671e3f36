// Package access は役割ベースのアクセス制御を提供する。
package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/ideabank/internal/model"
	"github.com/hitoshi/ideabank/internal/repository"
)

// RoleChangeRecorder は役割変更メトリクスの記録インターフェース。
type RoleChangeRecorder interface {
	RecordRoleChange(role string)
}

// Service はアクセス制御のサービス層。
// 管理者判定と役割変更のビジネスロジックを提供する。
type Service struct {
	userRepo repository.UserRepository
	metrics  RoleChangeRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(userRepo repository.UserRepository, metrics RoleChangeRecorder) *Service {
	return &Service{
		userRepo: userRepo,
		metrics:  metrics,
	}
}

// IsAdministrator は指定ユーザーが管理者かどうかを判定する。
// フェイルクローズ: 取得エラー、ユーザー不在、役割欠落はすべてfalseを返す。
// 管理者専用操作のゲートであり、誤判定は権限昇格につながるため例外を設けない。
func (s *Service) IsAdministrator(ctx context.Context, userID string) bool {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		slog.Warn("管理者判定でユーザー取得に失敗したため拒否します",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
		return false
	}
	if user == nil {
		return false
	}
	return user.IsAdministrator()
}

// SetRole は対象ユーザーの役割を変更する。
// 役割値のバリデーションを通過しない場合、書き込みは一切行わない。
// 自分自身の役割変更は最後の管理者を失うリスクがあるため拒否する。
func (s *Service) SetRole(ctx context.Context, callerID, targetID string, role model.Role) error {
	if !role.IsValid() {
		return model.NewInvalidRoleError(string(role))
	}
	if callerID == targetID {
		return model.NewSelfRoleChangeError()
	}

	target, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return fmt.Errorf("対象ユーザーの取得に失敗しました: %w", err)
	}
	if target == nil {
		return model.NewUserNotFoundError()
	}

	if target.Role == role {
		// 同一役割への変更は書き込み不要
		return nil
	}

	if err := s.userRepo.UpdateRole(ctx, targetID, role); err != nil {
		return fmt.Errorf("役割の更新に失敗しました: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordRoleChange(string(role))
	}

	slog.Info("役割を変更しました",
		slog.String("caller_id", callerID),
		slog.String("target_id", targetID),
		slog.String("old_role", string(target.Role)),
		slog.String("new_role", string(role)),
	)

	return nil
}

// ListMembers は役割管理画面向けのユーザー一覧を返す。
// 呼び出し元自身は一覧から除外する（自己役割変更の入口を塞ぐ）。
func (s *Service) ListMembers(ctx context.Context, callerID string) ([]*model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ユーザー一覧の取得に失敗しました: %w", err)
	}

	members := make([]*model.User, 0, len(users))
	for _, u := range users {
		if u.ID == callerID {
			continue
		}
		members = append(members, u)
	}

	return members, nil
}
