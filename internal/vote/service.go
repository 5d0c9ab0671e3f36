// Package vote は投票台帳のドメインロジックを提供する。
package vote

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/ideabank/internal/model"
	"github.com/hitoshi/ideabank/internal/repository"
)

// Metrics は投票メトリクスの記録インターフェース。
type Metrics interface {
	RecordVoteCast(category string)
	RecordVoteNoop()
}

// Service は投票のサービス層。
// 1つの(ユーザー, アイデア)ペアにつき同時に1カテゴリのみが成立する
// という不変条件の唯一の書き込み経路。
type Service struct {
	voteRepo repository.VoteRepository
	ideaRepo repository.IdeaRepository
	metrics  Metrics
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(voteRepo repository.VoteRepository, ideaRepo repository.IdeaRepository, metrics Metrics) *Service {
	return &Service{
		voteRepo: voteRepo,
		ideaRepo: ideaRepo,
		metrics:  metrics,
	}
}

// CastVote はユーザーのアイデアに対する投票を適用し、更新後のアイデアを返す。
//
// 遷移規則:
//   - 未投票 → カテゴリc: cのカウンターを+1
//   - カテゴリa → カテゴリb (a≠b): aを-1、bを+1
//   - カテゴリc → カテゴリc: 冪等。ストアへの書き込みを一切行わない
//
// カテゴリのバリデーションとアイデアの存在確認はストア書き込みの前に行う。
// 書き込み失敗時はWriteFailedを返し、投票は未反映のため再試行できる。
func (s *Service) CastVote(ctx context.Context, userID, ideaID string, category model.VoteCategory) (*model.Idea, error) {
	if !category.IsValid() {
		return nil, model.NewInvalidVoteCategoryError(string(category))
	}

	idea, err := s.ideaRepo.FindByID(ctx, ideaID)
	if err != nil {
		return nil, fmt.Errorf("アイデアの取得に失敗しました: %w", err)
	}
	if idea == nil {
		return nil, model.NewIdeaNotFoundError(ideaID)
	}

	// 同一カテゴリへの再投票はストア変更前に検出する。
	// ApplyVote内でも再確認するため、この事前チェックと書き込みの間に
	// 並行投票が割り込んでも二重適用にはならない。
	current, err := s.voteRepo.FindByUserAndIdea(ctx, userID, ideaID)
	if err != nil {
		return nil, fmt.Errorf("投票状態の取得に失敗しました: %w", err)
	}
	if current != nil && current.Category == category {
		if s.metrics != nil {
			s.metrics.RecordVoteNoop()
		}
		return idea, nil
	}

	updated, changed, err := s.voteRepo.ApplyVote(ctx, userID, ideaID, category)
	if err != nil {
		slog.Error("投票の適用に失敗しました",
			slog.String("user_id", userID),
			slog.String("idea_id", ideaID),
			slog.String("category", string(category)),
			slog.String("error", err.Error()),
		)
		return nil, model.NewWriteFailedError()
	}

	if s.metrics != nil {
		if changed {
			s.metrics.RecordVoteCast(string(category))
		} else {
			s.metrics.RecordVoteNoop()
		}
	}

	return updated, nil
}

// CurrentVote はユーザーのアイデアに対する現在の投票カテゴリを返す。
// 未投票の場合は空文字列を返す。
func (s *Service) CurrentVote(ctx context.Context, userID, ideaID string) (model.VoteCategory, error) {
	vote, err := s.voteRepo.FindByUserAndIdea(ctx, userID, ideaID)
	if err != nil {
		return "", fmt.Errorf("投票状態の取得に失敗しました: %w", err)
	}
	if vote == nil {
		return "", nil
	}
	return vote.Category, nil
}
