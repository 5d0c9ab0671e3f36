// Package idea はアイデアの投稿・閲覧のドメインロジックを提供する。
package idea

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/ideabank/internal/model"
	"github.com/hitoshi/ideabank/internal/repository"
)

// Sanitizer は投稿本文のサニタイズインターフェース。
type Sanitizer interface {
	Sanitize(text string) string
}

// SubmitRecorder はアイデア投稿メトリクスの記録インターフェース。
type SubmitRecorder interface {
	RecordIdeaSubmitted()
}

// IdeaWithVote はアイデアと閲覧ユーザー自身の投票カテゴリの組。
// 未投票の場合MyVoteは空文字列。
type IdeaWithVote struct {
	*model.Idea
	MyVote model.VoteCategory
}

// Service はアイデアのサービス層。
type Service struct {
	ideaRepo    repository.IdeaRepository
	projectRepo repository.ProjectRepository
	voteRepo    repository.VoteRepository
	userRepo    repository.UserRepository
	sanitizer   Sanitizer
	metrics     SubmitRecorder
	topDefault  int
}

// NewService はServiceの新しいインスタンスを生成する。
// topDefaultはtop一覧で件数未指定時に返す件数。
func NewService(
	ideaRepo repository.IdeaRepository,
	projectRepo repository.ProjectRepository,
	voteRepo repository.VoteRepository,
	userRepo repository.UserRepository,
	sanitizer Sanitizer,
	metrics SubmitRecorder,
	topDefault int,
) *Service {
	return &Service{
		ideaRepo:    ideaRepo,
		projectRepo: projectRepo,
		voteRepo:    voteRepo,
		userRepo:    userRepo,
		sanitizer:   sanitizer,
		metrics:     metrics,
		topDefault:  topDefault,
	}
}

// Submit は新しいアイデアを投稿する。
// 空白のみの本文はストア書き込みの前に拒否する。
// 本文はサニタイズ後に保存し、カウンターはすべてゼロで初期化される。
// 投稿者名は投稿時点のユーザー表示名のスナップショットとして保存する。
func (s *Service) Submit(ctx context.Context, projectID, userID, text string) (*model.Idea, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, model.NewEmptyIdeaTextError()
	}

	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}

	author, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("投稿者の取得に失敗しました: %w", err)
	}
	if author == nil {
		return nil, model.NewUserNotFoundError()
	}

	if s.sanitizer != nil {
		trimmed = s.sanitizer.Sanitize(trimmed)
		// サニタイズで本文が消えた場合も空本文として扱う
		if strings.TrimSpace(trimmed) == "" {
			return nil, model.NewEmptyIdeaTextError()
		}
	}

	idea := &model.Idea{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Text:      trimmed,
		Author:    author.Name,
	}

	if err := s.ideaRepo.Create(ctx, idea); err != nil {
		slog.Error("アイデアの保存に失敗しました",
			slog.String("project_id", projectID),
			slog.String("error", err.Error()),
		)
		return nil, model.NewWriteFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordIdeaSubmitted()
	}

	slog.Info("アイデアを投稿しました",
		slog.String("idea_id", idea.ID),
		slog.String("project_id", projectID),
	)

	return idea, nil
}

// ListByProject はプロジェクト配下のアイデアを投入順で返す。
// 各アイデアには閲覧ユーザー自身の投票カテゴリを付与する。
func (s *Service) ListByProject(ctx context.Context, projectID, viewerID string) ([]*IdeaWithVote, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}

	ideas, err := s.ideaRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("アイデア一覧の取得に失敗しました: %w", err)
	}

	votes, err := s.voteRepo.ListByUserAndProject(ctx, viewerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("投票状態の取得に失敗しました: %w", err)
	}

	result := make([]*IdeaWithVote, 0, len(ideas))
	for _, i := range ideas {
		result = append(result, &IdeaWithVote{
			Idea:   i,
			MyVote: votes[i.ID],
		})
	}

	return result, nil
}

// TopIdeas はプロジェクト配下のアイデアを賛成数の多い順に最大n件返す。
// 賛成数が同じ場合は投入順（作成日時昇順）を保つ。
// nが0以下の場合はデフォルト件数を使用する。
func (s *Service) TopIdeas(ctx context.Context, projectID string, n int) ([]*model.Idea, error) {
	project, err := s.projectRepo.FindByID(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(projectID)
	}

	ideas, err := s.ideaRepo.ListByProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("アイデア一覧の取得に失敗しました: %w", err)
	}

	if n <= 0 {
		n = s.topDefault
	}

	// 安定ソートにより同数時は投入順が保たれる
	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].SupportCount > ideas[j].SupportCount
	})

	if len(ideas) > n {
		ideas = ideas[:n]
	}

	return ideas, nil
}
