// Package project はプロジェクト管理のドメインロジックを提供する。
package project

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/hitoshi/ideabank/internal/model"
	"github.com/hitoshi/ideabank/internal/repository"
)

// CreateRecorder はプロジェクト作成メトリクスの記録インターフェース。
type CreateRecorder interface {
	RecordProjectCreated()
}

// Service はプロジェクトのサービス層。
type Service struct {
	projectRepo repository.ProjectRepository
	metrics     CreateRecorder
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(projectRepo repository.ProjectRepository, metrics CreateRecorder) *Service {
	return &Service{
		projectRepo: projectRepo,
		metrics:     metrics,
	}
}

// Create は新しいプロジェクトを作成する。管理者専用の操作。
// 空白のみの名前は拒否する。
func (s *Service) Create(ctx context.Context, name, description string) (*model.Project, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, model.NewEmptyProjectNameError()
	}

	project := &model.Project{
		ID:          uuid.New().String(),
		Name:        name,
		Description: strings.TrimSpace(description),
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		slog.Error("プロジェクトの保存に失敗しました",
			slog.String("name", name),
			slog.String("error", err.Error()),
		)
		return nil, model.NewWriteFailedError()
	}

	if s.metrics != nil {
		s.metrics.RecordProjectCreated()
	}

	slog.Info("プロジェクトを作成しました",
		slog.String("project_id", project.ID),
		slog.String("name", name),
	)

	return project, nil
}

// Get は指定IDのプロジェクトを取得する。
func (s *Service) Get(ctx context.Context, id string) (*model.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("プロジェクトの取得に失敗しました: %w", err)
	}
	if project == nil {
		return nil, model.NewProjectNotFoundError(id)
	}
	return project, nil
}

// List は全プロジェクトを作成日時順で返す。
func (s *Service) List(ctx context.Context) ([]*model.Project, error) {
	projects, err := s.projectRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("プロジェクト一覧の取得に失敗しました: %w", err)
	}
	return projects, nil
}
