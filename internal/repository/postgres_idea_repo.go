package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/hitoshi/ideabank/internal/model"
)

// PostgresIdeaRepo はPostgreSQLを使用したアイデアリポジトリ。
type PostgresIdeaRepo struct {
	db *sql.DB
}

// NewPostgresIdeaRepo はPostgresIdeaRepoを生成する。
func NewPostgresIdeaRepo(db *sql.DB) *PostgresIdeaRepo {
	return &PostgresIdeaRepo{db: db}
}

const ideaColumns = `id, project_id, text, author, support_count, reject_count, neutral_count, created_at, updated_at`

// Create はカウンターがゼロの新規アイデアを作成する。
// created_at/updated_atはDB側のデフォルトで割り当て、生成された値をモデルに反映する。
func (r *PostgresIdeaRepo) Create(ctx context.Context, idea *model.Idea) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO ideas (id, project_id, text, author)
		 VALUES ($1, $2, $3, $4)
		 RETURNING support_count, reject_count, neutral_count, created_at, updated_at`,
		idea.ID, idea.ProjectID, idea.Text, idea.Author,
	).Scan(&idea.SupportCount, &idea.RejectCount, &idea.NeutralCount, &idea.CreatedAt, &idea.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert idea: %w", err)
	}
	return nil
}

// FindByID は指定IDのアイデアを取得する。見つからない場合はnilを返す。
func (r *PostgresIdeaRepo) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	idea := &model.Idea{}
	err := r.db.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = $1`,
		id,
	).Scan(
		&idea.ID, &idea.ProjectID, &idea.Text, &idea.Author,
		&idea.SupportCount, &idea.RejectCount, &idea.NeutralCount,
		&idea.CreatedAt, &idea.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find idea: %w", err)
	}

	return idea, nil
}

// ListByProject はプロジェクト配下のアイデアを投入順で返す。
// created_at昇順、同時刻はID昇順の安定した順序。topIdeasのタイブレークはこの順序に依存する。
func (r *PostgresIdeaRepo) ListByProject(ctx context.Context, projectID string) ([]*model.Idea, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas
		 WHERE project_id = $1
		 ORDER BY created_at ASC, id ASC`,
		projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list ideas: %w", err)
	}
	defer rows.Close()

	var ideas []*model.Idea
	for rows.Next() {
		idea := &model.Idea{}
		if err := rows.Scan(
			&idea.ID, &idea.ProjectID, &idea.Text, &idea.Author,
			&idea.SupportCount, &idea.RejectCount, &idea.NeutralCount,
			&idea.CreatedAt, &idea.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan idea: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ideas: %w", err)
	}

	return ideas, nil
}

// compile-time interface check
var _ IdeaRepository = (*PostgresIdeaRepo)(nil)
