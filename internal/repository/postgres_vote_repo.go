package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/ideabank/internal/model"
)

// PostgresVoteRepo はPostgreSQLを使用した投票リポジトリ。
type PostgresVoteRepo struct {
	db *sql.DB
}

// NewPostgresVoteRepo はPostgresVoteRepoを生成する。
func NewPostgresVoteRepo(db *sql.DB) *PostgresVoteRepo {
	return &PostgresVoteRepo{db: db}
}

// FindByUserAndIdea はユーザーIDとアイデアIDで現在の投票を取得する。
// 未投票の場合はnilを返す。
func (r *PostgresVoteRepo) FindByUserAndIdea(ctx context.Context, userID, ideaID string) (*model.Vote, error) {
	vote := &model.Vote{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, idea_id, category, created_at, updated_at
		 FROM votes
		 WHERE user_id = $1 AND idea_id = $2`,
		userID, ideaID,
	).Scan(&vote.ID, &vote.UserID, &vote.IdeaID, &vote.Category, &vote.CreatedAt, &vote.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find vote: %w", err)
	}

	return vote, nil
}

// ListByUserAndProject はプロジェクト配下でのユーザーの投票をアイデアID→カテゴリで返す。
func (r *PostgresVoteRepo) ListByUserAndProject(ctx context.Context, userID, projectID string) (map[string]model.VoteCategory, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT v.idea_id, v.category
		 FROM votes v
		 JOIN ideas i ON i.id = v.idea_id
		 WHERE v.user_id = $1 AND i.project_id = $2`,
		userID, projectID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	votes := make(map[string]model.VoteCategory)
	for rows.Next() {
		var ideaID string
		var category model.VoteCategory
		if err := rows.Scan(&ideaID, &category); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes[ideaID] = category
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate votes: %w", err)
	}

	return votes, nil
}

// ApplyVote は投票遷移を1トランザクションで適用する。
// 投票行をFOR UPDATEでロックして前状態を確定させ、カテゴリをUPSERTした上で
// アイデアのカウンターをアトミックな増減で更新する。
// read-modify-writeではなくSQL側での相対更新のため、並行投票でも増分が失われない。
func (r *PostgresVoteRepo) ApplyVote(ctx context.Context, userID, ideaID string, category model.VoteCategory) (*model.Idea, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// 前状態をロック付きで取得。行がなければ未投票（空カテゴリ）。
	var prev model.VoteCategory
	err = tx.QueryRowContext(ctx,
		`SELECT category FROM votes WHERE user_id = $1 AND idea_id = $2 FOR UPDATE`,
		userID, ideaID,
	).Scan(&prev)
	if err != nil && err != sql.ErrNoRows {
		return nil, false, fmt.Errorf("failed to lock vote: %w", err)
	}

	// 同一カテゴリへの再投票は書き込まず現在のタリーを返す。
	if prev == category {
		idea, err := findIdeaTx(ctx, tx, ideaID)
		if err != nil {
			return nil, false, err
		}
		if err := tx.Commit(); err != nil {
			return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
		}
		return idea, false, nil
	}

	now := time.Now().UTC()
	_, err = tx.ExecContext(ctx,
		`INSERT INTO votes (id, user_id, idea_id, category, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $5)
		 ON CONFLICT (user_id, idea_id)
		 DO UPDATE SET category = EXCLUDED.category, updated_at = EXCLUDED.updated_at`,
		uuid.New().String(), userID, ideaID, category, now,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert vote: %w", err)
	}

	delta := model.TransitionDelta(prev, category)
	idea := &model.Idea{}
	err = tx.QueryRowContext(ctx,
		`UPDATE ideas
		 SET support_count = support_count + $2,
		     reject_count  = reject_count + $3,
		     neutral_count = neutral_count + $4,
		     updated_at    = $5
		 WHERE id = $1
		 RETURNING `+ideaColumns,
		ideaID, delta.Support, delta.Reject, delta.Neutral, now,
	).Scan(
		&idea.ID, &idea.ProjectID, &idea.Text, &idea.Author,
		&idea.SupportCount, &idea.RejectCount, &idea.NeutralCount,
		&idea.CreatedAt, &idea.UpdatedAt,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to update idea counters: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return idea, true, nil
}

// findIdeaTx はトランザクション内でアイデアを取得する。
func findIdeaTx(ctx context.Context, tx *sql.Tx, ideaID string) (*model.Idea, error) {
	idea := &model.Idea{}
	err := tx.QueryRowContext(ctx,
		`SELECT `+ideaColumns+` FROM ideas WHERE id = $1`,
		ideaID,
	).Scan(
		&idea.ID, &idea.ProjectID, &idea.Text, &idea.Author,
		&idea.SupportCount, &idea.RejectCount, &idea.NeutralCount,
		&idea.CreatedAt, &idea.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to find idea: %w", err)
	}
	return idea, nil
}

// compile-time interface check
var _ VoteRepository = (*PostgresVoteRepo)(nil)
