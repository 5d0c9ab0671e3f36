package model

import "time"

// Project はアイデアの親となるプロジェクトを表す。
// 管理者のみが作成でき、作成後は変更されない（編集・削除の経路はない）。
type Project struct {
	ID          string
	Name        string
	Description string
	CreatedAt   time.Time
}

// Idea はプロジェクト配下に投稿されたアイデアを表す。
// 3つのカウンターは投票台帳（vote.Service）経由でのみ増減する。
type Idea struct {
	ID           string
	ProjectID    string
	Text         string
	Author       string // 投稿時点の表示名またはメールアドレス
	SupportCount int
	RejectCount  int
	NeutralCount int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
