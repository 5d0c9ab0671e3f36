package model

import "time"

// VoteCategory は投票カテゴリを表す。
// 1つの(ユーザー, アイデア)ペアにつき同時に1カテゴリのみが成立する。
type VoteCategory string

const (
	// VoteSupport は賛成票。
	VoteSupport VoteCategory = "support"
	// VoteReject は反対票。
	VoteReject VoteCategory = "reject"
	// VoteNeutral は中立票。
	VoteNeutral VoteCategory = "neutral"
)

// IsValid はVoteCategoryが3値の列挙に含まれるかを判定する。
func (c VoteCategory) IsValid() bool {
	switch c {
	case VoteSupport, VoteReject, VoteNeutral:
		return true
	default:
		return false
	}
}

// Vote はユーザーのアイデアに対する現在の投票状態を表す。
// UNIQUE(user_id, idea_id)制約により相互排他が保証される。
type Vote struct {
	ID        string
	UserID    string
	IdeaID    string
	Category  VoteCategory
	CreatedAt time.Time
	UpdatedAt time.Time
}

// VoteDelta は投票遷移によるカウンターの増減を表す。
type VoteDelta struct {
	Support int
	Reject  int
	Neutral int
}

// IsZero は増減がないことを判定する。
func (d VoteDelta) IsZero() bool {
	return d.Support == 0 && d.Reject == 0 && d.Neutral == 0
}

// TransitionDelta は投票の状態遷移に伴うカウンター増減を計算する。
// fromが空文字列（未投票）の場合は遷移先カウンターを+1するのみ。
// fromとtoが同一の場合はゼロ増減を返す（呼び出し側で冪等ガードする前提）。
func TransitionDelta(from, to VoteCategory) VoteDelta {
	if from == to {
		return VoteDelta{}
	}

	var d VoteDelta

	switch from {
	case VoteSupport:
		d.Support = -1
	case VoteReject:
		d.Reject = -1
	case VoteNeutral:
		d.Neutral = -1
	}

	switch to {
	case VoteSupport:
		d.Support++
	case VoteReject:
		d.Reject++
	case VoteNeutral:
		d.Neutral++
	}

	return d
}
