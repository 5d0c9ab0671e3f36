package model

import "testing"

func TestVoteCategory_IsValid(t *testing.T) {
	tests := []struct {
		category VoteCategory
		want     bool
	}{
		{VoteSupport, true},
		{VoteReject, true},
		{VoteNeutral, true},
		{VoteCategory(""), false},
		{VoteCategory("upvote"), false},
		{VoteCategory("Support"), false},
	}

	for _, tt := range tests {
		if got := tt.category.IsValid(); got != tt.want {
			t.Errorf("VoteCategory(%q).IsValid() = %v, want %v", tt.category, got, tt.want)
		}
	}
}

// TestTransitionDelta は投票の状態遷移表どおりの増減になることを検証する。
func TestTransitionDelta(t *testing.T) {
	tests := []struct {
		name string
		from VoteCategory
		to   VoteCategory
		want VoteDelta
	}{
		{"未投票から賛成", "", VoteSupport, VoteDelta{Support: 1}},
		{"未投票から反対", "", VoteReject, VoteDelta{Reject: 1}},
		{"未投票から中立", "", VoteNeutral, VoteDelta{Neutral: 1}},
		{"賛成から反対", VoteSupport, VoteReject, VoteDelta{Support: -1, Reject: 1}},
		{"賛成から中立", VoteSupport, VoteNeutral, VoteDelta{Support: -1, Neutral: 1}},
		{"反対から賛成", VoteReject, VoteSupport, VoteDelta{Support: 1, Reject: -1}},
		{"反対から中立", VoteReject, VoteNeutral, VoteDelta{Reject: -1, Neutral: 1}},
		{"中立から賛成", VoteNeutral, VoteSupport, VoteDelta{Support: 1, Neutral: -1}},
		{"中立から反対", VoteNeutral, VoteReject, VoteDelta{Reject: 1, Neutral: -1}},
		{"賛成から賛成は増減なし", VoteSupport, VoteSupport, VoteDelta{}},
		{"反対から反対は増減なし", VoteReject, VoteReject, VoteDelta{}},
		{"中立から中立は増減なし", VoteNeutral, VoteNeutral, VoteDelta{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := TransitionDelta(tt.from, tt.to)
			if got != tt.want {
				t.Errorf("TransitionDelta(%q, %q) = %+v, want %+v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

// TestTransitionDelta_NetChangeIsAtMostOne は任意の遷移で合計変化量が0か+1であることを検証する。
// 未投票からの遷移は合計+1、投票済みからの遷移は合計0になる。
func TestTransitionDelta_NetChangeIsAtMostOne(t *testing.T) {
	categories := []VoteCategory{"", VoteSupport, VoteReject, VoteNeutral}

	for _, from := range categories {
		for _, to := range categories[1:] {
			d := TransitionDelta(from, to)
			net := d.Support + d.Reject + d.Neutral

			if from == "" && from != to {
				if net != 1 {
					t.Errorf("TransitionDelta(%q, %q): 合計変化量 = %d, want 1", from, to, net)
				}
			} else {
				if net != 0 {
					t.Errorf("TransitionDelta(%q, %q): 合計変化量 = %d, want 0", from, to, net)
				}
			}
		}
	}
}

func TestVoteDelta_IsZero(t *testing.T) {
	if !(VoteDelta{}).IsZero() {
		t.Error("ゼロ値のVoteDeltaはIsZero() = trueであるべき")
	}
	if (VoteDelta{Support: 1}).IsZero() {
		t.Error("Support=1のVoteDeltaはIsZero() = falseであるべき")
	}
}
