package idea

import (
	"context"
	"errors"
	"testing"

	"github.com/hitoshi/ideabank/internal/model"
)

// --- モック ---

type mockIdeaRepo struct {
	createFn        func(ctx context.Context, idea *model.Idea) error
	listByProjectFn func(ctx context.Context, projectID string) ([]*model.Idea, error)
	createCalls     int
}

func (m *mockIdeaRepo) Create(ctx context.Context, idea *model.Idea) error {
	m.createCalls++
	if m.createFn != nil {
		return m.createFn(ctx, idea)
	}
	return nil
}

func (m *mockIdeaRepo) FindByID(ctx context.Context, id string) (*model.Idea, error) {
	return nil, nil
}

func (m *mockIdeaRepo) ListByProject(ctx context.Context, projectID string) ([]*model.Idea, error) {
	if m.listByProjectFn != nil {
		return m.listByProjectFn(ctx, projectID)
	}
	return nil, nil
}

type mockProjectRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.Project, error)
}

func (m *mockProjectRepo) Create(ctx context.Context, project *model.Project) error { return nil }

func (m *mockProjectRepo) FindByID(ctx context.Context, id string) (*model.Project, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.Project{ID: id, Name: "テストプロジェクト"}, nil
}

func (m *mockProjectRepo) List(ctx context.Context) ([]*model.Project, error) { return nil, nil }

type mockVoteRepo struct {
	listByUserAndProjectFn func(ctx context.Context, userID, projectID string) (map[string]model.VoteCategory, error)
}

func (m *mockVoteRepo) FindByUserAndIdea(ctx context.Context, userID, ideaID string) (*model.Vote, error) {
	return nil, nil
}

func (m *mockVoteRepo) ListByUserAndProject(ctx context.Context, userID, projectID string) (map[string]model.VoteCategory, error) {
	if m.listByUserAndProjectFn != nil {
		return m.listByUserAndProjectFn(ctx, userID, projectID)
	}
	return nil, nil
}

func (m *mockVoteRepo) ApplyVote(ctx context.Context, userID, ideaID string, category model.VoteCategory) (*model.Idea, bool, error) {
	return nil, false, nil
}

type mockUserRepo struct {
	findByIDFn func(ctx context.Context, id string) (*model.User, error)
}

func (m *mockUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return &model.User{ID: id, Name: "山田太郎"}, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return nil, nil
}
func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) { return nil, nil }
func (m *mockUserRepo) CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error {
	return nil
}
func (m *mockUserRepo) UpdateRole(ctx context.Context, id string, role model.Role) error { return nil }
func (m *mockUserRepo) UpdateProfile(ctx context.Context, id, name, email, avatarURL string) error {
	return nil
}

type mockSanitizer struct {
	sanitizeFn func(text string) string
}

func (m *mockSanitizer) Sanitize(text string) string {
	if m.sanitizeFn != nil {
		return m.sanitizeFn(text)
	}
	return text
}

type mockSubmitRecorder struct {
	count int
}

func (m *mockSubmitRecorder) RecordIdeaSubmitted() { m.count++ }

func newTestService(ideaRepo *mockIdeaRepo, projectRepo *mockProjectRepo, voteRepo *mockVoteRepo, userRepo *mockUserRepo, sanitizer *mockSanitizer, recorder *mockSubmitRecorder, topDefault int) *Service {
	if ideaRepo == nil {
		ideaRepo = &mockIdeaRepo{}
	}
	if projectRepo == nil {
		projectRepo = &mockProjectRepo{}
	}
	if voteRepo == nil {
		voteRepo = &mockVoteRepo{}
	}
	if userRepo == nil {
		userRepo = &mockUserRepo{}
	}
	var s Sanitizer
	if sanitizer != nil {
		s = sanitizer
	}
	var r SubmitRecorder
	if recorder != nil {
		r = recorder
	}
	return NewService(ideaRepo, projectRepo, voteRepo, userRepo, s, r, topDefault)
}

// --- Submit テスト ---

func TestService_Submit_Success(t *testing.T) {
	var created *model.Idea
	ideaRepo := &mockIdeaRepo{
		createFn: func(ctx context.Context, idea *model.Idea) error {
			created = idea
			return nil
		},
	}
	recorder := &mockSubmitRecorder{}
	svc := newTestService(ideaRepo, nil, nil, nil, nil, recorder, 10)

	idea, err := svc.Submit(context.Background(), "project-1", "user-1", "  検索機能を改善したい  ")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}

	if created == nil {
		t.Fatal("Createが呼ばれていない")
	}
	if idea.Text != "検索機能を改善したい" {
		t.Errorf("Text = %q, want trimmed text", idea.Text)
	}
	if idea.Author != "山田太郎" {
		t.Errorf("Author = %q, want 投稿時のユーザー表示名", idea.Author)
	}
	if idea.ID == "" {
		t.Error("IDが割り当てられていない")
	}
	if idea.SupportCount != 0 || idea.RejectCount != 0 || idea.NeutralCount != 0 {
		t.Error("新規アイデアのカウンターはすべてゼロであるべき")
	}
	if recorder.count != 1 {
		t.Errorf("RecordIdeaSubmitted calls = %d, want 1", recorder.count)
	}
}

// 空白のみの本文はストア書き込みの前に拒否される。
func TestService_Submit_WhitespaceOnlyText(t *testing.T) {
	ideaRepo := &mockIdeaRepo{}
	svc := newTestService(ideaRepo, nil, nil, nil, nil, nil, 10)

	_, err := svc.Submit(context.Background(), "project-1", "user-1", "   \n\t  ")
	if err == nil {
		t.Fatal("空白のみの本文に対してエラーを返すべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmptyIdeaText {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeEmptyIdeaText)
	}
	if ideaRepo.createCalls != 0 {
		t.Error("バリデーション失敗時はCreateを呼び出すべきではない")
	}
}

func TestService_Submit_ProjectNotFound(t *testing.T) {
	projectRepo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return nil, nil
		},
	}
	svc := newTestService(nil, projectRepo, nil, nil, nil, nil, 10)

	_, err := svc.Submit(context.Background(), "ghost-project", "user-1", "アイデア本文")
	if err == nil {
		t.Fatal("プロジェクト不在に対してエラーを返すべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectNotFound {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeProjectNotFound)
	}
}

// 本文はサニタイズしてから保存される。
func TestService_Submit_SanitizesText(t *testing.T) {
	var created *model.Idea
	ideaRepo := &mockIdeaRepo{
		createFn: func(ctx context.Context, idea *model.Idea) error {
			created = idea
			return nil
		},
	}
	sanitizer := &mockSanitizer{
		sanitizeFn: func(text string) string {
			return "サニタイズ済み本文"
		},
	}
	svc := newTestService(ideaRepo, nil, nil, nil, sanitizer, nil, 10)

	_, err := svc.Submit(context.Background(), "project-1", "user-1", "<script>alert(1)</script>本文")
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if created.Text != "サニタイズ済み本文" {
		t.Errorf("Text = %q, want サニタイズ済み本文", created.Text)
	}
}

// サニタイズで本文が消えた場合も空本文として拒否される。
func TestService_Submit_EmptyAfterSanitize(t *testing.T) {
	ideaRepo := &mockIdeaRepo{}
	sanitizer := &mockSanitizer{
		sanitizeFn: func(text string) string { return "  " },
	}
	svc := newTestService(ideaRepo, nil, nil, nil, sanitizer, nil, 10)

	_, err := svc.Submit(context.Background(), "project-1", "user-1", "<script>alert(1)</script>")
	if err == nil {
		t.Fatal("サニタイズ後に空になった本文に対してエラーを返すべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeEmptyIdeaText {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeEmptyIdeaText)
	}
	if ideaRepo.createCalls != 0 {
		t.Error("サニタイズ後に空の場合はCreateを呼び出すべきではない")
	}
}

func TestService_Submit_WriteFailed(t *testing.T) {
	ideaRepo := &mockIdeaRepo{
		createFn: func(ctx context.Context, idea *model.Idea) error {
			return errors.New("connection reset")
		},
	}
	svc := newTestService(ideaRepo, nil, nil, nil, nil, nil, 10)

	_, err := svc.Submit(context.Background(), "project-1", "user-1", "アイデア本文")
	if err == nil {
		t.Fatal("書き込み失敗に対してエラーを返すべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeWriteFailed {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeWriteFailed)
	}
}

// --- ListByProject テスト ---

// 一覧は閲覧ユーザー自身の投票カテゴリを付与して返す。
func TestService_ListByProject_MergesMyVote(t *testing.T) {
	ideaRepo := &mockIdeaRepo{
		listByProjectFn: func(ctx context.Context, projectID string) ([]*model.Idea, error) {
			return []*model.Idea{
				{ID: "idea-1"},
				{ID: "idea-2"},
				{ID: "idea-3"},
			}, nil
		},
	}
	voteRepo := &mockVoteRepo{
		listByUserAndProjectFn: func(ctx context.Context, userID, projectID string) (map[string]model.VoteCategory, error) {
			return map[string]model.VoteCategory{
				"idea-1": model.VoteSupport,
				"idea-3": model.VoteReject,
			}, nil
		},
	}
	svc := newTestService(ideaRepo, nil, voteRepo, nil, nil, nil, 10)

	got, err := svc.ListByProject(context.Background(), "project-1", "user-1")
	if err != nil {
		t.Fatalf("ListByProject returned error: %v", err)
	}

	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}
	if got[0].MyVote != model.VoteSupport {
		t.Errorf("idea-1 MyVote = %q, want support", got[0].MyVote)
	}
	if got[1].MyVote != "" {
		t.Errorf("idea-2 MyVote = %q, want 空文字列（未投票）", got[1].MyVote)
	}
	if got[2].MyVote != model.VoteReject {
		t.Errorf("idea-3 MyVote = %q, want reject", got[2].MyVote)
	}
}

// --- TopIdeas テスト ---

func topTestIdeas() []*model.Idea {
	// 投入順: 賛成数 [5, 2, 9, 2]
	return []*model.Idea{
		{ID: "idea-a", SupportCount: 5},
		{ID: "idea-b", SupportCount: 2},
		{ID: "idea-c", SupportCount: 9},
		{ID: "idea-d", SupportCount: 2},
	}
}

// 賛成数の多い順、同数時は投入順を保つ。
func TestService_TopIdeas_OrderAndTiebreak(t *testing.T) {
	ideaRepo := &mockIdeaRepo{
		listByProjectFn: func(ctx context.Context, projectID string) ([]*model.Idea, error) {
			return topTestIdeas(), nil
		},
	}
	svc := newTestService(ideaRepo, nil, nil, nil, nil, nil, 10)

	got, err := svc.TopIdeas(context.Background(), "project-1", 10)
	if err != nil {
		t.Fatalf("TopIdeas returned error: %v", err)
	}

	wantOrder := []string{"idea-c", "idea-a", "idea-b", "idea-d"}
	if len(got) != len(wantOrder) {
		t.Fatalf("len = %d, want %d", len(got), len(wantOrder))
	}
	for i, want := range wantOrder {
		if got[i].ID != want {
			t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, want)
		}
	}
}

func TestService_TopIdeas_Truncates(t *testing.T) {
	ideaRepo := &mockIdeaRepo{
		listByProjectFn: func(ctx context.Context, projectID string) ([]*model.Idea, error) {
			return topTestIdeas(), nil
		},
	}
	svc := newTestService(ideaRepo, nil, nil, nil, nil, nil, 10)

	got, err := svc.TopIdeas(context.Background(), "project-1", 2)
	if err != nil {
		t.Fatalf("TopIdeas returned error: %v", err)
	}

	if len(got) != 2 {
		t.Fatalf("len = %d, want 2", len(got))
	}
	if got[0].ID != "idea-c" || got[1].ID != "idea-a" {
		t.Errorf("order = [%s, %s], want [idea-c, idea-a]", got[0].ID, got[1].ID)
	}
}

// 件数未指定（0以下）の場合はデフォルト件数が使われる。
func TestService_TopIdeas_DefaultLimit(t *testing.T) {
	ideaRepo := &mockIdeaRepo{
		listByProjectFn: func(ctx context.Context, projectID string) ([]*model.Idea, error) {
			return topTestIdeas(), nil
		},
	}
	svc := newTestService(ideaRepo, nil, nil, nil, nil, nil, 3)

	got, err := svc.TopIdeas(context.Background(), "project-1", 0)
	if err != nil {
		t.Fatalf("TopIdeas returned error: %v", err)
	}

	if len(got) != 3 {
		t.Errorf("len = %d, want デフォルト件数の3", len(got))
	}
}

func TestService_TopIdeas_ProjectNotFound(t *testing.T) {
	projectRepo := &mockProjectRepo{
		findByIDFn: func(ctx context.Context, id string) (*model.Project, error) {
			return nil, nil
		},
	}
	svc := newTestService(nil, projectRepo, nil, nil, nil, nil, 10)

	_, err := svc.TopIdeas(context.Background(), "ghost-project", 5)
	if err == nil {
		t.Fatal("プロジェクト不在に対してエラーを返すべき")
	}

	var apiErr *model.APIError
	if !errors.As(err, &apiErr) || apiErr.Code != model.ErrCodeProjectNotFound {
		t.Errorf("error = %v, want APIError with code %s", err, model.ErrCodeProjectNotFound)
	}
}
