package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ideabank/internal/idea"
	"github.com/hitoshi/ideabank/internal/middleware"
	"github.com/hitoshi/ideabank/internal/model"
)

// IdeaServiceInterface はアイデアハンドラーが必要とするサービスインターフェース。
type IdeaServiceInterface interface {
	// Submit は新しいアイデアを投稿する。
	Submit(ctx context.Context, projectID, userID, text string) (*model.Idea, error)
	// ListByProject はプロジェクト配下のアイデアを投入順で返す。
	ListByProject(ctx context.Context, projectID, viewerID string) ([]*idea.IdeaWithVote, error)
	// TopIdeas は賛成数の多い順に最大n件返す。
	TopIdeas(ctx context.Context, projectID string, n int) ([]*model.Idea, error)
}

// VoteServiceInterface は投票ハンドラーが必要とするサービスインターフェース。
type VoteServiceInterface interface {
	// CastVote は投票を適用し、更新後のアイデアを返す。
	CastVote(ctx context.Context, userID, ideaID string, category model.VoteCategory) (*model.Idea, error)
}

// IdeaHandler はアイデア管理のHTTPハンドラー。
type IdeaHandler struct {
	ideaService IdeaServiceInterface
	voteService VoteServiceInterface
}

// NewIdeaHandler はIdeaHandlerを生成する。
func NewIdeaHandler(ideaService IdeaServiceInterface, voteService VoteServiceInterface) *IdeaHandler {
	return &IdeaHandler{
		ideaService: ideaService,
		voteService: voteService,
	}
}

// submitIdeaRequest はアイデア投稿リクエストのボディ。
type submitIdeaRequest struct {
	Text string `json:"text"`
}

// castVoteRequest は投票リクエストのボディ。
type castVoteRequest struct {
	Category string `json:"category"`
}

// ideaResponse はアイデア情報のAPIレスポンス。
type ideaResponse struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	Text         string    `json:"text"`
	Author       string    `json:"author"`
	SupportCount int       `json:"support_count"`
	RejectCount  int       `json:"reject_count"`
	NeutralCount int       `json:"neutral_count"`
	MyVote       string    `json:"my_vote,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// apiErrorResponse は統一エラーフォーマットのレスポンス。
type apiErrorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// SubmitIdea はアイデア投稿を処理する。
// POST /api/projects/:projectID/ideas
func (h *IdeaHandler) SubmitIdea(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	projectID := chi.URLParam(r, "projectID")

	var req submitIdeaRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	created, err := h.ideaService.Submit(r.Context(), projectID, userID, req.Text)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(toIdeaResponse(created, ""))
}

// ListIdeas はプロジェクト配下のアイデア一覧を返す。
// 各アイデアには閲覧ユーザー自身の投票カテゴリが含まれる。
// GET /api/projects/:projectID/ideas
func (h *IdeaHandler) ListIdeas(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	projectID := chi.URLParam(r, "projectID")

	ideas, err := h.ideaService.ListByProject(r.Context(), projectID, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]ideaResponse, 0, len(ideas))
	for _, iv := range ideas {
		resp = append(resp, toIdeaResponse(iv.Idea, string(iv.MyVote)))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// TopIdeas は賛成数の多い順のアイデア一覧を返す。
// GET /api/projects/:projectID/ideas/top?limit=n
func (h *IdeaHandler) TopIdeas(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectID")

	// limit未指定・不正値はサービス層のデフォルトに落とす
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	ideas, err := h.ideaService.TopIdeas(r.Context(), projectID, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]ideaResponse, 0, len(ideas))
	for _, i := range ideas {
		resp = append(resp, toIdeaResponse(i, ""))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// CastVote はアイデアへの投票を処理する。
// PUT /api/ideas/:id/vote
func (h *IdeaHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	ideaID := chi.URLParam(r, "id")

	var req castVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	updated, err := h.voteService.CastVote(r.Context(), userID, ideaID, model.VoteCategory(req.Category))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(toIdeaResponse(updated, req.Category))
}

// --- ヘルパー関数 ---

// toIdeaResponse はmodel.IdeaからAPIレスポンスに変換する。
func toIdeaResponse(i *model.Idea, myVote string) ideaResponse {
	return ideaResponse{
		ID:           i.ID,
		ProjectID:    i.ProjectID,
		Text:         i.Text,
		Author:       i.Author,
		SupportCount: i.SupportCount,
		RejectCount:  i.RejectCount,
		NeutralCount: i.NeutralCount,
		MyVote:       myVote,
		CreatedAt:    i.CreatedAt,
	}
}

// writeAPIErrorResponse は統一エラーフォーマットでエラーレスポンスを書き込む。
func writeAPIErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(apiErrorResponse{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	})
}

// writeUnauthorizedResponse は401の統一レスポンスを書き込む。
func writeUnauthorizedResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusUnauthorized, &model.APIError{
		Code:     "UNAUTHORIZED",
		Message:  "認証が必要です。",
		Category: "auth",
		Action:   "ログインしてください。",
	})
}

// writeInvalidRequestResponse はリクエストボディ解析失敗の統一レスポンスを書き込む。
func writeInvalidRequestResponse(w http.ResponseWriter) {
	writeAPIErrorResponse(w, http.StatusBadRequest, &model.APIError{
		Code:     "INVALID_REQUEST",
		Message:  "リクエストボディの解析に失敗しました。",
		Category: "validation",
		Action:   "正しいJSON形式でリクエストしてください。",
	})
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPステータスコードに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		statusCode := mapAPIErrorToHTTPStatus(apiErr)
		writeAPIErrorResponse(w, statusCode, apiErr)
		return
	}

	// APIError以外のエラーは内部サーバーエラーとして扱う
	slog.Error("internal server error", slog.String("error", err.Error()))
	writeAPIErrorResponse(w, http.StatusInternalServerError, &model.APIError{
		Code:     "INTERNAL_ERROR",
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	})
}

// mapAPIErrorToHTTPStatus はAPIErrorコードからHTTPステータスコードにマッピングする。
func mapAPIErrorToHTTPStatus(apiErr *model.APIError) int {
	switch apiErr.Code {
	case model.ErrCodeEmptyIdeaText,
		model.ErrCodeInvalidVote,
		model.ErrCodeInvalidRole,
		model.ErrCodeSelfRoleChange,
		model.ErrCodeEmptyProjectName:
		return http.StatusBadRequest
	case model.ErrCodeIdeaNotFound,
		model.ErrCodeProjectNotFound,
		model.ErrCodeUserNotFound:
		return http.StatusNotFound
	case model.ErrCodeForbidden:
		return http.StatusForbidden
	case model.ErrCodeWriteFailed:
		// 書き込みは未反映のため、クライアントは再試行できる
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
