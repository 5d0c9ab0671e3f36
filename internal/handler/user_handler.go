package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/ideabank/internal/middleware"
	"github.com/hitoshi/ideabank/internal/model"
)

// AccessServiceInterface はユーザーハンドラーが必要とするサービスインターフェース。
type AccessServiceInterface interface {
	// SetRole は対象ユーザーの役割を変更する。
	SetRole(ctx context.Context, callerID, targetID string, role model.Role) error
	// ListMembers は呼び出し元自身を除いたユーザー一覧を返す。
	ListMembers(ctx context.Context, callerID string) ([]*model.User, error)
}

// UserHandler はユーザー・役割管理のHTTPハンドラー。
// すべてのエンドポイントは管理者ミドルウェアの内側に配置する。
type UserHandler struct {
	service AccessServiceInterface
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(service AccessServiceInterface) *UserHandler {
	return &UserHandler{
		service: service,
	}
}

// setRoleRequest は役割変更リクエストのボディ。
type setRoleRequest struct {
	Role string `json:"role"`
}

// userResponse はユーザー情報のAPIレスポンス。
type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatar_url"`
	Role      string `json:"role"`
}

// ListUsers は役割管理画面向けのユーザー一覧を返す。
// 呼び出し元自身は含まれない。
// GET /api/users
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	users, err := h.service.ListMembers(r.Context(), callerID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	resp := make([]userResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, toUserResponse(u))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}

// SetRole は対象ユーザーの役割を変更する。
// PUT /api/users/:id/role
func (h *UserHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	callerID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		writeUnauthorizedResponse(w)
		return
	}

	targetID := chi.URLParam(r, "id")

	var req setRoleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeInvalidRequestResponse(w)
		return
	}

	if err := h.service.SetRole(r.Context(), callerID, targetID, model.Role(req.Role)); err != nil {
		handleServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		AvatarURL: u.AvatarURL,
		Role:      string(u.Role),
	}
}
