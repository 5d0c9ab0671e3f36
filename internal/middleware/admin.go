package middleware

import (
	"context"
	"net/http"

	"github.com/hitoshi/ideabank/internal/model"
)

// AdminChecker は管理者判定のインターフェース。
// access.Serviceの部分集合として定義する。
type AdminChecker interface {
	IsAdministrator(ctx context.Context, userID string) bool
}

// NewAdminMiddleware は管理者専用エンドポイントのゲートミドルウェアを返す。
// セッションミドルウェアの後に配置する前提で、コンテキストのユーザーIDを判定に使う。
// フェイルクローズ: ユーザーID欠落、判定不能はすべて403を返す。
func NewAdminMiddleware(checker AdminChecker) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			if !checker.IsAdministrator(r.Context(), userID) {
				WriteErrorResponse(w, http.StatusForbidden, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
