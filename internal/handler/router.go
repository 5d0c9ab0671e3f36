package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/ideabank/internal/metrics"
	"github.com/hitoshi/ideabank/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder     middleware.SessionFinder
	AdminChecker      middleware.AdminChecker
	CORSAllowedOrigin string
	CSRFConfig        middleware.CSRFConfig
	RateLimiter       *middleware.RateLimiter

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// プロジェクト
	ProjectService ProjectServiceInterface

	// アイデア・投票
	IdeaService IdeaServiceInterface
	VoteService VoteServiceInterface

	// ユーザー・役割
	AccessService AccessServiceInterface

	// メトリクス
	MetricsCollector *metrics.Collector
	MetricsGatherer  prometheus.Gatherer
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → CORS → Metrics → CSRF → Session → RateLimit(General)
//
// 認証ルート（/auth/*）と/health、/metricsはセッションチェーンの外に配置する。
// 管理者専用ルート（プロジェクト作成、ユーザー・役割管理）はさらにAdminミドルウェアで包む。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	if deps.MetricsCollector != nil {
		r.Use(deps.MetricsCollector.Middleware())
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	projectHandler := NewProjectHandler(deps.ProjectService)
	ideaHandler := NewIdeaHandler(deps.IdeaService, deps.VoteService)
	userHandler := NewUserHandler(deps.AccessService)

	adminOnly := middleware.NewAdminMiddleware(deps.AdminChecker)

	// --- 認証不要のルート ---

	// 認証ルート（OAuthフロー）
	r.Route("/auth", func(r chi.Router) {
		r.Get("/google/login", authHandler.Login)
		r.Get("/google/callback", authHandler.Callback)
		r.Post("/logout", authHandler.Logout)
		r.Get("/me", authHandler.Me)
	})

	// CSRFトークン取得
	r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

	// ヘルスチェック
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	// Prometheusスクレイプ
	if deps.MetricsGatherer != nil {
		r.Method(http.MethodGet, "/metrics", metrics.Handler(deps.MetricsGatherer))
	}

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: CSRF → Session → RateLimit(General)
	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))
		r.Use(middleware.NewSessionMiddleware(deps.SessionFinder))
		r.Use(deps.RateLimiter.GeneralMiddleware())

		// プロジェクト管理
		r.Route("/api/projects", func(r chi.Router) {
			r.Get("/", projectHandler.ListProjects)

			// POST /api/projects - プロジェクト作成（管理者専用）
			r.With(adminOnly).Post("/", projectHandler.CreateProject)

			r.Route("/{projectID}", func(r chi.Router) {
				r.Get("/", projectHandler.GetProject)

				// アイデア
				r.Route("/ideas", func(r chi.Router) {
					r.Get("/", ideaHandler.ListIdeas)
					r.Post("/", ideaHandler.SubmitIdea)
					r.Get("/top", ideaHandler.TopIdeas)
				})
			})
		})

		// 投票（投票専用レート制限を追加）
		r.With(deps.RateLimiter.VoteMiddleware()).Put("/api/ideas/{id}/vote", ideaHandler.CastVote)

		// ユーザー・役割管理（管理者専用）
		r.Route("/api/users", func(r chi.Router) {
			r.Use(adminOnly)
			r.Get("/", userHandler.ListUsers)
			r.Put("/{id}/role", userHandler.SetRole)
		})
	})

	return r
}
