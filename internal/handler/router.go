package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/kumivoice/internal/metrics"
	"github.com/hitoshi/kumivoice/internal/middleware"
)

// HealthChecker はヘルスチェックでDB疎通を確認するためのインターフェース。
// *sql.DBが満たす。
type HealthChecker interface {
	PingContext(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Collector         metrics.MetricsCollector
	Gatherer          prometheus.Gatherer
	SessionFinder     middleware.AdminSessionFinder
	CORSAllowedOrigin string
	RateLimiter       *middleware.RateLimiter
	CSRFConfig        middleware.CSRFConfig
	HealthChecker     HealthChecker

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 意見
	OpinionService OpinionServiceInterface

	// 投稿
	PostService PostServiceInterface

	// アップロード
	UploadService UploadServiceInterface

	// RSSフィード
	FeedBaseURL string
	FeedTitle   string
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Logging → Recovery → RateLimit(General) → CSRF
//
// 管理者ルート（/api/admin/*）にはさらにAdminSessionミドルウェアを適用する。
// /health と /metrics はミドルウェアチェーンの外に配置する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	opinionHandler := NewOpinionHandler(deps.OpinionService)
	postHandler := NewPostHandler(deps.PostService)
	uploadHandler := NewUploadHandler(deps.UploadService)
	feedHandler := NewFeedHandler(deps.PostService, deps.FeedBaseURL, deps.FeedTitle)

	// --- 監視用ルート（ミドルウェアチェーンの外） ---

	r.Get("/health", newHealthHandler(deps.HealthChecker))
	if deps.Gatherer != nil {
		r.Handle("/metrics", metrics.SetupMetricsRoute(deps.Gatherer))
	}

	// --- APIルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
		r.Use(middleware.NewSecurityHeadersMiddleware())
		r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))
		r.Use(middleware.NewRecoveryMiddleware())
		r.Use(deps.RateLimiter.GeneralMiddleware())
		r.Use(middleware.NewCSRFMiddleware(deps.CSRFConfig))

		// CSRFトークン取得
		r.Method(http.MethodGet, "/api/csrf-token", middleware.NewCSRFTokenHandler(deps.CSRFConfig))

		// --- 認証不要の公開ルート ---

		// 意見投稿（投稿専用レート制限を追加）
		r.With(deps.RateLimiter.SubmitMiddleware()).Post("/api/opinions", opinionHandler.Submit)

		// 公開投稿
		r.Route("/api/posts", func(r chi.Router) {
			r.Get("/", postHandler.ListPublished)
			r.Get("/archive", postHandler.Archive)
			r.Get("/{id}", postHandler.GetPublic)
		})

		// RSSフィード
		r.Get("/api/feed", feedHandler.Feed)

		// 管理者ログイン
		r.Post("/api/admin/login", authHandler.Login)
		r.Post("/api/admin/logout", authHandler.Logout)
		r.Get("/api/admin/me", authHandler.Me)

		// --- 管理者専用ルート ---
		// ミドルウェアスタック: + AdminSession
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewAdminSessionMiddleware(deps.SessionFinder))

			// 意見管理
			r.Route("/api/admin/opinions", func(r chi.Router) {
				r.Get("/", opinionHandler.List)
				r.Get("/grouped", opinionHandler.Grouped)
				r.Get("/monthly-stats", opinionHandler.MonthlyStats)
				r.Get("/by-month", opinionHandler.ListByMonth)
				r.Post("/export", opinionHandler.Export)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", opinionHandler.Get)
					r.Patch("/", opinionHandler.Update)
					r.Delete("/", opinionHandler.Delete)
					r.Post("/read", opinionHandler.MarkRead)
				})
			})

			// ダッシュボード統計
			r.Get("/api/admin/stats", opinionHandler.Stats)

			// 投稿管理
			r.Route("/api/admin/posts", func(r chi.Router) {
				r.Post("/", postHandler.Create)
				r.Get("/", postHandler.List)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", postHandler.Get)
					r.Patch("/", postHandler.Update)
					r.Delete("/", postHandler.Delete)
				})
			})

			// 添付ファイルアップロード
			r.Route("/api/admin/uploads", func(r chi.Router) {
				r.Post("/image", uploadHandler.UploadImage)
				r.Post("/pdf", uploadHandler.UploadPDF)
				r.Delete("/", uploadHandler.Delete)
			})
		})
	})

	return r
}

// newHealthHandler はヘルスチェックエンドポイントのハンドラーを返す。
// DB疎通を確認し、失敗した場合は503を返す。
func newHealthHandler(checker HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := "ok"
		statusCode := http.StatusOK

		if checker != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
			defer cancel()
			if err := checker.PingContext(ctx); err != nil {
				slog.Error("health check: database ping failed", slog.String("error", err.Error()))
				status = "unavailable"
				statusCode = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(statusCode)
		json.NewEncoder(w).Encode(map[string]string{"status": status})
	}
}
