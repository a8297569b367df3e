// Package app はアプリケーションの起動と依存関係のワイヤリングを担当する。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/time/rate"

	"github.com/hitoshi/kumivoice/internal/aggregate"
	"github.com/hitoshi/kumivoice/internal/auth"
	"github.com/hitoshi/kumivoice/internal/config"
	"github.com/hitoshi/kumivoice/internal/database"
	"github.com/hitoshi/kumivoice/internal/handler"
	"github.com/hitoshi/kumivoice/internal/logger"
	"github.com/hitoshi/kumivoice/internal/metrics"
	"github.com/hitoshi/kumivoice/internal/middleware"
	"github.com/hitoshi/kumivoice/internal/opinion"
	"github.com/hitoshi/kumivoice/internal/post"
	"github.com/hitoshi/kumivoice/internal/report"
	"github.com/hitoshi/kumivoice/internal/repository"
	"github.com/hitoshi/kumivoice/internal/security"
	"github.com/hitoshi/kumivoice/internal/storage"
	"github.com/hitoshi/kumivoice/internal/upload"
)

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("base_url", cfg.BaseURL),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// runServe はAPIサーバーモードで起動する。
// DB接続を開き、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	slog.Info("database connection established")

	// 2. レポート用タイムゾーンとマスター定義の読み込み
	loc, err := cfg.ReportLocation()
	if err != nil {
		return err
	}

	master, err := config.LoadMaster(cfg.MasterFile)
	if err != nil {
		return fmt.Errorf("failed to load master definitions: %w", err)
	}

	// 3. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 4. リポジトリの初期化
	opinionRepo := repository.NewPostgresOpinionRepo(db)
	postRepo := repository.NewPostgresPostRepo(db)
	sessionRepo := repository.NewPostgresAdminSessionRepo(db)

	// 5. オブジェクトストレージの初期化
	store, err := storage.NewMinIO(storage.MinIOConfig{
		Endpoint:  cfg.MinIOEndpoint,
		AccessKey: cfg.MinIOAccessKey,
		SecretKey: cfg.MinIOSecretKey,
		Bucket:    cfg.MinIOBucket,
		UseSSL:    cfg.MinIOUseSSL,
		PublicURL: cfg.MinIOPublicURL,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize object storage: %w", err)
	}

	// 6. ドメインサービスの初期化
	clock := aggregate.SystemClock()
	engine := aggregate.NewEngine(clock, loc)
	assembler := report.NewAssembler(engine, clock)
	sink := report.NewWordMLSink()
	sanitizer := security.NewContentSanitizer()

	authService := auth.NewService(
		sessionRepo, cfg.AdminUsername, cfg.AdminPassword, cfg.SessionMaxAgeDuration(),
	)
	opinionService := opinion.NewService(opinionRepo, engine, assembler, sink, collector)
	postService := post.NewService(postRepo, sanitizer, master, engine, collector)
	uploadService := upload.NewService(store, collector)

	// 7. 期限切れセッションの定期クリーンアップ
	sessionCleanupCtx, stopSessionCleanup := context.WithCancel(context.Background())
	defer stopSessionCleanup()
	go runSessionCleanup(sessionCleanupCtx, authService)

	// 8. ルーターの構築
	rateLimiterCfg := middleware.DefaultRateLimiterConfig()
	if cfg.RateLimitSubmit > 0 {
		// configのRateLimitSubmitはreq/min単位なのでreq/secに変換する
		rateLimiterCfg.SubmitRate = rateLimitPerMin(cfg.RateLimitSubmit)
		rateLimiterCfg.SubmitBurst = cfg.RateLimitSubmit
	}
	rateLimiter := middleware.NewRateLimiter(rateLimiterCfg)
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		Logger:            slog.Default(),
		Collector:         collector,
		Gatherer:          registry,
		SessionFinder:     sessionRepo,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		RateLimiter:       rateLimiter,
		CSRFConfig: middleware.CSRFConfig{
			CookieSecure: cfg.CookieSecure,
			CookieDomain: cfg.CookieDomain,
		},
		HealthChecker: db,

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		OpinionService: opinionService,
		PostService:    postService,
		UploadService:  uploadService,

		FeedBaseURL: cfg.BaseURL,
		FeedTitle:   "組合ニュース",
	}

	router := handler.NewRouter(deps)

	// 9. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("API server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// rateLimitPerMin はreq/min単位の設定値をreq/secのrate.Limitに変換する。
func rateLimitPerMin(perMin int) rate.Limit {
	return rate.Limit(float64(perMin) / 60.0)
}

// runSessionCleanup は期限切れ管理者セッションを1時間ごとに削除する。
func runSessionCleanup(ctx context.Context, authService *auth.Service) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := authService.CleanupExpired(ctx); err != nil {
				slog.Error("session cleanup failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(url string) string {
	if len(url) > 20 {
		return url[:12] + "***@..."
	}
	return "***"
}
