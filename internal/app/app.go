// Package app はサブコマンドの解析と、設定から依存関係を組み立てて起動する処理を提供する。
package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/snapgo/snapgo-site/internal/auth"
	"github.com/snapgo/snapgo-site/internal/config"
	"github.com/snapgo/snapgo-site/internal/content"
	"github.com/snapgo/snapgo-site/internal/database"
	"github.com/snapgo/snapgo-site/internal/handler"
	"github.com/snapgo/snapgo-site/internal/logger"
	"github.com/snapgo/snapgo-site/internal/metrics"
	"github.com/snapgo/snapgo-site/internal/middleware"
	"github.com/snapgo/snapgo-site/internal/ratelimit"
	"github.com/snapgo/snapgo-site/internal/repository"
	"github.com/snapgo/snapgo-site/internal/security"
	"go.etcd.io/bbolt"
	"golang.org/x/time/rate"
)

// identityClientTimeout はtokeninfo呼び出しのタイムアウト。
const identityClientTimeout = 10 * time.Second

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

	// 3. LOG_LEVELを反映する
	logger.SetupDefaultWithLevel(w, logger.ParseLevel(cfg.LogLevel))

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	return run(os.Stdin, w, args)
}

func run(stdin io.Reader, w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// 軽量サブコマンドはフル初期化をスキップする
	switch cmd {
	case CommandHealthcheck:
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "8080"
		}
		return runHealthcheck(port)
	case CommandHashPassword:
		return runHashPassword(stdin, w)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("env", cfg.AppEnv),
		slog.String("port", cfg.ServerPort),
		slog.String("content_store", cfg.ContentStore),
	)

	switch cmd {
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// openStore はCONTENT_STOREに応じたコンテンツストアを開く。
// 戻り値のclose関数は常に呼び出してよい。
func openStore(cfg *config.Config) (content.Store, func(), error) {
	noop := func() {}

	switch cfg.ContentStore {
	case config.StorePostgres:
		db, err := database.Connect(context.Background(), cfg.DatabaseURL, database.DefaultPoolConfig())
		if err != nil {
			return nil, noop, err
		}
		slog.Info("database connection established")
		return repository.NewPostgresDocumentRepo(db), func() { db.Close() }, nil

	case config.StoreBolt:
		repo, err := repository.OpenBoltDocumentRepo(cfg.BoltPath, &bbolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, noop, err
		}
		slog.Info("bolt store opened", slog.String("path", cfg.BoltPath))
		return repo, func() { repo.Close() }, nil

	case config.StoreMemory:
		slog.Warn("using in-memory content store; edits are lost on restart")
		return repository.NewMemoryDocumentRepo(), noop, nil

	default:
		slog.Warn("no content store configured; serving built-in defaults and rejecting edits")
		return content.NewStaticStore(), noop, nil
	}
}

// server はrunServeが起動するHTTPハンドラーと、停止時に解放するリソース。
type server struct {
	handler  http.Handler
	throttle *middleware.PublicThrottle
}

func (s *server) close() {
	if s.throttle != nil {
		s.throttle.Stop()
	}
}

// buildServer は設定とストアから全依存関係をワイヤリングする。
func buildServer(cfg *config.Config, store content.Store) (*server, error) {
	// 1. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector := metrics.NewCollector(registry)

	// 2. セキュリティサービス
	sanitizer := security.NewContentSanitizer()
	ssrfGuard := security.NewSSRFGuard()

	// 3. 認証
	credentials, err := auth.NewCredentialChecker(auth.CredentialConfig{
		Username:     cfg.AdminUsername,
		Password:     cfg.AdminPassword,
		PasswordHash: cfg.AdminPasswordHash,
		Production:   cfg.IsProduction(),
	})
	if err != nil {
		return nil, fmt.Errorf("invalid admin credentials: %w", err)
	}
	if cfg.IdentityClientID != "" {
		endpoint := cfg.IdentityTokenInfoURL
		if endpoint == "" {
			endpoint = auth.DefaultTokenInfoURL
		}
		if err := ssrfGuard.ValidateURL(endpoint); err != nil {
			return nil, fmt.Errorf("invalid IDENTITY_TOKENINFO_URL: %w", err)
		}
	}
	identity := auth.NewIdentityVerifier(auth.IdentityConfig{
		ClientID:      cfg.IdentityClientID,
		TokenInfoURL:  cfg.IdentityTokenInfoURL,
		AllowedEmails: cfg.AdminEmails,
		HTTPClient:    ssrfGuard.NewSafeClient(identityClientTimeout),
	})
	authService := auth.NewService(credentials, identity, auth.ServiceConfig{
		SessionMaxAge: cfg.SessionMaxAge,
	})

	// 4. コンテンツ
	contentService := content.NewService(store, sanitizer, collector)

	// 5. レート制限
	resolveIP := ratelimit.NewIPResolver(cfg.TrustProxyHeaders)
	limiter := ratelimit.NewLimiter(
		ratelimit.NewMemoryStore(),
		ratelimit.WithCleanupInterval(cfg.RateLimitCleanupInterval),
	)

	var throttle *middleware.PublicThrottle
	if cfg.PublicRatePerMin > 0 {
		throttleCfg := middleware.DefaultPublicThrottleConfig()
		throttleCfg.Rate = rate.Limit(float64(cfg.PublicRatePerMin) / 60.0)
		throttleCfg.Burst = cfg.PublicRatePerMin
		throttle = middleware.NewPublicThrottle(throttleCfg, resolveIP, collector)
	}

	// 6. ルーター
	router := handler.NewRouter(&handler.RouterDeps{
		Logger:         slog.Default(),
		Metrics:        collector,
		ResolveIP:      resolveIP,
		RateLimitGuard: middleware.NewRateLimitGuard(limiter, resolveIP, collector),
		Budgets: handler.RateLimitBudgets{
			Login:   ratelimit.Budget{MaxRequests: cfg.RateLimitLoginMax, Window: cfg.RateLimitLoginWindow},
			Content: ratelimit.Budget{MaxRequests: cfg.RateLimitContentMax, Window: cfg.RateLimitContentWindow},
		},
		PublicThrottle:    throttle,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		HSTS:              cfg.CookieSecure,

		ContentService: contentService,
		StoreKind:      contentService,

		AuthService: authService,
		AuthConfig:  handler.AuthHandlerConfig{CookieSecure: cfg.CookieSecure},

		AdminStaticDir: cfg.AdminStaticDir,
		MetricsHandler: metrics.Handler(registry),
	})

	return &server{handler: router, throttle: throttle}, nil
}

// runServe はAPIサーバーモードで起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	store, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	srv, err := buildServer(cfg, store)
	if err != nil {
		return err
	}
	defer srv.close()

	httpServer := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      srv.handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("API server starting",
			slog.String("addr", httpServer.Addr),
			slog.String("store", store.Kind()),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			listenErr <- err
		}
	}()

	select {
	case err := <-listenErr:
		return fmt.Errorf("server listen error: %w", err)
	case <-stop:
	}
	slog.Info("shutting down API server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はデータベースマイグレーションを実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required for migrate")
	}

	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	version, dirty, err := database.SchemaVersion(cfg.DatabaseURL)
	if err != nil {
		return err
	}
	slog.Info("database migrations completed successfully",
		slog.Uint64("version", uint64(version)),
		slog.Bool("dirty", dirty),
	)
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	target := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

// runHashPassword は標準入力の1行目をパスワードとしてargon2idでハッシュ化し、出力する。
func runHashPassword(stdin io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(stdin)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return fmt.Errorf("failed to read password: %w", err)
		}
		return errors.New("no password given on stdin")
	}

	password := strings.TrimRight(scanner.Text(), "\r")
	if password == "" {
		return errors.New("password must not be empty")
	}
	if len(password) > auth.MaxPasswordLength {
		return fmt.Errorf("password must be at most %d bytes", auth.MaxPasswordLength)
	}

	hash, err := auth.HashPassword(password, auth.DefaultArgon2Params())
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, hash)
	return err
}

// maskDatabaseURL はデータベースURLの認証情報をマスクする。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}
