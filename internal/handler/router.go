package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/snapgo/snapgo-site/internal/metrics"
	"github.com/snapgo/snapgo-site/internal/middleware"
	"github.com/snapgo/snapgo-site/internal/ratelimit"
)

// DefaultAdminLoginPath は管理画面のログインページのパス。
const DefaultAdminLoginPath = "/admin/login"

// RateLimitBudgets はルートごとの固定ウィンドウ予算。
type RateLimitBudgets struct {
	Login   ratelimit.Budget
	Content ratelimit.Budget
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Logger            *slog.Logger
	Metrics           metrics.MetricsCollector
	ResolveIP         ratelimit.IPResolver
	RateLimitGuard    *middleware.RateLimitGuard
	Budgets           RateLimitBudgets
	PublicThrottle    *middleware.PublicThrottle // nilなら公開読み取りを制限しない
	CORSAllowedOrigin string
	HSTS              bool

	// コンテンツ
	ContentService ContentServiceInterface
	StoreKind      StoreKindProvider

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// 管理画面の静的ファイル。空なら/admin配下を配信しない。
	AdminStaticDir string
	AdminLoginPath string

	// nilなら/metricsを公開しない
	MetricsHandler http.Handler
}

// NewRouter は全エンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// 全体のミドルウェアの実行順序:
//
//	Recovery → Logging → SecurityHeaders → CORS
//
// 更新系APIは RateLimit(content) → RequireAuth の順に通過する。
// ログインは RateLimit(login) を通過してから資格情報を照合する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.NewRecoveryMiddleware(deps.Logger, deps.Metrics))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.ResolveIP, deps.Metrics))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.HSTS))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))

	contentHandler := NewContentHandler(deps.ContentService)
	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig, deps.Metrics)
	requireAuth := middleware.RequireAuth(deps.Metrics)

	// --- 認証不要のルート ---
	r.Get("/health", NewHealthHandler(deps.StoreKind))
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}
	r.Get(OpenAPISpecPath, ServeOpenAPISpec)
	r.Handle("/api/docs", NewDocsHandler())

	// 公開読み取り
	r.Group(func(r chi.Router) {
		if deps.PublicThrottle != nil {
			r.Use(deps.PublicThrottle.Middleware())
		}
		r.Get("/api/content/{section}", contentHandler.GetSection)
		r.Get("/api/content/{section}/{id}", contentHandler.GetSectionItem)
	})

	// 認証
	r.Route("/api/auth", func(r chi.Router) {
		loginLimit := deps.RateLimitGuard.Limit("login", deps.Budgets.Login)
		r.With(loginLimit).Post("/login", authHandler.Login)
		r.With(loginLimit).Post("/identity", authHandler.LoginWithIdentity)
		r.Post("/logout", authHandler.Logout)
		r.Get("/session", authHandler.Session)
	})

	// --- 認証が必要なルート ---

	// 管理画面用の読み取り（非表示アイテムを含む）
	r.Group(func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/api/admin/content/{section}", contentHandler.AdminGetSection)
		r.Get("/api/admin/content/{section}/{id}", contentHandler.AdminGetSectionItem)
	})

	// 更新系。レート制限を認証ゲートより先に適用する。
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimitGuard.Limit("content", deps.Budgets.Content))
		r.Use(requireAuth)
		r.Put("/api/content/{section}", contentHandler.PutSection)
		r.Post("/api/content/{section}", contentHandler.CreateItem)
		r.Put("/api/content/{section}/{id}", contentHandler.PutSectionItem)
		r.Delete("/api/content/{section}/{id}", contentHandler.DeleteItem)
	})

	// 管理画面のページ
	if deps.AdminStaticDir != "" {
		loginPath := deps.AdminLoginPath
		if loginPath == "" {
			loginPath = DefaultAdminLoginPath
		}
		pages := http.StripPrefix(middleware.AdminPathPrefix, http.FileServer(http.Dir(deps.AdminStaticDir)))
		r.Group(func(r chi.Router) {
			r.Use(middleware.NewPageGate(loginPath, deps.Metrics))
			r.Get(middleware.AdminPathPrefix, func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, middleware.AdminPathPrefix+"/", http.StatusMovedPermanently)
			})
			r.Handle(middleware.AdminPathPrefix+"/*", pages)
		})
	}

	return r
}
