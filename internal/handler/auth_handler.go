package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/snapgo/snapgo-site/internal/auth"
	"github.com/snapgo/snapgo-site/internal/metrics"
	"github.com/snapgo/snapgo-site/internal/middleware"
	"github.com/snapgo/snapgo-site/internal/model"
)

// maxAuthBodyBytes はログインリクエストボディの上限。
const maxAuthBodyBytes = 16 * 1024

// loginFailedMessage は資格情報が拒否されたときの401メッセージ。
// 失敗理由（ユーザー名違い、パスワード違い、未設定）を区別しない。
const loginFailedMessage = "Invalid credentials"

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (*auth.Session, error)
	LoginWithIdentity(ctx context.Context, idToken string) (*auth.Session, error)
	SessionMaxAge() time.Duration
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieSecure bool
}

// AuthHandler は管理者ログイン関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
	metrics metrics.MetricsCollector
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig, m metrics.MetricsCollector) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		metrics: m,
	}
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type identityLoginRequest struct {
	IDToken string `json:"idToken"`
}

type loginResponse struct {
	Authenticated bool   `json:"authenticated"`
	ExpiresAt     string `json:"expiresAt"`
}

type sessionResponse struct {
	Authenticated bool `json:"authenticated"`
}

// Login はユーザー名・パスワードで管理者セッションを発行する。
// POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeAuthBody(w, r, &req) {
		return
	}
	if req.Username == "" {
		middleware.WriteValidationError(w, model.NewRequiredFieldError("username"))
		return
	}
	if req.Password == "" {
		middleware.WriteValidationError(w, model.NewRequiredFieldError("password"))
		return
	}

	session, err := h.service.Login(r.Context(), req.Username, req.Password)
	h.finishLogin(w, "password", session, err)
}

// LoginWithIdentity は外部IDトークンで管理者セッションを発行する。
// POST /api/auth/identity
func (h *AuthHandler) LoginWithIdentity(w http.ResponseWriter, r *http.Request) {
	var req identityLoginRequest
	if !decodeAuthBody(w, r, &req) {
		return
	}
	if req.IDToken == "" {
		middleware.WriteValidationError(w, model.NewRequiredFieldError("idToken"))
		return
	}

	session, err := h.service.LoginWithIdentity(r.Context(), req.IDToken)
	h.finishLogin(w, "identity", session, err)
}

func (h *AuthHandler) finishLogin(w http.ResponseWriter, method string, session *auth.Session, err error) {
	switch {
	case err == nil:
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrNotConfigured),
		errors.Is(err, auth.ErrIdentityRejected),
		errors.Is(err, auth.ErrIdentityDisabled):
		h.metrics.RecordLogin(method, "rejected")
		middleware.UnauthorizedResponse(loginFailedMessage).Send(w)
		return
	default:
		h.metrics.RecordLogin(method, "error")
		slog.Error("login failed",
			slog.String("method", method),
			slog.String("error", err.Error()),
		)
		middleware.WriteInternalServerError(w)
		return
	}

	h.metrics.RecordLogin(method, "success")
	auth.SetSessionCookies(w, session, auth.CookieOptions{
		Secure: h.config.CookieSecure,
		MaxAge: h.service.SessionMaxAge(),
	})
	middleware.WriteJSON(w, http.StatusOK, loginResponse{
		Authenticated: true,
		ExpiresAt:     session.ExpiresAt.UTC().Format(time.RFC3339),
	})
}

// Logout はセッションCookieを削除する。サーバー側に破棄すべき状態はない。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookies(w, h.config.CookieSecure)
	middleware.WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: false})
}

// Session は現在のリクエストが認証済みかを返す。
// GET /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, sessionResponse{Authenticated: auth.VerifyRequest(r)})
}

func decodeAuthBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxAuthBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteValidationError(w, model.NewInvalidBodyError())
		return false
	}
	return true
}
