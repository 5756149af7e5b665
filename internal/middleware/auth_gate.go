package middleware

import (
	"net/http"

	"github.com/snapgo/snapgo-site/internal/auth"
	"github.com/snapgo/snapgo-site/internal/metrics"
)

// DefaultUnauthorizedMessage はメッセージ未指定時の401メッセージ。
const DefaultUnauthorizedMessage = "Authentication required"

// UnauthorizedBody は401レスポンスのボディ。
type UnauthorizedBody struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	Authenticated bool   `json:"authenticated"`
}

// GuardResult はゲートが返す送信可能な拒否レスポンス。
type GuardResult struct {
	Status int
	Body   UnauthorizedBody
}

// Send はレスポンスを書き込む。
func (g GuardResult) Send(w http.ResponseWriter) {
	WriteJSON(w, g.Status, g.Body)
}

// UnauthorizedResponse は統一された401レスポンスを生成する。
// 引数なしの場合はDefaultUnauthorizedMessageを使う。
func UnauthorizedResponse(msg ...string) GuardResult {
	message := DefaultUnauthorizedMessage
	if len(msg) > 0 && msg[0] != "" {
		message = msg[0]
	}
	return GuardResult{
		Status: http.StatusUnauthorized,
		Body: UnauthorizedBody{
			Error:         "Unauthorized",
			Message:       message,
			Authenticated: false,
		},
	}
}

// RequireAuthResult はリクエストのセッションを検証する。
// 認証済みならnil、そうでなければ送信可能な401を返す。
func RequireAuthResult(r *http.Request) *GuardResult {
	if auth.VerifyRequest(r) {
		return nil
	}
	res := UnauthorizedResponse()
	return &res
}

// RequireAuth はAPIティアの認証ゲート。
// セッションが無効なリクエストは後続のハンドラーに到達せず401で終了する。
func RequireAuth(m metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if res := RequireAuthResult(r); res != nil {
				m.RecordAuthFailure("api")
				res.Send(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
