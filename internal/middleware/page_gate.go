package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/snapgo/snapgo-site/internal/auth"
	"github.com/snapgo/snapgo-site/internal/metrics"
)

// AdminPathPrefix はページゲートが保護するパスのプレフィックス。
const AdminPathPrefix = "/admin"

// NewPageGate はページティアの認証ゲートを返す。
// /admin配下への未認証のナビゲーションはloginPath?next=<path>へリダイレクトする。
// 認証済みでログインページを開いた場合は/adminへリダイレクトする。
func NewPageGate(loginPath string, m metrics.MetricsCollector) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if !isAdminPath(path) {
				next.ServeHTTP(w, r)
				return
			}

			authenticated := auth.VerifyRequest(r)

			if path == loginPath || path == loginPath+"/" {
				if authenticated {
					http.Redirect(w, r, AdminPathPrefix, http.StatusTemporaryRedirect)
					return
				}
				next.ServeHTTP(w, r)
				return
			}

			if !authenticated {
				m.RecordAuthFailure("page")
				target := loginPath + "?next=" + url.QueryEscape(path)
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func isAdminPath(path string) bool {
	return path == AdminPathPrefix || strings.HasPrefix(path, AdminPathPrefix+"/")
}
