package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/snapgo/snapgo-site/internal/auth"
	"github.com/snapgo/snapgo-site/internal/content"
	"github.com/snapgo/snapgo-site/internal/metrics"
	"github.com/snapgo/snapgo-site/internal/middleware"
	"github.com/snapgo/snapgo-site/internal/ratelimit"
	"github.com/snapgo/snapgo-site/internal/security"
)

const (
	testAdminUsername = "editor"
	testAdminPassword = "correct horse battery staple"
)

// countingCredentials は資格情報照合の呼び出し回数を数えるラッパー。
type countingCredentials struct {
	mu    sync.Mutex
	inner auth.CredentialVerifier
	calls int
}

func (c *countingCredentials) Check(username, password string) error {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.Check(username, password)
}

func (c *countingCredentials) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// rejectingIdentity は常にトークンを拒否するIdentityTokenVerifier。
type rejectingIdentity struct{}

func (rejectingIdentity) Verify(ctx context.Context, idToken string) (*auth.Identity, error) {
	return nil, auth.ErrIdentityDisabled
}

type testEnv struct {
	router      http.Handler
	credentials *countingCredentials
}

type testEnvOptions struct {
	adminStaticDir string
	loginBudget    ratelimit.Budget
}

// newTestEnv は実際のサービスとミドルウェアで組み立てたルーターを返す。
func newTestEnv(t *testing.T, store content.Store, opts testEnvOptions) *testEnv {
	t.Helper()

	checker, err := auth.NewCredentialChecker(auth.CredentialConfig{
		Username: testAdminUsername,
		Password: testAdminPassword,
	})
	if err != nil {
		t.Fatalf("NewCredentialChecker failed: %v", err)
	}
	creds := &countingCredentials{inner: checker}

	if opts.loginBudget.MaxRequests == 0 {
		opts.loginBudget = ratelimit.Budget{MaxRequests: 5, Window: 15 * time.Minute}
	}

	m := metrics.Nop{}
	limiter := ratelimit.NewLimiter(ratelimit.NewMemoryStore())
	svc := content.NewService(store, security.NewContentSanitizer(), m)

	router := NewRouter(&RouterDeps{
		Logger:         slog.New(slog.NewJSONHandler(io.Discard, nil)),
		Metrics:        m,
		ResolveIP:      ratelimit.RemoteAddrIP,
		RateLimitGuard: middleware.NewRateLimitGuard(limiter, ratelimit.RemoteAddrIP, m),
		Budgets: RateLimitBudgets{
			Login:   opts.loginBudget,
			Content: ratelimit.Budget{MaxRequests: 100, Window: 10 * time.Minute},
		},
		ContentService: svc,
		StoreKind:      svc,
		AuthService:    auth.NewService(creds, rejectingIdentity{}, auth.ServiceConfig{}),
		AdminStaticDir: opts.adminStaticDir,
	})

	return &testEnv{router: router, credentials: creds}
}

// do はリクエストを送信してレスポンスを返す。
func (e *testEnv) do(method, target, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

// login は正しい資格情報でログインし、発行されたCookieを返す。
func (e *testEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()
	w := e.do(http.MethodPost, "/api/auth/login",
		`{"username":"`+testAdminUsername+`","password":"`+testAdminPassword+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("login status = %d, want 200: %s", w.Code, w.Body.String())
	}
	return w.Result().Cookies()
}

// sessionCookies は検証を通るセッションCookieを生成する。
func sessionCookies() []*http.Cookie {
	token := "handler-test-token"
	return []*http.Cookie{
		{Name: auth.SessionCookieName, Value: token},
		{Name: auth.TokenHashCookieName, Value: auth.HashToken(token)},
	}
}
