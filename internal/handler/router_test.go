package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/snapgo/snapgo-site/internal/content"
	"github.com/snapgo/snapgo-site/internal/model"
	"github.com/snapgo/snapgo-site/internal/ratelimit"
	"github.com/snapgo/snapgo-site/internal/repository"
)

func decodeJSON(t *testing.T, body []byte, v any) {
	t.Helper()
	if err := json.Unmarshal(body, v); err != nil {
		t.Fatalf("failed to decode response %q: %v", body, err)
	}
}

func TestRouter_Health(t *testing.T) {
	env := newTestEnv(t, repository.NewMemoryDocumentRepo(), testEnvOptions{})

	w := env.do(http.MethodGet, "/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var got map[string]string
	decodeJSON(t, w.Body.Bytes(), &got)
	if got["status"] != "ok" || got["store"] != "memory" {
		t.Errorf("body = %v, want status=ok store=memory", got)
	}
}

// TestRouter_PublicReadsFallBackToDefaults はストア未設定時に公開読み取りが
// 静的デフォルトを返すことを検証する。
func TestRouter_PublicReadsFallBackToDefaults(t *testing.T) {
	env := newTestEnv(t, content.NewStaticStore(), testEnvOptions{})

	t.Run("hero", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/content/hero", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var got model.Hero
		decodeJSON(t, w.Body.Bytes(), &got)
		if !reflect.DeepEqual(got, content.DefaultHero()) {
			t.Errorf("hero = %+v, want %+v", got, content.DefaultHero())
		}
	})

	t.Run("faqs omit inactive items", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/content/faqs", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var got []model.FAQ
		decodeJSON(t, w.Body.Bytes(), &got)
		for _, f := range got {
			if !f.IsActive {
				t.Errorf("inactive FAQ %q in public response", f.ID)
			}
		}
		if len(got) != 4 {
			t.Errorf("len = %d, want 4", len(got))
		}
	})

	t.Run("blog post by slug", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/content/blog/welcome-to-snapgo", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		var got model.BlogPost
		decodeJSON(t, w.Body.Bytes(), &got)
		if got.ID != "blog-welcome" {
			t.Errorf("id = %q, want blog-welcome", got.ID)
		}
	})

	t.Run("legal document", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/content/legal/privacy", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
	})

	t.Run("unknown section", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/content/pricing", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})

	t.Run("missing item", func(t *testing.T) {
		w := env.do(http.MethodGet, "/api/content/team/nobody", "")
		if w.Code != http.StatusNotFound {
			t.Errorf("status = %d, want 404", w.Code)
		}
	})
}

// TestRouter_WriteWithoutSession は未認証の書き込みが401で拒否され、
// 保存済みドキュメントが変わらないことを検証する。
func TestRouter_WriteWithoutSession(t *testing.T) {
	store := repository.NewMemoryDocumentRepo()
	ctx := context.Background()
	original := content.Document{"title": "Stored hero", "subtitle": "kept"}
	if err := store.PutDocument(ctx, content.SiteCollection, "hero", original); err != nil {
		t.Fatalf("PutDocument failed: %v", err)
	}
	env := newTestEnv(t, store, testEnvOptions{})

	requests := []struct {
		method string
		target string
		body   string
	}{
		{http.MethodPut, "/api/content/hero", `{"title":"Hijacked"}`},
		{http.MethodPost, "/api/content/features", `{"title":"x","description":"y"}`},
		{http.MethodDelete, "/api/content/features/feature-sos", ""},
		{http.MethodGet, "/api/admin/content/faqs", ""},
	}

	for _, req := range requests {
		t.Run(req.method+" "+req.target, func(t *testing.T) {
			w := env.do(req.method, req.target, req.body)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
			var got map[string]any
			decodeJSON(t, w.Body.Bytes(), &got)
			want := map[string]any{
				"error":         "Unauthorized",
				"message":       "Authentication required",
				"authenticated": false,
			}
			if !reflect.DeepEqual(got, want) {
				t.Errorf("body = %v, want %v", got, want)
			}
		})
	}

	stored, err := store.GetDocument(ctx, content.SiteCollection, "hero")
	if err != nil {
		t.Fatalf("GetDocument failed: %v", err)
	}
	if stored["title"] != "Stored hero" || stored["subtitle"] != "kept" {
		t.Errorf("stored hero changed: %v", stored)
	}
	docs, _ := store.ListDocuments(ctx, "features")
	if len(docs) != 0 {
		t.Errorf("features written without a session: %v", docs)
	}
}

// TestRouter_LoginRateLimit は同一IPからの6回のログインのうち、
// 最初の5回だけが資格情報の照合に到達し、6回目は429になることを検証する。
func TestRouter_LoginRateLimit(t *testing.T) {
	env := newTestEnv(t, content.NewStaticStore(), testEnvOptions{
		loginBudget: ratelimit.Budget{MaxRequests: 5, Window: 15 * time.Minute},
	})

	for i := 1; i <= 5; i++ {
		w := env.do(http.MethodPost, "/api/auth/login", `{"username":"editor","password":"wrong"}`)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("attempt %d: status = %d, want 401", i, w.Code)
		}
	}
	if got := env.credentials.Calls(); got != 5 {
		t.Fatalf("credential checks = %d, want 5", got)
	}

	// 正しい資格情報でも予算を超えれば拒否される
	w := env.do(http.MethodPost, "/api/auth/login",
		`{"username":"`+testAdminUsername+`","password":"`+testAdminPassword+`"}`)
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("attempt 6: status = %d, want 429", w.Code)
	}
	retryAfter, err := strconv.Atoi(w.Header().Get("Retry-After"))
	if err != nil || retryAfter <= 0 {
		t.Errorf("Retry-After = %q, want positive integer", w.Header().Get("Retry-After"))
	}
	if got := env.credentials.Calls(); got != 5 {
		t.Errorf("credential checks after block = %d, want 5", got)
	}
}

// TestRouter_LoginThenEdit はログインで得たCookieで書き込み、公開読み取りに反映されることを検証する。
func TestRouter_LoginThenEdit(t *testing.T) {
	store := repository.NewMemoryDocumentRepo()
	env := newTestEnv(t, store, testEnvOptions{})
	cookies := env.login(t)

	w := env.do(http.MethodGet, "/api/auth/session", "", cookies...)
	var session map[string]bool
	decodeJSON(t, w.Body.Bytes(), &session)
	if !session["authenticated"] {
		t.Fatal("session should be authenticated after login")
	}

	w = env.do(http.MethodPut, "/api/content/hero", `{"title":"Pool your next ride"}`, cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT hero status = %d, want 200: %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/content/hero", "")
	var hero model.Hero
	decodeJSON(t, w.Body.Bytes(), &hero)
	if hero.Title != "Pool your next ride" {
		t.Errorf("title = %q, want updated title", hero.Title)
	}
	if hero.Subtitle != content.DefaultHero().Subtitle {
		t.Errorf("subtitle = %q, want default subtitle", hero.Subtitle)
	}
	if hero.CreatedAt == "" || hero.UpdatedAt == "" {
		t.Errorf("timestamps not set: %+v", hero)
	}

	w = env.do(http.MethodPost, "/api/content/faqs",
		`{"question":"Do you operate at night?","answer":"Yes, 24/7.","isActive":true,"order":1}`, cookies...)
	if w.Code != http.StatusCreated {
		t.Fatalf("POST faqs status = %d, want 201: %s", w.Code, w.Body.String())
	}
	var created map[string]any
	decodeJSON(t, w.Body.Bytes(), &created)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatal("created item has no id")
	}

	// ストアにアイテムがあればデフォルトは使われない
	w = env.do(http.MethodGet, "/api/content/faqs", "")
	var faqs []model.FAQ
	decodeJSON(t, w.Body.Bytes(), &faqs)
	if len(faqs) != 1 || faqs[0].ID != id {
		t.Errorf("faqs = %+v, want only the created item", faqs)
	}

	w = env.do(http.MethodPut, "/api/content/faqs/"+id, `{"isActive":false}`, cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("PUT faq status = %d, want 200: %s", w.Code, w.Body.String())
	}
	w = env.do(http.MethodGet, "/api/content/faqs", "")
	faqs = nil
	decodeJSON(t, w.Body.Bytes(), &faqs)
	if len(faqs) != 0 {
		t.Errorf("inactive faq still public: %+v", faqs)
	}
	w = env.do(http.MethodGet, "/api/admin/content/faqs", "", cookies...)
	faqs = nil
	decodeJSON(t, w.Body.Bytes(), &faqs)
	if len(faqs) != 1 {
		t.Errorf("admin faqs len = %d, want 1", len(faqs))
	}

	w = env.do(http.MethodDelete, "/api/content/faqs/"+id, "", cookies...)
	if w.Code != http.StatusNoContent {
		t.Fatalf("DELETE status = %d, want 204", w.Code)
	}
	w = env.do(http.MethodDelete, "/api/content/faqs/"+id, "", cookies...)
	if w.Code != http.StatusNotFound {
		t.Errorf("second DELETE status = %d, want 404", w.Code)
	}

	w = env.do(http.MethodPost, "/api/auth/logout", "", cookies...)
	if w.Code != http.StatusOK {
		t.Errorf("logout status = %d, want 200", w.Code)
	}
	for _, c := range w.Result().Cookies() {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %q not cleared (MaxAge=%d)", c.Name, c.MaxAge)
		}
	}
}

func TestRouter_WriteStatusContract(t *testing.T) {
	cookies := sessionCookies()

	t.Run("static store returns 503", func(t *testing.T) {
		env := newTestEnv(t, content.NewStaticStore(), testEnvOptions{})
		w := env.do(http.MethodPut, "/api/content/hero", `{"title":"x"}`, cookies...)
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("status = %d, want 503", w.Code)
		}
	})

	env := newTestEnv(t, repository.NewMemoryDocumentRepo(), testEnvOptions{})

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
		wantField  string
	}{
		{"malformed JSON", http.MethodPut, "/api/content/hero", `{"title":`, http.StatusBadRequest, ""},
		{"array body", http.MethodPost, "/api/content/faqs", `[]`, http.StatusBadRequest, ""},
		{"missing required field", http.MethodPost, "/api/content/faqs", `{"question":"q"}`, http.StatusBadRequest, "answer"},
		{"non-numeric order", http.MethodPost, "/api/content/steps", `{"title":"t","description":"d","order":"first"}`, http.StatusBadRequest, "order"},
		{"create on document section", http.MethodPost, "/api/content/hero", `{"title":"x"}`, http.StatusMethodNotAllowed, ""},
		{"item put on document section", http.MethodPut, "/api/content/hero/x", `{"title":"x"}`, http.StatusMethodNotAllowed, ""},
		{"unknown legal kind", http.MethodPut, "/api/content/legal/cookies", `{"title":"t","body":"b"}`, http.StatusBadRequest, "id"},
		{"update missing item", http.MethodPut, "/api/content/team/nobody", `{"name":"n"}`, http.StatusNotFound, ""},
		{"unknown section", http.MethodPut, "/api/content/pricing", `{"title":"x"}`, http.StatusNotFound, ""},
		{"legal upsert", http.MethodPut, "/api/content/legal/terms", `{"title":"Terms","body":"<p>ok</p>"}`, http.StatusOK, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := env.do(tt.method, tt.target, tt.body, cookies...)
			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d: %s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantField != "" {
				var got map[string]string
				decodeJSON(t, w.Body.Bytes(), &got)
				if got["field"] != tt.wantField {
					t.Errorf("field = %q, want %q", got["field"], tt.wantField)
				}
			}
		})
	}
}

// TestRouter_RichTextIsSanitized はリッチテキストのフィールドから危険なHTMLが除去されることを検証する。
func TestRouter_RichTextIsSanitized(t *testing.T) {
	env := newTestEnv(t, repository.NewMemoryDocumentRepo(), testEnvOptions{})
	cookies := sessionCookies()

	w := env.do(http.MethodPut, "/api/content/about",
		`{"title":"About","body":"<p>Hello</p><script>alert(1)</script>"}`, cookies...)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	w = env.do(http.MethodGet, "/api/content/about", "")
	var about model.About
	decodeJSON(t, w.Body.Bytes(), &about)
	if strings.Contains(about.Body, "<script>") {
		t.Errorf("body not sanitized: %q", about.Body)
	}
	if !strings.Contains(about.Body, "<p>Hello</p>") {
		t.Errorf("safe markup removed: %q", about.Body)
	}
}

func TestRouter_Docs(t *testing.T) {
	env := newTestEnv(t, content.NewStaticStore(), testEnvOptions{})

	w := env.do(http.MethodGet, "/api/openapi.yaml", "")
	if w.Code != http.StatusOK {
		t.Fatalf("openapi status = %d, want 200", w.Code)
	}
	if !strings.HasPrefix(w.Body.String(), "openapi: 3.0.3") {
		t.Errorf("unexpected openapi body prefix: %q", w.Body.String()[:20])
	}

	w = env.do(http.MethodGet, "/api/docs", "")
	if w.Code != http.StatusOK {
		t.Fatalf("docs status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), OpenAPISpecPath) {
		t.Error("docs page does not reference the OpenAPI document URL")
	}
}

func TestRouter_AdminPages(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("dashboard"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "login"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "login", "index.html"), []byte("login form"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := newTestEnv(t, content.NewStaticStore(), testEnvOptions{adminStaticDir: dir})

	t.Run("anonymous is redirected to login", func(t *testing.T) {
		w := env.do(http.MethodGet, "/admin/", "")
		if w.Code != http.StatusTemporaryRedirect {
			t.Fatalf("status = %d, want 307", w.Code)
		}
		if got := w.Header().Get("Location"); got != "/admin/login?next=%2Fadmin%2F" {
			t.Errorf("Location = %q", got)
		}
	})

	t.Run("anonymous can open the login page", func(t *testing.T) {
		w := env.do(http.MethodGet, "/admin/login/", "")
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if !strings.Contains(w.Body.String(), "login form") {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("authenticated sees the dashboard", func(t *testing.T) {
		w := env.do(http.MethodGet, "/admin/", "", sessionCookies()...)
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d, want 200", w.Code)
		}
		if !strings.Contains(w.Body.String(), "dashboard") {
			t.Errorf("body = %q", w.Body.String())
		}
	})

	t.Run("admin root redirects to trailing slash", func(t *testing.T) {
		w := env.do(http.MethodGet, "/admin", "", sessionCookies()...)
		if w.Code != http.StatusMovedPermanently {
			t.Fatalf("status = %d, want 301", w.Code)
		}
	})
}
