package auth

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

// TestNewSessionToken_Format はトークンが64文字の16進文字列であり毎回異なることを検証する。
func TestNewSessionToken_Format(t *testing.T) {
	a, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken() error = %v", err)
	}
	b, err := NewSessionToken()
	if err != nil {
		t.Fatalf("NewSessionToken() error = %v", err)
	}

	if len(a) != 64 {
		t.Errorf("len(token) = %d, want 64", len(a))
	}
	if strings.Trim(a, "0123456789abcdef") != "" {
		t.Errorf("token %q contains non-hex characters", a)
	}
	if a == b {
		t.Error("two tokens should differ")
	}
}

// TestVerifySession は正しい組のみが受け入れられ、空値はフェイルクローズすることを検証する。
func TestVerifySession(t *testing.T) {
	token := "0123456789abcdef"
	hash := HashToken(token)

	tests := []struct {
		name  string
		token string
		hash  string
		want  bool
	}{
		{"valid pair", token, hash, true},
		{"wrong token", "other", hash, false},
		{"wrong hash", token, HashToken("other"), false},
		{"empty token", "", hash, false},
		{"empty hash", token, "", false},
		{"both empty", "", "", false},
		{"token as its own hash", token, token, false},
		{"truncated hash", token, hash[:len(hash)-1], false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := VerifySession(tt.token, tt.hash); got != tt.want {
				t.Errorf("VerifySession(%q, %q) = %v, want %v", tt.token, tt.hash, got, tt.want)
			}
		})
	}
}

// TestVerifyRequest_Cookies はCookieの有無と組み合わせでの判定を検証する。
func TestVerifyRequest_Cookies(t *testing.T) {
	token := "session-token"

	tests := []struct {
		name    string
		cookies []*http.Cookie
		want    bool
	}{
		{"no cookies", nil, false},
		{"token only", []*http.Cookie{{Name: SessionCookieName, Value: token}}, false},
		{"hash only", []*http.Cookie{{Name: TokenHashCookieName, Value: HashToken(token)}}, false},
		{"valid", []*http.Cookie{
			{Name: SessionCookieName, Value: token},
			{Name: TokenHashCookieName, Value: HashToken(token)},
		}, true},
		{"mismatch", []*http.Cookie{
			{Name: SessionCookieName, Value: token},
			{Name: TokenHashCookieName, Value: HashToken("forged")},
		}, false},
		{"valid with arbitrary identity hash", []*http.Cookie{
			{Name: SessionCookieName, Value: token},
			{Name: TokenHashCookieName, Value: HashToken(token)},
			{Name: IdentityHashCookieName, Value: "not-a-hash"},
		}, true},
		{"identity hash alone", []*http.Cookie{
			{Name: IdentityHashCookieName, Value: HashToken("id-token")},
		}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for _, c := range tt.cookies {
				req.AddCookie(c)
			}
			if got := VerifyRequest(req); got != tt.want {
				t.Errorf("VerifyRequest() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestSetSessionCookies_Attributes はCookieの属性を検証する。
func TestSetSessionCookies_Attributes(t *testing.T) {
	w := httptest.NewRecorder()
	s := &Session{
		Token:     "tok",
		TokenHash: HashToken("tok"),
		ExpiresAt: time.Now().Add(time.Hour),
	}

	SetSessionCookies(w, s, CookieOptions{Secure: true, MaxAge: time.Hour})

	cookies := w.Result().Cookies()
	if len(cookies) != 2 {
		t.Fatalf("len(cookies) = %d, want 2", len(cookies))
	}
	for _, c := range cookies {
		if !c.HttpOnly {
			t.Errorf("cookie %s should be HttpOnly", c.Name)
		}
		if !c.Secure {
			t.Errorf("cookie %s should be Secure", c.Name)
		}
		if c.SameSite != http.SameSiteLaxMode {
			t.Errorf("cookie %s SameSite = %v, want Lax", c.Name, c.SameSite)
		}
		if c.Path != "/" {
			t.Errorf("cookie %s Path = %q, want /", c.Name, c.Path)
		}
		if c.MaxAge != 3600 {
			t.Errorf("cookie %s MaxAge = %d, want 3600", c.Name, c.MaxAge)
		}
	}
}

// TestSetSessionCookies_IdentityHash は外部IDログイン時に3つ目のCookieが書き込まれることを検証する。
func TestSetSessionCookies_IdentityHash(t *testing.T) {
	w := httptest.NewRecorder()
	s := &Session{Token: "tok", TokenHash: HashToken("tok"), IdentityHash: HashToken("id-token")}

	SetSessionCookies(w, s, CookieOptions{})

	found := false
	for _, c := range w.Result().Cookies() {
		if c.Name == IdentityHashCookieName {
			found = true
			if c.Value != HashToken("id-token") {
				t.Errorf("identity cookie value = %q", c.Value)
			}
			if c.MaxAge != int(DefaultSessionMaxAge/time.Second) {
				t.Errorf("identity cookie MaxAge = %d, want default", c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("identity hash cookie not set")
	}
}

// TestClearSessionCookies はすべてのCookieが削除されることを検証する。
func TestClearSessionCookies(t *testing.T) {
	w := httptest.NewRecorder()
	ClearSessionCookies(w, false)

	cookies := w.Result().Cookies()
	if len(cookies) != 3 {
		t.Fatalf("len(cookies) = %d, want 3", len(cookies))
	}
	for _, c := range cookies {
		if c.MaxAge >= 0 {
			t.Errorf("cookie %s MaxAge = %d, want negative", c.Name, c.MaxAge)
		}
		if c.Value != "" {
			t.Errorf("cookie %s Value = %q, want empty", c.Name, c.Value)
		}
	}
}
