// Package auth は管理者セッションの発行・検証と、管理者ログインの資格情報照合を提供する。
package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"time"

	"github.com/snapgo/snapgo-site/internal/security"
)

// セッションを構成するCookie名。
const (
	SessionCookieName      = "admin_session"
	TokenHashCookieName    = "admin_token_hash"
	// IdentityHashCookieName は外部IDログイン時のみ発行される情報用Cookie。認可には使わない。
	IdentityHashCookieName = "admin_identity_hash"
)

// DefaultSessionMaxAge はセッションCookieの有効期間。
// サーバー側に失効リストはなく、有効期限はCookie自体の期限のみで管理する。
const DefaultSessionMaxAge = 24 * time.Hour

// Session はログイン成功時に発行されるセッション資格情報。
// サーバー側には保存せず、2つ（外部IDログイン時は3つ）のCookieとしてクライアントに渡す。
type Session struct {
	Token        string
	TokenHash    string
	IdentityHash string
	ExpiresAt    time.Time
}

// NewSessionToken は32バイトの乱数を16進エンコードしたセッショントークンを生成する。
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate session token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// HashToken はトークンのSHA-256ダイジェストを16進文字列で返す。
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

// VerifySession はセッショントークンと保存されたハッシュの組が正しいかを判定する。
// どちらかが空なら常にfalse（フェイルクローズ）。
// 比較はsecurity.TimingSafeEqualで行い、不一致の位置や長さの違いは時間に現れない。
func VerifySession(token, tokenHash string) bool {
	if token == "" || tokenHash == "" {
		return false
	}
	return security.TimingSafeEqual(HashToken(token), tokenHash)
}

// VerifyRequest はリクエストのCookieからセッションを検証する。
// ページゲートとAPIゲートの両方がこの関数を使用する。
// admin_identity_hashは参照しない。サーバー側に照合先がなく、
// どのログイン方法でも同じ2つのCookieだけで認可が決まる。
func VerifyRequest(r *http.Request) bool {
	token, err := r.Cookie(SessionCookieName)
	if err != nil {
		return false
	}
	tokenHash, err := r.Cookie(TokenHashCookieName)
	if err != nil {
		return false
	}
	return VerifySession(token.Value, tokenHash.Value)
}

// CookieOptions はセッションCookieの属性。
type CookieOptions struct {
	Secure bool
	MaxAge time.Duration
}

// SetSessionCookies はセッションをCookieとして書き込む。
// すべてHttpOnly、SameSite=Lax、Path=/。
func SetSessionCookies(w http.ResponseWriter, s *Session, opts CookieOptions) {
	maxAge := int(opts.MaxAge / time.Second)
	if maxAge <= 0 {
		maxAge = int(DefaultSessionMaxAge / time.Second)
	}

	setCookie(w, SessionCookieName, s.Token, maxAge, s.ExpiresAt, opts.Secure)
	setCookie(w, TokenHashCookieName, s.TokenHash, maxAge, s.ExpiresAt, opts.Secure)
	if s.IdentityHash != "" {
		setCookie(w, IdentityHashCookieName, s.IdentityHash, maxAge, s.ExpiresAt, opts.Secure)
	}
}

// ClearSessionCookies はセッション関連のCookieをすべて削除する。
// 有効期限前のログアウトはこの明示的な削除でのみ実現される。
func ClearSessionCookies(w http.ResponseWriter, secure bool) {
	for _, name := range []string{SessionCookieName, TokenHashCookieName, IdentityHashCookieName} {
		setCookie(w, name, "", -1, time.Unix(0, 0), secure)
	}
}

func setCookie(w http.ResponseWriter, name, value string, maxAge int, expires time.Time, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		Expires:  expires,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}
