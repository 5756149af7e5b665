package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// DefaultTokenInfoURL はIDトークンを検証するGoogleのtokeninfoエンドポイント。
const DefaultTokenInfoURL = "https://oauth2.googleapis.com/tokeninfo"

// MaxIdentityTokenLength はIDトークンの長さの上限。
const MaxIdentityTokenLength = 4096

// tokeninfoレスポンスの読み取り上限。
const maxTokenInfoBody = 64 * 1024

var (
	// ErrIdentityDisabled はクライアントIDが未設定で外部IDログインが無効であることを示す。
	ErrIdentityDisabled = errors.New("identity login is disabled")
	// ErrIdentityRejected はトークンが無効、または管理者として許可されていないことを示す。
	ErrIdentityRejected = errors.New("identity token rejected")
)

// IdentityConfig は外部IDトークン検証の設定。
type IdentityConfig struct {
	ClientID      string
	TokenInfoURL  string
	AllowedEmails []string

	// HTTPClient はtokeninfo呼び出しに使うクライアント。
	// 本番ではsecurity.SSRFGuardService.NewSafeClientの戻り値を渡す。
	HTTPClient *http.Client
}

// Identity は検証済みの外部IDトークンから得られた管理者情報。
type Identity struct {
	Subject string
	Email   string
}

// IdentityVerifier は外部IDトークンをtokeninfoエンドポイントで検証する。
type IdentityVerifier struct {
	config  IdentityConfig
	allowed map[string]struct{}
}

// NewIdentityVerifier はIdentityVerifierを生成する。
func NewIdentityVerifier(config IdentityConfig) *IdentityVerifier {
	if config.TokenInfoURL == "" {
		config.TokenInfoURL = DefaultTokenInfoURL
	}
	if config.HTTPClient == nil {
		config.HTTPClient = http.DefaultClient
	}

	allowed := make(map[string]struct{}, len(config.AllowedEmails))
	for _, email := range config.AllowedEmails {
		email = strings.ToLower(strings.TrimSpace(email))
		if email != "" {
			allowed[email] = struct{}{}
		}
	}

	return &IdentityVerifier{config: config, allowed: allowed}
}

// Enabled はクライアントIDが設定されているかを返す。
func (v *IdentityVerifier) Enabled() bool {
	return v.config.ClientID != ""
}

// tokenInfo はtokeninfoエンドポイントのレスポンス。
type tokenInfo struct {
	Aud           string   `json:"aud"`
	Sub           string   `json:"sub"`
	Email         string   `json:"email"`
	EmailVerified flexBool `json:"email_verified"`
}

// flexBool はtrueと"true"の両方を受け付ける。
// tokeninfoはemail_verifiedを文字列で返す。
type flexBool bool

func (b *flexBool) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	*b = flexBool(string(data) == "true")
	return nil
}

// Verify はIDトークンを検証し、管理者として許可されたIdentityを返す。
// 受け入れる条件: 200応答、audがクライアントIDと一致、email_verifiedがtrue、
// emailが許可リストに含まれる（大文字小文字を区別しない）。
func (v *IdentityVerifier) Verify(ctx context.Context, idToken string) (*Identity, error) {
	if !v.Enabled() {
		return nil, ErrIdentityDisabled
	}
	if idToken == "" || len(idToken) > MaxIdentityTokenLength {
		return nil, ErrIdentityRejected
	}

	endpoint, err := url.Parse(v.config.TokenInfoURL)
	if err != nil {
		return nil, fmt.Errorf("invalid tokeninfo URL: %w", err)
	}
	q := endpoint.Query()
	q.Set("id_token", idToken)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create tokeninfo request: %w", err)
	}

	resp, err := v.config.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("tokeninfo request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTokenInfoBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read tokeninfo response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: tokeninfo status %d", ErrIdentityRejected, resp.StatusCode)
	}

	var info tokenInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("failed to parse tokeninfo response: %w", err)
	}

	if info.Aud != v.config.ClientID {
		return nil, fmt.Errorf("%w: audience mismatch", ErrIdentityRejected)
	}
	if !bool(info.EmailVerified) {
		return nil, fmt.Errorf("%w: email not verified", ErrIdentityRejected)
	}
	email := strings.ToLower(info.Email)
	if _, ok := v.allowed[email]; !ok {
		return nil, fmt.Errorf("%w: email not allowed", ErrIdentityRejected)
	}

	return &Identity{Subject: info.Sub, Email: email}, nil
}
