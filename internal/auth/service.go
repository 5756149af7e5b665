package auth

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

// CredentialVerifier はユーザー名・パスワードの照合インターフェース。
type CredentialVerifier interface {
	Check(username, password string) error
}

// IdentityTokenVerifier は外部IDトークンの検証インターフェース。
type IdentityTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*Identity, error)
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionMaxAge time.Duration
}

// Service は管理者ログインを処理し、セッションを発行する。
type Service struct {
	credentials CredentialVerifier
	identity    IdentityTokenVerifier
	config      ServiceConfig
	now         func() time.Time
}

// NewService はServiceを生成する。
func NewService(credentials CredentialVerifier, identity IdentityTokenVerifier, config ServiceConfig) *Service {
	if config.SessionMaxAge <= 0 {
		config.SessionMaxAge = DefaultSessionMaxAge
	}
	return &Service{
		credentials: credentials,
		identity:    identity,
		config:      config,
		now:         time.Now,
	}
}

// Login はユーザー名・パスワードで認証し、新しいセッションを発行する。
// 失敗理由は呼び出し元でまとめて401として扱われる。
func (s *Service) Login(ctx context.Context, username, password string) (*Session, error) {
	if err := s.credentials.Check(username, password); err != nil {
		slog.Warn("admin password login failed", slog.String("reason", err.Error()))
		return nil, fmt.Errorf("password login: %w", err)
	}

	session, err := s.issue("")
	if err != nil {
		return nil, err
	}

	slog.Info("admin logged in", slog.String("method", "password"))
	return session, nil
}

// LoginWithIdentity は外部IDトークンを検証し、新しいセッションを発行する。
// トークンのハッシュは3つ目のCookieとして保存される。
func (s *Service) LoginWithIdentity(ctx context.Context, idToken string) (*Session, error) {
	identity, err := s.identity.Verify(ctx, idToken)
	if err != nil {
		slog.Warn("admin identity login failed", slog.String("reason", err.Error()))
		return nil, fmt.Errorf("identity login: %w", err)
	}

	session, err := s.issue(HashToken(idToken))
	if err != nil {
		return nil, err
	}

	slog.Info("admin logged in",
		slog.String("method", "identity"),
		slog.String("email", identity.Email),
	)
	return session, nil
}

// SessionMaxAge はCookieに設定する有効期間を返す。
func (s *Service) SessionMaxAge() time.Duration {
	return s.config.SessionMaxAge
}

func (s *Service) issue(identityHash string) (*Session, error) {
	token, err := NewSessionToken()
	if err != nil {
		return nil, err
	}
	return &Session{
		Token:        token,
		TokenHash:    HashToken(token),
		IdentityHash: identityHash,
		ExpiresAt:    s.now().Add(s.config.SessionMaxAge),
	}, nil
}
