package auth

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/awnumar/memguard"
	"github.com/snapgo/snapgo-site/internal/security"
)

// 入力長の上限。これを超える入力は比較の前に拒否する。
const (
	MaxUsernameLength = 128
	MaxPasswordLength = 256
)

// ローカル開発でのみ使用するフォールバック資格情報。
const (
	defaultUsername     = "admin"
	developmentPassword = "snapgo-dev"
)

var (
	// ErrInvalidCredentials は資格情報が一致しないことを示す。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotConfigured は本番環境で管理者シークレットが未設定であることを示す。
	ErrNotConfigured = errors.New("admin credentials are not configured")
)

// CredentialConfig は管理者資格情報の設定。
// Passwordが設定されていれば平文比較、そうでなければPasswordHash（argon2id）で比較する。
type CredentialConfig struct {
	Username     string
	Password     string
	PasswordHash string
	Production   bool
}

type credentialMode int

const (
	modeDisabled credentialMode = iota
	modePlaintext
	modeHash
)

// CredentialChecker はユーザー名とパスワードを定数時間で照合する。
type CredentialChecker struct {
	mode     credentialMode
	username string
	secret   *memguard.Enclave
	hash     *passwordHash
}

// NewCredentialChecker はCredentialCheckerを生成する。
// 平文パスワードはmemguardのEnclaveに移し、照合時にのみ復号する。
// 本番環境でシークレットが未設定の場合は常に認証を拒否するチェッカーを返す。
func NewCredentialChecker(cfg CredentialConfig) (*CredentialChecker, error) {
	c := &CredentialChecker{username: cfg.Username}
	if c.username == "" {
		c.username = defaultUsername
	}

	switch {
	case cfg.Password != "":
		c.mode = modePlaintext
		c.secret = memguard.NewEnclave([]byte(cfg.Password))
	case cfg.PasswordHash != "":
		h, err := parsePasswordHash(cfg.PasswordHash)
		if err != nil {
			return nil, fmt.Errorf("invalid ADMIN_PASSWORD_HASH: %w", err)
		}
		c.mode = modeHash
		c.hash = h
	case cfg.Production:
		slog.Error("admin secret is not configured; password login is disabled")
		c.mode = modeDisabled
	default:
		slog.Warn("admin secret is not configured; using local development credentials",
			slog.String("username", defaultUsername),
		)
		c.mode = modePlaintext
		c.username = defaultUsername
		c.secret = memguard.NewEnclave([]byte(developmentPassword))
	}

	return c, nil
}

// Check はユーザー名とパスワードを照合する。
// ユーザー名とパスワードの比較は、どちらかが不一致でも両方とも実行する。
func (c *CredentialChecker) Check(username, password string) error {
	if len(username) > MaxUsernameLength || len(password) > MaxPasswordLength {
		return ErrInvalidCredentials
	}

	switch c.mode {
	case modePlaintext:
		userOK := security.TimingSafeEqual(username, c.username)
		passOK, err := c.comparePlaintext(password)
		if err != nil {
			return err
		}
		if userOK && passOK {
			return nil
		}
		return ErrInvalidCredentials
	case modeHash:
		userOK := security.TimingSafeEqual(username, c.username)
		passOK := c.hash.verify(password)
		if userOK && passOK {
			return nil
		}
		return ErrInvalidCredentials
	default:
		return ErrNotConfigured
	}
}

func (c *CredentialChecker) comparePlaintext(password string) (bool, error) {
	buf, err := c.secret.Open()
	if err != nil {
		return false, fmt.Errorf("failed to open admin secret: %w", err)
	}
	defer buf.Destroy()

	return security.TimingSafeEqual(password, string(buf.Bytes())), nil
}
