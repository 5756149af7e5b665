// Package config は環境変数からアプリケーション設定を読み込む。
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// 実行環境。
const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// コンテンツストアの種類。
const (
	StoreStatic   = "static"
	StorePostgres = "postgres"
	StoreBolt     = "bolt"
	StoreMemory   = "memory"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
type Config struct {
	// Runtime
	AppEnv   string
	LogLevel string

	// Server
	ServerPort string
	BaseURL    string

	// Content store
	ContentStore string
	DatabaseURL  string
	BoltPath     string

	// Admin credentials
	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	// Identity token login
	IdentityClientID     string
	IdentityTokenInfoURL string
	AdminEmails          []string

	// Session
	SessionMaxAge time.Duration

	// Cookie
	CookieSecure bool

	// CORS
	CORSAllowedOrigin string

	// Admin pages
	AdminStaticDir string

	// Rate Limit
	RateLimitLoginMax        int
	RateLimitLoginWindow     time.Duration
	RateLimitContentMax      int
	RateLimitContentWindow   time.Duration
	PublicRatePerMin         int
	TrustProxyHeaders        bool
	RateLimitCleanupInterval time.Duration
}

// IsProduction は本番環境で動作しているかを返す。
func (c *Config) IsProduction() bool {
	return c.AppEnv == EnvProduction
}

// Load は環境変数からConfigを読み込む。
// 本番環境で必須の設定が欠けている場合は、欠けているものをまとめてエラーで返す。
func Load() (*Config, error) {
	cfg := &Config{}

	cfg.AppEnv = strings.ToLower(getEnvString("APP_ENV", EnvDevelopment))
	if cfg.AppEnv != EnvDevelopment && cfg.AppEnv != EnvProduction {
		return nil, fmt.Errorf("APP_ENV must be %q or %q, got %q", EnvDevelopment, EnvProduction, cfg.AppEnv)
	}
	cfg.LogLevel = getEnvString("LOG_LEVEL", "info")

	cfg.ServerPort = getEnvString("SERVER_PORT", "8080")
	cfg.BaseURL = getEnvString("BASE_URL", "http://localhost:8080")
	cfg.CookieSecure = strings.HasPrefix(cfg.BaseURL, "https://")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	defaultStore := StoreStatic
	if cfg.DatabaseURL != "" {
		defaultStore = StorePostgres
	}
	cfg.ContentStore = strings.ToLower(getEnvString("CONTENT_STORE", defaultStore))
	switch cfg.ContentStore {
	case StoreStatic, StorePostgres, StoreBolt, StoreMemory:
	default:
		return nil, fmt.Errorf("unknown CONTENT_STORE %q", cfg.ContentStore)
	}
	cfg.BoltPath = getEnvString("BOLT_PATH", "snapgo.db")

	cfg.AdminUsername = getEnvString("ADMIN_USERNAME", "admin")
	cfg.AdminPassword = os.Getenv("ADMIN_PASSWORD")
	cfg.AdminPasswordHash = os.Getenv("ADMIN_PASSWORD_HASH")

	cfg.IdentityClientID = os.Getenv("IDENTITY_CLIENT_ID")
	cfg.IdentityTokenInfoURL = os.Getenv("IDENTITY_TOKENINFO_URL")
	cfg.AdminEmails = getEnvList("ADMIN_EMAILS")

	cfg.SessionMaxAge = getEnvPositiveDuration("SESSION_MAX_AGE", 24*time.Hour)
	cfg.CORSAllowedOrigin = getEnvString("CORS_ALLOWED_ORIGIN", "")
	cfg.AdminStaticDir = getEnvString("ADMIN_STATIC_DIR", "")

	cfg.RateLimitLoginMax = getEnvPositiveInt("RATE_LIMIT_LOGIN_MAX", 5)
	cfg.RateLimitLoginWindow = getEnvPositiveDuration("RATE_LIMIT_LOGIN_WINDOW", 15*time.Minute)
	cfg.RateLimitContentMax = getEnvPositiveInt("RATE_LIMIT_CONTENT_MAX", 10)
	cfg.RateLimitContentWindow = getEnvPositiveDuration("RATE_LIMIT_CONTENT_WINDOW", 10*time.Minute)
	cfg.PublicRatePerMin = getEnvInt("PUBLIC_RATE_PER_MIN", 120)
	cfg.TrustProxyHeaders = getEnvBool("RATE_LIMIT_TRUST_PROXY_HEADERS", true)
	cfg.RateLimitCleanupInterval = getEnvPositiveDuration("RATE_LIMIT_CLEANUP_INTERVAL", 60*time.Second)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate は本番環境で必須の設定を検証する。
func (c *Config) validate() error {
	var missing []string

	if c.ContentStore == StorePostgres && c.DatabaseURL == "" {
		missing = append(missing, "DATABASE_URL")
	}

	if c.IsProduction() {
		if c.AdminPassword == "" && c.AdminPasswordHash == "" && c.IdentityClientID == "" {
			missing = append(missing, "ADMIN_PASSWORD_HASH (or ADMIN_PASSWORD or IDENTITY_CLIENT_ID)")
		}
		if c.IdentityClientID != "" && len(c.AdminEmails) == 0 {
			missing = append(missing, "ADMIN_EMAILS")
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("required environment variables are not set: %v", missing)
	}
	return nil
}

func getEnvString(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return defaultVal
	}
	return i
}

// getEnvPositiveInt は0以下の値を不正値として既定値に置き換える。
// レート制限の予算が0や負数で無効化されるのを防ぐ。
func getEnvPositiveInt(key string, defaultVal int) int {
	i := getEnvInt(key, defaultVal)
	if i <= 0 {
		slog.Warn("non-positive value ignored", slog.String("key", key), slog.Int("default", defaultVal))
		return defaultVal
	}
	return i
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultVal
	}
	return d
}

// getEnvList はカンマ区切りの値を空要素を除いて返す。
func getEnvList(key string) []string {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// getEnvPositiveDuration は0以下の期間を不正値として既定値に置き換える。
func getEnvPositiveDuration(key string, defaultVal time.Duration) time.Duration {
	d := getEnvDuration(key, defaultVal)
	if d <= 0 {
		slog.Warn("non-positive duration ignored", slog.String("key", key), slog.Duration("default", defaultVal))
		return defaultVal
	}
	return d
}
