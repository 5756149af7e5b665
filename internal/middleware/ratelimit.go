package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/snapgo/snapgo-site/internal/metrics"
	"github.com/snapgo/snapgo-site/internal/ratelimit"
	"golang.org/x/time/rate"
)

// RateLimitMessage は429レスポンスのエラーメッセージ。
const RateLimitMessage = "Too many requests. Please try again later."

// RateLimitGuard は固定ウィンドウのレート制限をルートに適用する。
// 認証ゲートより前に配置し、拒否されたリクエストは資格情報の照合に到達しない。
type RateLimitGuard struct {
	limiter   *ratelimit.Limiter
	resolveIP ratelimit.IPResolver
	metrics   metrics.MetricsCollector
}

// NewRateLimitGuard は新しいRateLimitGuardを生成する。
func NewRateLimitGuard(limiter *ratelimit.Limiter, resolveIP ratelimit.IPResolver, m metrics.MetricsCollector) *RateLimitGuard {
	return &RateLimitGuard{limiter: limiter, resolveIP: resolveIP, metrics: m}
}

// Limit はprefixとbudgetで制限するミドルウェアを返す。
func (g *RateLimitGuard) Limit(prefix string, budget ratelimit.Budget) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := g.resolveIP(r)
			decision := g.limiter.Check(prefix, clientIP, budget)
			if !decision.Allowed {
				g.metrics.RecordRateLimitBlocked(prefix)
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", clientIP),
					slog.String("limit_type", prefix),
					slog.Int("retry_after", decision.RetryAfter),
				)
				writeRateLimitResponse(w, decision.RetryAfter)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// PublicThrottleConfig は公開読み取りAPIのスロットル設定を保持する。
type PublicThrottleConfig struct {
	Rate            rate.Limit    // クライアントIPごとのレート（req/sec）
	Burst           int           // バーストサイズ
	CleanupInterval time.Duration // 期限切れエントリのクリーンアップ間隔
}

// DefaultPublicThrottleConfig はデフォルトのスロットル設定を返す。
// 120 req/min/IP
func DefaultPublicThrottleConfig() PublicThrottleConfig {
	return PublicThrottleConfig{
		Rate:            rate.Limit(120.0 / 60.0),
		Burst:           120,
		CleanupInterval: 5 * time.Minute,
	}
}

// ipLimiter はクライアントIPごとのトークンバケットとアクセス時刻を保持する。
type ipLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// PublicThrottle は公開GETに対するクライアントIPごとのトークンバケット制限。
// 更新系ルートの固定ウィンドウ制限とは独立に動作する。
type PublicThrottle struct {
	config    PublicThrottleConfig
	resolveIP ratelimit.IPResolver
	metrics   metrics.MetricsCollector

	mu       sync.Mutex
	limiters map[string]*ipLimiter

	stopCh   chan struct{}
	stopOnce sync.Once
}

// NewPublicThrottle は新しいPublicThrottleを生成する。
// バックグラウンドで期限切れエントリのクリーンアップを開始する。
func NewPublicThrottle(config PublicThrottleConfig, resolveIP ratelimit.IPResolver, m metrics.MetricsCollector) *PublicThrottle {
	pt := &PublicThrottle{
		config:    config,
		resolveIP: resolveIP,
		metrics:   m,
		limiters:  make(map[string]*ipLimiter),
		stopCh:    make(chan struct{}),
	}

	go pt.cleanupLoop()

	return pt
}

// Stop はクリーンアップのバックグラウンドゴルーチンを停止する。
func (pt *PublicThrottle) Stop() {
	pt.stopOnce.Do(func() { close(pt.stopCh) })
}

// Middleware はスロットルミドルウェアを返す。
func (pt *PublicThrottle) Middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientIP := pt.resolveIP(r)
			if !pt.getOrCreate(clientIP).Allow() {
				pt.metrics.RecordRateLimitBlocked("public")
				slog.Warn("rate limit exceeded",
					slog.String("client_ip", clientIP),
					slog.String("limit_type", "public"),
				)
				writeRateLimitResponse(w, retryAfterForRate(pt.config.Rate))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LimiterCount は現在管理されているリミッターのエントリ数を返す。
// テストおよびメトリクス用。
func (pt *PublicThrottle) LimiterCount() int {
	pt.mu.Lock()
	defer pt.mu.Unlock()
	return len(pt.limiters)
}

func (pt *PublicThrottle) getOrCreate(clientIP string) *rate.Limiter {
	pt.mu.Lock()
	defer pt.mu.Unlock()

	if l, ok := pt.limiters[clientIP]; ok {
		l.lastAccess = time.Now()
		return l.limiter
	}

	l := &ipLimiter{
		limiter:    rate.NewLimiter(pt.config.Rate, pt.config.Burst),
		lastAccess: time.Now(),
	}
	pt.limiters[clientIP] = l
	return l.limiter
}

// cleanupLoop はバックグラウンドで期限切れエントリを定期的にクリーンアップする。
func (pt *PublicThrottle) cleanupLoop() {
	ticker := time.NewTicker(pt.config.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			pt.cleanup(time.Now())
		case <-pt.stopCh:
			return
		}
	}
}

// cleanup は最終アクセス時刻がCleanupIntervalの2倍を超えたエントリを削除する。
func (pt *PublicThrottle) cleanup(now time.Time) {
	ttl := pt.config.CleanupInterval * 2

	pt.mu.Lock()
	defer pt.mu.Unlock()
	for ip, l := range pt.limiters {
		if now.Sub(l.lastAccess) > ttl {
			delete(pt.limiters, ip)
		}
	}
}

// retryAfterForRate は1トークンが補充されるまでの秒数を返す。
func retryAfterForRate(r rate.Limit) int {
	if r <= 0 {
		return 60
	}
	secs := int(math.Ceil(1.0 / float64(r)))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// writeRateLimitResponse は429 Too Many Requestsレスポンスを書き込む。
func writeRateLimitResponse(w http.ResponseWriter, retryAfter int) {
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	WriteError(w, http.StatusTooManyRequests, RateLimitMessage)
}
