package ratelimit

import (
	"math"
	"sync"
	"time"
)

// DefaultCleanupInterval は期限切れエントリの一括削除を行う最小間隔。
const DefaultCleanupInterval = 60 * time.Second

// Budget はルートごとのレート制限予算。
type Budget struct {
	MaxRequests int
	Window      time.Duration
}

// Decision はCheckの結果。
// Allowedがfalseの場合、RetryAfterは再試行まで待つべき秒数（1以上）。
type Decision struct {
	Allowed    bool
	RetryAfter int
}

// Option はLimiterの生成オプション。
type Option func(*Limiter)

// WithClock は現在時刻の取得関数を差し替える。テスト用。
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		l.now = now
	}
}

// WithCleanupInterval は期限切れエントリの削除間隔を変更する。0以下は無視する。
func WithCleanupInterval(d time.Duration) Option {
	return func(l *Limiter) {
		if d > 0 {
			l.cleanupInterval = d
		}
	}
}

// Limiter は固定ウィンドウ型のレートリミッター。
// スライディングウィンドウやトークンバケットではない。
//
// バックグラウンドのタイマーは持たない。期限切れエントリの削除は、
// 前回の削除からcleanupIntervalが経過した後に最初に来たCheck呼び出しが肩代わりする。
type Limiter struct {
	store           Store
	now             func() time.Time
	cleanupInterval time.Duration

	cleanupMu   sync.Mutex
	lastCleanup time.Time
}

// NewLimiter は指定されたStoreを使うLimiterを生成する。
func NewLimiter(store Store, opts ...Option) *Limiter {
	l := &Limiter{
		store:           store,
		now:             time.Now,
		cleanupInterval: DefaultCleanupInterval,
	}
	for _, opt := range opts {
		opt(l)
	}
	l.lastCleanup = l.now()
	return l
}

// Check は(prefix, clientIP)のウィンドウを1リクエスト分進め、許可または拒否を返す。
//
//   - エントリがない、またはウィンドウが経過済み: 新しいウィンドウをcount=1で開始し許可
//   - count < MaxRequests: countを加算して許可
//   - それ以外: 拒否し、ResetAtまでの秒数を切り上げてRetryAfterに設定
func (l *Limiter) Check(prefix, clientIP string, budget Budget) Decision {
	now := l.now()
	l.maybeSweep(now)

	var decision Decision
	l.store.Update(Key{Prefix: prefix, ClientIP: clientIP}, func(entry Entry, exists bool) Entry {
		if !exists || !now.Before(entry.ResetAt) {
			decision.Allowed = true
			return Entry{Count: 1, ResetAt: now.Add(budget.Window)}
		}
		if entry.Count < budget.MaxRequests {
			entry.Count++
			decision.Allowed = true
			return entry
		}
		decision.RetryAfter = retryAfterSeconds(entry.ResetAt.Sub(now))
		return entry
	})

	return decision
}

// Len は現在保持しているエントリ数を返す。テストおよびメトリクス用。
func (l *Limiter) Len() int {
	return l.store.Len()
}

// maybeSweep は前回の削除からcleanupIntervalが経過していれば全エントリを走査する。
func (l *Limiter) maybeSweep(now time.Time) {
	l.cleanupMu.Lock()
	if now.Sub(l.lastCleanup) < l.cleanupInterval {
		l.cleanupMu.Unlock()
		return
	}
	l.lastCleanup = now
	l.cleanupMu.Unlock()

	l.store.Sweep(now)
}

func retryAfterSeconds(d time.Duration) int {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}
