package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/snapgo/snapgo-site/internal/auth"
)

// recordingMetrics はテスト用のMetricsCollector。
type recordingMetrics struct {
	mu           sync.Mutex
	statuses     []int
	blocked      map[string]int
	authFailures map[string]int
}

func newRecordingMetrics() *recordingMetrics {
	return &recordingMetrics{
		blocked:      make(map[string]int),
		authFailures: make(map[string]int),
	}
}

func (m *recordingMetrics) RecordHTTPStatus(statusCode int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statuses = append(m.statuses, statusCode)
}

func (m *recordingMetrics) RecordRequestLatency(time.Duration) {}

func (m *recordingMetrics) RecordRateLimitBlocked(prefix string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blocked[prefix]++
}

func (m *recordingMetrics) RecordAuthFailure(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.authFailures[tier]++
}

func (m *recordingMetrics) RecordContentRead(string, string) {}

func (m *recordingMetrics) RecordLogin(string, string) {}

// addValidSession は検証を通るセッションCookieをリクエストに付与する。
func addValidSession(r *http.Request) {
	token := "test-session-token"
	r.AddCookie(&http.Cookie{Name: auth.SessionCookieName, Value: token})
	r.AddCookie(&http.Cookie{Name: auth.TokenHashCookieName, Value: auth.HashToken(token)})
}

// okHandler は呼び出し回数を数えて200を返すハンドラー。
func okHandler(calls *int) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		*calls++
		w.WriteHeader(http.StatusOK)
	})
}
