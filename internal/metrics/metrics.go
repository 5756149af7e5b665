// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsCollector はメトリクス収集のインターフェース。
// ミドルウェア、ハンドラー、コンテンツ層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordRateLimitBlocked(prefix string)
	RecordAuthFailure(tier string)
	RecordContentRead(section, source string)
	RecordLogin(method, result string)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus       *prometheus.CounterVec
	requestLatency   prometheus.Histogram
	rateLimitBlocked *prometheus.CounterVec
	authFailures     *prometheus.CounterVec
	contentReads     *prometheus.CounterVec
	logins           *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapgo_http_requests_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "snapgo_http_request_duration_seconds",
			Help:    "HTTPリクエストの処理時間（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		rateLimitBlocked: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapgo_rate_limit_blocked_total",
			Help: "レート制限で拒否されたリクエスト数",
		}, []string{"prefix"}),
		authFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapgo_auth_failures_total",
			Help: "認証ゲートで拒否されたリクエスト数",
		}, []string{"tier"}),
		contentReads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapgo_content_reads_total",
			Help: "コンテンツ読み取り数（store: 保存データ、default: 静的デフォルト）",
		}, []string{"section", "source"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "snapgo_login_total",
			Help: "管理者ログイン試行数",
		}, []string{"method", "result"}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.rateLimitBlocked,
		c.authFailures,
		c.contentReads,
		c.logins,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストの処理時間を記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordRateLimitBlocked はレート制限による拒否を記録する。
func (c *Collector) RecordRateLimitBlocked(prefix string) {
	c.rateLimitBlocked.WithLabelValues(prefix).Inc()
}

// RecordAuthFailure は認証ゲートでの拒否を記録する。tierは"api"または"page"。
func (c *Collector) RecordAuthFailure(tier string) {
	c.authFailures.WithLabelValues(tier).Inc()
}

// RecordContentRead はコンテンツ読み取りを記録する。
func (c *Collector) RecordContentRead(section, source string) {
	c.contentReads.WithLabelValues(section, source).Inc()
}

// RecordLogin はログイン試行の結果を記録する。
func (c *Collector) RecordLogin(method, result string) {
	c.logins.WithLabelValues(method, result).Inc()
}

// Nop は何も記録しないMetricsCollector。
// メトリクスを必要としないテストやCLIサブコマンドで使用する。
type Nop struct{}

func (Nop) RecordHTTPStatus(int) {}
func (Nop) RecordRequestLatency(time.Duration) {}
func (Nop) RecordRateLimitBlocked(string) {}
func (Nop) RecordAuthFailure(string) {}
func (Nop) RecordContentRead(string, string) {}
func (Nop) RecordLogin(string, string) {}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
