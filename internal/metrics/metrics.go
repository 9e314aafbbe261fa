// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/hitoshi/memotodo/internal/model"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 操作結果のラベル値
const (
	ResultSuccess        = "success"
	ResultNotFound       = "not_found"
	ResultNotImplemented = "not_implemented"
	ResultRejected       = "rejected"
	ResultInvalid        = "invalid"
	ResultError          = "error"
)

// MetricsCollector はメトリクス収集のインターフェース。
// サービス層やミドルウェアから利用する。
type MetricsCollector interface {
	RecordPostOperation(operation, result string)
	RecordAuthAction(action, result string)
	RecordStoreReset(result string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	postOps        *prometheus.CounterVec
	authActions    *prometheus.CounterVec
	storeResets    *prometheus.CounterVec
	httpStatus     *prometheus.CounterVec
	requestLatency prometheus.Histogram
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		postOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memotodo_post_operations_total",
			Help: "投稿リポジトリ操作の合計数",
		}, []string{"operation", "result"}),
		authActions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memotodo_auth_actions_total",
			Help: "スタブ認証アクションの合計数",
		}, []string{"action", "result"}),
		storeResets: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memotodo_store_resets_total",
			Help: "スタブストアのリセット要求数",
		}, []string{"result"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memotodo_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "memotodo_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.postOps,
		c.authActions,
		c.storeResets,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordPostOperation は投稿操作の結果を記録する。
func (c *Collector) RecordPostOperation(operation, result string) {
	c.postOps.WithLabelValues(operation, result).Inc()
}

// RecordAuthAction は認証アクションの結果を記録する。
func (c *Collector) RecordAuthAction(action, result string) {
	c.authActions.WithLabelValues(action, result).Inc()
}

// RecordStoreReset はストアリセット要求の結果を記録する。
func (c *Collector) RecordStoreReset(result string) {
	c.storeResets.WithLabelValues(result).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// ResultOf はエラーを結果ラベルに変換する。
func ResultOf(err error) string {
	switch {
	case err == nil:
		return ResultSuccess
	case model.IsNotFound(err):
		return ResultNotFound
	case model.IsNotImplemented(err):
		return ResultNotImplemented
	case model.HasErrorCode(err, model.ErrCodeStubAuthDisabled),
		model.HasErrorCode(err, model.ErrCodeResetForbidden),
		model.HasErrorCode(err, model.ErrCodeUnauthorized):
		return ResultRejected
	case model.HasErrorCategory(err, "validation"):
		return ResultInvalid
	default:
		return ResultError
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
