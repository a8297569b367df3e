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
// サービス層とハンドラー層から利用する。
type MetricsCollector interface {
	RecordOpinionSubmitted(department string)
	RecordPostPublished(category string)
	RecordReportExported()
	RecordUpload(fileType string)
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	opinionsSubmitted *prometheus.CounterVec
	postsPublished    *prometheus.CounterVec
	reportsExported   prometheus.Counter
	uploads           *prometheus.CounterVec
	httpStatus        *prometheus.CounterVec
	requestLatency    prometheus.Histogram
}

var _ MetricsCollector = (*Collector)(nil)

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		opinionsSubmitted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kumivoice_opinions_submitted_total",
			Help: "投稿された意見の合計数（分会別）",
		}, []string{"department"}),
		postsPublished: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kumivoice_posts_published_total",
			Help: "公開された投稿の合計数（カテゴリ別）",
		}, []string{"category"}),
		reportsExported: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "kumivoice_reports_exported_total",
			Help: "エクスポートされた月次報告書の合計数",
		}),
		uploads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kumivoice_uploads_total",
			Help: "アップロードされたファイルの合計数（種別別）",
		}, []string{"file_type"}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "kumivoice_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "kumivoice_request_latency_seconds",
			Help:    "HTTPリクエストのレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
	}

	reg.MustRegister(
		c.opinionsSubmitted,
		c.postsPublished,
		c.reportsExported,
		c.uploads,
		c.httpStatus,
		c.requestLatency,
	)

	return c
}

// RecordOpinionSubmitted は意見の投稿を記録する。
func (c *Collector) RecordOpinionSubmitted(department string) {
	c.opinionsSubmitted.WithLabelValues(department).Inc()
}

// RecordPostPublished は投稿の公開を記録する。
func (c *Collector) RecordPostPublished(category string) {
	c.postsPublished.WithLabelValues(category).Inc()
}

// RecordReportExported は月次報告書のエクスポートを記録する。
func (c *Collector) RecordReportExported() {
	c.reportsExported.Inc()
}

// RecordUpload はファイルアップロードを記録する。
func (c *Collector) RecordUpload(fileType string) {
	c.uploads.WithLabelValues(fileType).Inc()
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエストのレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
// Prometheusスクレイプに対応する。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
