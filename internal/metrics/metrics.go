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
// ハンドラーやサービス層から利用する。
type MetricsCollector interface {
	RecordHTTPStatus(statusCode int)
	RecordRequestLatency(duration time.Duration)
	RecordUserRegistered()
	RecordStoryCreated()
	RecordStoryDeleted()
	RecordImageUploaded(sizeBytes int64)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	httpStatus      *prometheus.CounterVec
	requestLatency  prometheus.Histogram
	usersRegistered prometheus.Counter
	storiesCreated  prometheus.Counter
	storiesDeleted  prometheus.Counter
	imagesUploaded  prometheus.Counter
	imageBytes      prometheus.Counter
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "wanderlog_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
		requestLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wanderlog_request_latency_seconds",
			Help:    "HTTPリクエスト処理のレイテンシ（秒）",
			Buckets: prometheus.DefBuckets,
		}),
		usersRegistered: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_users_registered_total",
			Help: "登録されたユーザーの合計数",
		}),
		storiesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_stories_created_total",
			Help: "作成された旅行記の合計数",
		}),
		storiesDeleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_stories_deleted_total",
			Help: "削除された旅行記の合計数",
		}),
		imagesUploaded: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_images_uploaded_total",
			Help: "アップロードされた画像の合計数",
		}),
		imageBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wanderlog_image_upload_bytes_total",
			Help: "アップロードされた画像の合計バイト数",
		}),
	}

	reg.MustRegister(
		c.httpStatus,
		c.requestLatency,
		c.usersRegistered,
		c.storiesCreated,
		c.storiesDeleted,
		c.imagesUploaded,
		c.imageBytes,
	)

	return c
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// RecordRequestLatency はリクエスト処理のレイテンシを記録する。
func (c *Collector) RecordRequestLatency(duration time.Duration) {
	c.requestLatency.Observe(duration.Seconds())
}

// RecordUserRegistered はユーザー登録を記録する。
func (c *Collector) RecordUserRegistered() {
	c.usersRegistered.Inc()
}

// RecordStoryCreated は旅行記の作成を記録する。
func (c *Collector) RecordStoryCreated() {
	c.storiesCreated.Inc()
}

// RecordStoryDeleted は旅行記の削除を記録する。
func (c *Collector) RecordStoryDeleted() {
	c.storiesDeleted.Inc()
}

// RecordImageUploaded は画像アップロードの件数とバイト数を記録する。
func (c *Collector) RecordImageUploaded(sizeBytes int64) {
	c.imagesUploaded.Inc()
	if sizeBytes > 0 {
		c.imageBytes.Add(float64(sizeBytes))
	}
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
