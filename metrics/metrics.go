// Package metrics 定义推荐服务的 Prometheus 指标。
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 特征矩阵
	MatrixBuildDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_matrix_build_duration_seconds",
			Help:    "Duration of feature matrix builds in seconds",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"encoder"},
	)

	MatrixRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animerec_matrix_rows",
			Help: "Number of rows in the current feature matrix",
		},
		[]string{"encoder"},
	)

	MatrixDegenerateRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "animerec_matrix_degenerate_rows",
			Help: "Number of zero-vector rows in the current feature matrix",
		},
		[]string{"encoder"},
	)

	// 稠密编码器
	EncodeBatches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_encode_batches_total",
			Help: "Total number of embedding batches by outcome",
		},
		[]string{"encoder", "outcome"}, // ok / fallback / error
	)

	EncodeDegenerate = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_encode_degenerate_total",
			Help: "Total number of documents encoded as zero vectors",
		},
		[]string{"encoder"},
	)

	// 矩阵缓存
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_cache_lookups_total",
			Help: "Embedding cache lookups by result",
		},
		[]string{"cache", "result"}, // hit / miss / stale / error
	)

	// 推荐
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_recommendations_total",
			Help: "Total number of recommendation calls by ranker and outcome",
		},
		[]string{"ranker", "outcome"},
	)

	// HTTP
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "animerec_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "animerec_api_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)
)

// RecordMatrixBuild 记录一次矩阵构建
func RecordMatrixBuild(encoder string, d time.Duration, rows, degenerate int) {
	MatrixBuildDuration.WithLabelValues(encoder).Observe(d.Seconds())
	MatrixRows.WithLabelValues(encoder).Set(float64(rows))
	MatrixDegenerateRows.WithLabelValues(encoder).Set(float64(degenerate))
}

// RecordAPIRequest 记录一次 HTTP 请求
func RecordAPIRequest(method, route string, status int, d time.Duration) {
	APIRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	APIRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
