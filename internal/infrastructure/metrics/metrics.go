// Package metrics はPrometheusメトリクスを提供する
package metrics

import (
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics サービス全体のPrometheusメトリクス
// nilの*Metricsに対してもメソッドを呼び出せる
type Metrics struct {
	registry *prometheus.Registry

	// レスポンスキャッシュ
	CacheLookups *prometheus.CounterVec

	// 外部API
	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	// 地図
	ClusteringDuration prometheus.Histogram
	ClustersReturned   prometheus.Histogram

	// エクスポート
	ExportsTotal *prometheus.CounterVec
}

// NewMetrics は専用レジストリ上に新しいMetricsを作成
func NewMetrics(namespace string) *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "response_cache_lookups_total",
			Help:      "Response cache lookups by key namespace and result",
		}, []string{"namespace", "result"}),
		UpstreamRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upstream_requests_total",
			Help:      "Requests sent to external APIs by outcome",
		}, []string{"api", "outcome"}),
		UpstreamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upstream_request_duration_seconds",
			Help:      "External API request latency in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		}, []string{"api"}),
		ClusteringDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clustering_duration_seconds",
			Help:      "Time spent clustering map records",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
		ClustersReturned: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "clusters_returned",
			Help:      "Number of multi-member clusters per map request",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		}),
		ExportsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Generated exports by format",
		}, []string{"format"}),
	}
}

// Registry は内部のレジストリを返す
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler は/metrics用のHTTPハンドラーを返す
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveCacheLookup はキャッシュのヒット/ミスを記録する
// ラベルは最初のコロンより前のキー接頭辞（"wikidata", "overpass"）
func (m *Metrics) ObserveCacheLookup(key string, hit bool) {
	if m == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(keyNamespace(key), result).Inc()
}

// ObserveUpstream は外部API呼び出し1回分のレイテンシと結果を記録する
func (m *Metrics) ObserveUpstream(api string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	m.UpstreamRequests.WithLabelValues(api, outcome).Inc()
	m.UpstreamDuration.WithLabelValues(api).Observe(time.Since(start).Seconds())
}

// ObserveClustering はクラスタリング1回分を記録する
func (m *Metrics) ObserveClustering(start time.Time, clusters int) {
	if m == nil {
		return
	}
	m.ClusteringDuration.Observe(time.Since(start).Seconds())
	m.ClustersReturned.Observe(float64(clusters))
}

// ObserveExport はエクスポート生成回数を数える
func (m *Metrics) ObserveExport(format string) {
	if m == nil {
		return
	}
	m.ExportsTotal.WithLabelValues(format).Inc()
}

func keyNamespace(key string) string {
	if i := strings.IndexByte(key, ':'); i > 0 {
		return key[:i]
	}
	return "other"
}
