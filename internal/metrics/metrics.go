package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var durationBuckets = []float64{1, 5, 10, 20, 50, 100, 200, 500, 1000, 5000, 30000}

var (
	RequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climaterisk_requests_total",
		Help: "Total API requests by route",
	}, []string{"route"})
	RequestDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "climaterisk_request_duration_ms",
		Help:    "Request duration in milliseconds",
		Buckets: durationBuckets,
	})
	DatasetLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climaterisk_flood_dataset_loads_total",
		Help: "Flood dataset fetch attempts by result",
	}, []string{"result"})
	DatasetLoadDurationMs = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "climaterisk_flood_dataset_load_duration_ms",
		Help:    "Flood dataset fetch+decode duration in milliseconds",
		Buckets: durationBuckets,
	})
	DatasetFeatures = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "climaterisk_flood_dataset_features",
		Help: "Number of features in the resident flood dataset",
	})
	FloodLookupsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climaterisk_flood_lookups_total",
		Help: "Flood lookups by outcome",
	}, []string{"outcome"})
	UpstreamRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climaterisk_upstream_requests_total",
		Help: "Upstream climate API requests by upstream and result",
	}, []string{"upstream", "result"})
	UpstreamDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "climaterisk_upstream_duration_ms",
		Help:    "Upstream climate API duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"upstream"})
	AssessDurationMs = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "climaterisk_assess_duration_ms",
		Help:    "Per-hazard assessment duration in milliseconds",
		Buckets: durationBuckets,
	}, []string{"hazard"})
	CacheHitsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climaterisk_cache_hits_total",
		Help: "Address cache hits by backend",
	}, []string{"backend"})
	CacheMissesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "climaterisk_cache_misses_total",
		Help: "Address cache misses (including stale entries) by backend",
	}, []string{"backend"})
)

func init() {
	prometheus.MustRegister(RequestsTotal)
	prometheus.MustRegister(RequestDurationMs)
	prometheus.MustRegister(DatasetLoadsTotal)
	prometheus.MustRegister(DatasetLoadDurationMs)
	prometheus.MustRegister(DatasetFeatures)
	prometheus.MustRegister(FloodLookupsTotal)
	prometheus.MustRegister(UpstreamRequestsTotal)
	prometheus.MustRegister(UpstreamDurationMs)
	prometheus.MustRegister(AssessDurationMs)
	prometheus.MustRegister(CacheHitsTotal)
	prometheus.MustRegister(CacheMissesTotal)
}

// 文档注释：返回 Prometheus 指标处理器，在主入口挂载到 {API_BASE}/metrics
func Handler() http.Handler { return promhttp.Handler() }
