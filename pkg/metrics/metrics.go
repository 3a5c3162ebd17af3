// Package metrics 提供 Prometheus 指标采集功能
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "rpg_motif"
)

var (
	// HTTP 请求指标
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_size_bytes",
			Help:      "HTTP request size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)

	HTTPResponseSize = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "response_size_bytes",
			Help:      "HTTP response size in bytes",
			Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
		},
		[]string{"method", "path"},
	)

	// 业务指标 - 主题 (motif)
	MotifsActive = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "motif",
			Name:      "active",
			Help:      "Number of active motifs by scope",
		},
		[]string{"scope"},
	)

	MotifsCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "motif",
			Name:      "created_total",
			Help:      "Total number of motifs created",
		},
		[]string{"category", "scope"},
	)

	LifecycleAdvancesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "advances_total",
			Help:      "Total number of lifecycle transitions applied by the sweep",
		},
		[]string{"to_state"},
	)

	LifecycleSweepDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "lifecycle",
			Name:      "sweep_duration_seconds",
			Help:      "Lifecycle sweep duration in seconds",
			Buckets:   []float64{.01, .05, .1, .5, 1, 5, 15, 60},
		},
	)

	ConflictsDetectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conflict",
			Name:      "detected_total",
			Help:      "Total number of motif conflicts detected",
		},
		[]string{"severity"},
	)

	ConflictsResolvedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "conflict",
			Name:      "resolved_total",
			Help:      "Total number of motif conflicts resolved",
		},
		[]string{"mode"}, // mode: auto/ignored
	)

	EvolutionsTriggeredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "evolution",
			Name:      "triggered_total",
			Help:      "Total number of evolution rules fired",
		},
		[]string{"trigger_type"},
	)

	SynthesisTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "total",
			Help:      "Total number of narrative synthesis calls",
		},
		[]string{"context_size"},
	)

	SynthesisMotifCount = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "synthesis",
			Name:      "motif_count",
			Help:      "Number of motifs blended per synthesis call",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	EffectEventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "effects",
			Name:      "events_published_total",
			Help:      "Total number of effect events published to the stream",
		},
		[]string{"target", "status"},
	)

	// 缓存指标
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total number of cache hits",
		},
		[]string{"key_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total number of cache misses",
		},
		[]string{"key_type"},
	)

	CacheErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "errors_total",
			Help:      "Total number of cache errors (degraded to store reads)",
		},
		[]string{"operation"},
	)

	// 数据库指标
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "db",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"operation"},
	)
)
