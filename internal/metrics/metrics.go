package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency distribution",
		Buckets: prometheus.DefBuckets,
	}, []string{"path", "method"})
	RequestTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"path", "method", "status"})
	Inflight = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "http_inflight_requests",
		Help: "In-flight HTTP requests",
	})
	DBUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "db_up",
		Help: "Database connectivity (1=up,0=down)",
	})
	RedisUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "redis_up",
		Help: "Redis connectivity (1=up,0=down)",
	})
	KafkaUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "kafka_up",
		Help: "Kafka connectivity (1=up,0=down)",
	})
	EtcdUp = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "etcd_up",
		Help: "Etcd connectivity (1=up,0=down)",
	})
	DependencyCheckDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dependency_check_duration_seconds",
		Help:    "Latency of dependency health checks",
		Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.2, 0.4, 0.8, 1},
	}, []string{"dep"})

	// 业务指标
	PermissionDenied = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_permission_denied_total",
		Help: "Authorization checks that were denied",
	}, []string{"path"})
	PermissionInvalidate = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_permission_invalidate_total",
		Help: "Cached permission sets dropped, by trigger",
	}, []string{"reason"})
	TreeBuildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rbac_tree_build_duration_seconds",
		Help:    "Time spent assembling menu/department trees",
		Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
	}, []string{"entity", "shape"})
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_cache_requests_total",
		Help: "Service level cache lookups by result",
	}, []string{"cache", "result"})
	OpLogConsumed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_oplog_consumed_total",
		Help: "Operation log messages handled by the worker",
	}, []string{"result"})
	ScheduledTaskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rbac_scheduled_task_runs_total",
		Help: "Cron task executions",
	}, []string{"task", "result"})
)
