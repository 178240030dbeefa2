package http

import (
	"context"
	"sync"
	"time"

	"go-rbacadmin/internal/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// Dependency readiness 检查项；Gauge 可为空
type Dependency struct {
	Name    string
	Timeout time.Duration
	Ping    func(ctx context.Context) error
	Gauge   prometheus.Gauge
}

// DBDependency gorm 连接池 ping
func DBDependency(db *gorm.DB) Dependency {
	return Dependency{Name: "db", Timeout: 300 * time.Millisecond, Gauge: metrics.DBUp, Ping: func(ctx context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.PingContext(ctx)
	}}
}

type depResult struct {
	Dep        string  `json:"dep"`
	Up         bool    `json:"up"`
	Error      string  `json:"error,omitempty"`
	DurationMS float64 `json:"duration_ms"`
}

// Readiness /readyz 响应体
type Readiness struct {
	Status string      `json:"status"`
	Time   string      `json:"time"`
	Detail []depResult `json:"detail"`
}

// HealthChecker 聚合 liveness / readiness，readiness 结果短暂缓存
type HealthChecker struct {
	deps []Dependency

	cacheMu     sync.Mutex
	cacheResult *Readiness
	cacheExpiry time.Time
	cacheTTL    time.Duration
}

func NewHealthChecker(deps ...Dependency) *HealthChecker {
	return &HealthChecker{deps: deps, cacheTTL: 2 * time.Second}
}

func (h *HealthChecker) Liveness() map[string]interface{} {
	return map[string]interface{}{"status": "ok", "time": time.Now().Format(time.RFC3339)}
}

// Invalidate 下次 Readiness 强制重新探测
func (h *HealthChecker) Invalidate() {
	h.cacheMu.Lock()
	h.cacheExpiry = time.Time{}
	h.cacheMu.Unlock()
}

// Readiness 并发探测所有依赖，任一失败即 degraded(503)
func (h *HealthChecker) Readiness(ctx context.Context) (*Readiness, int) {
	h.cacheMu.Lock()
	if h.cacheResult != nil && time.Now().Before(h.cacheExpiry) {
		res := h.cacheResult
		h.cacheMu.Unlock()
		return res, statusCode(res)
	}
	h.cacheMu.Unlock()

	results := make([]depResult, len(h.deps))
	var wg sync.WaitGroup
	for i, d := range h.deps {
		wg.Add(1)
		go func(i int, d Dependency) {
			defer wg.Done()
			timeout := d.Timeout
			if timeout <= 0 {
				timeout = 250 * time.Millisecond
			}
			ctx2, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()
			start := time.Now()
			err := d.Ping(ctx2)
			dur := time.Since(start)
			out := depResult{Dep: d.Name, Up: err == nil, DurationMS: float64(dur.Microseconds()) / 1000.0}
			if err != nil {
				out.Error = err.Error()
			}
			metrics.DependencyCheckDuration.WithLabelValues(d.Name).Observe(dur.Seconds())
			if d.Gauge != nil {
				if out.Up {
					d.Gauge.Set(1)
				} else {
					d.Gauge.Set(0)
				}
			}
			results[i] = out
		}(i, d)
	}
	wg.Wait()

	res := &Readiness{Status: "ok", Time: time.Now().Format(time.RFC3339), Detail: results}
	for _, r := range results {
		if !r.Up {
			res.Status = "degraded"
		}
	}
	h.cacheMu.Lock()
	h.cacheResult = res
	h.cacheExpiry = time.Now().Add(h.cacheTTL)
	h.cacheMu.Unlock()
	return res, statusCode(res)
}

func statusCode(r *Readiness) int {
	if r.Status != "ok" {
		return 503
	}
	return 200
}
