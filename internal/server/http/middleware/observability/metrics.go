package observability

import (
	"strconv"
	"time"

	"go-rbacadmin/internal/metrics"

	"github.com/gin-gonic/gin"
)

// unmatchedRoute NoRoute 请求统一记一个 label，避免原始路径撑爆基数
const unmatchedRoute = "unmatched"

// Metrics skip 中的路由（健康检查、自身抓取）不计数
func Metrics(skip ...string) gin.HandlerFunc {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(c *gin.Context) {
		if _, ok := skipped[c.Request.URL.Path]; ok {
			c.Next()
			return
		}
		metrics.Inflight.Inc()
		defer metrics.Inflight.Dec()
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = unmatchedRoute
		}
		method := c.Request.Method
		metrics.RequestDuration.WithLabelValues(route, method).Observe(time.Since(start).Seconds())
		metrics.RequestTotal.WithLabelValues(route, method, strconv.Itoa(c.Writer.Status())).Inc()
	}
}
