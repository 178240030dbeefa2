package observability

import (
	"bytes"
	"encoding/json"
	"io"
	"regexp"
	"strings"
	"time"

	"go-rbacadmin/internal/consumer/oplog"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/mq/kafka"
	sec "go-rbacadmin/internal/server/http/middleware/security"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxCapture = 4096

var sensitiveKeys = map[string]struct{}{
	"password": {}, "password_two": {}, "new_password": {}, "old_password": {},
	"token": {}, "access_token": {}, "authorization": {},
}

// 截断后的 JSON 无法解析，按正则掩码
var sensitivePattern = regexp.MustCompile(`(?i)"(password|password_two|new_password|old_password|token|access_token|authorization)"\s*:\s*"[^"]*"?`)

// OperationLog 非 GET 请求结束后投递到 kafka；p 为 nil 时不记录
func OperationLog(p kafka.Publisher, l *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if p == nil || c.Request.Method == "GET" || c.Request.Method == "OPTIONS" {
			c.Next()
			return
		}
		start := time.Now()
		var body []byte
		if c.Request.Body != nil {
			// 只截取前 maxCapture 字节入日志，handler 仍读到完整 body
			body, _ = io.ReadAll(io.LimitReader(c.Request.Body, maxCapture))
			c.Request.Body = io.NopCloser(io.MultiReader(bytes.NewReader(body), c.Request.Body))
		}
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		e := oplog.Entry{
			ActionName: actionName(c.Request.Method, path),
			Path:       c.Request.URL.Path,
			Method:     c.Request.Method,
			Status:     c.Writer.Status(),
			LatencyMs:  time.Since(start).Milliseconds(),
			IP:         c.ClientIP(),
			UserID:     sec.UserID(c),
			Time:       start.Format(time.RFC3339),
			Body:       sanitizeJSON(body),
			Query:      truncate(c.Request.URL.RawQuery, 512),
			TraceID:    c.GetString(TraceIDKey),
		}
		for _, er := range c.Errors {
			e.Errors = append(e.Errors, er.Error())
		}
		b, err := json.Marshal(e)
		if err != nil {
			return
		}
		var headers map[string]string
		if e.TraceID != "" {
			headers = map[string]string{"trace_id": e.TraceID}
		}
		if err := p.Publish(c.Request.Context(), nil, b, headers); err != nil {
			l.WithContext(c.Request.Context()).Warn("oplog_publish_failed", zap.Error(err))
		}
	}
}

func sanitizeJSON(src []byte) string {
	if len(src) == 0 {
		return ""
	}
	var v interface{}
	if json.Unmarshal(src, &v) != nil {
		return sensitivePattern.ReplaceAllString(string(src), `"$1":"***"`)
	}
	v = sanitizeValue(v)
	b, err := json.Marshal(v)
	if err != nil {
		return string(src)
	}
	return string(b)
}

func sanitizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, vv := range val {
			if _, ok := sensitiveKeys[strings.ToLower(k)]; ok {
				val[k] = "***"
				continue
			}
			val[k] = sanitizeValue(vv)
		}
	case []interface{}:
		for i := range val {
			val[i] = sanitizeValue(val[i])
		}
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// actionName POST /api/admin/system/role/:id -> post_api_admin_system_role_id
func actionName(method, path string) string {
	p := strings.Trim(path, "/")
	if p == "" {
		return strings.ToLower(method)
	}
	p = strings.NewReplacer("/", "_", ":", "").Replace(p)
	return strings.ToLower(method + "_" + p)
}
