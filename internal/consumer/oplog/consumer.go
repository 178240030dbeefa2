package oplog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/repository/dao"

	kafkaGo "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const maxBodyLen = 2000

// Entry 中间件发布、worker 消费的消息体
type Entry struct {
	ActionName string   `json:"action_name"`
	Path       string   `json:"path"`
	Method     string   `json:"method"`
	Status     int      `json:"status"`
	LatencyMs  int64    `json:"latency_ms"`
	IP         string   `json:"ip"`
	UserID     int64    `json:"user_id"`
	Time       string   `json:"time"`
	Body       string   `json:"body"`
	Query      string   `json:"query"`
	TraceID    string   `json:"trace_id"`
	Errors     []string `json:"errors,omitempty"`
}

// Handler 把操作日志写入 operation_logs
type Handler struct {
	Logs *dao.OperationLogDAO
	Log  *logging.Logger
}

func NewHandler(d *dao.OperationLogDAO, l *logging.Logger) *Handler { return &Handler{Logs: d, Log: l} }

// Handle 格式错误的消息直接丢弃，返回 nil 以免阻塞消费
func (h *Handler) Handle(ctx context.Context, m kafkaGo.Message) error {
	var e Entry
	if err := json.Unmarshal(m.Value, &e); err != nil {
		metrics.OpLogConsumed.WithLabelValues("malformed").Inc()
		h.Log.WithContext(ctx).Warn("oplog_malformed", zap.Int64("offset", m.Offset), zap.Error(err))
		return nil
	}
	rec := e.Record()
	if err := h.Logs.Create(ctx, &rec); err != nil {
		metrics.OpLogConsumed.WithLabelValues("error").Inc()
		return fmt.Errorf("save operation log: %w", err)
	}
	metrics.OpLogConsumed.WithLabelValues("ok").Inc()
	return nil
}

// Record 消息转为落库模型
func (e Entry) Record() model.OperationLog {
	created := time.Now()
	if t, err := time.Parse(time.RFC3339, e.Time); err == nil {
		created = t
	}
	body := e.Body
	if e.Query != "" {
		if body != "" {
			body = e.Query + " " + body
		} else {
			body = e.Query
		}
	}
	return model.OperationLog{
		ActionName: e.ActionName,
		UserID:     e.UserID,
		Path:       e.Path,
		Method:     e.Method,
		Status:     e.Status,
		LatencyMs:  e.LatencyMs,
		IP:         e.IP,
		Body:       truncate(body, maxBodyLen),
		TraceID:    e.TraceID,
		CreatedAt:  created,
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
