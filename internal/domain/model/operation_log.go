package model

import "time"

// OperationLog 由 worker 从 kafka 消费落库
type OperationLog struct {
	ID         int64     `gorm:"primaryKey" json:"id"`
	ActionName string    `gorm:"size:100" json:"action_name"`
	UserID     int64     `gorm:"index" json:"user_id"`
	Path       string    `gorm:"size:200" json:"path"`
	Method     string    `gorm:"size:10" json:"method"`
	Status     int       `json:"status"`
	LatencyMs  int64     `json:"latency_ms"`
	IP         string    `gorm:"size:64" json:"ip"`
	Body       string    `gorm:"type:text" json:"body"`
	TraceID    string    `gorm:"size:64" json:"trace_id"`
	CreatedAt  time.Time `gorm:"index" json:"created_at"`
}

func (OperationLog) TableName() string { return "operation_logs" }
