package dao

import (
	"context"
	"time"

	"go-rbacadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type OperationLogDAO struct{ DB *gorm.DB }

func NewOperationLogDAO(db *gorm.DB) *OperationLogDAO { return &OperationLogDAO{DB: db} }

func (d *OperationLogDAO) tracer() trace.Tracer { return otel.Tracer("dao.operation_log") }

func (d *OperationLogDAO) Create(ctx context.Context, l *model.OperationLog) error {
	ctx, span := d.tracer().Start(ctx, "OperationLogDAO.Create")
	defer span.End()
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	if err := d.DB.WithContext(ctx).Create(l).Error; err != nil {
		return fail(span, err, "create operation log")
	}
	return nil
}

type OperationLogFilter struct {
	UserID int64
	Path   string
	Page
}

func (d *OperationLogDAO) List(ctx context.Context, f OperationLogFilter) ([]model.OperationLog, int64, error) {
	ctx, span := d.tracer().Start(ctx, "OperationLogDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.OperationLog{})
	if f.UserID > 0 {
		q = q.Where("user_id = ?", f.UserID)
	}
	if f.Path != "" {
		q = q.Where("path LIKE ?", f.Path+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fail(span, err, "count operation logs")
	}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	var list []model.OperationLog
	if err := q.Order("id DESC").Find(&list).Error; err != nil {
		return nil, 0, fail(span, err, "list operation logs")
	}
	return list, total, nil
}
