package dao

import (
	"errors"
	"fmt"

	"go-rbacadmin/internal/pkg/errs"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// fail 记录 span 错误并包装
func fail(span trace.Span, err error, format string, args ...interface{}) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	return fmt.Errorf(format+": %w", append(args, err)...)
}

// failUnique 唯一索引冲突转为 Conflict(field)，需开启 gorm TranslateError；其他错误同 fail
func failUnique(span trace.Span, err error, field, format string, args ...interface{}) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return errs.Conflict(field, "%s already exists", field)
	}
	return fail(span, err, format, args...)
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if id <= 0 {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Page 分页参数，Limit<=0 表示不分页
type Page struct {
	Offset int
	Limit  int
}
