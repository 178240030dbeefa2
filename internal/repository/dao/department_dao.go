package dao

import (
	"context"
	"errors"

	"go-rbacadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type DepartmentDAO struct{ DB *gorm.DB }

func NewDepartmentDAO(db *gorm.DB) *DepartmentDAO { return &DepartmentDAO{DB: db} }

func (d *DepartmentDAO) WithTx(tx *gorm.DB) *DepartmentDAO {
	if tx == nil {
		return d
	}
	return &DepartmentDAO{DB: tx}
}

func (d *DepartmentDAO) tracer() trace.Tracer { return otel.Tracer("dao.department") }

func (d *DepartmentDAO) List(ctx context.Context, onlyEnabled bool) ([]model.Department, error) {
	ctx, span := d.tracer().Start(ctx, "DepartmentDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.Department{})
	if onlyEnabled {
		q = q.Where("disabled = ?", false)
	}
	var list []model.Department
	if err := q.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fail(span, err, "list departments")
	}
	return list, nil
}

func (d *DepartmentDAO) FindByID(ctx context.Context, id int64) (*model.Department, error) {
	ctx, span := d.tracer().Start(ctx, "DepartmentDAO.FindByID")
	defer span.End()
	var m model.Department
	if err := d.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find department id=%d", id)
	}
	return &m, nil
}

func (d *DepartmentDAO) FindByKey(ctx context.Context, key string) (*model.Department, error) {
	ctx, span := d.tracer().Start(ctx, "DepartmentDAO.FindByKey")
	defer span.End()
	var m model.Department
	if err := d.DB.WithContext(ctx).Where("dept_key = ?", key).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find department key=%q", key)
	}
	return &m, nil
}

// ExistingIDs 返回 ids 中仍存在的部分
func (d *DepartmentDAO) ExistingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	ctx, span := d.tracer().Start(ctx, "DepartmentDAO.ExistingIDs")
	defer span.End()
	var found []int64
	if len(ids) == 0 {
		return found, nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.Department{}).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
		return nil, fail(span, err, "pluck department ids")
	}
	return found, nil
}

// ChildrenOutside 统计 parent 在 ids 中、自身不在 ids 中的子部门
func (d *DepartmentDAO) ChildrenOutside(ctx context.Context, ids []int64) (int64, error) {
	ctx, span := d.tracer().Start(ctx, "DepartmentDAO.ChildrenOutside")
	defer span.End()
	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.Department{}).
		Where("parent_id IN ? AND id NOT IN ?", ids, ids).Count(&n).Error; err != nil {
		return 0, fail(span, err, "count department children")
	}
	return n, nil
}

func (d *DepartmentDAO) Create(ctx context.Context, m *model.Department) error {
	ctx, span := d.tracer().Start(ctx, "DepartmentDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(m).Error; err != nil {
		return fail(span, err, "create department")
	}
	return nil
}

func (d *DepartmentDAO) Updates(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := d.tracer().Start(ctx, "DepartmentDAO.Updates")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.Department{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fail(span, err, "update department id=%d", id)
	}
	return nil
}

// Delete 批量软删除
func (d *DepartmentDAO) Delete(ctx context.Context, ids []int64) error {
	ctx, span := d.tracer().Start(ctx, "DepartmentDAO.Delete")
	defer span.End()
	if len(ids) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Where("id IN ?", ids).Delete(&model.Department{}).Error; err != nil {
		return fail(span, err, "delete departments %v", ids)
	}
	return nil
}
