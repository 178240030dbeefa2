package dao

import (
	"context"
	"errors"

	"go-rbacadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type MenuDAO struct{ DB *gorm.DB }

func NewMenuDAO(db *gorm.DB) *MenuDAO { return &MenuDAO{DB: db} }

func (d *MenuDAO) WithTx(tx *gorm.DB) *MenuDAO {
	if tx == nil {
		return d
	}
	return &MenuDAO{DB: tx}
}

func (d *MenuDAO) tracer() trace.Tracer { return otel.Tracer("dao.menu") }

type MenuFilter struct {
	OnlyEnabled bool
	Types       []model.MenuType
}

// List 已软删除的行由 gorm 默认过滤
func (d *MenuDAO) List(ctx context.Context, f MenuFilter) ([]model.Menu, error) {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.Menu{})
	if f.OnlyEnabled {
		q = q.Where("disabled = ?", false)
	}
	if len(f.Types) > 0 {
		q = q.Where("menu_type IN ?", f.Types)
	}
	var list []model.Menu
	if err := q.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		return nil, fail(span, err, "list menus")
	}
	return list, nil
}

func (d *MenuDAO) FindByID(ctx context.Context, id int64) (*model.Menu, error) {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.FindByID")
	defer span.End()
	var m model.Menu
	if err := d.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find menu id=%d", id)
	}
	return &m, nil
}

// PathTaken excludeID>0 时排除自身
func (d *MenuDAO) PathTaken(ctx context.Context, path string, excludeID int64) (bool, error) {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.PathTaken")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.Menu{}).Where("path = ?", path)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fail(span, err, "check menu path %q", path)
	}
	return n > 0, nil
}

func (d *MenuDAO) CountChildren(ctx context.Context, id int64) (int64, error) {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.CountChildren")
	defer span.End()
	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.Menu{}).Where("parent_id = ?", id).Count(&n).Error; err != nil {
		return 0, fail(span, err, "count menu children id=%d", id)
	}
	return n, nil
}

func (d *MenuDAO) Create(ctx context.Context, m *model.Menu) error {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(m).Error; err != nil {
		return failUnique(span, err, "path", "create menu")
	}
	return nil
}

// Updates 仅写入给定列
func (d *MenuDAO) Updates(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.Updates")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.Menu{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return failUnique(span, err, "path", "update menu id=%d", id)
	}
	return nil
}

// Delete 软删除
func (d *MenuDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.Delete")
	defer span.End()
	if err := d.DB.WithContext(ctx).Delete(&model.Menu{}, id).Error; err != nil {
		return fail(span, err, "delete menu id=%d", id)
	}
	return nil
}

// FindByPath seed 使用
func (d *MenuDAO) FindByPath(ctx context.Context, path string) (*model.Menu, error) {
	ctx, span := d.tracer().Start(ctx, "MenuDAO.FindByPath")
	defer span.End()
	var m model.Menu
	if err := d.DB.WithContext(ctx).Where("path = ?", path).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find menu path=%q", path)
	}
	return &m, nil
}
