package dao

import (
	"context"
	"errors"

	"go-rbacadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type RoleDAO struct{ DB *gorm.DB }

func NewRoleDAO(db *gorm.DB) *RoleDAO { return &RoleDAO{DB: db} }

func (d *RoleDAO) WithTx(tx *gorm.DB) *RoleDAO {
	if tx == nil {
		return d
	}
	return &RoleDAO{DB: tx}
}

func (d *RoleDAO) tracer() trace.Tracer { return otel.Tracer("dao.role") }

type RoleFilter struct {
	Name     string
	RoleKey  string
	Disabled *bool
	Page
}

func (d *RoleDAO) List(ctx context.Context, f RoleFilter) ([]model.Role, int64, error) {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.Role{})
	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.RoleKey != "" {
		q = q.Where("role_key LIKE ?", "%"+f.RoleKey+"%")
	}
	if f.Disabled != nil {
		q = q.Where("disabled = ?", *f.Disabled)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fail(span, err, "count roles")
	}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	var list []model.Role
	if err := q.Order("sort ASC, id ASC").Find(&list).Error; err != nil {
		return nil, 0, fail(span, err, "list roles")
	}
	return list, total, nil
}

func (d *RoleDAO) FindByID(ctx context.Context, id int64) (*model.Role, error) {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.FindByID")
	defer span.End()
	var r model.Role
	if err := d.DB.WithContext(ctx).First(&r, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find role id=%d", id)
	}
	return &r, nil
}

func (d *RoleDAO) FindByKey(ctx context.Context, key string) (*model.Role, error) {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.FindByKey")
	defer span.End()
	var r model.Role
	if err := d.DB.WithContext(ctx).Where("role_key = ?", key).First(&r).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find role key=%q", key)
	}
	return &r, nil
}

// FindByIDs 用户列表回填角色
func (d *RoleDAO) FindByIDs(ctx context.Context, ids []int64) (map[int64]model.Role, error) {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.FindByIDs")
	defer span.End()
	res := make(map[int64]model.Role, len(ids))
	if len(ids) == 0 {
		return res, nil
	}
	var list []model.Role
	if err := d.DB.WithContext(ctx).Where("id IN ?", ids).Find(&list).Error; err != nil {
		return nil, fail(span, err, "find roles by ids")
	}
	for _, r := range list {
		res[r.ID] = r
	}
	return res, nil
}

func (d *RoleDAO) KeyTaken(ctx context.Context, key string, excludeID int64) (bool, error) {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.KeyTaken")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.Role{}).Where("role_key = ?", key)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fail(span, err, "check role key %q", key)
	}
	return n > 0, nil
}

func (d *RoleDAO) Create(ctx context.Context, r *model.Role) error {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.Create")
	defer span.End()
	// 关联走 AssociationDAO，这里跳过
	if err := d.DB.WithContext(ctx).Omit("Menus", "Departments").Create(r).Error; err != nil {
		return failUnique(span, err, "role_key", "create role")
	}
	return nil
}

func (d *RoleDAO) Updates(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.Updates")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.Role{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return failUnique(span, err, "role_key", "update role id=%d", id)
	}
	return nil
}

// Delete 物理删除，调用方需先清空关联
func (d *RoleDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "RoleDAO.Delete")
	defer span.End()
	if err := d.DB.WithContext(ctx).Delete(&model.Role{}, id).Error; err != nil {
		return fail(span, err, "delete role id=%d", id)
	}
	return nil
}
