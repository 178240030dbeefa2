package dao

import (
	"context"
	"errors"
	"time"

	"go-rbacadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// UserDAO is a data access object for users.
type UserDAO struct{ DB *gorm.DB }

func NewUserDAO(db *gorm.DB) *UserDAO { return &UserDAO{DB: db} }

// WithTx returns a DAO bound to the given transaction (or same instance if tx nil).
func (d *UserDAO) WithTx(tx *gorm.DB) *UserDAO {
	if tx == nil {
		return d
	}
	return &UserDAO{DB: tx}
}

func (d *UserDAO) tracer() trace.Tracer { return otel.Tracer("dao.user") }

// FindByTelephone returns nil when absent.
func (d *UserDAO) FindByTelephone(ctx context.Context, tel string) (*model.User, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.FindByTelephone")
	defer span.End()
	var u model.User
	if err := d.DB.WithContext(ctx).Where("telephone = ?", tel).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find user telephone")
	}
	return &u, nil
}

func (d *UserDAO) FindByID(ctx context.Context, id int64) (*model.User, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.FindByID")
	defer span.End()
	var u model.User
	if err := d.DB.WithContext(ctx).First(&u, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find user id=%d", id)
	}
	return &u, nil
}

// FindWithGraph loads roles, their menus and the user's departments in one pass
// so permission resolution never touches storage again.
func (d *UserDAO) FindWithGraph(ctx context.Context, id int64) (*model.User, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.FindWithGraph")
	defer span.End()
	var u model.User
	err := d.DB.WithContext(ctx).
		Preload("Roles", func(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, id ASC") }).
		Preload("Roles.Menus").
		Preload("Departments").
		First(&u, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find user graph id=%d", id)
	}
	return &u, nil
}

func (d *UserDAO) TelephoneTaken(ctx context.Context, tel string, excludeID int64) (bool, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.TelephoneTaken")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.User{}).Where("telephone = ?", tel)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fail(span, err, "check user telephone")
	}
	return n > 0, nil
}

type UserFilter struct {
	Name      string
	Telephone string
	Disabled  *bool
	IsStaff   *bool
	OrderBy   string // 已白名单校验的列名
	Desc      bool
	Page
}

// List 附带 Roles 预加载
func (d *UserDAO) List(ctx context.Context, f UserFilter) ([]model.User, int64, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.List")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.User{})
	if f.Name != "" {
		q = q.Where("name LIKE ?", "%"+f.Name+"%")
	}
	if f.Telephone != "" {
		q = q.Where("telephone LIKE ?", "%"+f.Telephone+"%")
	}
	if f.Disabled != nil {
		q = q.Where("disabled = ?", *f.Disabled)
	}
	if f.IsStaff != nil {
		q = q.Where("is_staff = ?", *f.IsStaff)
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fail(span, err, "count users")
	}
	orderBy := f.OrderBy
	if orderBy == "" {
		orderBy = "id"
	}
	if f.Desc {
		orderBy += " DESC"
	} else {
		orderBy += " ASC"
	}
	if f.Limit > 0 {
		q = q.Offset(f.Offset).Limit(f.Limit)
	}
	var list []model.User
	if err := q.Preload("Roles").Order(orderBy).Find(&list).Error; err != nil {
		return nil, 0, fail(span, err, "list users")
	}
	return list, total, nil
}

func (d *UserDAO) Count(ctx context.Context) (int64, error) {
	ctx, span := d.tracer().Start(ctx, "UserDAO.Count")
	defer span.End()
	var n int64
	if err := d.DB.WithContext(ctx).Model(&model.User{}).Count(&n).Error; err != nil {
		return 0, fail(span, err, "count users")
	}
	return n, nil
}

func (d *UserDAO) Create(ctx context.Context, u *model.User) error {
	ctx, span := d.tracer().Start(ctx, "UserDAO.Create")
	defer span.End()
	if err := d.DB.WithContext(ctx).Omit("Roles", "Departments").Create(u).Error; err != nil {
		return failUnique(span, err, "telephone", "create user")
	}
	return nil
}

func (d *UserDAO) Updates(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := d.tracer().Start(ctx, "UserDAO.Updates")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.User{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return failUnique(span, err, "telephone", "update user id=%d", id)
	}
	return nil
}

// UpdatePassword expects an already hashed value.
func (d *UserDAO) UpdatePassword(ctx context.Context, id int64, hashed string, reset bool) error {
	return d.Updates(ctx, id, map[string]interface{}{"password": hashed, "is_reset_password": reset})
}

func (d *UserDAO) UpdateLogin(ctx context.Context, id int64, ip string, at time.Time) error {
	return d.Updates(ctx, id, map[string]interface{}{"last_ip": ip, "last_login_at": at})
}

// Delete physical delete; associations are cleared by the caller.
func (d *UserDAO) Delete(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "UserDAO.Delete")
	defer span.End()
	if err := d.DB.WithContext(ctx).Delete(&model.User{}, id).Error; err != nil {
		return fail(span, err, "delete user id=%d", id)
	}
	return nil
}
