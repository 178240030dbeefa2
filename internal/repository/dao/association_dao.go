package dao

import (
	"context"
	"sort"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/pkg/errs"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

// Link 多对多关联表
type Link int

const (
	RoleMenus Link = iota
	RoleDepartments
	UserRoles
	UserDepartments
)

type linkTable struct {
	name        string
	ownerCol    string
	memberCol   string
	memberModel func() interface{}
}

var links = map[Link]linkTable{
	RoleMenus:       {"role_menus", "role_id", "menu_id", func() interface{} { return &model.Menu{} }},
	RoleDepartments: {"role_departments", "role_id", "department_id", func() interface{} { return &model.Department{} }},
	UserRoles:       {"user_roles", "user_id", "role_id", func() interface{} { return &model.Role{} }},
	UserDepartments: {"user_departments", "user_id", "department_id", func() interface{} { return &model.Department{} }},
}

func (l Link) String() string { return links[l].name }

// AssociationDAO 负责关联集合的整体替换
type AssociationDAO struct{ DB *gorm.DB }

func NewAssociationDAO(db *gorm.DB) *AssociationDAO { return &AssociationDAO{DB: db} }

func (d *AssociationDAO) tracer() trace.Tracer { return otel.Tracer("dao.association") }

func (d *AssociationDAO) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return d.DB
}

// Set 清空 owner 的全部成员后写入 memberIDs。
// 成员必须存在，否则返回 NotFound 且不做任何修改；原子性由调用方事务保证。
func (d *AssociationDAO) Set(ctx context.Context, tx *gorm.DB, link Link, ownerID int64, memberIDs []int64) error {
	ctx, span := d.tracer().Start(ctx, "AssociationDAO.Set")
	defer span.End()
	db := d.conn(tx).WithContext(ctx)
	lt := links[link]
	ids := uniqueIDs(memberIDs)
	if len(ids) > 0 {
		var found []int64
		if err := db.Model(lt.memberModel()).Where("id IN ?", ids).Pluck("id", &found).Error; err != nil {
			return fail(span, err, "check %s members owner=%d", lt.name, ownerID)
		}
		if missing := diff(ids, found); len(missing) > 0 {
			return errs.NotFound("%s ids not found: %v", lt.memberCol, missing)
		}
	}
	var err error
	switch link {
	case RoleMenus:
		err = replaceRows(db, lt.ownerCol, ownerID, mapRows(ids, func(id int64) model.RoleMenu { return model.RoleMenu{RoleID: ownerID, MenuID: id} }))
	case RoleDepartments:
		err = replaceRows(db, lt.ownerCol, ownerID, mapRows(ids, func(id int64) model.RoleDepartment {
			return model.RoleDepartment{RoleID: ownerID, DepartmentID: id}
		}))
	case UserRoles:
		err = replaceRows(db, lt.ownerCol, ownerID, mapRows(ids, func(id int64) model.UserRole { return model.UserRole{UserID: ownerID, RoleID: id} }))
	case UserDepartments:
		err = replaceRows(db, lt.ownerCol, ownerID, mapRows(ids, func(id int64) model.UserDepartment {
			return model.UserDepartment{UserID: ownerID, DepartmentID: id}
		}))
	}
	if err != nil {
		return fail(span, err, "replace %s owner=%d", lt.name, ownerID)
	}
	return nil
}

// Clear 等价于 Set 空集合
func (d *AssociationDAO) Clear(ctx context.Context, tx *gorm.DB, link Link, ownerID int64) error {
	return d.Set(ctx, tx, link, ownerID, nil)
}

// Detach 删除引用了 memberIDs 的关联行（成员被删除时使用）
func (d *AssociationDAO) Detach(ctx context.Context, tx *gorm.DB, link Link, memberIDs []int64) error {
	ctx, span := d.tracer().Start(ctx, "AssociationDAO.Detach")
	defer span.End()
	lt := links[link]
	if len(memberIDs) == 0 {
		return nil
	}
	if err := d.conn(tx).WithContext(ctx).Exec("DELETE FROM "+lt.name+" WHERE "+lt.memberCol+" IN ?", memberIDs).Error; err != nil {
		return fail(span, err, "detach %s members", lt.name)
	}
	return nil
}

// MemberIDs 返回 owner 当前成员，升序
func (d *AssociationDAO) MemberIDs(ctx context.Context, link Link, ownerID int64) ([]int64, error) {
	m, err := d.MemberIDsByOwners(ctx, link, []int64{ownerID})
	if err != nil {
		return nil, err
	}
	return m[ownerID], nil
}

func (d *AssociationDAO) MemberIDsByOwners(ctx context.Context, link Link, ownerIDs []int64) (map[int64][]int64, error) {
	ctx, span := d.tracer().Start(ctx, "AssociationDAO.MemberIDsByOwners")
	defer span.End()
	lt := links[link]
	res := make(map[int64][]int64, len(ownerIDs))
	if len(ownerIDs) == 0 {
		return res, nil
	}
	type pair struct {
		OwnerID  int64
		MemberID int64
	}
	var rows []pair
	err := d.DB.WithContext(ctx).Table(lt.name).
		Select(lt.ownerCol+" AS owner_id, "+lt.memberCol+" AS member_id").
		Where(lt.ownerCol+" IN ?", ownerIDs).
		Order(lt.memberCol + " ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, fail(span, err, "list %s members", lt.name)
	}
	for _, r := range rows {
		res[r.OwnerID] = append(res[r.OwnerID], r.MemberID)
	}
	return res, nil
}

// OwnerIDs 反查：哪些 owner 引用了 memberIDs
func (d *AssociationDAO) OwnerIDs(ctx context.Context, link Link, memberIDs []int64) ([]int64, error) {
	ctx, span := d.tracer().Start(ctx, "AssociationDAO.OwnerIDs")
	defer span.End()
	lt := links[link]
	var owners []int64
	if len(memberIDs) == 0 {
		return owners, nil
	}
	if err := d.DB.WithContext(ctx).Table(lt.name).Distinct(lt.ownerCol).
		Where(lt.memberCol+" IN ?", memberIDs).Pluck(lt.ownerCol, &owners).Error; err != nil {
		return nil, fail(span, err, "list %s owners", lt.name)
	}
	return owners, nil
}

func replaceRows[T any](db *gorm.DB, ownerCol string, ownerID int64, rows []T) error {
	if err := db.Where(ownerCol+" = ?", ownerID).Delete(new(T)).Error; err != nil {
		return err
	}
	if len(rows) == 0 {
		return nil
	}
	return db.Create(&rows).Error
}

func mapRows[T any](ids []int64, fn func(int64) T) []T {
	out := make([]T, 0, len(ids))
	for _, id := range ids {
		out = append(out, fn(id))
	}
	return out
}

func diff(want, got []int64) []int64 {
	have := make(map[int64]struct{}, len(got))
	for _, id := range got {
		have[id] = struct{}{}
	}
	var missing []int64
	for _, id := range want {
		if _, ok := have[id]; !ok {
			missing = append(missing, id)
		}
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}
