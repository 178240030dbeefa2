package service

import (
	"context"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/repository/dao"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ProtectedRoleID 初始化写入的超级角色，不允许修改或删除
const ProtectedRoleID int64 = 1

type RoleService struct {
	DB    *gorm.DB
	Roles *dao.RoleDAO
	Menus *dao.MenuDAO
	Assoc *dao.AssociationDAO
	Perm  *PermissionService
	Log   *logging.Logger
}

func NewRoleService(db *gorm.DB, r *dao.RoleDAO, m *dao.MenuDAO, a *dao.AssociationDAO, p *PermissionService, l *logging.Logger) *RoleService {
	return &RoleService{DB: db, Roles: r, Menus: m, Assoc: a, Perm: p, Log: l}
}

func (s *RoleService) tracer() trace.Tracer { return otel.Tracer("service.role") }

// RoleItem menu_ids 不含根菜单，前端树组件据此处理半选状态
type RoleItem struct {
	model.Role
	MenuIDs []int64 `json:"menu_ids"`
	DeptIDs []int64 `json:"dept_ids"`
}

type ListRolesParams struct {
	Name     string `form:"name"`
	RoleKey  string `form:"role_key"`
	Disabled *bool  `form:"disabled"`
	PageParams
}

func (s *RoleService) List(ctx context.Context, p ListRolesParams) (*ListResult[RoleItem], error) {
	ctx, span := s.tracer().Start(ctx, "RoleService.List")
	defer span.End()
	roles, total, err := s.Roles.List(ctx, dao.RoleFilter{Name: p.Name, RoleKey: p.RoleKey, Disabled: p.Disabled, Page: p.toDAO()})
	if err != nil {
		return nil, err
	}
	items, err := s.decorate(ctx, roles)
	if err != nil {
		return nil, err
	}
	return &ListResult[RoleItem]{Items: items, Total: total}, nil
}

func (s *RoleService) Get(ctx context.Context, id int64) (*RoleItem, error) {
	r, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	items, err := s.decorate(ctx, []model.Role{*r})
	if err != nil {
		return nil, err
	}
	return &items[0], nil
}

func (s *RoleService) find(ctx context.Context, id int64) (*model.Role, error) {
	r, err := s.Roles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errs.NotFound("role %d not found", id)
	}
	return r, nil
}

func (s *RoleService) decorate(ctx context.Context, roles []model.Role) ([]RoleItem, error) {
	ids := make([]int64, 0, len(roles))
	for _, r := range roles {
		ids = append(ids, r.ID)
	}
	menuIDs, err := s.Assoc.MemberIDsByOwners(ctx, dao.RoleMenus, ids)
	if err != nil {
		return nil, err
	}
	deptIDs, err := s.Assoc.MemberIDsByOwners(ctx, dao.RoleDepartments, ids)
	if err != nil {
		return nil, err
	}
	menus, err := s.Menus.List(ctx, dao.MenuFilter{})
	if err != nil {
		return nil, err
	}
	root := make(map[int64]struct{})
	for _, m := range menus {
		if m.ParentNodeID() == 0 {
			root[m.ID] = struct{}{}
		}
	}
	items := make([]RoleItem, 0, len(roles))
	for _, r := range roles {
		it := RoleItem{Role: r, MenuIDs: []int64{}, DeptIDs: []int64{}}
		for _, id := range menuIDs[r.ID] {
			if _, ok := root[id]; !ok {
				it.MenuIDs = append(it.MenuIDs, id)
			}
		}
		if d := deptIDs[r.ID]; d != nil {
			it.DeptIDs = d
		}
		items = append(items, it)
	}
	return items, nil
}

type CreateRoleParams struct {
	Name      string  `json:"name" binding:"required,max=50"`
	RoleKey   string  `json:"role_key" binding:"required,max=50"`
	Disabled  bool    `json:"disabled"`
	DataRange int     `json:"data_range"`
	Order     int     `json:"order"`
	Desc      string  `json:"desc" binding:"max=255"`
	IsAdmin   bool    `json:"is_admin"`
	MenuIDs   []int64 `json:"menu_ids"`
	DeptIDs   []int64 `json:"dept_ids"`
}

func (s *RoleService) Create(ctx context.Context, p CreateRoleParams) (*model.Role, error) {
	ctx, span := s.tracer().Start(ctx, "RoleService.Create")
	defer span.End()
	taken, err := s.Roles.KeyTaken(ctx, p.RoleKey, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.Conflict("role_key", "role key %q already exists", p.RoleKey)
	}
	r := &model.Role{
		Name: p.Name, RoleKey: p.RoleKey, Disabled: p.Disabled, DataRange: p.DataRange,
		Order: p.Order, Desc: p.Desc, IsAdmin: p.IsAdmin,
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Roles.WithTx(tx).Create(ctx, r); err != nil {
			return err
		}
		if err := s.Assoc.Set(ctx, tx, dao.RoleMenus, r.ID, p.MenuIDs); err != nil {
			return err
		}
		return s.Assoc.Set(ctx, tx, dao.RoleDepartments, r.ID, p.DeptIDs)
	})
	if err != nil {
		return nil, err
	}
	s.Log.WithContext(ctx).Info("role_created", zap.Int64("role_id", r.ID), zap.String("role_key", r.RoleKey))
	return r, nil
}

// UpdateRoleParams menu_ids / dept_ids 为 nil 不修改，空数组表示清空
type UpdateRoleParams struct {
	Name      *string  `json:"name" binding:"omitempty,max=50"`
	RoleKey   *string  `json:"role_key" binding:"omitempty,max=50"`
	Disabled  *bool    `json:"disabled"`
	DataRange *int     `json:"data_range"`
	Order     *int     `json:"order"`
	Desc      *string  `json:"desc" binding:"omitempty,max=255"`
	IsAdmin   *bool    `json:"is_admin"`
	MenuIDs   *[]int64 `json:"menu_ids"`
	DeptIDs   *[]int64 `json:"dept_ids"`
}

func (p UpdateRoleParams) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.RoleKey != nil {
		cols["role_key"] = *p.RoleKey
	}
	if p.Disabled != nil {
		cols["disabled"] = *p.Disabled
	}
	if p.DataRange != nil {
		cols["data_range"] = *p.DataRange
	}
	if p.Order != nil {
		cols["sort"] = *p.Order
	}
	if p.Desc != nil {
		cols["description"] = *p.Desc
	}
	if p.IsAdmin != nil {
		cols["is_admin"] = *p.IsAdmin
	}
	return cols
}

func (s *RoleService) Update(ctx context.Context, id int64, p UpdateRoleParams) error {
	ctx, span := s.tracer().Start(ctx, "RoleService.Update")
	defer span.End()
	if id == ProtectedRoleID {
		return errs.Forbidden("role %d is protected", id)
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	if p.RoleKey != nil {
		taken, err := s.Roles.KeyTaken(ctx, *p.RoleKey, id)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict("role_key", "role key %q already exists", *p.RoleKey)
		}
	}
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Roles.WithTx(tx).Updates(ctx, id, p.columns()); err != nil {
			return err
		}
		if p.MenuIDs != nil {
			if err := s.Assoc.Set(ctx, tx, dao.RoleMenus, id, *p.MenuIDs); err != nil {
				return err
			}
		}
		if p.DeptIDs != nil {
			if err := s.Assoc.Set(ctx, tx, dao.RoleDepartments, id, *p.DeptIDs); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.Perm.InvalidateRoles(ctx, id)
	return nil
}

// Delete 先解除全部关联再物理删除
func (s *RoleService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer().Start(ctx, "RoleService.Delete")
	defer span.End()
	if id == ProtectedRoleID {
		return errs.Forbidden("role %d is protected", id)
	}
	if _, err := s.find(ctx, id); err != nil {
		return err
	}
	affected, err := s.Perm.UsersOfRoles(ctx, id)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Assoc.Clear(ctx, tx, dao.RoleMenus, id); err != nil {
			return err
		}
		if err := s.Assoc.Clear(ctx, tx, dao.RoleDepartments, id); err != nil {
			return err
		}
		if err := s.Assoc.Detach(ctx, tx, dao.UserRoles, []int64{id}); err != nil {
			return err
		}
		return s.Roles.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.Perm.InvalidateUsers(ctx, "role", affected...)
	s.Log.WithContext(ctx).Info("role_deleted", zap.Int64("role_id", id), zap.Int("affected_users", len(affected)))
	return nil
}
