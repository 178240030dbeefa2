package service

import (
	"context"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/repository/dao"
	"go-rbacadmin/pkg/crypto"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

type seedMenu struct {
	title, name, path, component string
	perms                        string
	order                        int
	buttons                      []seedButton
}

type seedButton struct {
	title, path, perms string
}

func crud(entity, list, create, put, del string) (string, []seedButton) {
	base := "/system/" + entity
	p := "system." + entity + "."
	return p + list, []seedButton{
		{"新增", base + "/create", p + create},
		{"编辑", base + "/put", p + put},
		{"删除", base + "/delete", p + del},
	}
}

func defaultMenus() []seedMenu {
	out := make([]seedMenu, 0, 6)
	add := func(title, entity string, order int, list, create, put, del string) {
		perms, buttons := crud(entity, list, create, put, del)
		out = append(out, seedMenu{
			title: title, name: entity, path: "/system/" + entity,
			component: "system/" + entity + "/index", perms: perms, order: order, buttons: buttons,
		})
	}
	add("菜单管理", "menu", 1, "index", "create", "put", "delete")
	add("角色管理", "role", 2, "list", "create", "put", "delete")
	add("用户管理", "user", 3, "index", "create", "edit", "delete")
	add("部门管理", "department", 4, "index", "create", "put", "delete")
	add("字典管理", "dict", 5, "index", "create", "put", "delete")
	add("字典明细", "dict_detail", 6, "index", "create", "put", "delete")
	return out
}

type SeedParams struct {
	SuperTelephone string
	SuperPassword  string
}

// SeedService 写入初始数据，已存在的行保持不变
type SeedService struct {
	DB  *gorm.DB
	Log *logging.Logger
}

func NewSeedService(db *gorm.DB, l *logging.Logger) *SeedService { return &SeedService{DB: db, Log: l} }

func (s *SeedService) Run(ctx context.Context, p SeedParams) error {
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		menus := dao.NewMenuDAO(tx)
		depts := dao.NewDepartmentDAO(tx)
		roles := dao.NewRoleDAO(tx)
		users := dao.NewUserDAO(tx)
		assoc := dao.NewAssociationDAO(tx)

		root, err := s.ensureMenu(ctx, menus, model.Menu{
			Title: "系统管理", Name: "system", Icon: "setting", Path: "/system",
			Component: "Layout", MenuType: model.MenuTypeDirectory, Order: 100,
		})
		if err != nil {
			return err
		}
		for _, sm := range defaultMenus() {
			perms := sm.perms
			m, err := s.ensureMenu(ctx, menus, model.Menu{
				Title: sm.title, Name: sm.name, Path: sm.path, Component: sm.component,
				MenuType: model.MenuTypeMenu, Perms: &perms, Order: sm.order, ParentID: &root.ID,
			})
			if err != nil {
				return err
			}
			for i, b := range sm.buttons {
				bp := b.perms
				if _, err := s.ensureMenu(ctx, menus, model.Menu{
					Title: b.title, Path: b.path, MenuType: model.MenuTypeButton,
					Perms: &bp, Order: i + 1, ParentID: &m.ID, Hidden: true,
				}); err != nil {
					return err
				}
			}
		}

		head, err := depts.FindByKey(ctx, "head")
		if err != nil {
			return err
		}
		if head == nil {
			head = &model.Department{Name: "Headquarters", DeptKey: "head"}
			if err := depts.Create(ctx, head); err != nil {
				return err
			}
		}

		admin, err := roles.FindByKey(ctx, "admin")
		if err != nil {
			return err
		}
		if admin == nil {
			admin = &model.Role{Name: "超级管理员", RoleKey: "admin", IsAdmin: true, Desc: "拥有全部权限"}
			if err := roles.Create(ctx, admin); err != nil {
				return err
			}
			if admin.ID != ProtectedRoleID {
				s.Log.Warn("seed_admin_role_not_first", zap.Int64("role_id", admin.ID))
			}
		}

		super, err := users.FindByTelephone(ctx, p.SuperTelephone)
		if err != nil {
			return err
		}
		if super != nil {
			return nil
		}
		hashed, err := crypto.HashPassword(p.SuperPassword)
		if err != nil {
			return err
		}
		super = &model.User{Telephone: p.SuperTelephone, Password: hashed, Name: "admin", Nickname: "超级管理员", IsStaff: true}
		if err := users.Create(ctx, super); err != nil {
			return err
		}
		if err := assoc.Set(ctx, tx, dao.UserRoles, super.ID, []int64{admin.ID}); err != nil {
			return err
		}
		if err := assoc.Set(ctx, tx, dao.UserDepartments, super.ID, []int64{head.ID}); err != nil {
			return err
		}
		s.Log.Info("seed_super_user_created", zap.Int64("uid", super.ID), zap.String("telephone", super.Telephone))
		return nil
	})
}

func (s *SeedService) ensureMenu(ctx context.Context, menus *dao.MenuDAO, m model.Menu) (*model.Menu, error) {
	existing, err := menus.FindByPath(ctx, m.Path)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}
	if err := menus.Create(ctx, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
