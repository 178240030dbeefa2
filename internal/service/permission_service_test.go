package service

import (
	"testing"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/domain/rbac"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/testutil"

	"github.com/stretchr/testify/suite"
)

type permissionSuite struct{ serviceSuite }

func TestPermissionService(t *testing.T) { suite.Run(t, new(permissionSuite)) }

func (s *permissionSuite) TestDisabledMenuExcluded() {
	m1 := s.menu(model.Menu{Title: "M1", Path: "/m1", Perms: testutil.Ptr("a.b.c")})
	m2 := s.menu(model.Menu{Title: "M2", Path: "/m2", Perms: testutil.Ptr("x.y.z"), Disabled: true})
	r := s.role("R", false, m1, m2)
	u := s.user("13800000001", r)

	set, err := s.perm.Permissions(s.ctx, u.ID)
	s.Require().NoError(err)
	s.False(set.IsAdmin())
	s.Equal([]string{"a.b.c"}, set.Strings())

	err = s.perm.Check(s.ctx, u.ID, "x.y.z")
	s.Equal(errs.KindForbidden, errs.KindOf(err))
	s.NoError(s.perm.Check(s.ctx, u.ID, "a.b.c"))
	s.NoError(s.perm.Check(s.ctx, u.ID))
}

func (s *permissionSuite) TestAdminIsWildcard() {
	s.menu(model.Menu{Title: "M1", Path: "/m1", Perms: testutil.Ptr("a.b.c")})
	u := s.user("13800000002", s.role("admin", true))

	set, err := s.perm.Permissions(s.ctx, u.ID)
	s.Require().NoError(err)
	s.True(set.IsAdmin())
	s.Equal([]string{rbac.Wildcard}, set.Strings())
	s.NoError(s.perm.Check(s.ctx, u.ID, "anything.at.all"))
}

func (s *permissionSuite) TestCacheInvalidatedOnRoleMenuChange() {
	m1 := s.menu(model.Menu{Title: "M1", Path: "/m1", Perms: testutil.Ptr("a.b.c")})
	m2 := s.menu(model.Menu{Title: "M2", Path: "/m2", Perms: testutil.Ptr("d.e.f")})
	r := s.role("R", false, m1)
	u := s.user("13800000003", r)

	set, err := s.perm.Permissions(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal([]string{"a.b.c"}, set.Strings())
	s.True(s.mr.Exists(permKey(u.ID)))

	ids := []int64{m1.ID, m2.ID}
	s.Require().NoError(s.roles.Update(s.ctx, r.ID, UpdateRoleParams{MenuIDs: &ids}))
	s.False(s.mr.Exists(permKey(u.ID)))

	set, err = s.perm.Permissions(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Equal([]string{"a.b.c", "d.e.f"}, set.Strings())
}

func (s *permissionSuite) TestCacheInvalidatedOnMenuDisable() {
	m1 := s.menu(model.Menu{Title: "M1", Path: "/m1", Perms: testutil.Ptr("a.b.c")})
	u := s.user("13800000004", s.role("R", false, m1))

	_, err := s.perm.Permissions(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().NoError(s.menus.Update(s.ctx, m1.ID, UpdateMenuParams{Disabled: testutil.Ptr(true)}))

	set, err := s.perm.Permissions(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(set.Strings())
}

func (s *permissionSuite) TestUserMenuTree() {
	dir := s.menu(model.Menu{Title: "系统", Path: "/system", Order: 1})
	page := s.menu(model.Menu{Title: "用户", Path: "/system/user", MenuType: model.MenuTypeMenu, ParentID: &dir.ID, NoCache: true})
	btn := s.menu(model.Menu{Title: "新增", Path: "/system/user/create", MenuType: model.MenuTypeButton, ParentID: &page.ID})
	s.menu(model.Menu{Title: "停用", Path: "/off", Disabled: true})

	admin := s.user("13800000005", s.role("admin", true))
	routers, err := s.perm.UserMenuTree(s.ctx, admin.ID)
	s.Require().NoError(err)
	s.Require().Len(routers, 1)
	s.Require().Len(routers[0].Children, 1)
	s.Empty(routers[0].Children[0].Children, "buttons are not routes for admins")
	s.False(routers[0].Children[0].Meta.KeepAlive)

	u := s.user("13800000006", s.role("R", false, dir, page, btn))
	routers, err = s.perm.UserMenuTree(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Require().Len(routers, 1)
	s.Require().Len(routers[0].Children, 1)
	s.Len(routers[0].Children[0].Children, 1)

	_, err = s.perm.UserMenuTree(s.ctx, 9999)
	s.Equal(errs.KindNotFound, errs.KindOf(err))
}
