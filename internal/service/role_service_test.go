package service

import (
	"testing"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/testutil"

	"github.com/stretchr/testify/suite"
)

type roleSuite struct{ serviceSuite }

func TestRoleService(t *testing.T) { suite.Run(t, new(roleSuite)) }

func (s *roleSuite) TestCreateWithAssociations() {
	root := s.menu(model.Menu{Title: "root", Path: "/r"})
	leaf := s.menu(model.Menu{Title: "leaf", Path: "/r/l", ParentID: &root.ID})
	dept := testutil.MustDepartment(s.T(), s.db, model.Department{Name: "d"})

	r, err := s.roles.Create(s.ctx, CreateRoleParams{Name: "ops", RoleKey: "ops", MenuIDs: []int64{root.ID, leaf.ID}, DeptIDs: []int64{dept.ID}})
	s.Require().NoError(err)

	item, err := s.roles.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal([]int64{leaf.ID}, item.MenuIDs, "root menus are omitted")
	s.Equal([]int64{dept.ID}, item.DeptIDs)

	_, err = s.roles.Create(s.ctx, CreateRoleParams{Name: "dup", RoleKey: "ops"})
	s.Equal(errs.KindConflict, errs.KindOf(err))
	s.Equal("role_key", errs.FieldOf(err))
}

func (s *roleSuite) TestCreateRollsBackOnMissingMenu() {
	_, err := s.roles.Create(s.ctx, CreateRoleParams{Name: "ops", RoleKey: "ops", MenuIDs: []int64{777}})
	s.Equal(errs.KindNotFound, errs.KindOf(err))

	res, err := s.roles.List(s.ctx, ListRolesParams{RoleKey: "ops"})
	s.Require().NoError(err)
	s.Zero(res.Total, "role row rolled back")
}

func (s *roleSuite) TestProtectedRole() {
	err := s.roles.Update(s.ctx, ProtectedRoleID, UpdateRoleParams{Name: testutil.Ptr("x")})
	s.Equal(errs.KindForbidden, errs.KindOf(err))
	err = s.roles.Delete(s.ctx, ProtectedRoleID)
	s.Equal(errs.KindForbidden, errs.KindOf(err))
}

func (s *roleSuite) TestDeleteClearsLinksAndCache() {
	m := s.menu(model.Menu{Title: "m", Path: "/m", Perms: testutil.Ptr("a.b.c")})
	r := s.role("R", false, m)
	u := s.user("13800000020", r)

	_, err := s.perm.Permissions(s.ctx, u.ID)
	s.Require().NoError(err)

	s.Require().NoError(s.roles.Delete(s.ctx, r.ID))
	var n int64
	s.Require().NoError(s.db.Model(&model.UserRole{}).Where("role_id = ?", r.ID).Count(&n).Error)
	s.Zero(n)
	s.Require().NoError(s.db.Model(&model.RoleMenu{}).Where("role_id = ?", r.ID).Count(&n).Error)
	s.Zero(n)

	set, err := s.perm.Permissions(s.ctx, u.ID)
	s.Require().NoError(err)
	s.Empty(set.Strings())

	err = s.roles.Delete(s.ctx, r.ID)
	s.Equal(errs.KindNotFound, errs.KindOf(err))
}

func (s *roleSuite) TestListFiltersAndPages() {
	for _, k := range []string{"ops-a", "ops-b", "dev"} {
		_, err := s.roles.Create(s.ctx, CreateRoleParams{Name: k, RoleKey: k})
		s.Require().NoError(err)
	}
	res, err := s.roles.List(s.ctx, ListRolesParams{RoleKey: "ops", PageParams: PageParams{Page: 2, Limit: 1}})
	s.Require().NoError(err)
	s.EqualValues(2, res.Total)
	s.Require().Len(res.Items, 1)
	s.Equal("ops-b", res.Items[0].RoleKey)
	s.NotNil(res.Items[0].MenuIDs)
}

func (s *roleSuite) TestUpdateKeepsAssociationsWhenOmitted() {
	m := s.menu(model.Menu{Title: "root", Path: "/r"})
	leaf := s.menu(model.Menu{Title: "leaf", Path: "/r/l", ParentID: &m.ID})
	r, err := s.roles.Create(s.ctx, CreateRoleParams{Name: "ops", RoleKey: "ops", MenuIDs: []int64{leaf.ID}})
	s.Require().NoError(err)

	s.Require().NoError(s.roles.Update(s.ctx, r.ID, UpdateRoleParams{Desc: testutil.Ptr("运维")}))
	item, err := s.roles.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Equal("运维", item.Desc)
	s.Equal([]int64{leaf.ID}, item.MenuIDs)

	empty := []int64{}
	s.Require().NoError(s.roles.Update(s.ctx, r.ID, UpdateRoleParams{MenuIDs: &empty}))
	item, err = s.roles.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Empty(item.MenuIDs)
}
