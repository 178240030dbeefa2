package service

import (
	"testing"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/domain/tree"

	"github.com/stretchr/testify/suite"
)

type seedSuite struct{ serviceSuite }

func TestSeedService(t *testing.T) { suite.Run(t, new(seedSuite)) }

func (s *seedSuite) TestIdempotent() {
	p := SeedParams{SuperTelephone: "15020221010", SuperPassword: "kinit2022"}
	s.Require().NoError(s.seed.Run(s.ctx, p))

	count := func(m interface{}) int64 {
		var n int64
		s.Require().NoError(s.db.Model(m).Count(&n).Error)
		return n
	}
	menus, roles, users := count(&model.Menu{}), count(&model.Role{}), count(&model.User{})
	s.EqualValues(1+6*4, menus)

	s.Require().NoError(s.seed.Run(s.ctx, p))
	s.Equal(menus, count(&model.Menu{}))
	s.Equal(roles, count(&model.Role{}))
	s.Equal(users, count(&model.User{}))
}

func (s *seedSuite) TestSuperUserIsAdmin() {
	s.Require().NoError(s.seed.Run(s.ctx, SeedParams{SuperTelephone: "15020221010", SuperPassword: "kinit2022"}))

	res, err := s.auth.Login(s.ctx, LoginParams{Telephone: "15020221010", Password: "kinit2022"}, "")
	s.Require().NoError(err)
	s.True(res.User.IsAdmin)
	s.Require().Len(res.User.Departments, 1)
	s.Equal("head", res.User.Departments[0].DeptKey)

	set, err := s.perm.Permissions(s.ctx, res.User.ID)
	s.Require().NoError(err)
	s.True(set.IsAdmin())

	routers, err := s.perm.UserMenuTree(s.ctx, res.User.ID)
	s.Require().NoError(err)
	s.Require().Len(routers, 1)
	s.Len(routers[0].Children, 6)

	opts, err := s.menus.Tree(s.ctx, int(tree.ModeOptions))
	s.Require().NoError(err)
	s.Len(opts.([]tree.OptionNode), 1)
}
