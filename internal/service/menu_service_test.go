package service

import (
	"testing"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/domain/tree"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/testutil"

	"github.com/stretchr/testify/suite"
)

type menuSuite struct{ serviceSuite }

func TestMenuService(t *testing.T) { suite.Run(t, new(menuSuite)) }

func (s *menuSuite) TestPathConflictAndReuseAfterDelete() {
	m, err := s.menus.Create(s.ctx, CreateMenuParams{Title: "用户", Path: "/system/user"})
	s.Require().NoError(err)

	_, err = s.menus.Create(s.ctx, CreateMenuParams{Title: "重复", Path: "/system/user"})
	s.Equal(errs.KindConflict, errs.KindOf(err))
	s.Equal("path", errs.FieldOf(err))

	s.Require().NoError(s.menus.Delete(s.ctx, m.ID))
	_, err = s.menus.Create(s.ctx, CreateMenuParams{Title: "用户", Path: "/system/user"})
	s.NoError(err)
}

func (s *menuSuite) TestUpdatePathConflictExcludesSelf() {
	a, err := s.menus.Create(s.ctx, CreateMenuParams{Title: "a", Path: "/a"})
	s.Require().NoError(err)
	_, err = s.menus.Create(s.ctx, CreateMenuParams{Title: "b", Path: "/b"})
	s.Require().NoError(err)

	s.NoError(s.menus.Update(s.ctx, a.ID, UpdateMenuParams{Path: testutil.Ptr("/a"), Title: testutil.Ptr("a2")}))
	err = s.menus.Update(s.ctx, a.ID, UpdateMenuParams{Path: testutil.Ptr("/b")})
	s.Equal(errs.KindConflict, errs.KindOf(err))

	got, err := s.menus.Get(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal("a2", got.Title)
	s.Equal("/a", got.Path, "rejected write is not applied")
}

func (s *menuSuite) TestDeleteGuardsChildren() {
	parent := s.menu(model.Menu{Title: "p", Path: "/p"})
	child := s.menu(model.Menu{Title: "c", Path: "/p/c", ParentID: &parent.ID})
	r := s.role("R", false, child)

	err := s.menus.Delete(s.ctx, parent.ID)
	s.Equal(errs.KindConflict, errs.KindOf(err))

	s.Require().NoError(s.menus.Delete(s.ctx, child.ID))
	item, err := s.roles.Get(s.ctx, r.ID)
	s.Require().NoError(err)
	s.Empty(item.MenuIDs, "role link removed together with the menu")
	s.NoError(s.menus.Delete(s.ctx, parent.ID))

	err = s.menus.Delete(s.ctx, parent.ID)
	s.Equal(errs.KindNotFound, errs.KindOf(err))
}

func (s *menuSuite) TestReparentRejectsCycle() {
	a := s.menu(model.Menu{Title: "a", Path: "/a"})
	b := s.menu(model.Menu{Title: "b", Path: "/a/b", ParentID: &a.ID})

	err := s.menus.Update(s.ctx, a.ID, UpdateMenuParams{ParentID: &b.ID})
	s.Equal(errs.KindInvalidArgument, errs.KindOf(err))
	err = s.menus.Update(s.ctx, a.ID, UpdateMenuParams{ParentID: &a.ID})
	s.Equal(errs.KindInvalidArgument, errs.KindOf(err))

	s.NoError(s.menus.Update(s.ctx, b.ID, UpdateMenuParams{ParentID: testutil.Ptr(int64(0))}))
	got, err := s.menus.Get(s.ctx, b.ID)
	s.Require().NoError(err)
	s.Nil(got.ParentID)
}

func (s *menuSuite) TestTreeModesAndCache() {
	root := s.menu(model.Menu{Title: "root", Path: "/r", Order: 1})
	s.menu(model.Menu{Title: "on", Path: "/r/on", ParentID: &root.ID, Order: 2})
	s.menu(model.Menu{Title: "off", Path: "/r/off", ParentID: &root.ID, Order: 1, Disabled: true})

	full, err := s.menus.Tree(s.ctx, 1)
	s.Require().NoError(err)
	nodes := full.([]tree.MenuNode)
	s.Require().Len(nodes, 1)
	s.Equal([]string{"off", "on"}, []string{nodes[0].Children[0].Title, nodes[0].Children[1].Title})

	opts, err := s.menus.Tree(s.ctx, 3)
	s.Require().NoError(err)
	enabled := opts.([]tree.OptionNode)
	s.Require().Len(enabled[0].Children, 1)
	s.Equal("on", enabled[0].Children[0].Label)

	// 命中缓存时类型一致
	again, err := s.menus.Tree(s.ctx, 1)
	s.Require().NoError(err)
	s.IsType([]tree.MenuNode{}, again)

	_, err = s.menus.Create(s.ctx, CreateMenuParams{Title: "new", Path: "/new"})
	s.Require().NoError(err)
	full, err = s.menus.Tree(s.ctx, 1)
	s.Require().NoError(err)
	s.Len(full.([]tree.MenuNode), 2, "writes drop cached trees")

	_, err = s.menus.Tree(s.ctx, 4)
	s.Equal(errs.KindInvalidArgument, errs.KindOf(err))
}

func (s *menuSuite) TestCreateUnknownParent() {
	_, err := s.menus.Create(s.ctx, CreateMenuParams{Title: "x", Path: "/x", ParentID: testutil.Ptr(int64(404))})
	s.Equal(errs.KindNotFound, errs.KindOf(err))

	m, err := s.menus.Create(s.ctx, CreateMenuParams{Title: "y", Path: "/y", ParentID: testutil.Ptr(int64(0))})
	s.Require().NoError(err)
	s.Nil(m.ParentID, "0 is stored as root")
}
