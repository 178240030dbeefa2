package tree

import (
	"errors"
	"testing"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pid(v int64) *int64 { return &v }

func menu(id int64, parent int64, order int, title string) model.Menu {
	m := model.Menu{Title: title, Order: order}
	m.ID = id
	if parent != 0 {
		m.ParentID = pid(parent)
	}
	return m
}

func countMenus(nodes []MenuNode) int {
	n := 0
	for _, c := range nodes {
		n += 1 + countMenus(c.Children)
	}
	return n
}

func TestBuildKeepsEveryNodeOnce(t *testing.T) {
	menus := []model.Menu{
		menu(1, 0, 100, "system"),
		menu(2, 1, 2, "role"),
		menu(3, 1, 1, "menu"),
		menu(4, 3, 0, "menu.create"),
		menu(5, 0, 1, "dashboard"),
		menu(6, 2, 0, "role.create"),
	}
	forest, err := FullMenus(menus)
	require.NoError(t, err)
	assert.Equal(t, len(menus), countMenus(forest))

	// 子节点挂在声明的父节点下
	var walk func(parent int64, nodes []MenuNode)
	walk = func(parent int64, nodes []MenuNode) {
		for _, n := range nodes {
			assert.Equal(t, parent, n.ParentNodeID(), "node %d", n.ID)
			walk(n.ID, n.Children)
		}
	}
	walk(0, forest)
}

func TestBuildSortsEachLevelStably(t *testing.T) {
	menus := []model.Menu{
		menu(1, 0, 5, "b"),
		menu(2, 0, 1, "a"),
		menu(3, 0, 5, "c"),
		menu(10, 1, 3, "x"),
		menu(11, 1, 3, "y"),
		menu(12, 1, 1, "z"),
	}
	forest, err := MenuOptions(menus)
	require.NoError(t, err)
	require.Len(t, forest, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{forest[0].Label, forest[1].Label, forest[2].Label})
	b := forest[1]
	require.Len(t, b.Children, 3)
	assert.Equal(t, []string{"z", "x", "y"}, []string{b.Children[0].Label, b.Children[1].Label, b.Children[2].Label})
	assert.Empty(t, forest[0].Children)
	assert.NotNil(t, forest[0].Children)
}

func TestBuildDetectsCycle(t *testing.T) {
	menus := []model.Menu{
		menu(1, 0, 0, "root"),
		menu(2, 3, 0, "a"),
		menu(3, 2, 0, "b"),
	}
	_, err := FullMenus(menus)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCycle))

	_, err = FullMenus([]model.Menu{menu(7, 7, 0, "self")})
	assert.ErrorIs(t, err, ErrCycle)
}

func TestBuildDropsOrphans(t *testing.T) {
	// 父节点被过滤掉时子节点不出现
	forest, err := MenuOptions([]model.Menu{menu(1, 0, 0, "root"), menu(2, 99, 0, "orphan")})
	require.NoError(t, err)
	require.Len(t, forest, 1)
	assert.Empty(t, forest[0].Children)
}

func TestRouterProjection(t *testing.T) {
	m := menu(1, 0, 4, "System")
	m.Name, m.Path, m.Component, m.Redirect, m.Icon = "System", "/system", "LAYOUT", "/system/menu", "setting"
	m.Hidden, m.Affix, m.NoCache = true, true, true
	child := menu(2, 1, 1, "Menu")
	child.Path = "/system/menu"

	routers, err := Routers([]model.Menu{child, m})
	require.NoError(t, err)
	require.Len(t, routers, 1)
	r := routers[0]
	assert.Equal(t, int64(1), r.ID)
	assert.Equal(t, 4, r.Index)
	assert.Equal(t, RouterMeta{Title: "System", Icon: "setting", HideInMenu: true, AffixTab: true, Order: 4, KeepAlive: false}, r.Meta)
	require.Len(t, r.Children, 1)
	assert.True(t, r.Children[0].Meta.KeepAlive)
}

func TestDepartmentOptionsUseName(t *testing.T) {
	head := model.Department{Name: "Headquarters", Order: 0}
	head.ID = 1
	rd := model.Department{Name: "R&D", ParentID: pid(1), Order: 2}
	rd.ID = 2
	ops := model.Department{Name: "Ops", ParentID: pid(1), Order: 1}
	ops.ID = 3

	opts, err := DepartmentOptions([]model.Department{head, rd, ops})
	require.NoError(t, err)
	require.Len(t, opts, 1)
	assert.Equal(t, "Headquarters", opts[0].Label)
	assert.Equal(t, []int64{3, 2}, []int64{opts[0].Children[0].Value, opts[0].Children[1].Value})

	full, err := FullDepartments([]model.Department{head, rd, ops})
	require.NoError(t, err)
	assert.Equal(t, "Ops", full[0].Children[0].Name)
}

func TestParseMode(t *testing.T) {
	for _, v := range []int{1, 2, 3} {
		m, err := ParseMode(v)
		require.NoError(t, err)
		assert.Equal(t, Mode(v), m)
	}
	_, err := ParseMode(4)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	assert.True(t, ModeEnabledOptions.OnlyEnabled())
	assert.False(t, ModeOptions.OnlyEnabled())
}

func TestWouldCycle(t *testing.T) {
	menus := []model.Menu{
		menu(1, 0, 0, "a"),
		menu(2, 1, 0, "b"),
		menu(3, 2, 0, "c"),
		menu(4, 0, 0, "d"),
	}
	assert.True(t, WouldCycle(menus, 1, 3), "move under own grandchild")
	assert.True(t, WouldCycle(menus, 2, 2), "self parent")
	assert.False(t, WouldCycle(menus, 3, 4))
	assert.False(t, WouldCycle(menus, 1, 0))
	assert.False(t, WouldCycle(menus, 4, 3))
}
