package rbac

import (
	"encoding/json"
	"testing"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func str(s string) *string { return &s }

func menu(id int64, perms string, disabled bool) model.Menu {
	m := model.Menu{Disabled: disabled}
	m.ID = id
	if perms != "" {
		m.Perms = str(perms)
	}
	return m
}

func TestAdminAlwaysWildcard(t *testing.T) {
	u := model.User{Roles: []model.Role{
		{Name: "plain", Menus: []model.Menu{menu(1, "a.b.c", false)}},
		{Name: "super", IsAdmin: true},
	}}
	set := Resolve(u)
	assert.True(t, set.IsAdmin())
	assert.Equal(t, []string{Wildcard}, set.Strings())
	assert.NoError(t, set.Check("anything.at.all"))
}

func TestScopedScenario(t *testing.T) {
	// R 关联 M1(启用) 与 M2(禁用)，U 仅有 R
	r := model.Role{Name: "R", Menus: []model.Menu{menu(1, "a.b.c", false), menu(2, "x.y.z", true)}}
	u := model.User{Roles: []model.Role{r}}

	set := Resolve(u)
	assert.False(t, set.IsAdmin())
	assert.Equal(t, []string{"a.b.c"}, set.Strings())

	err := set.Check("x.y.z")
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrForbidden)
	assert.NoError(t, set.Check("a.b.c"))
}

func TestUnionCollapsesDuplicates(t *testing.T) {
	u := model.User{Roles: []model.Role{
		{Menus: []model.Menu{menu(1, "system.user.index", false), menu(2, "", false)}},
		{Menus: []model.Menu{menu(1, "system.user.index", false), menu(3, "system.role.list", false)}},
	}}
	assert.Equal(t, []string{"system.role.list", "system.user.index"}, Resolve(u).Strings())
	assert.Len(t, MenusOf(u), 3)
}

func TestEmptyRequirementAlwaysGrants(t *testing.T) {
	u := model.User{Roles: []model.Role{{Disabled: true}}}
	assert.NoError(t, Resolve(u).Check())
	assert.NoError(t, Scoped().Check())
}

func TestIntersectionGrants(t *testing.T) {
	set := Scoped("system.menu.index")
	assert.True(t, set.Allows("system.user.create", "system.menu.index"))
	assert.False(t, set.Allows("system.user.create"))
	assert.True(t, Scoped(Wildcard).IsAdmin())
}

func TestMenusOfSkipsDisabled(t *testing.T) {
	u := model.User{Roles: []model.Role{{Menus: []model.Menu{menu(1, "", false), menu(2, "", true)}}}}
	ms := MenusOf(u)
	require.Len(t, ms, 1)
	assert.Equal(t, int64(1), ms[0].ID)
}

func TestJSONRoundTripKeepsVariant(t *testing.T) {
	b, err := json.Marshal(Admin())
	require.NoError(t, err)
	var back PermissionSet
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, back.IsAdmin())

	b, err = json.Marshal(Scoped("a", "b"))
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(b, &back))
	assert.False(t, back.IsAdmin())
	assert.Equal(t, []string{"a", "b"}, back.Strings())
}
