// Package rbac 用户有效权限的解析与校验
package rbac

import (
	"sort"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/pkg/errs"
)

// Wildcard 超级角色的通配权限标识
const Wildcard = "*.*.*"

// PermissionSet 二选一：Admin 或 Scoped(perms)
type PermissionSet struct {
	admin bool
	perms map[string]struct{}
}

func Admin() PermissionSet { return PermissionSet{admin: true} }

func Scoped(perms ...string) PermissionSet {
	set := make(map[string]struct{}, len(perms))
	for _, p := range perms {
		if p == Wildcard {
			return Admin()
		}
		if p != "" {
			set[p] = struct{}{}
		}
	}
	return PermissionSet{perms: set}
}

func (p PermissionSet) IsAdmin() bool { return p.admin }

// Strings 管理员只返回通配标识，不枚举
func (p PermissionSet) Strings() []string {
	if p.admin {
		return []string{Wildcard}
	}
	out := make([]string, 0, len(p.perms))
	for k := range p.perms {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (p PermissionSet) Has(perm string) bool {
	if p.admin {
		return true
	}
	_, ok := p.perms[perm]
	return ok
}

// Allows required 为空即不限制；否则命中任一即可
func (p PermissionSet) Allows(required ...string) bool {
	if len(required) == 0 || p.admin {
		return true
	}
	for _, r := range required {
		if _, ok := p.perms[r]; ok {
			return true
		}
	}
	return false
}

// Check 拒绝时返回 Forbidden
func (p PermissionSet) Check(required ...string) error {
	if p.Allows(required...) {
		return nil
	}
	return errs.Forbidden("No permission to operate")
}

// Resolve 基于已加载的 Roles.Menus 计算权限集合，不访问存储
func Resolve(u model.User) PermissionSet {
	if u.IsAdmin() {
		return Admin()
	}
	perms := make([]string, 0)
	for _, r := range u.Roles {
		for _, m := range r.Menus {
			if m.Disabled {
				continue
			}
			if p, ok := m.Permission(); ok {
				perms = append(perms, p)
			}
		}
	}
	return Scoped(perms...)
}

// MenusOf 非管理员可见菜单：角色菜单并集去重，排除禁用
func MenusOf(u model.User) []model.Menu {
	seen := make(map[int64]struct{})
	out := make([]model.Menu, 0)
	for _, r := range u.Roles {
		for _, m := range r.Menus {
			if m.Disabled {
				continue
			}
			if _, ok := seen[m.ID]; ok {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m)
		}
	}
	return out
}
