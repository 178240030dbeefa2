package service

import (
	"context"
	"strconv"
	"time"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/domain/rbac"
	"go-rbacadmin/internal/domain/tree"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/repository/dao"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const permKeyPrefix = "perm:user:"

// PermissionService 用户有效权限：缓存 PermissionSet，角色/菜单变更时按影响面失效
type PermissionService struct {
	Users *dao.UserDAO
	Menus *dao.MenuDAO
	Assoc *dao.AssociationDAO
	Log   *logging.Logger
	cache jsonCache
}

func NewPermissionService(u *dao.UserDAO, m *dao.MenuDAO, a *dao.AssociationDAO, c cache.Cache, ttl time.Duration, l *logging.Logger) *PermissionService {
	return &PermissionService{Users: u, Menus: m, Assoc: a, Log: l, cache: jsonCache{name: "permission", c: c, ttl: ttl}}
}

func (p *PermissionService) tracer() trace.Tracer { return otel.Tracer("service.permission") }

func permKey(uid int64) string { return permKeyPrefix + strconv.FormatInt(uid, 10) }

// loadUser 用户不存在返回 NotFound
func (p *PermissionService) loadUser(ctx context.Context, uid int64) (*model.User, error) {
	u, err := p.Users.FindWithGraph(ctx, uid)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, errs.NotFound("user %d not found", uid)
	}
	return u, nil
}

// Permissions 有效权限集合
func (p *PermissionService) Permissions(ctx context.Context, uid int64) (rbac.PermissionSet, error) {
	ctx, span := p.tracer().Start(ctx, "PermissionService.Permissions", trace.WithAttributes(attribute.Int64("user.id", uid)))
	defer span.End()
	var set rbac.PermissionSet
	if p.cache.get(ctx, permKey(uid), &set) {
		return set, nil
	}
	u, err := p.loadUser(ctx, uid)
	if err != nil {
		return rbac.PermissionSet{}, err
	}
	set = rbac.Resolve(*u)
	p.cache.set(ctx, permKey(uid), set)
	return set, nil
}

// Check required 为空直接放行
func (p *PermissionService) Check(ctx context.Context, uid int64, required ...string) error {
	if len(required) == 0 {
		return nil
	}
	set, err := p.Permissions(ctx, uid)
	if err != nil {
		return err
	}
	return set.Check(required...)
}

// UserMenuTree 前端路由树。管理员取全部启用的目录和菜单；
// 其他用户取角色菜单并集（含按钮），父节点不在集合内的分支不展示
func (p *PermissionService) UserMenuTree(ctx context.Context, uid int64) ([]tree.RouterNode, error) {
	ctx, span := p.tracer().Start(ctx, "PermissionService.UserMenuTree")
	defer span.End()
	u, err := p.loadUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	var menus []model.Menu
	if u.IsAdmin() {
		menus, err = p.Menus.List(ctx, dao.MenuFilter{
			OnlyEnabled: true,
			Types:       []model.MenuType{model.MenuTypeDirectory, model.MenuTypeMenu},
		})
		if err != nil {
			return nil, err
		}
	} else {
		menus = rbac.MenusOf(*u)
	}
	start := time.Now()
	routers, err := tree.Routers(menus)
	metrics.TreeBuildDuration.WithLabelValues("menu", "router").Observe(time.Since(start).Seconds())
	return routers, err
}

// InvalidateUsers 删除指定用户的权限缓存
func (p *PermissionService) InvalidateUsers(ctx context.Context, reason string, uids ...int64) {
	if len(uids) == 0 {
		return
	}
	keys := make([]string, 0, len(uids))
	for _, id := range uids {
		keys = append(keys, permKey(id))
	}
	metrics.PermissionInvalidate.WithLabelValues(reason).Add(float64(len(keys)))
	if err := p.cache.del(ctx, keys...); err != nil {
		p.Log.WithContext(ctx).Warn("permission_invalidate_failed", zap.String("reason", reason), zap.Error(err))
	}
}

// UsersOfRoles 持有这些角色的用户
func (p *PermissionService) UsersOfRoles(ctx context.Context, roleIDs ...int64) ([]int64, error) {
	return p.Assoc.OwnerIDs(ctx, dao.UserRoles, roleIDs)
}

// UsersOfMenus 经由角色间接引用这些菜单的用户
func (p *PermissionService) UsersOfMenus(ctx context.Context, menuIDs ...int64) ([]int64, error) {
	roles, err := p.Assoc.OwnerIDs(ctx, dao.RoleMenus, menuIDs)
	if err != nil {
		return nil, err
	}
	return p.UsersOfRoles(ctx, roles...)
}

// InvalidateRoles 角色的菜单集合或 is_admin 变化后调用
func (p *PermissionService) InvalidateRoles(ctx context.Context, roleIDs ...int64) {
	uids, err := p.UsersOfRoles(ctx, roleIDs...)
	if err != nil {
		p.Log.WithContext(ctx).Warn("permission_invalidate_lookup_failed", zap.Int64s("role_ids", roleIDs), zap.Error(err))
		return
	}
	p.InvalidateUsers(ctx, "role", uids...)
}

// InvalidateMenus 菜单 perms 或 disabled 变化后调用
func (p *PermissionService) InvalidateMenus(ctx context.Context, menuIDs ...int64) {
	uids, err := p.UsersOfMenus(ctx, menuIDs...)
	if err != nil {
		p.Log.WithContext(ctx).Warn("permission_invalidate_lookup_failed", zap.Int64s("menu_ids", menuIDs), zap.Error(err))
		return
	}
	p.InvalidateUsers(ctx, "menu", uids...)
}
