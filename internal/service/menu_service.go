package service

import (
	"context"
	"strconv"
	"time"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/domain/tree"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/repository/dao"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const menuTreeKeyPrefix = "menu:tree:"

type MenuService struct {
	DB    *gorm.DB
	Menus *dao.MenuDAO
	Assoc *dao.AssociationDAO
	Perm  *PermissionService
	Log   *logging.Logger
	cache jsonCache
}

func NewMenuService(db *gorm.DB, m *dao.MenuDAO, a *dao.AssociationDAO, p *PermissionService, c cache.Cache, ttl time.Duration, l *logging.Logger) *MenuService {
	return &MenuService{DB: db, Menus: m, Assoc: a, Perm: p, Log: l, cache: jsonCache{name: "menu_tree", c: c, ttl: ttl}}
}

func (s *MenuService) tracer() trace.Tracer { return otel.Tracer("service.menu") }

// Tree mode=1 返回 []tree.MenuNode，mode=2/3 返回 []tree.OptionNode
func (s *MenuService) Tree(ctx context.Context, mode int) (interface{}, error) {
	ctx, span := s.tracer().Start(ctx, "MenuService.Tree")
	defer span.End()
	m, err := tree.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	key := menuTreeKeyPrefix + strconv.Itoa(int(m))
	if m == tree.ModeFull {
		var out []tree.MenuNode
		if s.cache.get(ctx, key, &out) {
			return out, nil
		}
	} else {
		var out []tree.OptionNode
		if s.cache.get(ctx, key, &out) {
			return out, nil
		}
	}
	menus, err := s.Menus.List(ctx, dao.MenuFilter{OnlyEnabled: m.OnlyEnabled()})
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var out interface{}
	shape := "options"
	if m == tree.ModeFull {
		shape = "full"
		out, err = tree.FullMenus(menus)
	} else {
		out, err = tree.MenuOptions(menus)
	}
	metrics.TreeBuildDuration.WithLabelValues("menu", shape).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "build menu tree")
	}
	s.cache.set(ctx, key, out)
	return out, nil
}

func (s *MenuService) Get(ctx context.Context, id int64) (*model.Menu, error) {
	m, err := s.Menus.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, errs.NotFound("menu %d not found", id)
	}
	return m, nil
}

type CreateMenuParams struct {
	Title     string         `json:"title" binding:"required,max=50"`
	Name      string         `json:"name" binding:"max=50"`
	Icon      string         `json:"icon" binding:"max=50"`
	Path      string         `json:"path" binding:"required,max=100"`
	Component string         `json:"component" binding:"max=255"`
	Redirect  string         `json:"redirect" binding:"max=255"`
	Disabled  bool           `json:"disabled"`
	Hidden    bool           `json:"hidden"`
	MenuType  model.MenuType `json:"menu_type" binding:"min=0,max=2"`
	Perms     *string        `json:"perms" binding:"omitempty,max=100"`
	Order     int            `json:"order"`
	ParentID  *int64         `json:"parent_id"`
	NoCache   bool           `json:"no_cache"`
	Affix     bool           `json:"affix"`
}

func (s *MenuService) Create(ctx context.Context, p CreateMenuParams) (*model.Menu, error) {
	ctx, span := s.tracer().Start(ctx, "MenuService.Create")
	defer span.End()
	parent := normalizeParent(p.ParentID)
	if parent != nil {
		if _, err := s.Get(ctx, *parent); err != nil {
			return nil, err
		}
	}
	taken, err := s.Menus.PathTaken(ctx, p.Path, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.Conflict("path", "menu path %q already exists", p.Path)
	}
	m := &model.Menu{
		Title: p.Title, Name: p.Name, Icon: p.Icon, Path: p.Path, Component: p.Component,
		Redirect: p.Redirect, Disabled: p.Disabled, Hidden: p.Hidden, MenuType: p.MenuType,
		Perms: p.Perms, Order: p.Order, ParentID: parent, NoCache: p.NoCache, Affix: p.Affix,
	}
	if err := s.Menus.Create(ctx, m); err != nil {
		return nil, err
	}
	s.invalidateTrees(ctx)
	s.Log.WithContext(ctx).Info("menu_created", zap.Int64("menu_id", m.ID), zap.String("path", m.Path))
	return m, nil
}

// UpdateMenuParams nil 字段不修改；parent_id 传 0 表示移到根
type UpdateMenuParams struct {
	Title     *string         `json:"title" binding:"omitempty,max=50"`
	Name      *string         `json:"name" binding:"omitempty,max=50"`
	Icon      *string         `json:"icon" binding:"omitempty,max=50"`
	Path      *string         `json:"path" binding:"omitempty,max=100"`
	Component *string         `json:"component" binding:"omitempty,max=255"`
	Redirect  *string         `json:"redirect" binding:"omitempty,max=255"`
	Disabled  *bool           `json:"disabled"`
	Hidden    *bool           `json:"hidden"`
	MenuType  *model.MenuType `json:"menu_type" binding:"omitempty,min=0,max=2"`
	Perms     *string         `json:"perms" binding:"omitempty,max=100"`
	Order     *int            `json:"order"`
	ParentID  *int64          `json:"parent_id"`
	NoCache   *bool           `json:"no_cache"`
	Affix     *bool           `json:"affix"`
}

func (p UpdateMenuParams) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	set := func(name string, ok bool, v interface{}) {
		if ok {
			cols[name] = v
		}
	}
	set("title", p.Title != nil, deref(p.Title))
	set("name", p.Name != nil, deref(p.Name))
	set("icon", p.Icon != nil, deref(p.Icon))
	set("path", p.Path != nil, deref(p.Path))
	set("component", p.Component != nil, deref(p.Component))
	set("redirect", p.Redirect != nil, deref(p.Redirect))
	set("disabled", p.Disabled != nil, deref(p.Disabled))
	set("hidden", p.Hidden != nil, deref(p.Hidden))
	set("menu_type", p.MenuType != nil, deref(p.MenuType))
	set("perms", p.Perms != nil, p.Perms)
	set("sort", p.Order != nil, deref(p.Order))
	set("parent_id", p.ParentID != nil, normalizeParent(p.ParentID))
	set("no_cache", p.NoCache != nil, deref(p.NoCache))
	set("affix", p.Affix != nil, deref(p.Affix))
	return cols
}

func (s *MenuService) Update(ctx context.Context, id int64, p UpdateMenuParams) error {
	ctx, span := s.tracer().Start(ctx, "MenuService.Update")
	defer span.End()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if p.Path != nil {
		taken, err := s.Menus.PathTaken(ctx, *p.Path, id)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict("path", "menu path %q already exists", *p.Path)
		}
	}
	if parent := normalizeParent(p.ParentID); parent != nil {
		if _, err := s.Get(ctx, *parent); err != nil {
			return err
		}
		all, err := s.Menus.List(ctx, dao.MenuFilter{})
		if err != nil {
			return err
		}
		if tree.WouldCycle(all, id, *parent) {
			return errs.InvalidArgument("parent_id", "menu %d cannot be moved under itself or its descendant", id)
		}
	}
	if err := s.Menus.Updates(ctx, id, p.columns()); err != nil {
		return err
	}
	s.invalidateTrees(ctx)
	if p.Perms != nil || p.Disabled != nil {
		s.Perm.InvalidateMenus(ctx, id)
	}
	return nil
}

// Delete 存在子菜单时拒绝；同时解除所有角色引用
func (s *MenuService) Delete(ctx context.Context, id int64) error {
	ctx, span := s.tracer().Start(ctx, "MenuService.Delete")
	defer span.End()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.Menus.CountChildren(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return errs.Conflict("parent_id", "menu %d still has %d child menus", id, n)
	}
	affected, err := s.Perm.UsersOfMenus(ctx, id)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Assoc.Detach(ctx, tx, dao.RoleMenus, []int64{id}); err != nil {
			return err
		}
		return s.Menus.WithTx(tx).Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidateTrees(ctx)
	s.Perm.InvalidateUsers(ctx, "menu", affected...)
	s.Log.WithContext(ctx).Info("menu_deleted", zap.Int64("menu_id", id))
	return nil
}

func (s *MenuService) invalidateTrees(ctx context.Context) {
	keys := []string{
		menuTreeKeyPrefix + strconv.Itoa(int(tree.ModeFull)),
		menuTreeKeyPrefix + strconv.Itoa(int(tree.ModeOptions)),
		menuTreeKeyPrefix + strconv.Itoa(int(tree.ModeEnabledOptions)),
	}
	if err := s.cache.del(ctx, keys...); err != nil {
		s.Log.WithContext(ctx).Warn("menu_tree_invalidate_failed", zap.Error(err))
	}
}

func deref[T any](p *T) T {
	var zero T
	if p == nil {
		return zero
	}
	return *p
}
