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

const deptTreeKeyPrefix = "department:tree:"

type DepartmentService struct {
	DB    *gorm.DB
	Depts *dao.DepartmentDAO
	Assoc *dao.AssociationDAO
	Log   *logging.Logger
	cache jsonCache
}

func NewDepartmentService(db *gorm.DB, d *dao.DepartmentDAO, a *dao.AssociationDAO, c cache.Cache, ttl time.Duration, l *logging.Logger) *DepartmentService {
	return &DepartmentService{DB: db, Depts: d, Assoc: a, Log: l, cache: jsonCache{name: "department_tree", c: c, ttl: ttl}}
}

func (s *DepartmentService) tracer() trace.Tracer { return otel.Tracer("service.department") }

// Tree mode=1 返回 []tree.DepartmentNode，mode=2/3 返回 []tree.OptionNode
func (s *DepartmentService) Tree(ctx context.Context, mode int) (interface{}, error) {
	ctx, span := s.tracer().Start(ctx, "DepartmentService.Tree")
	defer span.End()
	m, err := tree.ParseMode(mode)
	if err != nil {
		return nil, err
	}
	key := deptTreeKeyPrefix + strconv.Itoa(int(m))
	if m == tree.ModeFull {
		var out []tree.DepartmentNode
		if s.cache.get(ctx, key, &out) {
			return out, nil
		}
	} else {
		var out []tree.OptionNode
		if s.cache.get(ctx, key, &out) {
			return out, nil
		}
	}
	depts, err := s.Depts.List(ctx, m.OnlyEnabled())
	if err != nil {
		return nil, err
	}
	start := time.Now()
	var out interface{}
	shape := "options"
	if m == tree.ModeFull {
		shape = "full"
		out, err = tree.FullDepartments(depts)
	} else {
		out, err = tree.DepartmentOptions(depts)
	}
	metrics.TreeBuildDuration.WithLabelValues("department", shape).Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, errs.Wrap(errs.KindInternal, err, "build department tree")
	}
	s.cache.set(ctx, key, out)
	return out, nil
}

func (s *DepartmentService) Get(ctx context.Context, id int64) (*model.Department, error) {
	d, err := s.Depts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errs.NotFound("department %d not found", id)
	}
	return d, nil
}

type CreateDepartmentParams struct {
	Name     string `json:"name" binding:"required,max=50"`
	DeptKey  string `json:"dept_key" binding:"max=50"`
	Disabled bool   `json:"disabled"`
	Order    int    `json:"order"`
	Desc     string `json:"desc" binding:"max=255"`
	Owner    string `json:"owner" binding:"max=50"`
	Phone    string `json:"phone" binding:"max=20"`
	Email    string `json:"email" binding:"omitempty,email,max=100"`
	ParentID *int64 `json:"parent_id"`
}

func (s *DepartmentService) Create(ctx context.Context, p CreateDepartmentParams) (*model.Department, error) {
	ctx, span := s.tracer().Start(ctx, "DepartmentService.Create")
	defer span.End()
	parent := normalizeParent(p.ParentID)
	if parent != nil {
		if _, err := s.Get(ctx, *parent); err != nil {
			return nil, err
		}
	}
	d := &model.Department{
		Name: p.Name, DeptKey: p.DeptKey, Disabled: p.Disabled, Order: p.Order, Desc: p.Desc,
		Owner: p.Owner, Phone: p.Phone, Email: p.Email, ParentID: parent,
	}
	if err := s.Depts.Create(ctx, d); err != nil {
		return nil, err
	}
	s.invalidateTrees(ctx)
	return d, nil
}

type UpdateDepartmentParams struct {
	Name     *string `json:"name" binding:"omitempty,max=50"`
	DeptKey  *string `json:"dept_key" binding:"omitempty,max=50"`
	Disabled *bool   `json:"disabled"`
	Order    *int    `json:"order"`
	Desc     *string `json:"desc" binding:"omitempty,max=255"`
	Owner    *string `json:"owner" binding:"omitempty,max=50"`
	Phone    *string `json:"phone" binding:"omitempty,max=20"`
	Email    *string `json:"email" binding:"omitempty,max=100"`
	ParentID *int64  `json:"parent_id"`
}

func (p UpdateDepartmentParams) columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.DeptKey != nil {
		cols["dept_key"] = *p.DeptKey
	}
	if p.Disabled != nil {
		cols["disabled"] = *p.Disabled
	}
	if p.Order != nil {
		cols["sort"] = *p.Order
	}
	if p.Desc != nil {
		cols["description"] = *p.Desc
	}
	if p.Owner != nil {
		cols["owner"] = *p.Owner
	}
	if p.Phone != nil {
		cols["phone"] = *p.Phone
	}
	if p.Email != nil {
		cols["email"] = *p.Email
	}
	if p.ParentID != nil {
		cols["parent_id"] = normalizeParent(p.ParentID)
	}
	return cols
}

func (s *DepartmentService) Update(ctx context.Context, id int64, p UpdateDepartmentParams) error {
	ctx, span := s.tracer().Start(ctx, "DepartmentService.Update")
	defer span.End()
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if parent := normalizeParent(p.ParentID); parent != nil {
		if _, err := s.Get(ctx, *parent); err != nil {
			return err
		}
		all, err := s.Depts.List(ctx, false)
		if err != nil {
			return err
		}
		if tree.WouldCycle(all, id, *parent) {
			return errs.InvalidArgument("parent_id", "department %d cannot be moved under itself or its descendant", id)
		}
	}
	if err := s.Depts.Updates(ctx, id, p.columns()); err != nil {
		return err
	}
	s.invalidateTrees(ctx)
	return nil
}

// Delete 批量删除；集合之外仍有子部门引用时整体拒绝
func (s *DepartmentService) Delete(ctx context.Context, ids []int64) error {
	ctx, span := s.tracer().Start(ctx, "DepartmentService.Delete")
	defer span.End()
	ids = dedupIDs(ids)
	if len(ids) == 0 {
		return errs.InvalidArgument("ids", "no department ids given")
	}
	found, err := s.Depts.ExistingIDs(ctx, ids)
	if err != nil {
		return err
	}
	if len(found) != len(ids) {
		return errs.NotFound("departments not found: %v", missingIDs(ids, found))
	}
	n, err := s.Depts.ChildrenOutside(ctx, ids)
	if err != nil {
		return err
	}
	if n > 0 {
		return errs.Conflict("parent_id", "%d child departments still reference the deleted ones", n)
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.Assoc.Detach(ctx, tx, dao.RoleDepartments, ids); err != nil {
			return err
		}
		if err := s.Assoc.Detach(ctx, tx, dao.UserDepartments, ids); err != nil {
			return err
		}
		return s.Depts.WithTx(tx).Delete(ctx, ids)
	})
	if err != nil {
		return err
	}
	s.invalidateTrees(ctx)
	s.Log.WithContext(ctx).Info("departments_deleted", zap.Int64s("department_ids", ids))
	return nil
}

func (s *DepartmentService) invalidateTrees(ctx context.Context) {
	keys := []string{
		deptTreeKeyPrefix + strconv.Itoa(int(tree.ModeFull)),
		deptTreeKeyPrefix + strconv.Itoa(int(tree.ModeOptions)),
		deptTreeKeyPrefix + strconv.Itoa(int(tree.ModeEnabledOptions)),
	}
	if err := s.cache.del(ctx, keys...); err != nil {
		s.Log.WithContext(ctx).Warn("department_tree_invalidate_failed", zap.Error(err))
	}
}
