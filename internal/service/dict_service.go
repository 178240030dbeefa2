package service

import (
	"context"
	"time"

	"go-rbacadmin/internal/domain/model"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/repository/dao"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const dictKeyPrefix = "dict:tp:"

type DictService struct {
	DB    *gorm.DB
	Dicts *dao.DictDAO
	Log   *logging.Logger
	cache jsonCache
}

func NewDictService(db *gorm.DB, d *dao.DictDAO, c cache.Cache, ttl time.Duration, l *logging.Logger) *DictService {
	return &DictService{DB: db, Dicts: d, Log: l, cache: jsonCache{name: "dict", c: c, ttl: ttl}}
}

func (s *DictService) tracer() trace.Tracer { return otel.Tracer("service.dict") }

type DictTypeItem struct {
	model.DictType
	Details []model.DictDetail `json:"details"`
}

type ListDictTypesParams struct {
	Name string `form:"name"`
	PageParams
}

func (s *DictService) ListTypes(ctx context.Context, p ListDictTypesParams) (*ListResult[DictTypeItem], error) {
	ctx, span := s.tracer().Start(ctx, "DictService.ListTypes")
	defer span.End()
	types, total, err := s.Dicts.ListTypes(ctx, p.Name, p.toDAO())
	if err != nil {
		return nil, err
	}
	items := make([]DictTypeItem, 0, len(types))
	for _, t := range types {
		details := t.Details
		if details == nil {
			details = []model.DictDetail{}
		}
		items = append(items, DictTypeItem{DictType: t, Details: details})
	}
	return &ListResult[DictTypeItem]{Items: items, Total: total}, nil
}

func (s *DictService) findType(ctx context.Context, id int64) (*model.DictType, error) {
	t, err := s.Dicts.FindType(ctx, id)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.NotFound("dict type %d not found", id)
	}
	return t, nil
}

type CreateDictTypeParams struct {
	Name     string `json:"name" binding:"required,max=50"`
	Tp       string `json:"tp" binding:"required,max=50"`
	Disabled bool   `json:"disabled"`
	Remark   string `json:"remark" binding:"max=255"`
}

func (s *DictService) CreateType(ctx context.Context, p CreateDictTypeParams) (*model.DictType, error) {
	ctx, span := s.tracer().Start(ctx, "DictService.CreateType")
	defer span.End()
	taken, err := s.Dicts.TpTaken(ctx, p.Tp, 0)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, errs.Conflict("tp", "dict type %q already exists", p.Tp)
	}
	t := &model.DictType{Name: p.Name, Tp: p.Tp, Disabled: p.Disabled, Remark: p.Remark}
	if err := s.Dicts.CreateType(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

type UpdateDictTypeParams struct {
	Name     *string `json:"name" binding:"omitempty,max=50"`
	Tp       *string `json:"tp" binding:"omitempty,max=50"`
	Disabled *bool   `json:"disabled"`
	Remark   *string `json:"remark" binding:"omitempty,max=255"`
}

func (s *DictService) UpdateType(ctx context.Context, id int64, p UpdateDictTypeParams) error {
	ctx, span := s.tracer().Start(ctx, "DictService.UpdateType")
	defer span.End()
	t, err := s.findType(ctx, id)
	if err != nil {
		return err
	}
	cols := make(map[string]interface{})
	if p.Tp != nil {
		taken, err := s.Dicts.TpTaken(ctx, *p.Tp, id)
		if err != nil {
			return err
		}
		if taken {
			return errs.Conflict("tp", "dict type %q already exists", *p.Tp)
		}
		cols["tp"] = *p.Tp
	}
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.Disabled != nil {
		cols["disabled"] = *p.Disabled
	}
	if p.Remark != nil {
		cols["remark"] = *p.Remark
	}
	if err := s.Dicts.UpdateType(ctx, id, cols); err != nil {
		return err
	}
	s.invalidate(ctx, t.Tp)
	return nil
}

// DeleteType 连同明细一起删除
func (s *DictService) DeleteType(ctx context.Context, id int64) error {
	ctx, span := s.tracer().Start(ctx, "DictService.DeleteType")
	defer span.End()
	t, err := s.findType(ctx, id)
	if err != nil {
		return err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.Dicts.WithTx(tx).DeleteType(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx, t.Tp)
	s.Log.WithContext(ctx).Info("dict_type_deleted", zap.Int64("dict_type_id", id), zap.String("tp", t.Tp))
	return nil
}

// Details 按 order 升序
func (s *DictService) Details(ctx context.Context, typeID int64) ([]model.DictDetail, error) {
	if _, err := s.findType(ctx, typeID); err != nil {
		return nil, err
	}
	return s.Dicts.ListDetails(ctx, typeID)
}

// DetailsByTp 前端按类型 key 取选项，结果缓存
func (s *DictService) DetailsByTp(ctx context.Context, tp string) ([]model.DictDetail, error) {
	ctx, span := s.tracer().Start(ctx, "DictService.DetailsByTp")
	defer span.End()
	var out []model.DictDetail
	if s.cache.get(ctx, dictKeyPrefix+tp, &out) {
		return out, nil
	}
	t, err := s.Dicts.FindTypeByTp(ctx, tp)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errs.NotFound("dict type %q not found", tp)
	}
	out = t.Details
	if out == nil {
		out = []model.DictDetail{}
	}
	s.cache.set(ctx, dictKeyPrefix+tp, out)
	return out, nil
}

// Lookup label 为空时返回 is_default 的明细
func (s *DictService) Lookup(ctx context.Context, tp, label string) (*model.DictDetail, error) {
	details, err := s.DetailsByTp(ctx, tp)
	if err != nil {
		return nil, err
	}
	for i := range details {
		d := details[i]
		if (label == "" && d.IsDefault) || (label != "" && d.Label == label) {
			return &d, nil
		}
	}
	if label == "" {
		return nil, errs.NotFound("dict type %q has no default value", tp)
	}
	return nil, errs.NotFound("dict type %q has no label %q", tp, label)
}

type CreateDictDetailParams struct {
	Label     string `json:"label" binding:"required,max=50"`
	Value     string `json:"value" binding:"required,max=50"`
	Disabled  bool   `json:"disabled"`
	IsDefault bool   `json:"is_default"`
	Order     int    `json:"order"`
	Remark    string `json:"remark" binding:"max=255"`
}

func (s *DictService) CreateDetail(ctx context.Context, typeID int64, p CreateDictDetailParams) (*model.DictDetail, error) {
	ctx, span := s.tracer().Start(ctx, "DictService.CreateDetail")
	defer span.End()
	t, err := s.findType(ctx, typeID)
	if err != nil {
		return nil, err
	}
	d := &model.DictDetail{
		Label: p.Label, Value: p.Value, Disabled: p.Disabled, IsDefault: p.IsDefault,
		Order: p.Order, Remark: p.Remark, DictTypeID: typeID,
	}
	if err := s.Dicts.CreateDetail(ctx, d); err != nil {
		return nil, err
	}
	s.invalidate(ctx, t.Tp)
	return d, nil
}

// UpdateDictDetailParams 所属类型创建后不可变，故不提供 dict_type_id
type UpdateDictDetailParams struct {
	Label     *string `json:"label" binding:"omitempty,max=50"`
	Value     *string `json:"value" binding:"omitempty,max=50"`
	Disabled  *bool   `json:"disabled"`
	IsDefault *bool   `json:"is_default"`
	Order     *int    `json:"order"`
	Remark    *string `json:"remark" binding:"omitempty,max=255"`
}

func (s *DictService) UpdateDetail(ctx context.Context, id int64, p UpdateDictDetailParams) error {
	ctx, span := s.tracer().Start(ctx, "DictService.UpdateDetail")
	defer span.End()
	d, err := s.findDetail(ctx, id)
	if err != nil {
		return err
	}
	cols := make(map[string]interface{})
	if p.Label != nil {
		cols["label"] = *p.Label
	}
	if p.Value != nil {
		cols["value"] = *p.Value
	}
	if p.Disabled != nil {
		cols["disabled"] = *p.Disabled
	}
	if p.IsDefault != nil {
		cols["is_default"] = *p.IsDefault
	}
	if p.Order != nil {
		cols["sort"] = *p.Order
	}
	if p.Remark != nil {
		cols["remark"] = *p.Remark
	}
	if err := s.Dicts.UpdateDetail(ctx, id, cols); err != nil {
		return err
	}
	s.invalidateType(ctx, d.DictTypeID)
	return nil
}

func (s *DictService) DeleteDetail(ctx context.Context, id int64) error {
	ctx, span := s.tracer().Start(ctx, "DictService.DeleteDetail")
	defer span.End()
	d, err := s.findDetail(ctx, id)
	if err != nil {
		return err
	}
	if err := s.Dicts.DeleteDetail(ctx, id); err != nil {
		return err
	}
	s.invalidateType(ctx, d.DictTypeID)
	return nil
}

func (s *DictService) findDetail(ctx context.Context, id int64) (*model.DictDetail, error) {
	d, err := s.Dicts.FindDetail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errs.NotFound("dict detail %d not found", id)
	}
	return d, nil
}

func (s *DictService) invalidateType(ctx context.Context, typeID int64) {
	t, err := s.Dicts.FindType(ctx, typeID)
	if err != nil || t == nil {
		return
	}
	s.invalidate(ctx, t.Tp)
}

func (s *DictService) invalidate(ctx context.Context, tp string) {
	if err := s.cache.del(ctx, dictKeyPrefix+tp); err != nil {
		s.Log.WithContext(ctx).Warn("dict_invalidate_failed", zap.String("tp", tp), zap.Error(err))
	}
}
