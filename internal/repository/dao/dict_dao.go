package dao

import (
	"context"
	"errors"

	"go-rbacadmin/internal/domain/model"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

type DictDAO struct{ DB *gorm.DB }

func NewDictDAO(db *gorm.DB) *DictDAO { return &DictDAO{DB: db} }

func (d *DictDAO) WithTx(tx *gorm.DB) *DictDAO {
	if tx == nil {
		return d
	}
	return &DictDAO{DB: tx}
}

func (d *DictDAO) tracer() trace.Tracer { return otel.Tracer("dao.dict") }

func orderedDetails(db *gorm.DB) *gorm.DB { return db.Order("sort ASC, id ASC") }

// ListTypes 附带按 order 排序的明细
func (d *DictDAO) ListTypes(ctx context.Context, name string, page Page) ([]model.DictType, int64, error) {
	ctx, span := d.tracer().Start(ctx, "DictDAO.ListTypes")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.DictType{})
	if name != "" {
		q = q.Where("name LIKE ?", "%"+name+"%")
	}
	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, fail(span, err, "count dict types")
	}
	if page.Limit > 0 {
		q = q.Offset(page.Offset).Limit(page.Limit)
	}
	var list []model.DictType
	if err := q.Preload("Details", orderedDetails).Order("id ASC").Find(&list).Error; err != nil {
		return nil, 0, fail(span, err, "list dict types")
	}
	return list, total, nil
}

func (d *DictDAO) FindType(ctx context.Context, id int64) (*model.DictType, error) {
	ctx, span := d.tracer().Start(ctx, "DictDAO.FindType")
	defer span.End()
	var t model.DictType
	if err := d.DB.WithContext(ctx).First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find dict type id=%d", id)
	}
	return &t, nil
}

func (d *DictDAO) FindTypeByTp(ctx context.Context, tp string) (*model.DictType, error) {
	ctx, span := d.tracer().Start(ctx, "DictDAO.FindTypeByTp")
	defer span.End()
	var t model.DictType
	if err := d.DB.WithContext(ctx).Where("tp = ?", tp).Preload("Details", orderedDetails).First(&t).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find dict type tp=%q", tp)
	}
	return &t, nil
}

func (d *DictDAO) TpTaken(ctx context.Context, tp string, excludeID int64) (bool, error) {
	ctx, span := d.tracer().Start(ctx, "DictDAO.TpTaken")
	defer span.End()
	q := d.DB.WithContext(ctx).Model(&model.DictType{}).Where("tp = ?", tp)
	if excludeID > 0 {
		q = q.Where("id <> ?", excludeID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, fail(span, err, "check dict tp %q", tp)
	}
	return n > 0, nil
}

func (d *DictDAO) CreateType(ctx context.Context, t *model.DictType) error {
	ctx, span := d.tracer().Start(ctx, "DictDAO.CreateType")
	defer span.End()
	if err := d.DB.WithContext(ctx).Omit("Details").Create(t).Error; err != nil {
		return failUnique(span, err, "tp", "create dict type")
	}
	return nil
}

func (d *DictDAO) UpdateType(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := d.tracer().Start(ctx, "DictDAO.UpdateType")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.DictType{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return failUnique(span, err, "tp", "update dict type id=%d", id)
	}
	return nil
}

// DeleteType 先删明细再删类型，需在事务中调用
func (d *DictDAO) DeleteType(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "DictDAO.DeleteType")
	defer span.End()
	if err := d.DB.WithContext(ctx).Where("dict_type_id = ?", id).Delete(&model.DictDetail{}).Error; err != nil {
		return fail(span, err, "delete dict details type=%d", id)
	}
	if err := d.DB.WithContext(ctx).Delete(&model.DictType{}, id).Error; err != nil {
		return fail(span, err, "delete dict type id=%d", id)
	}
	return nil
}

func (d *DictDAO) ListDetails(ctx context.Context, typeID int64) ([]model.DictDetail, error) {
	ctx, span := d.tracer().Start(ctx, "DictDAO.ListDetails")
	defer span.End()
	var list []model.DictDetail
	if err := orderedDetails(d.DB.WithContext(ctx).Where("dict_type_id = ?", typeID)).Find(&list).Error; err != nil {
		return nil, fail(span, err, "list dict details type=%d", typeID)
	}
	return list, nil
}

func (d *DictDAO) FindDetail(ctx context.Context, id int64) (*model.DictDetail, error) {
	ctx, span := d.tracer().Start(ctx, "DictDAO.FindDetail")
	defer span.End()
	var m model.DictDetail
	if err := d.DB.WithContext(ctx).First(&m, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fail(span, err, "find dict detail id=%d", id)
	}
	return &m, nil
}

func (d *DictDAO) CreateDetail(ctx context.Context, m *model.DictDetail) error {
	ctx, span := d.tracer().Start(ctx, "DictDAO.CreateDetail")
	defer span.End()
	if err := d.DB.WithContext(ctx).Create(m).Error; err != nil {
		return fail(span, err, "create dict detail")
	}
	return nil
}

func (d *DictDAO) UpdateDetail(ctx context.Context, id int64, cols map[string]interface{}) error {
	ctx, span := d.tracer().Start(ctx, "DictDAO.UpdateDetail")
	defer span.End()
	if len(cols) == 0 {
		return nil
	}
	if err := d.DB.WithContext(ctx).Model(&model.DictDetail{}).Where("id = ?", id).Updates(cols).Error; err != nil {
		return fail(span, err, "update dict detail id=%d", id)
	}
	return nil
}

func (d *DictDAO) DeleteDetail(ctx context.Context, id int64) error {
	ctx, span := d.tracer().Start(ctx, "DictDAO.DeleteDetail")
	defer span.End()
	if err := d.DB.WithContext(ctx).Delete(&model.DictDetail{}, id).Error; err != nil {
		return fail(span, err, "delete dict detail id=%d", id)
	}
	return nil
}
