package model

import "gorm.io/gorm"

type Department struct {
	Model
	Name      string         `gorm:"size:50;not null" json:"name"`
	DeptKey   string         `gorm:"size:50;index" json:"dept_key"`
	Disabled  bool           `json:"disabled"`
	Order     int            `gorm:"column:sort" json:"order"`
	Desc      string         `gorm:"column:description;size:255" json:"desc"`
	Owner     string         `gorm:"size:50" json:"owner"`
	Phone     string         `gorm:"size:20" json:"phone"`
	Email     string         `gorm:"size:100" json:"email"`
	ParentID  *int64         `gorm:"index" json:"parent_id"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Department) TableName() string { return "sys_departments" }

func (d Department) NodeID() int64 { return d.ID }

func (d Department) ParentNodeID() int64 {
	if d.ParentID == nil {
		return 0
	}
	return *d.ParentID
}

func (d Department) SortOrder() int { return d.Order }
