package model

// DictType 字典类型，tp 为前端引用的唯一 key
type DictType struct {
	Model
	Name     string       `gorm:"size:50;not null" json:"name"`
	Tp       string       `gorm:"size:50;not null;uniqueIndex:uk_dict_tp" json:"tp"`
	Disabled bool         `json:"disabled"`
	Remark   string       `gorm:"size:255" json:"remark"`
	Details  []DictDetail `gorm:"foreignKey:DictTypeID" json:"-"`
}

func (DictType) TableName() string { return "sys_dict_types" }

type DictDetail struct {
	Model
	Label      string `gorm:"size:50;not null" json:"label"`
	Value      string `gorm:"size:50;not null" json:"value"`
	Disabled   bool   `json:"disabled"`
	IsDefault  bool   `json:"is_default"`
	Order      int    `gorm:"column:sort" json:"order"`
	Remark     string `gorm:"size:255" json:"remark"`
	DictTypeID int64  `gorm:"not null;index" json:"dict_type_id"`
}

func (DictDetail) TableName() string { return "sys_dict_details" }
