package model

import "gorm.io/gorm"

// MenuType 目录 / 菜单 / 按钮
type MenuType int8

const (
	MenuTypeDirectory MenuType = 0
	MenuTypeMenu      MenuType = 1
	MenuTypeButton    MenuType = 2
)

// Menu 菜单即权限节点，perms 为空表示仅用于导航
type Menu struct {
	Model
	Title     string         `gorm:"size:50;not null" json:"title"`
	Name      string         `gorm:"size:50" json:"name"`
	Icon      string         `gorm:"size:50" json:"icon"`
	Path      string         `gorm:"size:100;uniqueIndex:uk_menu_path,where:deleted_at IS NULL" json:"path"`
	Component string         `gorm:"size:255" json:"component"`
	Redirect  string         `gorm:"size:255" json:"redirect"`
	Disabled  bool           `json:"disabled"`
	Hidden    bool           `json:"hidden"`
	MenuType  MenuType       `gorm:"column:menu_type" json:"menu_type"`
	Perms     *string        `gorm:"size:100" json:"perms"`
	Order     int            `gorm:"column:sort" json:"order"`
	ParentID  *int64         `gorm:"index" json:"parent_id"`
	NoCache   bool           `json:"no_cache"`
	Affix     bool           `json:"affix"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Menu) TableName() string { return "sys_menus" }

// Permission 返回非空的权限标识
func (m Menu) Permission() (string, bool) {
	if m.Perms == nil || *m.Perms == "" {
		return "", false
	}
	return *m.Perms, true
}

func (m Menu) NodeID() int64 { return m.ID }

func (m Menu) ParentNodeID() int64 {
	if m.ParentID == nil {
		return 0
	}
	return *m.ParentID
}

func (m Menu) SortOrder() int { return m.Order }
