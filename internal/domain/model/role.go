package model

// Role 角色；IsAdmin 为超级角色标记，拥有全部权限
type Role struct {
	Model
	Name        string       `gorm:"size:50;not null" json:"name"`
	RoleKey     string       `gorm:"size:50;uniqueIndex:uk_role_key" json:"role_key"`
	Disabled    bool         `json:"disabled"`
	DataRange   int          `json:"data_range"`
	Order       int          `gorm:"column:sort" json:"order"`
	Desc        string       `gorm:"column:description;size:255" json:"desc"`
	IsAdmin     bool         `json:"is_admin"`
	Menus       []Menu       `gorm:"many2many:role_menus" json:"-"`
	Departments []Department `gorm:"many2many:role_departments" json:"-"`
}

func (Role) TableName() string { return "sys_roles" }

// 关联表，字段名与 many2many 默认外键一致

type RoleMenu struct {
	RoleID int64 `gorm:"primaryKey"`
	MenuID int64 `gorm:"primaryKey"`
}

func (RoleMenu) TableName() string { return "role_menus" }

type RoleDepartment struct {
	RoleID       int64 `gorm:"primaryKey"`
	DepartmentID int64 `gorm:"primaryKey"`
}

func (RoleDepartment) TableName() string { return "role_departments" }
