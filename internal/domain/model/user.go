package model

import "time"

type User struct {
	Model
	Telephone       string       `gorm:"size:11;not null;uniqueIndex:uk_user_telephone" json:"telephone"`
	Password        string       `gorm:"size:255" json:"-"`
	Name            string       `gorm:"size:50" json:"name"`
	Nickname        string       `gorm:"size:50" json:"nickname"`
	Gender          string       `gorm:"size:8" json:"gender"`
	Avatar          string       `gorm:"size:500" json:"avatar"`
	Disabled        bool         `json:"disabled"`
	IsStaff         bool         `json:"is_staff"`
	IsResetPassword bool         `json:"is_reset_password"`
	LastIP          string       `gorm:"size:64" json:"last_ip"`
	LastLoginAt     *time.Time   `json:"last_login_at"`
	Roles           []Role       `gorm:"many2many:user_roles" json:"-"`
	Departments     []Department `gorm:"many2many:user_departments" json:"-"`
}

func (User) TableName() string { return "sys_users" }

// IsAdmin 任一角色为超级角色即为管理员；需预加载 Roles
func (u User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r.IsAdmin {
			return true
		}
	}
	return false
}

type UserRole struct {
	UserID int64 `gorm:"primaryKey"`
	RoleID int64 `gorm:"primaryKey"`
}

func (UserRole) TableName() string { return "user_roles" }

type UserDepartment struct {
	UserID       int64 `gorm:"primaryKey"`
	DepartmentID int64 `gorm:"primaryKey"`
}

func (UserDepartment) TableName() string { return "user_departments" }
