package model

// All 需要迁移的全部模型，migrate 命令与测试共用
func All() []interface{} {
	return []interface{}{
		&Menu{}, &Department{}, &Role{}, &User{},
		&RoleMenu{}, &RoleDepartment{}, &UserRole{}, &UserDepartment{},
		&DictType{}, &DictDetail{},
		&OperationLog{},
	}
}
