package handler

import (
	adminh "go-rbacadmin/internal/server/http/handler/admin"
)

// HandlerSet 聚合 admin 子包的 handler，供 router 使用
type HandlerSet struct {
	Auth  *adminh.AuthHandler
	User  *adminh.UserHandler
	Role  *adminh.RoleHandler
	Menu  *adminh.MenuHandler
	Dept  *adminh.DepartmentHandler
	Dict  *adminh.DictHandler
	Cache *adminh.CacheHandler
}

func NewHandlerSet(ad adminh.Dependencies) *HandlerSet {
	adminh.RegisterValidatorTags()
	return &HandlerSet{
		Auth:  adminh.NewAuthHandler(ad),
		User:  adminh.NewUserHandler(ad),
		Role:  adminh.NewRoleHandler(ad),
		Menu:  adminh.NewMenuHandler(ad),
		Dept:  adminh.NewDepartmentHandler(ad),
		Dict:  adminh.NewDictHandler(ad),
		Cache: adminh.NewCacheHandler(ad),
	}
}
