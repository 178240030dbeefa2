package admin

import (
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/service"
)

// Dependencies admin handler 共用的 service 集合
type Dependencies struct {
	Auth   *service.AuthService
	User   *service.UserService
	Role   *service.RoleService
	Menu   *service.MenuService
	Dept   *service.DepartmentService
	Dict   *service.DictService
	Perm   *service.PermissionService
	Cache  *cache.LayeredCache
	Logger *logging.Logger
}
