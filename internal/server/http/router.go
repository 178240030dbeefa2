package http

import (
	"context"
	"time"

	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/mq/kafka"
	handlerset "go-rbacadmin/internal/server/http/handler"
	"go-rbacadmin/internal/server/http/middleware"
	obs "go-rbacadmin/internal/server/http/middleware/observability"
	sec "go-rbacadmin/internal/server/http/middleware/security"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/internal/util/retcode"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterDeps 路由装配所需；OpLog 为 nil 时不投递操作日志
type RouterDeps struct {
	Handlers *handlerset.HandlerSet
	Auth     *service.AuthService
	Perm     *service.PermissionService
	Health   *HealthChecker
	OpLog    kafka.Publisher
	Logger   *logging.Logger
}

// NewRouter 仅负责分组与中间件装配，具体业务放在 handler 层
func NewRouter(d RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.CORS(), obs.Trace(), obs.AccessLog(d.Logger), obs.Metrics("/metrics", "/healthz", "/readyz"))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(200, d.Health.Liveness()) })
	r.GET("/readyz", func(c *gin.Context) {
		if c.Query("refresh") == "1" {
			d.Health.Invalidate()
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		res, code := d.Health.Readiness(ctx)
		c.JSON(code, res)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	h := d.Handlers
	perm := func(perms ...string) gin.HandlerFunc { return sec.RequirePerm(d.Perm, perms...) }

	api := r.Group("/api")
	{
		api.POST("/login", h.Auth.Login)
		api.POST("/register", h.Auth.Register)
	}

	sys := api.Group("/admin/system", sec.Auth(d.Auth), obs.OperationLog(d.OpLog, d.Logger))
	{
		// 当前用户，只要求登录
		sys.GET("/user/info", h.Auth.Info)
		sys.GET("/user/menu", h.Auth.Menus)
		sys.GET("/user/perms", h.Auth.Perms)
		sys.POST("/user/logout", h.Auth.Logout)
		sys.POST("/user/reset/password", h.Auth.ResetPassword)

		sys.GET("/user", perm("system.user.index"), h.User.List)
		sys.POST("/user", perm("system.user.create"), h.User.Create)
		sys.PUT("/user/:id", perm("system.user.edit"), h.User.Update)
		sys.DELETE("/user/:id", perm("system.user.delete"), h.User.Delete)

		sys.GET("/role", perm("system.role.list"), h.Role.List)
		sys.GET("/role/:id", perm("system.role.list"), h.Role.Get)
		sys.POST("/role", perm("system.role.create"), h.Role.Create)
		sys.PUT("/role/:id", perm("system.role.put"), h.Role.Update)
		sys.DELETE("/role/:id", perm("system.role.delete"), h.Role.Delete)

		sys.GET("/menu", perm("system.menu.index"), h.Menu.Tree)
		sys.GET("/menu/:id", perm("system.menu.index"), h.Menu.Get)
		sys.POST("/menu", perm("system.menu.create"), h.Menu.Create)
		sys.PUT("/menu/:id", perm("system.menu.put"), h.Menu.Update)
		sys.DELETE("/menu/:id", perm("system.menu.delete"), h.Menu.Delete)

		sys.GET("/department", perm("system.department.index"), h.Dept.Tree)
		sys.POST("/department", perm("system.department.create"), h.Dept.Create)
		sys.PUT("/department/:id", perm("system.department.put"), h.Dept.Update)
		sys.DELETE("/department", perm("system.department.delete"), h.Dept.Delete)

		sys.GET("/dict/list", perm("system.dict.index"), h.Dict.ListTypes)
		sys.POST("/dict/create", perm("system.dict.create"), h.Dict.CreateType)
		sys.PUT("/dict/:id", perm("system.dict.put"), h.Dict.UpdateType)
		sys.DELETE("/dict/:id", perm("system.dict.delete"), h.Dict.DeleteType)
		sys.GET("/dict/detail/:id", perm("system.dict_detail.index"), h.Dict.Details)
		sys.POST("/dict/detail/:id", perm("system.dict_detail.create"), h.Dict.CreateDetail)
		sys.PUT("/dict/detail/item/:id", perm("system.dict_detail.put"), h.Dict.UpdateDetail)
		sys.DELETE("/dict/detail/item/:id", perm("system.dict_detail.delete"), h.Dict.DeleteDetail)
		sys.GET("/dict/details", h.Dict.DetailsByTp)
		sys.GET("/dict/default", h.Dict.Default)

		sys.GET("/cache/metrics", perm("system.cache.index"), h.Cache.Metrics)
		sys.POST("/cache/reset", perm("system.cache.reset"), h.Cache.Reset)
	}

	r.NoRoute(func(c *gin.Context) { response.Error(c, retcode.NOT_EXISTS, "") })
	return r
}
