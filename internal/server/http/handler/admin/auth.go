package admin

import (
	"go-rbacadmin/internal/server/http/middleware/security"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct{ d Dependencies }

func NewAuthHandler(d Dependencies) *AuthHandler { return &AuthHandler{d: d} }

func (h *AuthHandler) Login(c *gin.Context) {
	var p service.LoginParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	res, err := h.d.Auth.Login(c.Request.Context(), p, c.ClientIP())
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *AuthHandler) Register(c *gin.Context) {
	var p service.RegisterParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	info, err := h.d.Auth.Register(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, info)
}

func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.d.Auth.Logout(c.Request.Context(), security.JTI(c)); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// ResetPassword 修改当前账号密码
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	var p service.ResetPasswordParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.User.ResetOwnPassword(c.Request.Context(), security.UserID(c), p); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *AuthHandler) Info(c *gin.Context) {
	info, err := h.d.User.Info(c.Request.Context(), security.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, info)
}

// Menus 当前用户的前端路由树
func (h *AuthHandler) Menus(c *gin.Context) {
	routers, err := h.d.Perm.UserMenuTree(c.Request.Context(), security.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, routers)
}

func (h *AuthHandler) Perms(c *gin.Context) {
	set, err := h.d.Perm.Permissions(c.Request.Context(), security.UserID(c))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"is_admin": set.IsAdmin(), "perms": set.Strings()})
}
