package admin

import (
	"go-rbacadmin/internal/server/http/middleware/security"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct{ d Dependencies }

func NewUserHandler(d Dependencies) *UserHandler { return &UserHandler{d: d} }

func (h *UserHandler) List(c *gin.Context) {
	var p service.ListUsersParams
	if err := bindQuery(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	res, err := h.d.User.List(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *UserHandler) Create(c *gin.Context) {
	var p service.CreateUserParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	u, err := h.d.User.Create(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": u.ID})
}

func (h *UserHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	var p service.UpdateUserParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.User.Update(c.Request.Context(), id, p); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.User.Delete(c.Request.Context(), security.UserID(c), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
