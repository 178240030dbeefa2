package admin

import (
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type RoleHandler struct{ d Dependencies }

func NewRoleHandler(d Dependencies) *RoleHandler { return &RoleHandler{d: d} }

func (h *RoleHandler) List(c *gin.Context) {
	var p service.ListRolesParams
	if err := bindQuery(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	res, err := h.d.Role.List(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *RoleHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	r, err := h.d.Role.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, r)
}

func (h *RoleHandler) Create(c *gin.Context) {
	var p service.CreateRoleParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	r, err := h.d.Role.Create(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": r.ID})
}

func (h *RoleHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	var p service.UpdateRoleParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Role.Update(c.Request.Context(), id, p); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *RoleHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Role.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
