package admin

import (
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type DepartmentHandler struct{ d Dependencies }

func NewDepartmentHandler(d Dependencies) *DepartmentHandler { return &DepartmentHandler{d: d} }

func (h *DepartmentHandler) Tree(c *gin.Context) {
	mode, err := treeMode(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	out, err := h.d.Dept.Tree(c.Request.Context(), mode)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, out)
}

func (h *DepartmentHandler) Create(c *gin.Context) {
	var p service.CreateDepartmentParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	d, err := h.d.Dept.Create(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": d.ID})
}

func (h *DepartmentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	var p service.UpdateDepartmentParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Dept.Update(c.Request.Context(), id, p); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

type idsBody struct {
	IDs []int64 `json:"ids" binding:"required,min=1"`
}

// Delete 批量删除，body: {"ids": [...]}
func (h *DepartmentHandler) Delete(c *gin.Context) {
	var body idsBody
	if err := bindJSON(c, &body); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Dept.Delete(c.Request.Context(), body.IDs); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
