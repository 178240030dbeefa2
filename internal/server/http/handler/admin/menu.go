package admin

import (
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type MenuHandler struct{ d Dependencies }

func NewMenuHandler(d Dependencies) *MenuHandler { return &MenuHandler{d: d} }

// Tree ?mode=1|2|3
func (h *MenuHandler) Tree(c *gin.Context) {
	mode, err := treeMode(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	out, err := h.d.Menu.Tree(c.Request.Context(), mode)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, out)
}

func (h *MenuHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	m, err := h.d.Menu.Get(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, m)
}

func (h *MenuHandler) Create(c *gin.Context) {
	var p service.CreateMenuParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	m, err := h.d.Menu.Create(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": m.ID})
}

func (h *MenuHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	var p service.UpdateMenuParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Menu.Update(c.Request.Context(), id, p); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *MenuHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Menu.Delete(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}
