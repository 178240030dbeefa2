package admin

import (
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/service"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type DictHandler struct{ d Dependencies }

func NewDictHandler(d Dependencies) *DictHandler { return &DictHandler{d: d} }

func (h *DictHandler) ListTypes(c *gin.Context) {
	var p service.ListDictTypesParams
	if err := bindQuery(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	res, err := h.d.Dict.ListTypes(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, res)
}

func (h *DictHandler) CreateType(c *gin.Context) {
	var p service.CreateDictTypeParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	t, err := h.d.Dict.CreateType(c.Request.Context(), p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": t.ID})
}

func (h *DictHandler) UpdateType(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	var p service.UpdateDictTypeParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Dict.UpdateType(c.Request.Context(), id, p); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *DictHandler) DeleteType(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Dict.DeleteType(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// Details 按字典类型 id 取明细
func (h *DictHandler) Details(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	list, err := h.d.Dict.Details(c.Request.Context(), id)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

func (h *DictHandler) CreateDetail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	var p service.CreateDictDetailParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	d, err := h.d.Dict.CreateDetail(c.Request.Context(), id, p)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, gin.H{"id": d.ID})
}

func (h *DictHandler) UpdateDetail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	var p service.UpdateDictDetailParams
	if err := bindJSON(c, &p); err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Dict.UpdateDetail(c.Request.Context(), id, p); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

func (h *DictHandler) DeleteDetail(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.FromError(c, err)
		return
	}
	if err := h.d.Dict.DeleteDetail(c.Request.Context(), id); err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, nil)
}

// DetailsByTp ?tp=gender
func (h *DictHandler) DetailsByTp(c *gin.Context) {
	tp := c.Query("tp")
	if tp == "" {
		response.FromError(c, errs.InvalidArgument("tp", "tp required"))
		return
	}
	list, err := h.d.Dict.DetailsByTp(c.Request.Context(), tp)
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, list)
}

// Default ?tp=..&label=..，label 为空取默认值
func (h *DictHandler) Default(c *gin.Context) {
	tp := c.Query("tp")
	if tp == "" {
		response.FromError(c, errs.InvalidArgument("tp", "tp required"))
		return
	}
	d, err := h.d.Dict.Lookup(c.Request.Context(), tp, c.Query("label"))
	if err != nil {
		response.FromError(c, err)
		return
	}
	response.Success(c, d)
}
