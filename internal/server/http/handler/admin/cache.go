package admin

import (
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type CacheHandler struct{ d Dependencies }

func NewCacheHandler(d Dependencies) *CacheHandler { return &CacheHandler{d: d} }

func (h *CacheHandler) Metrics(c *gin.Context) {
	if h.d.Cache == nil {
		response.Success(c, gin.H{})
		return
	}
	response.Success(c, h.d.Cache.SnapshotMetrics())
}

func (h *CacheHandler) Reset(c *gin.Context) {
	if h.d.Cache != nil {
		h.d.Cache.ResetMetrics()
	}
	response.Success(c, nil)
}
