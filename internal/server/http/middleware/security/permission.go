package security

import (
	"context"

	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

type PermissionChecker interface {
	Check(ctx context.Context, uid int64, required ...string) error
}

// RequirePerm 任一权限满足即放行；perms 为空只要求已登录
func RequirePerm(p PermissionChecker, perms ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := UserID(c)
		if uid <= 0 {
			response.FromError(c, errs.Unauthorized("unauthorized"))
			c.Abort()
			return
		}
		if err := p.Check(c.Request.Context(), uid, perms...); err != nil {
			if errs.KindOf(err) == errs.KindForbidden {
				metrics.PermissionDenied.WithLabelValues(c.FullPath()).Inc()
			}
			response.FromError(c, err)
			c.Abort()
			return
		}
		c.Next()
	}
}
