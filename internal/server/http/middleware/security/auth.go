package security

import (
	"context"
	"strings"

	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/security/jwt"
	"go-rbacadmin/pkg/response"

	"github.com/gin-gonic/gin"
)

// gin.Context 键
const (
	CtxUserID = "user_id"
	CtxJTI    = "jti"
)

type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*jwt.Claims, error)
}

// BearerToken 取 Authorization: Bearer <token>
func BearerToken(c *gin.Context) (string, bool) {
	auth := c.GetHeader("Authorization")
	if len(auth) < 7 || !strings.EqualFold(auth[:7], "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(auth[7:])
	return token, token != ""
}

// Auth 校验 token 与会话，通过后写入 user_id / jti
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok {
			response.FromError(c, errs.Unauthorized("missing token"))
			c.Abort()
			return
		}
		claims, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.FromError(c, err)
			c.Abort()
			return
		}
		c.Set(CtxUserID, claims.UserID)
		c.Set(CtxJTI, claims.ID)
		ctx := context.WithValue(c.Request.Context(), logging.UserIDKey, claims.UserID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func UserID(c *gin.Context) int64 { return c.GetInt64(CtxUserID) }

func JTI(c *gin.Context) string { return c.GetString(CtxJTI) }
