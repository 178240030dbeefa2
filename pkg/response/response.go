package response

import (
	"errors"

	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/util/retcode"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
)

type Body struct {
	Code int         `json:"code"`
	Msg  string      `json:"msg"`
	Data interface{} `json:"data"`
}

// FieldData 冲突/非法参数时返回出错字段，便于前端定位
type FieldData struct {
	Field string `json:"field"`
}

func JSON(c *gin.Context, code int, msg string, data interface{}) {
	c.JSON(200, Body{Code: code, Msg: msg, Data: data})
}

func Success(c *gin.Context, data interface{}) {
	JSON(c, retcode.SUCCESS, retcode.Text(retcode.SUCCESS), data)
}

// Error code 传入业务码(负值)，>=0 自动转为 retcode.INVALID；msg 为空时取默认文案
func Error(c *gin.Context, code int, msg string) {
	if code >= 0 {
		code = retcode.INVALID
	}
	if msg == "" {
		msg = retcode.Text(code)
	}
	JSON(c, code, msg, nil)
}

// FromError 按 errs.Kind 映射业务码；内部错误只记录到 c.Errors，不外泄细节
func FromError(c *gin.Context, err error) {
	code, msg := Classify(err)
	if code == retcode.EXCEPTION {
		_ = c.Error(err)
	}
	var data interface{}
	if f := errs.FieldOf(err); f != "" {
		data = FieldData{Field: f}
	}
	JSON(c, code, msg, data)
}

// Classify 返回业务码与对外消息
func Classify(err error) (int, string) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		return retcode.RECORD_NOT_FOUND, err.Error()
	case errs.KindConflict:
		return retcode.DATA_EXISTS, err.Error()
	case errs.KindForbidden:
		return retcode.AUTH_ERROR, err.Error()
	case errs.KindInvalidArgument:
		return retcode.PARAM_INVALID, err.Error()
	case errs.KindUnauthorized:
		if errors.Is(err, jwtlib.ErrTokenExpired) {
			return retcode.ACCESS_TOKEN_TIMEOUT, "token expired"
		}
		return retcode.LOGIN_ERROR, err.Error()
	}
	return retcode.EXCEPTION, retcode.Text(retcode.EXCEPTION)
}
