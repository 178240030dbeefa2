// Package retcode 响应体 code 字段取值，前端按负值分支处理
package retcode

const (
	SUCCESS              = 1
	INVALID              = -1
	LOGIN_ERROR          = -7
	NOT_EXISTS           = -8
	DATA_EXISTS          = -13
	AUTH_ERROR           = -14
	RECORD_NOT_FOUND     = -19
	PARAM_INVALID        = -995
	ACCESS_TOKEN_TIMEOUT = -996
	EXCEPTION            = -999
)

var texts = map[int]string{
	SUCCESS:              "success",
	INVALID:              "非法操作",
	LOGIN_ERROR:          "登录失败",
	NOT_EXISTS:           "不存在",
	DATA_EXISTS:          "数据已经存在",
	AUTH_ERROR:           "权限认证失败",
	RECORD_NOT_FOUND:     "记录未找到",
	PARAM_INVALID:        "参数非法",
	ACCESS_TOKEN_TIMEOUT: "身份令牌过期",
	EXCEPTION:            "系统异常",
}

// Text 未登记的 code 返回空串
func Text(code int) string { return texts[code] }
