package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http/httptest"
	"testing"

	"go-rbacadmin/internal/pkg/errs"
	"go-rbacadmin/internal/util/retcode"

	"github.com/gin-gonic/gin"
	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"not found", errs.NotFound("menu id=%d", 3), retcode.RECORD_NOT_FOUND},
		{"conflict", errs.Conflict("path", "path exists"), retcode.DATA_EXISTS},
		{"forbidden wrapped", fmt.Errorf("delete: %w", errs.ErrForbidden), retcode.AUTH_ERROR},
		{"invalid", errs.ErrInvalidArgument, retcode.PARAM_INVALID},
		{"unauthorized", errs.ErrUnauthorized, retcode.LOGIN_ERROR},
		{"expired", &errs.Error{Kind: errs.KindUnauthorized, Msg: "token", Err: jwtlib.ErrTokenExpired}, retcode.ACCESS_TOKEN_TIMEOUT},
		{"internal", errors.New("boom"), retcode.EXCEPTION},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			code, _ := Classify(tc.err)
			assert.Equal(t, tc.code, code)
		})
	}
}

func serve(h gin.HandlerFunc) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	h(c)
	return w, c
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var m map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	return m
}

func TestFromErrorHidesInternalDetail(t *testing.T) {
	w, c := serve(func(c *gin.Context) { FromError(c, errors.New("pq: connection refused")) })
	m := decode(t, w)
	assert.EqualValues(t, retcode.EXCEPTION, m["code"])
	assert.Equal(t, retcode.Text(retcode.EXCEPTION), m["msg"])
	assert.Len(t, c.Errors, 1)
}

func TestFromErrorCarriesField(t *testing.T) {
	w, c := serve(func(c *gin.Context) { FromError(c, errs.Conflict("role_key", "role_key exists")) })
	m := decode(t, w)
	assert.EqualValues(t, retcode.DATA_EXISTS, m["code"])
	assert.Equal(t, map[string]interface{}{"field": "role_key"}, m["data"])
	assert.Empty(t, c.Errors)
}

func TestErrorNormalizesCode(t *testing.T) {
	w, _ := serve(func(c *gin.Context) { Error(c, 0, "") })
	m := decode(t, w)
	assert.EqualValues(t, retcode.INVALID, m["code"])
	assert.Equal(t, retcode.Text(retcode.INVALID), m["msg"])
}
