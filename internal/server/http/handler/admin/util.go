package admin

import (
	"errors"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"go-rbacadmin/internal/pkg/errs"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidatorTags 校验错误里的字段名改用 json/form tag
func RegisterValidatorTags() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "" {
				name = strings.SplitN(f.Tag.Get("form"), ",", 2)[0]
			}
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindErr 把 binding 错误映射为 InvalidArgument，带上首个出错字段
func bindErr(err error) error {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return errs.InvalidArgument(fe.Field(), "field %s failed on %s", fe.Field(), fe.Tag())
	}
	return errs.InvalidArgument("", "invalid request: %v", err)
}

func bindJSON(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		return bindErr(err)
	}
	return nil
}

func bindQuery(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindQuery(obj); err != nil {
		return bindErr(err)
	}
	return nil
}

func pathID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errs.InvalidArgument("id", "invalid id %q", c.Param("id"))
	}
	return id, nil
}

// treeMode 缺省为 1
func treeMode(c *gin.Context) (int, error) {
	v := c.Query("mode")
	if v == "" {
		return 1, nil
	}
	m, err := strconv.Atoi(v)
	if err != nil {
		return 0, errs.InvalidArgument("mode", "invalid mode %q", v)
	}
	return m, nil
}
