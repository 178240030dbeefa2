// Package testutil 测试专用：内存 sqlite 与常用夹具
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"go-rbacadmin/internal/domain/model"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDB 每个测试独立的内存库，单连接保证事务内外看到同一份数据
func NewDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent), TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(model.All()...))
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func Ptr[T any](v T) *T { return &v }

// MustMenu 插入菜单并返回
func MustMenu(t testing.TB, db *gorm.DB, m model.Menu) model.Menu {
	t.Helper()
	require.NoError(t, db.Create(&m).Error)
	return m
}

func MustDepartment(t testing.TB, db *gorm.DB, d model.Department) model.Department {
	t.Helper()
	require.NoError(t, db.Create(&d).Error)
	return d
}

func MustRole(t testing.TB, db *gorm.DB, r model.Role) model.Role {
	t.Helper()
	require.NoError(t, db.Create(&r).Error)
	return r
}

func MustUser(t testing.TB, db *gorm.DB, u model.User) model.User {
	t.Helper()
	require.NoError(t, db.Create(&u).Error)
	return u
}

// Link 直接写关联表
func Link(t testing.TB, db *gorm.DB, rows interface{}) {
	t.Helper()
	require.NoError(t, db.Create(rows).Error)
}
