package postgres

import (
	"log"
	"os"
	"time"

	"go-rbacadmin/internal/domain/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Config struct {
	DSN         string
	MaxOpen     int
	MaxIdle     int
	AutoMigrate bool
	LogLevel    string
}

func New(cfg Config) (*gorm.DB, error) {
	gormCfg := &gorm.Config{Logger: NewGormLogger(cfg.LogLevel), TranslateError: true}
	db, err := gorm.Open(postgres.Open(cfg.DSN), gormCfg)
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpen > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpen)
	}
	if cfg.MaxIdle > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdle)
	}
	sqlDB.SetConnMaxLifetime(2 * time.Hour)
	return db, nil
}

// NewGormLogger 慢查询阈值 200ms
func NewGormLogger(level string) logger.Interface {
	lv := logger.Warn
	switch level {
	case "silent":
		lv = logger.Silent
	case "error":
		lv = logger.Error
	case "info":
		lv = logger.Info
	}
	return logger.New(log.New(os.Stdout, "\r\n", log.LstdFlags), logger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  lv,
		IgnoreRecordNotFoundError: true,
	})
}

// AutoMigrateModels 迁移全部业务表
func AutoMigrateModels(db *gorm.DB) error {
	return db.AutoMigrate(model.All()...)
}

func Close(db *gorm.DB) {
	if db == nil {
		return
	}
	sqlDB, err := db.DB()
	if err == nil {
		_ = sqlDB.Close()
	} else {
		log.Printf("postgres close err: %v", err)
	}
}
