package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
	"github.com/spf13/viper"
)

type Config struct {
	HTTP struct {
		Addr string `mapstructure:"addr"`
	} `mapstructure:"http"`
	Postgres struct {
		DSN         string `mapstructure:"dsn"`
		MaxOpen     int    `mapstructure:"max_open"`
		MaxIdle     int    `mapstructure:"max_idle"`
		AutoMigrate bool   `mapstructure:"auto_migrate"`
		LogLevel    string `mapstructure:"log_level"` // silent|error|warn|info
	} `mapstructure:"postgres"`
	Redis struct {
		Addr           string `mapstructure:"addr"`
		Password       string `mapstructure:"password"`
		DB             int    `mapstructure:"db"`
		JTIPrefix      string `mapstructure:"jti_prefix"`
		DialTimeoutMS  int    `mapstructure:"dial_timeout_ms"`
		ReadTimeoutMS  int    `mapstructure:"read_timeout_ms"`
		WriteTimeoutMS int    `mapstructure:"write_timeout_ms"`
		PingTimeoutMS  int    `mapstructure:"ping_timeout_ms"`
		HeartbeatSec   int    `mapstructure:"heartbeat_sec"`
	} `mapstructure:"redis"`
	Kafka struct {
		Brokers    []string `mapstructure:"brokers"`
		OpLogTopic string   `mapstructure:"op_log_topic"`
		GroupID    string   `mapstructure:"group_id"`
	} `mapstructure:"kafka"`
	Etcd struct {
		Endpoints []string `mapstructure:"endpoints"`
		TTL       int      `mapstructure:"ttl"`
	} `mapstructure:"etcd"`
	JWT struct {
		Secret        string `mapstructure:"secret"`
		ExpireSeconds int    `mapstructure:"expire_seconds"`
		Issuer        string `mapstructure:"issuer"`
	} `mapstructure:"jwt"`
	Log struct {
		Level      string `mapstructure:"level"`
		Format     string `mapstructure:"format"`
		File       string `mapstructure:"file"` // 为空只输出到 stdout
		MaxSizeMB  int    `mapstructure:"max_size_mb"`
		MaxBackups int    `mapstructure:"max_backups"`
		MaxAgeDays int    `mapstructure:"max_age_days"`
	} `mapstructure:"log"`
	AppMeta struct {
		Name    string `mapstructure:"name"`
		Version string `mapstructure:"version"`
		Env     string `mapstructure:"env"`
	} `mapstructure:"app_meta"`
	OTel struct {
		Endpoint     string  `mapstructure:"endpoint"` // OTLP gRPC endpoint
		Insecure     bool    `mapstructure:"insecure"`
		SamplerRatio float64 `mapstructure:"sampler_ratio"`
		Enable       bool    `mapstructure:"enable"`
	} `mapstructure:"otel"`
	Account struct {
		// "0" 表示使用手机号后 6 位
		DefaultPassword string `mapstructure:"default_password"`
		// 后台平台只允许员工登录
		PlatformStaffOnly bool `mapstructure:"platform_staff_only"`
	} `mapstructure:"account"`
	Cache struct {
		PermTTLSec int `mapstructure:"perm_ttl_sec"`
		TreeTTLSec int `mapstructure:"tree_ttl_sec"`
	} `mapstructure:"cache"`
	Schedule struct {
		Enable bool   `mapstructure:"enable"`
		Spec   string `mapstructure:"spec"`
	} `mapstructure:"schedule"`
	Seed struct {
		SuperTelephone string `mapstructure:"super_telephone"`
		SuperPassword  string `mapstructure:"super_password"`
	} `mapstructure:"seed"`
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("RBAC")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}
	// 默认值
	v.SetDefault("app_meta.name", "rbacadmin")
	v.SetDefault("app_meta.version", "v1")
	v.SetDefault("app_meta.env", "dev")
	v.SetDefault("postgres.log_level", "warn")
	v.SetDefault("redis.jti_prefix", "jwt:jti:")
	v.SetDefault("redis.dial_timeout_ms", 500)
	v.SetDefault("redis.read_timeout_ms", 300)
	v.SetDefault("redis.write_timeout_ms", 300)
	v.SetDefault("redis.ping_timeout_ms", 300)
	v.SetDefault("redis.heartbeat_sec", 10)
	v.SetDefault("kafka.op_log_topic", "rbacadmin.oplog")
	v.SetDefault("kafka.group_id", "rbacadmin-oplog")
	v.SetDefault("etcd.ttl", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.max_size_mb", 100)
	v.SetDefault("log.max_backups", 7)
	v.SetDefault("log.max_age_days", 30)
	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.sampler_ratio", 1.0)
	v.SetDefault("otel.insecure", true)
	v.SetDefault("account.default_password", "123456")
	v.SetDefault("account.platform_staff_only", true)
	v.SetDefault("cache.perm_ttl_sec", 300)
	v.SetDefault("cache.tree_ttl_sec", 600)
	v.SetDefault("schedule.spec", "@every 5m")
	v.SetDefault("seed.super_telephone", "13800000000")
	v.SetDefault("seed.super_password", "Admin@123")
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate 逻辑校验
func (c *Config) Validate() error {
	if c.HTTP.Addr == "" {
		return errors.New("http.addr required")
	}
	if len(c.JWT.Secret) < 16 {
		return fmt.Errorf("jwt.secret too short (>=16)")
	}
	if c.JWT.ExpireSeconds <= 0 {
		return fmt.Errorf("jwt.expire_seconds must >0")
	}
	if c.OTel.Enable {
		if c.OTel.Endpoint == "" {
			return errors.New("otel.endpoint required when otel.enable=true")
		}
		if c.OTel.SamplerRatio < 0 || c.OTel.SamplerRatio > 1 {
			return errors.New("otel.sampler_ratio must be in [0,1]")
		}
	}
	if c.Schedule.Enable {
		if _, err := cron.ParseStandard(c.Schedule.Spec); err != nil {
			return fmt.Errorf("schedule.spec invalid: %w", err)
		}
	}
	return nil
}
