package boot

import (
	"context"
	"net"
	"time"

	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/discovery/etcd"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/mq/kafka"
	"go-rbacadmin/internal/repository/postgres"
	redisrepo "go-rbacadmin/internal/repository/redis"
	"go-rbacadmin/internal/security/jwt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	clientv3 "go.etcd.io/etcd/client/v3"
	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config *config.Config
	Logger *logging.Logger
	DB     *gorm.DB
	Redis  *redisrepo.Client
	Kafka  *kafka.Producer
	Etcd   *etcd.Client
	JWT    *jwt.Manager
	HTTP   *gin.Engine

	instance   etcd.Instance
	leaseID    clientv3.LeaseID
	tracerProv *trace.TracerProvider
	stopCh     chan struct{} // 心跳协程关闭
}

// Provider constructors for wire

func NewLogger(c *config.Config) (*logging.Logger, error) {
	return logging.New(logging.Options{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	})
}

func NewPostgres(c *config.Config) (*gorm.DB, error) {
	return postgres.New(postgres.Config{
		DSN:         c.Postgres.DSN,
		MaxOpen:     c.Postgres.MaxOpen,
		MaxIdle:     c.Postgres.MaxIdle,
		AutoMigrate: c.Postgres.AutoMigrate,
		LogLevel:    c.Postgres.LogLevel,
	})
}

func NewRedis(c *config.Config) *redisrepo.Client {
	return redisrepo.New(redisrepo.Config{Addr: c.Redis.Addr, Password: c.Redis.Password, DB: c.Redis.DB,
		DialTimeout:  time.Duration(c.Redis.DialTimeoutMS) * time.Millisecond,
		ReadTimeout:  time.Duration(c.Redis.ReadTimeoutMS) * time.Millisecond,
		WriteTimeout: time.Duration(c.Redis.WriteTimeoutMS) * time.Millisecond,
	})
}

// NewKafkaProducer 未配置 brokers 时返回 nil，操作日志不投递
func NewKafkaProducer(c *config.Config) *kafka.Producer {
	if len(c.Kafka.Brokers) == 0 {
		return nil
	}
	return kafka.NewProducer(kafka.Config{Brokers: c.Kafka.Brokers, Topic: c.Kafka.OpLogTopic})
}

// NewEtcd 未配置 endpoints 时返回 nil，不做服务注册
func NewEtcd(c *config.Config) (*etcd.Client, error) {
	if len(c.Etcd.Endpoints) == 0 {
		return nil, nil
	}
	return etcd.New(etcd.Config{Endpoints: c.Etcd.Endpoints, TTL: c.Etcd.TTL})
}

func NewJWTManager(c *config.Config) *jwt.Manager {
	return jwt.NewManager(c.JWT.Secret, c.JWT.ExpireSeconds, c.JWT.Issuer)
}

func NewApp(c *config.Config, l *logging.Logger, db *gorm.DB, r *redisrepo.Client, k *kafka.Producer, e *etcd.Client, j *jwt.Manager, engine *gin.Engine) *App {
	// 自动迁移（只在配置开启时）
	if c.Postgres.AutoMigrate {
		if err := postgres.AutoMigrateModels(db); err != nil {
			l.Error("auto_migrate_failed", zap.Error(err))
		}
	}
	app := &App{Config: c, Logger: l, DB: db, Redis: r, Kafka: k, Etcd: e, JWT: j, HTTP: engine, stopCh: make(chan struct{})}
	if r != nil {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout(c))
		if err := r.Ping(ctx); err != nil {
			l.Error("redis_ping_failed", zap.Error(err), zap.String("addr", c.Redis.Addr))
		} else {
			metrics.RedisUp.Set(1)
			l.Info("redis_ping_ok", zap.String("addr", c.Redis.Addr))
		}
		cancel()
		go app.redisHeartbeat()
	}
	if e != nil {
		app.instance = etcd.Instance{
			InstanceID:  uuid.New().String(),
			Name:        c.AppMeta.Name,
			Env:         c.AppMeta.Env,
			Version:     c.AppMeta.Version,
			IP:          firstNonLoopbackIPv4(),
			Port:        etcd.PortOf(c.HTTP.Addr),
			StartupUnix: time.Now().Unix(),
		}
		go func() {
			leaseID, err := e.RegisterWithRetry(context.Background(), app.instance, int64(c.Etcd.TTL), 5, l)
			if err != nil {
				l.Error("etcd_register_failed", zap.Error(err))
				return
			}
			app.leaseID = leaseID
			metrics.EtcdUp.Set(1)
		}()
	}
	app.tracerProv = initTracing(c, l, db, r)
	return app
}

// redisHeartbeat 只在状态切换时打日志
func (a *App) redisHeartbeat() {
	interval := time.Duration(a.Config.Redis.HeartbeatSec) * time.Second
	if interval < 2*time.Second {
		interval = 2 * time.Second
	}
	lastUp := true
	for {
		select {
		case <-a.stopCh:
			return
		case <-time.After(interval):
			ctx, cancel := context.WithTimeout(context.Background(), pingTimeout(a.Config))
			err := a.Redis.Ping(ctx)
			cancel()
			if err != nil {
				metrics.RedisUp.Set(0)
				if lastUp {
					a.Logger.Warn("redis_down", zap.Error(err))
				}
				lastUp = false
				continue
			}
			metrics.RedisUp.Set(1)
			if !lastUp {
				a.Logger.Info("redis_recovered")
			}
			lastUp = true
		}
	}
}

func (a *App) Close() {
	// 优雅下线 etcd
	if a.Etcd != nil && a.leaseID != 0 {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		a.Etcd.Deregister(ctx, a.instance.Key(), a.leaseID)
		cancel()
		metrics.EtcdUp.Set(0)
	}
	if a.stopCh != nil {
		close(a.stopCh)
	}
	postgres.Close(a.DB)
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			a.Logger.Error("redis_close_error", zap.Error(err))
		}
	}
	if a.Kafka != nil {
		if err := a.Kafka.Close(); err != nil {
			a.Logger.Error("kafka_close_error", zap.Error(err))
		}
	}
	if a.Etcd != nil {
		if err := a.Etcd.Close(); err != nil {
			a.Logger.Error("etcd_close_error", zap.Error(err))
		}
	}
	shutdownTracing(a.tracerProv, a.Logger)
	_ = a.Logger.Sync()
}

func pingTimeout(c *config.Config) time.Duration {
	if c.Redis.PingTimeoutMS <= 0 {
		return 300 * time.Millisecond
	}
	return time.Duration(c.Redis.PingTimeoutMS) * time.Millisecond
}

// 获取首个非 loopback IPv4，找不到时回退 127.0.0.1
func firstNonLoopbackIPv4() string {
	ifaces, err := net.Interfaces()
	if err != nil {
		return "127.0.0.1"
	}
	for _, iface := range ifaces {
		if iface.Flags&net.FlagUp == 0 {
			continue
		}
		addrs, err := iface.Addrs()
		if err != nil {
			continue
		}
		for _, addr := range addrs {
			var ip net.IP
			switch v := addr.(type) {
			case *net.IPNet:
				ip = v.IP
			case *net.IPAddr:
				ip = v.IP
			}
			if ip == nil || ip.IsLoopback() {
				continue
			}
			if ip4 := ip.To4(); ip4 != nil {
				return ip4.String()
			}
		}
	}
	return "127.0.0.1"
}
