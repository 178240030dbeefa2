package boot

import (
	"time"

	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/consumer/oplog"
	"go-rbacadmin/internal/discovery/etcd"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"
	"go-rbacadmin/internal/mq/kafka"
	"go-rbacadmin/internal/pkg/cache"
	"go-rbacadmin/internal/repository/dao"
	redisrepo "go-rbacadmin/internal/repository/redis"
	jwtsec "go-rbacadmin/internal/security/jwt"
	httpSrv "go-rbacadmin/internal/server/http"
	handlerset "go-rbacadmin/internal/server/http/handler"
	adminh "go-rbacadmin/internal/server/http/handler/admin"
	"go-rbacadmin/internal/service"

	"github.com/google/wire"
	"gorm.io/gorm"
)

// ProvideConfig wraps config.Load for wire with external path param
func ProvideConfig(path string) (*config.Config, error) { return config.Load(path) }

// l1MaxTTL 多副本下树与字典的本地缓存最长滞后
const l1MaxTTL = 30 * time.Second

// ProvideLayeredCache L1 进程内 + L2 Redis
func ProvideLayeredCache(r *redisrepo.Client) *cache.LayeredCache {
	lc := cache.NewLayered(cache.NewMemory(), cache.NewRedisAdapter(r))
	lc.L1TTL = l1MaxTTL
	return lc
}

func ProvideCache(lc *cache.LayeredCache) cache.Cache { return lc }

// ProvideOpLogPublisher producer 为 nil 时返回无类型 nil，中间件据此跳过投递
func ProvideOpLogPublisher(p *kafka.Producer) kafka.Publisher {
	if p == nil {
		return nil
	}
	return p
}

// ProvidePermissionService 权限集合只走 Redis，撤权对所有副本立即生效
func ProvidePermissionService(c *config.Config, u *dao.UserDAO, m *dao.MenuDAO, a *dao.AssociationDAO, lc *cache.LayeredCache, l *logging.Logger) *service.PermissionService {
	return service.NewPermissionService(u, m, a, lc.Shared(), seconds(c.Cache.PermTTLSec), l)
}

func ProvideMenuService(c *config.Config, db *gorm.DB, m *dao.MenuDAO, a *dao.AssociationDAO, p *service.PermissionService, lc cache.Cache, l *logging.Logger) *service.MenuService {
	return service.NewMenuService(db, m, a, p, lc, seconds(c.Cache.TreeTTLSec), l)
}

func ProvideDepartmentService(c *config.Config, db *gorm.DB, d *dao.DepartmentDAO, a *dao.AssociationDAO, lc cache.Cache, l *logging.Logger) *service.DepartmentService {
	return service.NewDepartmentService(db, d, a, lc, seconds(c.Cache.TreeTTLSec), l)
}

func ProvideDictService(c *config.Config, db *gorm.DB, d *dao.DictDAO, lc cache.Cache, l *logging.Logger) *service.DictService {
	return service.NewDictService(db, d, lc, seconds(c.Cache.TreeTTLSec), l)
}

func ProvideUserService(c *config.Config, db *gorm.DB, u *dao.UserDAO, a *dao.AssociationDAO, p *service.PermissionService, l *logging.Logger) *service.UserService {
	return service.NewUserService(db, u, a, p, c.Account.DefaultPassword, l)
}

func ProvideAuthService(c *config.Config, u *dao.UserDAO, us *service.UserService, j *jwtsec.Manager, r *redisrepo.Client, l *logging.Logger) *service.AuthService {
	return service.NewAuthService(u, us, j, r, c.Redis.JTIPrefix, c.Account.PlatformStaffOnly, l)
}

// ProvideHealthChecker 只探测已配置的依赖
func ProvideHealthChecker(db *gorm.DB, r *redisrepo.Client, k *kafka.Producer, e *etcd.Client) *httpSrv.HealthChecker {
	deps := []httpSrv.Dependency{httpSrv.DBDependency(db)}
	if r != nil {
		deps = append(deps, httpSrv.Dependency{Name: "redis", Timeout: 300 * time.Millisecond, Ping: r.Ping, Gauge: metrics.RedisUp})
	}
	if k != nil {
		deps = append(deps, httpSrv.Dependency{Name: "kafka", Timeout: 500 * time.Millisecond, Ping: k.Ping, Gauge: metrics.KafkaUp})
	}
	if e != nil {
		deps = append(deps, httpSrv.Dependency{Name: "etcd", Timeout: 500 * time.Millisecond, Ping: e.Ping, Gauge: metrics.EtcdUp})
	}
	return httpSrv.NewHealthChecker(deps...)
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }

// BaseSet 三个进程共用
var BaseSet = wire.NewSet(
	ProvideConfig,
	NewLogger,
	NewPostgres,
)

var InfraSet = wire.NewSet(
	NewRedis,
	NewKafkaProducer,
	NewEtcd,
	NewJWTManager,
	ProvideLayeredCache,
	ProvideCache,
	ProvideOpLogPublisher,
)

var DAOSet = wire.NewSet(
	dao.NewMenuDAO,
	dao.NewDepartmentDAO,
	dao.NewRoleDAO,
	dao.NewUserDAO,
	dao.NewAssociationDAO,
	dao.NewDictDAO,
)

var ServiceSet = wire.NewSet(
	ProvidePermissionService,
	ProvideMenuService,
	ProvideDepartmentService,
	service.NewRoleService,
	ProvideUserService,
	ProvideAuthService,
	ProvideDictService,
)

var HTTPSet = wire.NewSet(
	wire.Struct(new(adminh.Dependencies), "*"),
	handlerset.NewHandlerSet,
	ProvideHealthChecker,
	wire.Struct(new(httpSrv.RouterDeps), "*"),
	httpSrv.NewRouter,
)

// ProviderSet serve 子命令
var ProviderSet = wire.NewSet(
	BaseSet,
	InfraSet,
	DAOSet,
	ServiceSet,
	HTTPSet,
	NewApp,
)

// WorkerSet worker 子命令，不依赖 redis
var WorkerSet = wire.NewSet(
	BaseSet,
	dao.NewUserDAO,
	dao.NewOperationLogDAO,
	oplog.NewHandler,
	NewOpLogConsumer,
	NewWorker,
)

var MigratorSet = wire.NewSet(
	BaseSet,
	service.NewSeedService,
	NewMigrator,
)
