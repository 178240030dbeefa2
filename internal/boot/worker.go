package boot

import (
	"context"
	"errors"

	"go-rbacadmin/internal/config"
	"go-rbacadmin/internal/consumer/oplog"
	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/mq/kafka"
	"go-rbacadmin/internal/repository/dao"
	"go-rbacadmin/internal/repository/postgres"
	"go-rbacadmin/internal/schedule"
	"go-rbacadmin/internal/service"

	"go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// Worker 后台进程：消费操作日志 + 定时任务
type Worker struct {
	Config    *config.Config
	Logger    *logging.Logger
	DB        *gorm.DB
	Consumer  *kafka.Consumer // 未配置 kafka 时为 nil
	Handler   *oplog.Handler
	Scheduler *schedule.Scheduler

	tracerProv *trace.TracerProvider
}

// NewOpLogConsumer 未配置 brokers 时返回 nil
func NewOpLogConsumer(c *config.Config, l *logging.Logger) *kafka.Consumer {
	if len(c.Kafka.Brokers) == 0 {
		return nil
	}
	return kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers: c.Kafka.Brokers,
		GroupID: c.Kafka.GroupID,
		Topics:  []string{c.Kafka.OpLogTopic},
	}, l)
}

func NewWorker(c *config.Config, l *logging.Logger, db *gorm.DB, users *dao.UserDAO, consumer *kafka.Consumer, h *oplog.Handler) (*Worker, error) {
	sch := schedule.New(l)
	if c.Schedule.Enable {
		if err := sch.Add(c.Schedule.Spec, schedule.UserCountTask(users, l)); err != nil {
			return nil, err
		}
	}
	w := &Worker{Config: c, Logger: l, DB: db, Consumer: consumer, Handler: h, Scheduler: sch}
	w.tracerProv = initTracing(c, l, db, nil)
	return w, nil
}

// Run 阻塞直到 ctx 取消或消费循环出错
func (w *Worker) Run(ctx context.Context) error {
	if w.Consumer == nil && w.Scheduler.Len() == 0 {
		return errors.New("worker has nothing to do: kafka.brokers empty and schedule disabled")
	}
	g, ctx := errgroup.WithContext(ctx)
	if w.Consumer != nil {
		g.Go(func() error {
			w.Logger.Info("oplog_consumer_start", zap.String("topic", w.Config.Kafka.OpLogTopic))
			return w.Consumer.Start(ctx, w.Handler.Handle)
		})
	}
	if w.Scheduler.Len() > 0 {
		w.Scheduler.Start()
		w.Logger.Info("scheduler_start", zap.Int("tasks", w.Scheduler.Len()))
		g.Go(func() error {
			<-ctx.Done()
			<-w.Scheduler.Stop().Done()
			return nil
		})
	}
	return g.Wait()
}

func (w *Worker) Close() {
	if w.Consumer != nil {
		if err := w.Consumer.Close(); err != nil {
			w.Logger.Error("kafka_consumer_close_error", zap.Error(err))
		}
	}
	postgres.Close(w.DB)
	shutdownTracing(w.tracerProv, w.Logger)
	_ = w.Logger.Sync()
}

// Migrator migrate 子命令：建表 + 初始数据
type Migrator struct {
	Config *config.Config
	Logger *logging.Logger
	DB     *gorm.DB
	Seed   *service.SeedService
}

func NewMigrator(c *config.Config, l *logging.Logger, db *gorm.DB, seed *service.SeedService) *Migrator {
	return &Migrator{Config: c, Logger: l, DB: db, Seed: seed}
}

func (m *Migrator) Run(ctx context.Context, withSeed bool) error {
	if err := postgres.AutoMigrateModels(m.DB.WithContext(ctx)); err != nil {
		return err
	}
	m.Logger.Info("auto_migrate_done")
	if !withSeed {
		return nil
	}
	if err := m.Seed.Run(ctx, service.SeedParams{
		SuperTelephone: m.Config.Seed.SuperTelephone,
		SuperPassword:  m.Config.Seed.SuperPassword,
	}); err != nil {
		return err
	}
	m.Logger.Info("seed_done", zap.String("super_telephone", m.Config.Seed.SuperTelephone))
	return nil
}

func (m *Migrator) Close() {
	postgres.Close(m.DB)
	_ = m.Logger.Sync()
}
