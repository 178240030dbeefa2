// Package schedule worker 进程内的定时任务
package schedule

import (
	"context"
	"time"

	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

type Task struct {
	Name    string
	Timeout time.Duration
	Run     func(ctx context.Context) error
}

type Scheduler struct {
	cron *cron.Cron
	log  *logging.Logger
}

// New 同一任务上一轮未结束时跳过本轮
func New(l *logging.Logger) *Scheduler {
	c := cron.New(cron.WithChain(cron.Recover(cron.DiscardLogger), cron.SkipIfStillRunning(cron.DiscardLogger)))
	return &Scheduler{cron: c, log: l}
}

// Add spec 支持标准 5 段表达式与 @every 写法
func (s *Scheduler) Add(spec string, t Task) error {
	_, err := s.cron.AddFunc(spec, func() { s.run(t) })
	return err
}

func (s *Scheduler) run(t Task) {
	timeout := t.Timeout
	if timeout <= 0 {
		timeout = time.Minute
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	start := time.Now()
	if err := t.Run(ctx); err != nil {
		metrics.ScheduledTaskRuns.WithLabelValues(t.Name, "error").Inc()
		s.log.Error("scheduled_task_failed", zap.String("task", t.Name), zap.Error(err))
		return
	}
	metrics.ScheduledTaskRuns.WithLabelValues(t.Name, "ok").Inc()
	s.log.Debug("scheduled_task_done", zap.String("task", t.Name), zap.Duration("took", time.Since(start)))
}

func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

func (s *Scheduler) Start() { s.cron.Start() }

// Stop 返回的 ctx 在运行中的任务全部结束后 Done
func (s *Scheduler) Stop() context.Context { return s.cron.Stop() }

type UserCounter interface {
	Count(ctx context.Context) (int64, error)
}

// UserCountTask 统计用户总数并记录日志
func UserCountTask(u UserCounter, l *logging.Logger) Task {
	return Task{Name: "user_count", Run: func(ctx context.Context) error {
		n, err := u.Count(ctx)
		if err != nil {
			return err
		}
		l.Info("user_count", zap.Int64("total", n))
		return nil
	}}
}
