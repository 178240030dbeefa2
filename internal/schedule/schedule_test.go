package schedule

import (
	"context"
	"errors"
	"testing"

	"go-rbacadmin/internal/logging"
	"go-rbacadmin/internal/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type counter struct {
	n   int64
	err error
}

func (c counter) Count(context.Context) (int64, error) { return c.n, c.err }

func TestAddValidatesSpec(t *testing.T) {
	s := New(logging.Nop())
	require.NoError(t, s.Add("@every 5m", UserCountTask(counter{n: 1}, logging.Nop())))
	require.NoError(t, s.Add("*/10 * * * *", UserCountTask(counter{n: 1}, logging.Nop())))
	assert.Error(t, s.Add("not a spec", Task{Name: "x", Run: func(context.Context) error { return nil }}))
	assert.Equal(t, 2, s.Len())
}

func TestRunRecordsResult(t *testing.T) {
	s := New(logging.Nop())
	ok := metrics.ScheduledTaskRuns.WithLabelValues("user_count", "ok")
	failed := metrics.ScheduledTaskRuns.WithLabelValues("user_count", "error")
	okBefore, failBefore := testutil.ToFloat64(ok), testutil.ToFloat64(failed)

	s.run(UserCountTask(counter{n: 3}, logging.Nop()))
	s.run(UserCountTask(counter{err: errors.New("db down")}, logging.Nop()))

	assert.Equal(t, okBefore+1, testutil.ToFloat64(ok))
	assert.Equal(t, failBefore+1, testutil.ToFloat64(failed))
}

func TestStartStop(t *testing.T) {
	s := New(logging.Nop())
	s.Start()
	<-s.Stop().Done()
}
