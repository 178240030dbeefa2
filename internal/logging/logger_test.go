package logging

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "loud"})
	assert.Error(t, err)
}

func TestFileSinkWritesJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "app.log")
	lg, err := New(Options{Level: "debug", Format: "console", File: path, MaxSizeMB: 1})
	require.NoError(t, err)
	lg.Info("role_created", zap.Int64("role_id", 3))
	_ = lg.Sync()

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"msg":"role_created"`)
	assert.Contains(t, string(b), `"role_id":3`)
}

func TestWithContextAddsFields(t *testing.T) {
	lg := Nop()
	ctx := context.WithValue(context.Background(), TraceIDKey, "t-1")
	ctx = context.WithValue(ctx, UserIDKey, int64(9))
	assert.NotSame(t, lg.Logger, lg.WithContext(ctx))
	assert.Same(t, lg.Logger, lg.WithContext(context.Background()))
}
