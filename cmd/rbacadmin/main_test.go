package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("http:\n  addr: \":8080\"\n"), 0o644))
}

func TestResolveConfigPath(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("CONFIG_PATH", "")

	_, err := resolveConfigPath("")
	require.Error(t, err)

	writeFile(t, filepath.Join(dir, fallbackConfigPath))
	got, err := resolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, "config.example.yaml", filepath.Base(got))

	writeFile(t, filepath.Join(dir, defaultConfigPath))
	got, err = resolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, "config.dev.yaml", filepath.Base(got))

	custom := filepath.Join(dir, "prod.yaml")
	writeFile(t, custom)
	t.Setenv("CONFIG_PATH", custom)
	got, err = resolveConfigPath("")
	require.NoError(t, err)
	assert.Equal(t, custom, got)

	// 显式 --config 不存在时不回退
	_, err = resolveConfigPath(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}

func TestRootCmdHasSubcommands(t *testing.T) {
	root := NewRootCmd()
	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["serve"])
	assert.True(t, names["migrate"])
	assert.True(t, names["worker"])
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
