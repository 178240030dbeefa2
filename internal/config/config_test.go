package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(p, []byte(body), 0o600))
	return p
}

const minimal = `
http:
  addr: ":8080"
jwt:
  secret: "0123456789abcdef"
  expire_seconds: 3600
`

func TestLoadAppliesDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.HTTP.Addr)
	assert.Equal(t, "jwt:jti:", c.Redis.JTIPrefix)
	assert.Equal(t, "123456", c.Account.DefaultPassword)
	assert.Equal(t, "@every 5m", c.Schedule.Spec)
	assert.Equal(t, 300, c.Cache.PermTTLSec)
	assert.Equal(t, "13800000000", c.Seed.SuperTelephone)
}

func TestLoadRejectsShortSecret(t *testing.T) {
	_, err := Load(writeConfig(t, "http:\n  addr: \":1\"\njwt:\n  secret: short\n  expire_seconds: 1\n"))
	assert.ErrorContains(t, err, "jwt.secret")
}

func TestLoadRejectsBadSchedule(t *testing.T) {
	_, err := Load(writeConfig(t, minimal+"schedule:\n  enable: true\n  spec: \"not a spec\"\n"))
	assert.ErrorContains(t, err, "schedule.spec")
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("RBAC_HTTP_ADDR", ":9999")
	c, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)
	assert.Equal(t, ":9999", c.HTTP.Addr)
}

func TestValidateOTel(t *testing.T) {
	c, err := Load(writeConfig(t, minimal))
	require.NoError(t, err)
	c.OTel.Enable = true
	c.OTel.Endpoint = ""
	assert.ErrorContains(t, c.Validate(), "otel.endpoint")
}
