package db

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	path := writeConfig(t, `
mode: dev
database:
  host: 127.0.0.1
  port: 3306
  user: arc
  password: arc
  dbname: arc_rental
auth:
  jwt_secret: s
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":8443", cfg.Addr)
	assert.Equal(t, 24, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 5, cfg.Auth.MaxLoginFails)
	assert.Equal(t, 15, cfg.Auth.LockoutMinutes)
	assert.Equal(t, "arc_rental", cfg.DB.DBName)
}

func TestLoadConfigOverrides(t *testing.T) {
	path := writeConfig(t, `
mode: release
addr: ":9000"
auth:
  jwt_secret: s
  token_ttl_hours: 2
  max_login_fails: 3
  lockout_minutes: 30
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, 2, cfg.Auth.TokenTTLHours)
	assert.Equal(t, 3, cfg.Auth.MaxLoginFails)
	assert.Equal(t, 30, cfg.Auth.LockoutMinutes)
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadConfigBadYAML(t *testing.T) {
	path := writeConfig(t, "mode: [unclosed")
	_, err := LoadConfig(path)
	require.Error(t, err)
}
