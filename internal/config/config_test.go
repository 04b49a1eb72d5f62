package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
port: 4000
env: production
redis_url: redis://cache:6379/1
allowed_origins:
  - app.example.com
  - "*.example.com"
database:
  host: db.internal
  name: worksite
auth:
  access_secret: file-access-secret
  refresh_secret: file-refresh-secret
  access_ttl: 10m
  refresh_ttl: 72h
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 4000, cfg.Port)
	assert.False(t, cfg.IsDev())
	assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
	assert.Equal(t, []string{"app.example.com", "*.example.com"}, cfg.AllowedOrigins)
	assert.Equal(t, "db.internal", cfg.Database.Host)
	assert.Equal(t, 10*time.Minute, cfg.Auth.AccessTTL)
	assert.Equal(t, 72*time.Hour, cfg.Auth.RefreshTTL)
}

func TestLoadMissingFileUsesEnv(t *testing.T) {
	t.Setenv(EnvPrefix+"ACCESS_TOKEN_SECRET", "env-access-secret")
	t.Setenv(EnvPrefix+"REFRESH_TOKEN_SECRET", "env-refresh-secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.NoError(t, err)
	assert.Equal(t, defaultPort, cfg.Port)
	assert.True(t, cfg.IsDev())
	assert.Equal(t, "env-access-secret", cfg.Auth.AccessSecret)
	assert.Equal(t, defaultAccessTTL, cfg.Auth.AccessTTL)
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
port: 4000
auth:
  access_secret: file-access-secret
  refresh_secret: file-refresh-secret
`)
	t.Setenv(EnvPrefix+"PORT", "5000")
	t.Setenv(EnvPrefix+"ACCESS_TOKEN_SECRET", "env-access-secret")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5000, cfg.Port)
	assert.Equal(t, "env-access-secret", cfg.Auth.AccessSecret)
	assert.Equal(t, "file-refresh-secret", cfg.Auth.RefreshSecret)
}

func TestLoadMissingSecretsFails(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "access_secret")
}

func TestLoadEqualSecretsFails(t *testing.T) {
	path := writeConfig(t, `
auth:
  access_secret: same-secret
  refresh_secret: same-secret
`)
	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must differ")
}

func TestLoadBadTTLFails(t *testing.T) {
	path := writeConfig(t, `
auth:
  access_secret: a-secret
  refresh_secret: r-secret
  access_ttl: not-a-duration
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadRefreshShorterThanAccessFails(t *testing.T) {
	path := writeConfig(t, `
auth:
  access_secret: a-secret
  refresh_secret: r-secret
  access_ttl: 1h
  refresh_ttl: 10m
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestRefreshTTLCapped(t *testing.T) {
	path := writeConfig(t, `
auth:
  access_secret: a-secret
  refresh_secret: r-secret
  refresh_ttl: 2160h
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, maxRefreshTTL, cfg.Auth.RefreshTTL)
}

func TestLoadUnknownFieldFails(t *testing.T) {
	path := writeConfig(t, `
port: 4000
no_such_field: true
`)
	_, err := Load(path)
	assert.Error(t, err)
}

func TestBuildDSN(t *testing.T) {
	d := DatabaseConfig{Host: "db.internal", Port: 3306, User: "worksite", Password: "pw", Name: "worksite"}
	dsn := d.BuildDSN()
	assert.Contains(t, dsn, "tcp(db.internal:3306)")
	assert.Contains(t, dsn, "/worksite")
	assert.Contains(t, dsn, "parseTime=true")
}
