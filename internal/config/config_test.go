package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/edgard/tgcollector/internal/config"
	apperrors "github.com/edgard/tgcollector/internal/errors"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_user_id: 42
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.Token)
	assert.Equal(t, int64(42), cfg.Telegram.AdminUserID)
	assert.Equal(t, config.DefaultLogLevel, cfg.Log.Level)
	assert.Equal(t, config.DefaultDBPath, cfg.Database.Path)
	assert.False(t, cfg.Media.Enabled)
	assert.Equal(t, "local", cfg.Media.Backend)
	assert.Equal(t, time.Minute, cfg.Media.Timeout)
	assert.Equal(t, int64(config.DefaultMediaMaxConcurrent), cfg.Media.MaxConcurrent)
	assert.Equal(t, config.DefaultMessages.Welcome, cfg.Messages.Welcome)

	task, ok := cfg.Scheduler.Tasks["sql_maintenance"]
	require.True(t, ok)
	assert.True(t, task.Enabled)
	assert.Equal(t, config.DefaultSQLMaintenanceSchedule, task.Schedule)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(7))
}

func TestLoadFileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
log:
  level: debug
  format: text
telegram:
  token: "t"
  admin_user_id: 1
database:
  path: /tmp/x.db
media:
  enabled: true
  backend: s3
  timeout: 15s
  s3:
    bucket: archive
    endpoint: http://localhost:9000
`)
	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, "/tmp/x.db", cfg.Database.Path)
	assert.Equal(t, 15*time.Second, cfg.Media.Timeout)
	assert.Equal(t, "archive", cfg.Media.S3.Bucket)
	assert.Equal(t, config.DefaultS3Region, cfg.Media.S3.Region)
}

func TestLoadEnvironment(t *testing.T) {
	t.Setenv("COLLECTOR_TELEGRAM_TOKEN", "from-env")
	t.Setenv("COLLECTOR_TELEGRAM_ADMIN_USER_ID", "99")
	t.Setenv("COLLECTOR_DATABASE_PATH", "env.db")

	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Telegram.Token)
	assert.Equal(t, int64(99), cfg.Telegram.AdminUserID)
	assert.Equal(t, "env.db", cfg.Database.Path)
}

func TestLoadValidationErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
	}{
		{"missing token", "telegram:\n  admin_user_id: 1\n"},
		{"missing admin", "telegram:\n  token: t\n"},
		{"bad log level", "telegram:\n  token: t\n  admin_user_id: 1\nlog:\n  level: loud\n"},
		{"unknown backend", "telegram:\n  token: t\n  admin_user_id: 1\nmedia:\n  backend: ftp\n"},
		{"s3 without bucket", "telegram:\n  token: t\n  admin_user_id: 1\nmedia:\n  enabled: true\n  backend: s3\n"},
		{"half s3 credentials", "telegram:\n  token: t\n  admin_user_id: 1\nmedia:\n  enabled: true\n  backend: s3\n  s3:\n    bucket: b\n    access_key_id: k\n"},
		{"bad schedule", "telegram:\n  token: t\n  admin_user_id: 1\nscheduler:\n  tasks:\n    sql_maintenance:\n      enabled: true\n      schedule: \"every day\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Equal(t, apperrors.CodeConfig, apperrors.Code(err))
		})
	}
}

func TestLoadOfflineSkipsTelegram(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `
database:
  path: /var/lib/collector/collector.db
`)
	_, err := config.Load(path)
	require.Error(t, err)

	cfg, err := config.LoadOffline(path)
	require.NoError(t, err)
	assert.Equal(t, "/var/lib/collector/collector.db", cfg.Database.Path)
	assert.False(t, cfg.IsAdmin(0))
}
