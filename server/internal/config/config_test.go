package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

// TestLoadKeepsDefaults 验证未出现的字段保留默认值。
func TestLoadKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  port: 9090\n  read_timeout: 5s\nstorage:\n  driver: memory\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 5*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 15*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "server/configs/students.json", cfg.Roster.Path)
	assert.Equal(t, ":9090", cfg.Addr())
}

// TestLoadEnvOverrides 验证环境变量覆盖配置文件。
func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("PICKUP_SQLITE_PATH", "/tmp/override.db")
	t.Setenv("PICKUP_LOG_LEVEL", "debug")
	path := writeConfig(t, "storage:\n  driver: sqlite\n  sqlite_path: data/pickup.db\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/override.db", cfg.Storage.SQLitePath)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

// TestValidateRejectsUnknownDriver 验证未知存储驱动会被拒绝。
func TestValidateRejectsUnknownDriver(t *testing.T) {
	path := writeConfig(t, "storage:\n  driver: postgres\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown storage driver")
}
