package config

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv убирает LEUN_* переменные, которые могут прийти из окружения разработчика
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LEUN_SERVER_URL", "LEUN_DB_PATH", "LEUN_STORE", "LEUN_STORE_PASSPHRASE",
		"LEUN_LOG_LEVEL", "LEUN_REQUEST_TIMEOUT", "LEUN_REFRESH_TIMEOUT", "LEUN_REFRESH_RETRIES",
	} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, rest, err := Load("", []string{"status"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "leun-client.db", cfg.DBPath)
	assert.Equal(t, StoreBolt, cfg.Store)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Equal(t, 15*time.Second, cfg.RefreshTimeout)
	assert.EqualValues(t, 2, cfg.RefreshRetries)
	assert.False(t, cfg.ShowVersion)
	assert.Equal(t, []string{"status"}, rest)
}

func TestLoad_EnvAndFlags(t *testing.T) {
	clearEnv(t)
	t.Setenv("LEUN_SERVER_URL", "https://api.leun.test/")
	t.Setenv("LEUN_STORE", "sqlite")
	t.Setenv("LEUN_REFRESH_RETRIES", "5")
	t.Setenv("LEUN_REQUEST_TIMEOUT", "5s")

	cfg, rest, err := Load("", []string{"--log-level", "debug", "--db", "/tmp/s.db", "profile"}, io.Discard)
	require.NoError(t, err)

	assert.Equal(t, "https://api.leun.test", cfg.ServerURL)
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, "/tmp/s.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, slog.LevelDebug, cfg.SlogLevel())
	assert.EqualValues(t, 5, cfg.RefreshRetries)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, []string{"profile"}, rest)

	// Флаг важнее окружения
	cfg, _, err = Load("", []string{"--store", "memory"}, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("LEUN_STORE=memory\nLEUN_LOG_LEVEL=info\n"), 0o600))
	t.Setenv("LEUN_LOG_LEVEL", "error")

	cfg, _, err := Load(path, nil, io.Discard)
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Store)
	// Окружение процесса важнее .env
	assert.Equal(t, "error", cfg.LogLevel)

	_, _, err = Load(filepath.Join(t.TempDir(), "missing.env"), nil, io.Discard)
	assert.NoError(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name   string
		env    map[string]string
		args   []string
		errMsg string
	}{
		{name: "unknown store", args: []string{"--store", "redis"}, errMsg: "Store"},
		{name: "bad url", args: []string{"--server", "not a url"}, errMsg: "ServerURL"},
		{name: "bad level", args: []string{"--log-level", "loud"}, errMsg: "LogLevel"},
		{name: "empty db path", args: []string{"--db", ""}, errMsg: "DBPath"},
		{name: "bad duration", env: map[string]string{"LEUN_REFRESH_TIMEOUT": "soon"}, errMsg: "parse env"},
		{name: "too many retries", env: map[string]string{"LEUN_REFRESH_RETRIES": "50"}, errMsg: "RefreshRetries"},
		{name: "unknown flag", args: []string{"--nope"}, errMsg: "nope"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, _, err := Load("", tt.args, io.Discard)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestLoad_MemoryStoreWithoutPath(t *testing.T) {
	clearEnv(t)

	cfg, _, err := Load("", []string{"--store", "memory", "--db", ""}, io.Discard)
	require.NoError(t, err)
	assert.Empty(t, cfg.DBPath)
}

func TestConfig_SlogLevel(t *testing.T) {
	cfg := &Config{LogLevel: "error"}
	assert.Equal(t, slog.LevelError, cfg.SlogLevel())

	cfg.LogLevel = "???"
	assert.Equal(t, slog.LevelWarn, cfg.SlogLevel())
}
