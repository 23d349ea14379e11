package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	orig, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(orig) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	for _, key := range []string{"HOST", "PORT", "LOG_LEVEL", "EXTRACTOR_BACKEND", "YTDLP_PATH", "SHUTDOWN_TIMEOUT"} {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "tubestream", cfg.ServiceName)
	assert.Equal(t, "0.0.0.0:5000", cfg.Addr())
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, BackendYTDLP, cfg.Backend)
	assert.Equal(t, 3, cfg.ExtractorHTTPRetry)
	assert.Equal(t, 5*time.Second, cfg.ShutdownTimeout)
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.YTDLPInstall)
}

func TestLoadFromEnvironment(t *testing.T) {
	chdirTemp(t)
	t.Setenv("PORT", "8080")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("EXTRACTOR_BACKEND", " Native ")
	t.Setenv("EXTRACTOR_HTTP_RETRIES", "-4")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:8080", cfg.Addr())
	assert.Equal(t, BackendNative, cfg.Backend)
	assert.Equal(t, 0, cfg.ExtractorHTTPRetry)
}

func TestLoadDotEnv(t *testing.T) {
	dir := chdirTemp(t)
	t.Setenv("LOG_LEVEL", "info")
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("LOG_LEVEL=warn\nSERVICE_NAME=from-dotenv\n"), 0o644))
	t.Cleanup(func() {
		_ = os.Unsetenv("SERVICE_NAME")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel, ".env overrides the environment")
	assert.Equal(t, "from-dotenv", cfg.ServiceName)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := map[string]map[string]string{
		"unknown backend": {"EXTRACTOR_BACKEND": "youtube-dl"},
		"port range":      {"PORT": "70000"},
		"port syntax":     {"PORT": "http"},
	}
	for name, vars := range tests {
		t.Run(name, func(t *testing.T) {
			chdirTemp(t)
			for k, v := range vars {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestSetAddr(t *testing.T) {
	cfg := &Config{Host: "0.0.0.0", Port: 5000}

	require.NoError(t, cfg.SetAddr(":9000"))
	assert.Equal(t, "0.0.0.0:9000", cfg.Addr())

	require.NoError(t, cfg.SetAddr("localhost:7000"))
	assert.Equal(t, "localhost:7000", cfg.Addr())

	assert.Error(t, cfg.SetAddr("nope"))
	assert.Error(t, cfg.SetAddr(":0"))
	assert.Equal(t, "localhost:7000", cfg.Addr(), "failed overrides leave the address untouched")
}
