package utils

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func setEnv(t *testing.T, key, value string) {
	old, found := os.LookupEnv(key)
	os.Setenv(key, value)
	t.Cleanup(func() {
		if found {
			os.Setenv(key, old)
		} else {
			os.Unsetenv(key)
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	for _, key := range []string{"APP_MODE", "STORAGE_MODE", "SERVER_PORT", "NOTIFY_MODE", "CACHE_TTL"} {
		setEnv(t, key, "")
		os.Unsetenv(key)
	}

	cfg := LoadConfig()

	assert.Equal(t, "server", cfg.AppMode)
	assert.Equal(t, "inmemory", cfg.StorageMode)
	assert.Equal(t, "8080", cfg.ServerPort)
	assert.Equal(t, "log", cfg.NotifyMode)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	setEnv(t, "STORAGE_MODE", "cached")
	setEnv(t, "CACHE_TTL", "90s")
	setEnv(t, "NOTIFY_CHANNEL", "updates")

	cfg := LoadConfig()

	assert.Equal(t, "cached", cfg.StorageMode)
	assert.Equal(t, 90*time.Second, cfg.CacheTTL)
	assert.Equal(t, "updates", cfg.NotifyChannel)
}

func TestLoadConfigRejectsBadTTL(t *testing.T) {
	setEnv(t, "CACHE_TTL", "soon")

	assert.Panics(t, func() { LoadConfig() })
}

func TestGetEnvVar(t *testing.T) {
	setEnv(t, "LIVEBLOG_TEST_VAR", "value")

	assert.Equal(t, "value", GetEnvVar("LIVEBLOG_TEST_VAR"))
	assert.Equal(t, "fallback", GetEnvVarWithDefault("LIVEBLOG_TEST_MISSING", "fallback"))
	assert.Panics(t, func() { GetEnvVar("LIVEBLOG_TEST_MISSING") })
}
