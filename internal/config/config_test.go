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

func TestLoad_Defaults(t *testing.T) {
	cfg := Load(filepath.Join(t.TempDir(), "missing.yaml"))

	assert.Equal(t, ":9871", cfg.Addr())
	assert.Equal(t, "ar", cfg.Locale.Default)
	assert.Equal(t, []string{"ar", "en"}, cfg.Locale.Supported)
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout())
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL())
	assert.True(t, cfg.UsesDevSecret())
	assert.False(t, cfg.AuditEnabled())
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 8088
  secure_cookies: true
  session_secret: prod-secret
  session_ttl_hours: 2
backend:
  base_url: https://api.example.gov/v1
  timeout_seconds: 5
locale:
  default: en
database:
  host: db.internal
`)
	cfg := Load(path)

	assert.Equal(t, ":8088", cfg.Addr())
	assert.True(t, cfg.Server.SecureCookies)
	assert.False(t, cfg.UsesDevSecret())
	assert.Equal(t, 2*time.Hour, cfg.SessionTTL())
	assert.Equal(t, "https://api.example.gov/v1", cfg.Backend.BaseURL)
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout())
	assert.Equal(t, "en", cfg.Locale.Default)
	assert.True(t, cfg.AuditEnabled())
	// untouched sections keep their defaults
	assert.Equal(t, 3306, cfg.Database.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Run("strings and ints", func(t *testing.T) {
		t.Setenv("BACKEND_BASE_URL", "https://env.example.gov")
		t.Setenv("PORT", "7000")
		t.Setenv("DB_PORT", "3307")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, "https://env.example.gov", cfg.Backend.BaseURL)
		assert.Equal(t, 7000, cfg.Server.Port)
		assert.Equal(t, 3307, cfg.Database.Port)
	})

	t.Run("invalid numbers are ignored", func(t *testing.T) {
		t.Setenv("PORT", "not-a-port")
		t.Setenv("SECURE_COOKIES", "maybe")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.Equal(t, 9871, cfg.Server.Port)
		assert.False(t, cfg.Server.SecureCookies)
	})

	t.Run("bool override", func(t *testing.T) {
		t.Setenv("SECURE_COOKIES", "true")

		cfg := Default()
		cfg.applyEnvOverrides()

		assert.True(t, cfg.Server.SecureCookies)
	})
}

func TestDurations_FallBackOnNonPositive(t *testing.T) {
	cfg := &Config{}
	assert.Equal(t, 30*time.Second, cfg.BackendTimeout())
	assert.Equal(t, 8*time.Hour, cfg.SessionTTL())
}
