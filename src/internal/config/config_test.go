package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
app:
  name: whisp-test
database:
  url: mongodb://db:27017
  dbname: whisp
realtime:
  adapter: redis
  send-buffer: 8
`

func writeConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.yml")
	require.NoError(t, os.WriteFile(path, []byte(testConfig), 0o600))
	return path
}

func TestLoad_ReadsFileAndAppliesDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t))

	cfg := Load()

	assert.Equal(t, "whisp-test", cfg.App.Name)
	assert.Equal(t, "mongodb://db:27017", cfg.Database.Url)
	assert.Equal(t, "users", cfg.Database.Collections.Users)
	assert.Equal(t, AdapterRedis, cfg.Realtime.Adapter)
	assert.Equal(t, 8, cfg.Realtime.SendBuffer)
	assert.Equal(t, 60, cfg.Security.TokenTTLMinutes)
	assert.Equal(t, 5, cfg.Security.LoginMaxAttempts)
	assert.Equal(t, 15, cfg.Security.LoginWindowMinutes)
	assert.Equal(t, int64(64*1024), cfg.Realtime.MaxMessageBytes)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", writeConfig(t))
	t.Setenv("MONGODB_URL", "mongodb://override:27017")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("JWT_KEY", "secret")
	t.Setenv("REALTIME_ADAPTER", AdapterRabbitMQ)
	t.Setenv("PORT", "8080")

	cfg := Load()

	assert.Equal(t, "mongodb://override:27017", cfg.Database.Url)
	assert.Equal(t, 3, cfg.Redis.Db)
	assert.Equal(t, "secret", cfg.Security.JwtKey)
	assert.Equal(t, AdapterRabbitMQ, cfg.Realtime.Adapter)
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_MissingFilePanics(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing.yml"))

	assert.Panics(t, func() { Load() })
}
