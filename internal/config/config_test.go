package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"PORT", "BACKEND_BASE_URL", "JWT_SECRET", "JWKS_URL", "REDIS_ADDR", "REDIS_PASSWORD",
		"REDIS_DB", "MINIO_ENDPOINT", "MINIO_ACCESS_KEY", "MINIO_SECRET_KEY", "MINIO_BUCKET",
		"MINIO_USE_SSL", "DATABASE_URL", "POLL_INTERVAL", "BACKEND_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)

	dir := t.TempDir()
	path := filepath.Join(dir, "stockbridge.toml")
	content := `
[backend]
base_url = "https://inventory.example.com/api/"

[auth]
secret = "from-file"

[polling]
unread_interval_seconds = 45
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("REDIS_DB", "3")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "https://inventory.example.com/api/", cfg.Backend.BaseURL)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, 3, cfg.Redis.DB)
	assert.Equal(t, 45*time.Second, cfg.UnreadInterval())
	assert.Equal(t, "stock-documents", cfg.Minio.Bucket)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")

	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	require.NoError(t, err)

	assert.Equal(t, 30*time.Second, cfg.UnreadInterval())
	assert.Equal(t, "8080", cfg.Server.Port)
}

func TestLoad_PollIntervalOverride(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("POLL_INTERVAL", "10s")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 10*time.Second, cfg.UnreadInterval())
}

func TestLoad_RequiresAuth(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	assert.Error(t, err)
}

func TestLoad_InvalidRedisDB(t *testing.T) {
	clearEnv(t)
	t.Setenv("JWT_SECRET", "secret")
	t.Setenv("REDIS_DB", "zero")

	_, err := Load("")
	assert.Error(t, err)
}
