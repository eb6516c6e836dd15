package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("AIFEATURES_SITE_TOKEN", "")
	t.Setenv("DEV_ADDR", "")
	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "https://aifeatures.dev", cfg.APIURL)
	assert.Equal(t, ":8787", cfg.Dev.Addr)
	assert.Equal(t, "http://localhost:8787", cfg.Dev.PublicURL)
	assert.Equal(t, "sqlite", cfg.Dev.DBDriver)
	assert.True(t, cfg.Dev.Seed)
	assert.Equal(t, 10, cfg.Dev.MaxUploadMB)
}

func TestLoadDotEnvDoesNotOverride(t *testing.T) {
	dir := t.TempDir()
	env := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(env, []byte("AIFEATURES_SITE_TOKEN=st_from_file\nLOG_LEVEL=debug\n"), 0o600))
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("AIFEATURES_SITE_TOKEN", "")
	os.Unsetenv("AIFEATURES_SITE_TOKEN")

	cfg := Load(env)

	assert.Equal(t, "st_from_file", cfg.SiteToken)
	assert.Equal(t, "warn", cfg.LogLevel)
}

func TestEnvParsing(t *testing.T) {
	t.Setenv("DEV_MAX_UPLOAD_MB", "abc")
	t.Setenv("MINIO_USE_SSL", "true")
	t.Setenv("DEV_SEED", "nope")

	assert.Equal(t, 7, getEnvInt("DEV_MAX_UPLOAD_MB", 7))
	assert.True(t, getEnvBool("MINIO_USE_SSL", false))
	assert.True(t, getEnvBool("DEV_SEED", true))
}
