package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("AUTH0_DOMAIN", "example.eu.auth0.com")
	t.Setenv("AUTH0_AUDIENCE", "https://api.example.com")
	t.Setenv("TMDB_API_KEY", "tmdb-key")
}

// chdirTemp isolates tests from any config.yaml or .env in the package dir.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadDefaults(t *testing.T) {
	chdirTemp(t)
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "./data/watchlist.db", cfg.Database.Path)
	assert.Equal(t, "https://api.themoviedb.org/3", cfg.TMDB.BaseURL)
	assert.Equal(t, 40, cfg.TMDB.RequestsPerWindow)
	assert.Equal(t, 10*time.Second, cfg.TMDB.Window)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, []string{"*"}, cfg.Security.CORSOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	chdirTemp(t)
	setRequired(t)
	t.Setenv("PORT", "9090")
	t.Setenv("DATABASE_PATH", "/tmp/w.db")
	t.Setenv("TMDB_TIMEOUT", "3s")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, ":9090", cfg.Server.Addr())
	assert.Equal(t, "/tmp/w.db", cfg.Database.Path)
	assert.Equal(t, 3*time.Second, cfg.TMDB.Timeout)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.CORSOrigins)
}

func TestLoadYAMLFile(t *testing.T) {
	dir := chdirTemp(t)
	setRequired(t)
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  port: 7070\nlogging:\n  format: console\n"), 0o600))
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoadRequiresCredentials(t *testing.T) {
	chdirTemp(t)
	t.Setenv("AUTH0_DOMAIN", "")
	t.Setenv("AUTH0_AUDIENCE", "")
	t.Setenv("TMDB_API_KEY", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTH0_DOMAIN is required")
	assert.Contains(t, err.Error(), "TMDB_API_KEY is required")
}

func TestEnvTransformIgnoresUnknown(t *testing.T) {
	assert.Equal(t, "", envTransformFunc("HOME"))
	assert.Equal(t, "tmdb.api_key", envTransformFunc("TMDB_API_KEY"))
}
