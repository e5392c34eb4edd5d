package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 72*time.Hour, cfg.TokenTTL())
	assert.Equal(t, []string{"http://localhost:5173", "http://127.0.0.1:5173"}, cfg.Origins())
	assert.Equal(t, "system", cfg.Chime.Mode)
	assert.Equal(t, 2*time.Second, cfg.Chime.Duration())
	assert.True(t, cfg.Companion.Enabled)
	assert.Equal(t, 280, cfg.Companion.Width)
	assert.Equal(t, 200, cfg.Companion.Height)
}

func TestLoadFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.yaml")
	content := "port: \"9090\"\nchime:\n  mode: silent\n  duration_ms: 10\ncompanion:\n  enabled: false\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("FOCUS_JWT_SECRET", "from-env")
	t.Setenv("FOCUS_CORS_ORIGINS", " https://a.example , ,https://b.example")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "silent", cfg.Chime.Mode)
	assert.Equal(t, 10*time.Millisecond, cfg.Chime.Duration())
	assert.False(t, cfg.Companion.Enabled)
	assert.Equal(t, "from-env", cfg.JWTSecret)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Origins())
}

func TestLoadRejectsUnknownChimeMode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "focus.yaml")
	require.NoError(t, os.WriteFile(path, []byte("chime:\n  mode: loud\n"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestLocation(t *testing.T) {
	loc, err := Config{Timezone: "UTC"}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)

	loc, err = Config{}.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Local, loc)

	_, err = Config{Timezone: "Nowhere/Special"}.Location()
	assert.Error(t, err)
}
