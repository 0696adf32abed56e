package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/stationcache/internal/store"
)

// isolate points HOME and XDG at a temp dir and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_DATA_HOME", "")
	t.Setenv("STATIONCACHE_CONFIG", "")
	return home
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestLoad_Defaults(t *testing.T) {
	home := isolate(t)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, filepath.Join(home, ".local", "share", "stationcache", "weather-station.db"), c.Store.Path)
	assert.Equal(t, store.DriverCGo, c.Store.Driver)
	assert.Equal(t, time.Second, c.Store.Timeout)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, "text", c.Log.Format)
}

func TestLoad_XDGDataHome(t *testing.T) {
	isolate(t)
	data := t.TempDir()
	t.Setenv("XDG_DATA_HOME", data)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(data, "stationcache", "weather-station.db"), c.Store.Path)
}

func TestLoad_DefaultConfigFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "stationcache", "config.toml"), `
[store]
backend = "bolt"
path = "/tmp/cache.db"
timeout = "250ms"

[log]
level = "debug"
format = "json"
`)

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "bolt", c.Store.Backend)
	assert.Equal(t, "/tmp/cache.db", c.Store.Path)
	assert.Equal(t, 250*time.Millisecond, c.Store.Timeout)
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "json", c.Log.Format)
}

func TestLoad_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, path, "[store]\ndriver = \"sqlite\"\n")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, store.DriverPureGo, c.Store.Driver)
}

func TestLoad_ConfigFromEnv(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "env.toml")
	writeFile(t, path, "[log]\nlevel = \"warn\"\n")
	t.Setenv("STATIONCACHE_CONFIG", path)

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
}

func TestLoad_ExplicitFileMissing(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".config", "stationcache", "config.toml"), "[store]\nbackend = \"bolt\"\n")
	t.Setenv("STATIONCACHE_STORE_BACKEND", "sqlite")
	t.Setenv("STATIONCACHE_STORE_PATH", "/var/cache/ws.db")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "sqlite", c.Store.Backend)
	assert.Equal(t, "/var/cache/ws.db", c.Store.Path)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  string
		val  string
	}{
		{"backend", "STATIONCACHE_STORE_BACKEND", "redis"},
		{"driver", "STATIONCACHE_STORE_DRIVER", "postgres"},
		{"level", "STATIONCACHE_LOG_LEVEL", "loud"},
		{"format", "STATIONCACHE_LOG_FORMAT", "xml"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			t.Setenv(tt.env, tt.val)

			_, err := Load("")
			assert.Error(t, err)
		})
	}
}

func TestStoreOptions(t *testing.T) {
	c := Config{Store: StoreConfig{Backend: "bolt", Path: "/x.db", Driver: "sqlite", Timeout: time.Second}}

	assert.Equal(t, store.Options{
		Backend: store.BackendBolt,
		Path:    "/x.db",
		Driver:  store.DriverPureGo,
		Timeout: time.Second,
	}, c.StoreOptions())
}

func TestSlogLevel(t *testing.T) {
	lvl, err := LogConfig{Level: "debug"}.SlogLevel()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())
}
