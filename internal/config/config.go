// Package config loads stationcache settings from defaults, an optional TOML
// file and STATIONCACHE_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/roach88/stationcache/internal/store"
)

// EnvPrefix prefixes every environment override, e.g. STATIONCACHE_STORE_PATH.
const EnvPrefix = "STATIONCACHE"

// Config holds application configuration.
type Config struct {
	Store StoreConfig `mapstructure:"store"`
	Log   LogConfig   `mapstructure:"log"`
}

// StoreConfig selects and locates the cache database.
type StoreConfig struct {
	Backend string        `mapstructure:"backend"`
	Path    string        `mapstructure:"path"`
	Driver  string        `mapstructure:"driver"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultStorePath is the cache database location under the user data dir.
func DefaultStorePath() string {
	dir := os.Getenv("XDG_DATA_HOME")
	if dir == "" {
		dir = filepath.Join(os.Getenv("HOME"), ".local", "share")
	}
	return filepath.Join(dir, "stationcache", "weather-station.db")
}

// Load reads configuration. file, when non-empty, names the config file and
// must exist; otherwise $STATIONCACHE_CONFIG is used, and failing that
// ~/.config/stationcache/config.toml if present.
func Load(file string) (Config, error) {
	v := viper.New()

	v.SetDefault("store.backend", string(store.BackendSQLite))
	v.SetDefault("store.path", DefaultStorePath())
	v.SetDefault("store.driver", store.DriverCGo)
	v.SetDefault("store.timeout", time.Second)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetConfigType("toml")

	if file == "" {
		file = os.Getenv(EnvPrefix + "_CONFIG")
	}
	explicit := file != ""
	if explicit {
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "stationcache"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks enumerated settings.
func (c Config) Validate() error {
	if _, err := store.ParseBackend(c.Store.Backend); err != nil {
		return fmt.Errorf("store.backend: %w", err)
	}
	switch c.Store.Driver {
	case store.DriverCGo, store.DriverPureGo:
	default:
		return fmt.Errorf("store.driver: unknown driver %q: must be %q or %q", c.Store.Driver, store.DriverCGo, store.DriverPureGo)
	}
	if c.Store.Timeout < 0 {
		return fmt.Errorf("store.timeout: must not be negative")
	}
	if _, err := c.Log.SlogLevel(); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: unknown format %q: must be text or json", c.Log.Format)
	}
	return nil
}

// StoreOptions converts the store section to store.Options.
func (c Config) StoreOptions() store.Options {
	return store.Options{
		Backend: store.Backend(c.Store.Backend),
		Path:    c.Store.Path,
		Driver:  c.Store.Driver,
		Timeout: c.Store.Timeout,
	}
}

// SlogLevel parses Level ("debug", "info", "warn", "error").
func (l LogConfig) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(l.Level)); err != nil {
		return 0, err
	}
	return level, nil
}
