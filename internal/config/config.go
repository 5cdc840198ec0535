// Package config loads todo settings from defaults, a TOML file and the
// environment. CLI flags are applied on top by the caller.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"

	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"

	// ProjectFile is looked up in the working directory.
	ProjectFile = "todo.toml"
)

// Environment variables that override file values.
const (
	EnvBackend    = "TODO_BACKEND"
	EnvDataDir    = "TODO_DATA_DIR"
	EnvSQLitePath = "TODO_SQLITE_PATH"
	EnvTheme      = "TODO_THEME"
	EnvLogLevel   = "TODO_LOG_LEVEL"
	EnvNoColor    = "NO_COLOR"
)

type Config struct {
	Storage StorageConfig `toml:"storage"`
	UI      UIConfig      `toml:"ui"`
	Log     LogConfig     `toml:"log"`

	// Path is the file the config was read from, empty for defaults only.
	Path string `toml:"-"`
}

type StorageConfig struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`         // file backend; empty means working directory
	SQLitePath string `toml:"sqlite_path"` // relative paths resolve against Dir
}

type UIConfig struct {
	Theme string `toml:"theme"`
	Group bool   `toml:"group"`
	Color string `toml:"color"`
}

type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Backend:    BackendFile,
			SQLitePath: "todos.db",
		},
		UI: UIConfig{
			Theme: "classic",
			Color: ColorAuto,
		},
		Log: LogConfig{Level: "warn"},
	}
}

// Load builds a Config from defaults, then a TOML file, then the environment.
// An explicit path must exist; otherwise todo.toml in the working directory
// and <user config dir>/todo/config.toml are tried in that order.
// Values are not validated here: callers apply their own overrides and then
// call Validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
		cfg.Path = path
	}

	cfg.applyEnv()
	cfg.normalize()
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{ProjectFile}
	if dir, err := os.UserConfigDir(); err == nil {
		candidates = append(candidates, filepath.Join(dir, "todo", "config.toml"))
	}
	for _, p := range candidates {
		if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
			return p
		}
	}
	return ""
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBackend)); v != "" {
		c.Storage.Backend = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDataDir)); v != "" {
		c.Storage.Dir = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvSQLitePath)); v != "" {
		c.Storage.SQLitePath = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvTheme)); v != "" {
		c.UI.Theme = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Log.Level = v
	}
	// https://no-color.org: any non-empty value disables color
	if os.Getenv(EnvNoColor) != "" {
		c.UI.Color = ColorNever
	}
}

func (c *Config) normalize() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	c.UI.Color = strings.ToLower(strings.TrimSpace(c.UI.Color))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
}

// Validate normalizes case and rejects unknown values.
func (c *Config) Validate() error {
	var errs []error

	c.normalize()
	switch c.Storage.Backend {
	case BackendFile, BackendMemory:
	case BackendSQLite:
		if c.Storage.SQLitePath == "" {
			errs = append(errs, fmt.Errorf("storage.sqlite_path: required for sqlite backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("storage.backend: unknown backend %q (file, sqlite, memory)", c.Storage.Backend))
	}

	switch c.UI.Theme {
	case "classic", "neon", "mono":
	default:
		errs = append(errs, fmt.Errorf("ui.theme: unknown theme %q (classic, neon, mono)", c.UI.Theme))
	}

	switch c.UI.Color {
	case ColorAuto, ColorAlways, ColorNever:
	default:
		errs = append(errs, fmt.Errorf("ui.color: unknown mode %q (auto, always, never)", c.UI.Color))
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level: unknown level %q (debug, info, warn, error)", c.Log.Level))
	}

	return errors.Join(errs...)
}

// SQLiteFile resolves the database path against the data directory.
func (c *Config) SQLiteFile() string {
	p := c.Storage.SQLitePath
	if p == ":memory:" || filepath.IsAbs(p) || c.Storage.Dir == "" {
		return p
	}
	return filepath.Join(c.Storage.Dir, p)
}
