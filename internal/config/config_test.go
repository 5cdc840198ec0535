package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolate keeps the developer's own config and env out of the test.
func isolate(t *testing.T) {
	t.Helper()
	prevWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range []string{EnvBackend, EnvDataDir, EnvSQLitePath, EnvTheme, EnvLogLevel, EnvNoColor} {
		t.Setenv(k, "")
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadProjectFile(t *testing.T) {
	isolate(t)
	writeFile(t, ProjectFile, `
[storage]
backend = "SQLite"
dir = "data"

[ui]
theme = "neon"
group = true

[log]
level = "debug"
`)

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ProjectFile, cfg.Path)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "data", cfg.Storage.Dir)
	assert.Equal(t, "todos.db", cfg.Storage.SQLitePath, "unset keys keep defaults")
	assert.Equal(t, filepath.Join("data", "todos.db"), cfg.SQLiteFile())
	assert.Equal(t, "neon", cfg.UI.Theme)
	assert.True(t, cfg.UI.Group)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadUserConfigDir(t *testing.T) {
	isolate(t)
	dir, err := os.UserConfigDir()
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "todo", "config.toml"), "[ui]\ntheme = \"mono\"\n")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mono", cfg.UI.Theme)
}

func TestLoadExplicitPath(t *testing.T) {
	isolate(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err, "an explicit config file must exist")

	p := filepath.Join(t.TempDir(), "custom.toml")
	writeFile(t, p, "[storage]\nbackend = \"memory\"\n")
	cfg, err := Load(p)
	require.NoError(t, err)
	assert.Equal(t, BackendMemory, cfg.Storage.Backend)
	assert.Equal(t, p, cfg.Path)
}

func TestLoadBadTOML(t *testing.T) {
	isolate(t)
	writeFile(t, ProjectFile, "[storage\nbackend = ")

	_, err := Load("")
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	isolate(t)
	writeFile(t, ProjectFile, "[ui]\ntheme = \"neon\"\n")
	t.Setenv(EnvTheme, "mono")
	t.Setenv(EnvBackend, "sqlite")
	t.Setenv(EnvSQLitePath, "/var/lib/todo.db")
	t.Setenv(EnvDataDir, "/tmp/ignored-for-abs")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvNoColor, "1")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mono", cfg.UI.Theme)
	assert.Equal(t, BackendSQLite, cfg.Storage.Backend)
	assert.Equal(t, "/var/lib/todo.db", cfg.SQLiteFile())
	assert.Equal(t, "error", cfg.Log.Level)
	assert.Equal(t, ColorNever, cfg.UI.Color)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Storage.Backend = "redis"
	cfg.UI.Theme = "pink"
	cfg.UI.Color = "sometimes"
	cfg.Log.Level = "loud"

	err := cfg.Validate()
	require.Error(t, err)
	for _, field := range []string{"storage.backend", "ui.theme", "ui.color", "log.level"} {
		assert.ErrorContains(t, err, field)
	}

	cfg = Default()
	cfg.Storage.Backend = BackendSQLite
	cfg.Storage.SQLitePath = ""
	assert.ErrorContains(t, cfg.Validate(), "sqlite_path")
}

func TestLoadLeavesValidationToCaller(t *testing.T) {
	isolate(t)
	t.Setenv(EnvTheme, "Bogus")

	cfg, err := Load("")
	require.NoError(t, err, "a later override may still fix the value")
	assert.Equal(t, "bogus", cfg.UI.Theme)
	assert.ErrorContains(t, cfg.Validate(), "ui.theme")

	cfg.UI.Theme = "mono"
	assert.NoError(t, cfg.Validate())
}
