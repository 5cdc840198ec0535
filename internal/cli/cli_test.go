package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Makepad-fr/todo/internal/config"
	"github.com/Makepad-fr/todo/internal/model"
	"github.com/Makepad-fr/todo/internal/store/jsonstore"
	"github.com/Makepad-fr/todo/internal/todo"
	"github.com/Makepad-fr/todo/internal/ui"
)

// workspace isolates config lookup and returns a data dir.
func workspace(t *testing.T) string {
	t.Helper()
	prevWD, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(prevWD) })
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	for _, k := range []string{config.EnvBackend, config.EnvDataDir, config.EnvSQLitePath, config.EnvTheme, config.EnvLogLevel, config.EnvNoColor} {
		t.Setenv(k, "")
	}
	t.Cleanup(func() { ui.SetTheme("classic") })
	return t.TempDir()
}

func run(t *testing.T, dir string, args ...string) (int, string, string) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	full := append([]string{"--data-dir", dir, "--no-color", "--theme", "mono"}, args...)
	code := Execute(full, &stdout, &stderr)
	return code, ui.StripANSI(stdout.String()), ui.StripANSI(stderr.String())
}

func persisted(t *testing.T, dir string) []model.Item {
	t.Helper()
	kv, err := jsonstore.New(dir)
	require.NoError(t, err)
	st, err := todo.New(kv)
	require.NoError(t, err)
	return st.DisplayOrder()
}

func textsOf(items []model.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Text
	}
	return out
}

func TestAddAndList(t *testing.T) {
	dir := workspace(t)

	code, out, _ := run(t, dir, "add", "buy", "milk")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "added")

	code, _, _ = run(t, dir, "add", "walk the dog")
	require.Equal(t, ExitOK, code)

	assert.Equal(t, []string{"walk the dog", "buy milk"}, textsOf(persisted(t, dir)))
	_, err := os.Stat(filepath.Join(dir, "todos.json"))
	assert.NoError(t, err)

	code, out, _ = run(t, dir, "ls")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, " 1. [ ] walk the dog")
	assert.Contains(t, out, " 2. [ ] buy milk")
	assert.Contains(t, out, "Total 2")
}

func TestAddUsage(t *testing.T) {
	dir := workspace(t)

	code, _, errOut := run(t, dir, "add")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "usage: todo add")

	code, _, errOut = run(t, dir, "add", "   ")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "empty title")
	assert.Empty(t, persisted(t, dir))
}

func TestDoneRmClear(t *testing.T) {
	dir := workspace(t)
	for _, s := range []string{"a", "b", "c"} {
		code, _, _ := run(t, dir, "add", s)
		require.Equal(t, ExitOK, code)
	}

	// ls shows c, b, a; complete "b" by its display index
	code, out, _ := run(t, dir, "done", "2")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "toggled")

	items := persisted(t, dir)
	assert.Equal(t, []string{"c", "a", "b"}, textsOf(items))
	assert.True(t, items[2].Completed)
	assert.NotNil(t, items[2].CompletedAt)

	code, out, _ = run(t, dir, "ls", "--group")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "Pending")
	assert.Contains(t, out, " 3. [x] b")

	code, _, _ = run(t, dir, "rm", "1")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"a", "b"}, textsOf(persisted(t, dir)))

	code, out, _ = run(t, dir, "clear")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "cleared 1 completed")
	assert.Equal(t, []string{"a"}, textsOf(persisted(t, dir)))

	code, out, _ = run(t, dir, "clear")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "cleared 0 completed")
}

func TestIndexErrors(t *testing.T) {
	dir := workspace(t)
	code, _, _ := run(t, dir, "add", "a")
	require.Equal(t, ExitOK, code)

	cases := []struct {
		args []string
		want string
	}{
		{[]string{"done"}, "usage: todo done <index>"},
		{[]string{"done", "x"}, "done: not a number: x"},
		{[]string{"done", "0"}, "index out of range: have 1, got 0"},
		{[]string{"rm", "2"}, "index out of range: have 1, got 2"},
		{[]string{"rm", "1", "2"}, "usage: todo rm <index>"},
	}
	for _, tc := range cases {
		t.Run(strings.Join(tc.args, " "), func(t *testing.T) {
			code, _, errOut := run(t, dir, tc.args...)
			assert.Equal(t, ExitUsage, code)
			assert.Contains(t, errOut, tc.want)
		})
	}
	assert.Len(t, persisted(t, dir), 1)
}

func TestUnknownCommandAndFlag(t *testing.T) {
	dir := workspace(t)

	code, _, errOut := run(t, dir, "frobnicate")
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, errOut, "unknown subcommand: frobnicate")

	code, _, _ = run(t, dir, "ls", "--bogus")
	assert.Equal(t, ExitUsage, code)
}

func TestBadConfigValue(t *testing.T) {
	dir := workspace(t)

	var stdout, stderr bytes.Buffer
	code := Execute([]string{"--data-dir", dir, "--theme", "pink", "ls"}, &stdout, &stderr)
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, ui.StripANSI(stderr.String()), "ui.theme")
}

func TestFlagOverridesBadEnv(t *testing.T) {
	dir := workspace(t)
	t.Setenv(config.EnvTheme, "bogus")

	// run passes --theme mono, which wins over the environment
	code, _, errOut := run(t, dir, "ls")
	assert.Equal(t, ExitOK, code, errOut)

	var stdout, stderr bytes.Buffer
	code = Execute([]string{"--data-dir", dir, "ls"}, &stdout, &stderr)
	assert.Equal(t, ExitUsage, code)
	assert.Contains(t, ui.StripANSI(stderr.String()), `unknown theme "bogus"`)
}

func TestConfigFileSelectsBackend(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(config.ProjectFile, []byte("[storage]\nbackend = \"sqlite\"\n"), 0o644))

	code, _, _ := run(t, dir, "add", "stored in sqlite")
	require.Equal(t, ExitOK, code)

	_, err := os.Stat(filepath.Join(dir, "todos.db"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "todos.json"))
	assert.True(t, os.IsNotExist(err))

	code, out, _ := run(t, dir, "ls")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "stored in sqlite")
}

func TestStorageOpenFailure(t *testing.T) {
	workspace(t)
	notADir := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(notADir, nil, 0o644))

	code, _, errOut := run(t, notADir, "add", "x")
	assert.Equal(t, ExitError, code)
	assert.Contains(t, errOut, "open file storage")
}

func TestCorruptDataStartsEmpty(t *testing.T) {
	dir := workspace(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "todos.json"), []byte("not json"), 0o644))

	code, out, _ := run(t, dir, "--log-level", "error", "ls")
	require.Equal(t, ExitOK, code)
	assert.Contains(t, out, "no items")

	code, _, _ = run(t, dir, "add", "fresh")
	require.Equal(t, ExitOK, code)
	assert.Equal(t, []string{"fresh"}, textsOf(persisted(t, dir)))
}

func TestRootRunsInteractive(t *testing.T) {
	dir := workspace(t)

	for _, args := range [][]string{{}, {"tui"}} {
		var called bool
		var stdout, stderr bytes.Buffer
		a := &app{stdout: &stdout, stderr: &stderr, runTUI: func(a *app) error {
			called = true
			_, err := a.todos()
			return err
		}}
		code := a.execute(append([]string{"--data-dir", dir}, args...))
		assert.Equal(t, ExitOK, code)
		assert.True(t, called, "args %v", args)
	}
}

func TestHelp(t *testing.T) {
	dir := workspace(t)
	code, out, _ := run(t, dir, "--help")
	assert.Equal(t, ExitOK, code)
	for _, sub := range []string{"add", "ls", "done", "rm", "clear", "tui"} {
		assert.Contains(t, out, sub)
	}
}
