package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Makepad-fr/todo/internal/config"
	"github.com/Makepad-fr/todo/internal/logging"
	"github.com/Makepad-fr/todo/internal/model"
	"github.com/Makepad-fr/todo/internal/todo"
	"github.com/Makepad-fr/todo/internal/ui"
)

// Exit codes: 0 ok, 1 error, 2 usage.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// usageError marks a problem with how the command was invoked.
type usageError struct{ msg string }

func (e usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return usageError{msg: fmt.Sprintf(format, args...)}
}

// app carries everything a command needs; the store is opened lazily so
// help output never touches storage.
type app struct {
	stdout, stderr io.Writer

	configPath string
	backend    string
	dataDir    string
	theme      string
	logLevel   string
	noColor    bool
	group      bool

	cfg    *config.Config
	log    *zap.Logger
	store  *todo.Store
	closer io.Closer

	// runTUI is swapped out in tests.
	runTUI func(*app) error
}

// Execute runs the CLI with args (without the program name) and returns an
// exit code.
func Execute(args []string, stdout, stderr io.Writer) int {
	a := &app{stdout: stdout, stderr: stderr, runTUI: runInteractive}
	return a.execute(args)
}

func (a *app) execute(args []string) int {
	root := a.rootCmd()
	root.SetArgs(args)
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	err := root.Execute()
	a.close()
	if err == nil {
		return ExitOK
	}
	ui.Fail(a.stderr, err.Error())
	var ue usageError
	if errors.As(err, &ue) {
		fmt.Fprintln(a.stderr, ui.Current().Muted.Render("Run `todo --help` for usage."))
		return ExitUsage
	}
	return ExitError
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "todo",
		Short: "todo - a tiny todo list",
		Long: `todo keeps a short list of things to do.

Run without arguments to open the interactive list.`,
		Example: `  todo add "Buy milk"
  todo ls
  todo done 2
  todo rm 3
  todo clear`,
		SilenceErrors: true,
		SilenceUsage:  true,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				return usagef("unknown subcommand: %s", args[0])
			}
			return nil
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runTUI(a)
		},
	}
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{msg: err.Error()}
	})

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default todo.toml, then user config dir)")
	pf.StringVar(&a.backend, "backend", "", "storage backend: file, sqlite, memory")
	pf.StringVar(&a.dataDir, "data-dir", "", "directory holding todos.json / todos.db")
	pf.StringVar(&a.theme, "theme", "", "theme: classic, neon, mono")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&a.noColor, "no-color", false, "disable colors")
	pf.BoolVar(&a.group, "group", false, "group output by pending/done")

	root.AddCommand(
		a.addCmd(),
		a.lsCmd(),
		a.doneCmd(),
		a.rmCmd(),
		a.clearCmd(),
		a.tuiCmd(),
	)
	return root
}

// setup resolves config (defaults < file < env < flags), theme and logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Storage.Backend = a.backend
	}
	if flags.Changed("data-dir") {
		cfg.Storage.Dir = a.dataDir
	}
	if flags.Changed("theme") {
		cfg.UI.Theme = a.theme
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = a.logLevel
	}
	if flags.Changed("group") {
		cfg.UI.Group = a.group
	}
	if a.noColor {
		cfg.UI.Color = config.ColorNever
	}
	if err := cfg.Validate(); err != nil {
		return usageError{msg: err.Error()}
	}

	logger, err := logging.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	ui.SetTheme(cfg.UI.Theme)
	ui.SetColorMode(cfg.UI.Color)

	a.cfg = cfg
	a.log = logger
	a.log.Debug("config resolved",
		zap.String("file", cfg.Path),
		zap.String("backend", cfg.Storage.Backend),
		zap.String("theme", cfg.UI.Theme))
	return nil
}

// todos opens the configured store on first use.
func (a *app) todos() (*todo.Store, error) {
	if a.store != nil {
		return a.store, nil
	}
	kv, closer, err := openKV(a.cfg)
	if err != nil {
		return nil, fmt.Errorf("open %s storage: %w", a.cfg.Storage.Backend, err)
	}
	st, err := todo.New(kv, todo.WithLogger(a.log))
	if err != nil {
		if closer != nil {
			closer.Close()
		}
		return nil, err
	}
	st.Subscribe(func(view []model.Item) {
		a.log.Debug("todos changed", zap.Int("items", len(view)))
	})
	a.store, a.closer = st, closer
	return st, nil
}

func (a *app) close() {
	if a.closer != nil {
		if err := a.closer.Close(); err != nil && a.log != nil {
			a.log.Warn("close storage", zap.Error(err))
		}
		a.closer = nil
	}
	if a.log != nil {
		_ = a.log.Sync()
	}
}
