package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/Makepad-fr/todo/internal/config"
	"github.com/Makepad-fr/todo/internal/store"
	"github.com/Makepad-fr/todo/internal/store/jsonstore"
	"github.com/Makepad-fr/todo/internal/store/sqlitestore"
)

// openKV builds the persistence backend named in cfg. The closer is nil for
// backends that hold no resources.
func openKV(cfg *config.Config) (store.KV, io.Closer, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		s, err := jsonstore.New(cfg.Storage.Dir)
		if err != nil {
			return nil, nil, err
		}
		return s, nil, nil
	case config.BackendSQLite:
		path := cfg.SQLiteFile()
		if path != ":memory:" {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, nil, fmt.Errorf("mkdir: %w", err)
			}
		}
		s, err := sqlitestore.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return s, s, nil
	case config.BackendMemory:
		return store.NewMemory(), nil, nil
	}
	return nil, nil, fmt.Errorf("unknown backend %q", cfg.Storage.Backend)
}
