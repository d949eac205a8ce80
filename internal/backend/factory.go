// Package backend selects and builds the entity store backend.
package backend

import (
	"fmt"
	"log/slog"

	"despesas/internal/config"
	"despesas/internal/store"
	"despesas/internal/store/memory"
	"despesas/internal/store/sqlite"
)

// Type represents the kind of store backend
type Type string

const (
	MemoryBackend Type = "memory"
	SQLiteBackend Type = "sqlite"
)

// String implements fmt.Stringer
func (t Type) String() string {
	return string(t)
}

// IsValid returns true if the backend type is valid
func (t Type) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

// New builds the store selected by cfg.DataBackend. The memory backend
// keeps all state in process; the sqlite backend persists to disk.
func New(cfg *config.Config) (store.Store, error) {
	backendType := Type(cfg.DataBackend)
	if !backendType.IsValid() {
		return nil, fmt.Errorf("invalid data backend: %s", cfg.DataBackend)
	}

	switch backendType {
	case SQLiteBackend:
		if cfg.SQLiteDBPath == "" {
			return nil, fmt.Errorf("SQLite database path is required for sqlite backend")
		}
		st, err := sqlite.Open(cfg.SQLiteDBPath)
		if err != nil {
			return nil, fmt.Errorf("initialize sqlite backend: %w", err)
		}
		slog.Info("Initialized sqlite backend", "db_path", cfg.SQLiteDBPath)
		return st, nil

	default:
		slog.Info("Initialized memory backend")
		return memory.New(), nil
	}
}
