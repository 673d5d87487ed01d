package storage

import (
	"fmt"
	"log/slog"

	"github.com/rs/zerolog"

	"github.com/meridianmaritime/globe/internal/database"
	gormstorage "github.com/meridianmaritime/globe/internal/storage/gorm"
	"github.com/meridianmaritime/globe/internal/storage/memory"
	"github.com/meridianmaritime/globe/pkg/core"
)

// Config selects and configures a backend.
type Config struct {
	Type       string // memory, sqlite or postgres
	SQLitePath string
}

// Dependencies are shared by the database backends.
type Dependencies struct {
	Logger   *slog.Logger
	DBLogger zerolog.Logger
}

// NewBackend creates a catalog backend based on configuration. The memory
// backend starts with the compiled-in locations. The postgres backend falls
// back to SQLite at SQLitePath when the server is unreachable.
func NewBackend(cfg Config, deps Dependencies) (Backend, error) {
	switch cfg.Type {
	case "memory", "":
		return memory.New(core.DefaultLocations), nil
	case "sqlite", "postgres":
		mgr := database.NewManager(deps.DBLogger, cfg.SQLitePath)
		var err error
		if cfg.Type == "postgres" {
			err = mgr.Connect()
		} else {
			err = mgr.ConnectLocal()
		}
		if err != nil {
			return nil, err
		}
		if err := mgr.Setup(); err != nil {
			_ = mgr.Close()
			return nil, err
		}
		return gormstorage.New(gormstorage.Dependencies{
			DB:     mgr.DB,
			Closer: mgr,
			Logger: deps.Logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown storage type: %s", cfg.Type)
	}
}
