// Package commands provides the subcommands of the admin CLI.
package commands

import (
	"context"
	"database/sql"
	"encoding/json"
	"io"

	"github.com/openhome-school/backend/internal/config"
	"github.com/openhome-school/backend/internal/database"
	"github.com/openhome-school/backend/internal/observability"
)

// Env carries shared resources. The database is opened on first use so
// commands that do not need it run without one.
type Env struct {
	Config  *config.Config
	Logger  *observability.Logger
	Verbose bool

	db *sql.DB
}

func NewEnv(cfg *config.Config, logger *observability.Logger) *Env {
	return &Env{Config: cfg, Logger: logger}
}

// DB returns the shared connection, opening it if needed.
func (e *Env) DB(ctx context.Context) (*sql.DB, error) {
	if e.db != nil {
		return e.db, nil
	}
	db, err := database.Open(ctx, e.Config.Database, e.Logger)
	if err != nil {
		return nil, err
	}
	e.db = db
	return db, nil
}

func (e *Env) Close() {
	if e.db == nil {
		return
	}
	if err := e.db.Close(); err != nil {
		e.Logger.Warn(context.Background(), "Failed to close database connection", map[string]interface{}{"error": err.Error()})
	}
	e.db = nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
