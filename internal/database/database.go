// Package database opens the instrumented Postgres pool and applies the
// embedded baseline schema.
package database

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres" // golang-migrate postgres driver
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"

	"go.nhat.io/otelsql"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"

	"github.com/openhome-school/backend/internal/apperrors"
	"github.com/openhome-school/backend/internal/config"
	"github.com/openhome-school/backend/internal/observability"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

var (
	otelDriverName string
	otelDriverOnce sync.Once
	otelDriverErr  error
)

// Open connects through an otelsql-wrapped lib/pq driver, applies the pool
// limits from cfg and pings.
func Open(ctx context.Context, cfg config.DatabaseConfig, logger *observability.Logger) (*sql.DB, error) {
	otelDriverOnce.Do(func() {
		otelDriverName, otelDriverErr = otelsql.Register("postgres",
			otelsql.WithDatabaseName(databaseName(cfg.URL)),
			otelsql.TraceQueryWithArgs(),
			otelsql.WithSystem(semconv.DBSystemPostgreSQL),
			otelsql.TraceRowsAffected(),
		)
	})
	if otelDriverErr != nil {
		return nil, apperrors.WrapError(otelDriverErr, "failed to register otelsql driver")
	}

	db, err := sql.Open(otelDriverName, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.PingContext(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error(ctx, "Failed to close database after ping failure", closeErr)
		}
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info(ctx, "Database connection established", map[string]interface{}{
		"database":          databaseName(cfg.URL),
		"max_open_conns":    cfg.MaxOpenConns,
		"max_idle_conns":    cfg.MaxIdleConns,
		"conn_max_lifetime": cfg.ConnMaxLifetime.String(),
	})
	return db, nil
}

// Migrate applies the embedded baseline schema to the database at databaseURL.
// An already-current database is not an error.
func Migrate(ctx context.Context, databaseURL string, logger *observability.Logger) error {
	src, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return apperrors.WrapError(err, "failed to read embedded migrations")
	}

	m, err := migrate.NewWithSourceInstance("iofs", src, databaseURL)
	if err != nil {
		return apperrors.WrapError(err, "failed to initialize golang-migrate")
	}
	defer func() {
		if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
			logger.Error(ctx, "Error closing migration", errors.Join(srcErr, dbErr))
		}
	}()

	err = m.Up()
	if errors.Is(err, migrate.ErrNoChange) {
		logger.Info(ctx, "Schema already up to date")
		return nil
	}
	if err != nil {
		return apperrors.WrapError(err, "golang-migrate up failed")
	}

	version, _, _ := m.Version()
	logger.Info(ctx, "Schema migrated", map[string]interface{}{"version": version})
	return nil
}

// databaseName extracts the database name from a postgres:// URL or a
// key=value DSN, for span attributes.
func databaseName(databaseURL string) string {
	if u, err := url.Parse(databaseURL); err == nil && u.Scheme != "" {
		if name := strings.TrimPrefix(u.Path, "/"); name != "" {
			return name
		}
	}
	for _, field := range strings.Fields(databaseURL) {
		if name, ok := strings.CutPrefix(field, "dbname="); ok {
			return name
		}
	}
	return "openhome"
}
