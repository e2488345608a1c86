package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"fuelboard/internal/log"
)

// SchemaVersion is the version the embedded migrations end at.
const SchemaVersion uint = 1

// migrationsTable keeps the dataset's schema history apart from any other
// tool sharing the file.
const migrationsTable = "fuelboard_schema_migrations"

//go:embed migrations/*.sql
var migrationsFS embed.FS

// migrateSchema brings the dataset file at dbPath to SchemaVersion and
// returns the version it ended at. The sqlite driver closes the handle it is
// given, so migrations run on a connection of their own.
func migrateSchema(dbPath string, logger *log.Logger) (uint, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return 0, fmt.Errorf("open migration database: %w", err)
	}
	defer conn.Close()

	driver, err := sqlite.WithInstance(conn, &sqlite.Config{MigrationsTable: migrationsTable})
	if err != nil {
		return 0, fmt.Errorf("create sqlite driver: %w", err)
	}

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, fmt.Errorf("open embedded migrations: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return 0, fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	from, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, fmt.Errorf("read schema version: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("apply migrations: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("schema version %d is dirty", version)
	}

	if version != from {
		logger.Info("Dataset schema migrated",
			"db_path", dbPath,
			"from_version", from,
			"version", version)
	} else {
		logger.Debug("Dataset schema up to date", "db_path", dbPath, "version", version)
	}
	return version, nil
}
