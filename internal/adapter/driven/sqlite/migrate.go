package sqlite

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var historyMigrations embed.FS

// ErrDirtySchema means an earlier migration failed halfway. The history
// database has to be repaired (or deleted) before the watcher can use it.
var ErrDirtySchema = errors.New("notification history schema is dirty")

// SchemaVersion is the history schema version before and after MigrateHistory.
// Zero means no migration had been applied.
type SchemaVersion struct {
	From uint
	To   uint
}

// Upgraded reports whether MigrateHistory applied anything.
func (v SchemaVersion) Upgraded() bool { return v.To != v.From }

// MigrateHistory applies pending notification history migrations and
// reports the versions involved. A dirty schema is refused with
// ErrDirtySchema rather than migrated further.
func MigrateHistory(db *sql.DB) (SchemaVersion, error) {
	m, err := newHistoryMigrator(db)
	if err != nil {
		return SchemaVersion{}, err
	}

	from, err := currentVersion(m)
	if err != nil {
		return SchemaVersion{}, err
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return SchemaVersion{From: from}, fmt.Errorf("migrate notification history from version %d: %w", from, err)
	}

	to, err := currentVersion(m)
	if err != nil {
		return SchemaVersion{From: from}, err
	}
	return SchemaVersion{From: from, To: to}, nil
}

// newHistoryMigrator binds the embedded migrations to db. The migrator is
// never closed: closing it would close db as well.
func newHistoryMigrator(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(historyMigrations, "migrations")
	if err != nil {
		return nil, fmt.Errorf("open embedded history migrations: %w", err)
	}

	driver, err := migratesqlite.WithInstance(db, &migratesqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("prepare history migration table: %w", err)
	}

	m, err := migrate.NewWithInstance("history", src, "sqlite", driver)
	if err != nil {
		return nil, fmt.Errorf("create history migrator: %w", err)
	}
	return m, nil
}

func currentVersion(m *migrate.Migrate) (uint, error) {
	v, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read history schema version: %w", err)
	case dirty:
		return v, fmt.Errorf("%w at version %d", ErrDirtySchema, v)
	}
	return v, nil
}
