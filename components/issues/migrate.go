package issues

import (
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate applies the embedded schema migrations to the database at
// databaseURL. A dirty database is forced back to its recorded version
// before migrating.
func Migrate(databaseURL string) error {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("issues: open embedded migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", source, databaseURL)
	if err != nil {
		return fmt.Errorf("issues: init migrations: %w", err)
	}
	return runMigrations(m)
}

// MigrateDir applies the schema migrations found under dir, for deployments
// that manage migration files on disk.
func MigrateDir(databaseURL, dir string) error {
	m, err := migrate.New("file://"+dir, databaseURL)
	if err != nil {
		return fmt.Errorf("issues: init migrations: %w", err)
	}
	return runMigrations(m)
}

func runMigrations(m *migrate.Migrate) error {
	defer func() { _, _ = m.Close() }()

	if version, dirty, _ := m.Version(); dirty {
		if err := m.Force(int(version)); err != nil {
			return fmt.Errorf("issues: force migration version %d: %w", version, err)
		}
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("issues: apply migrations: %w", err)
	}
	return nil
}
