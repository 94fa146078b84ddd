package config

import (
	"errors"
	"fmt"
	"path/filepath"

	"prompt-cms/logger"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// Migrate applies (up) or rolls back (down) the SQL migrations under
// cfg.MigrationsPath. Only postgres is supported; SQLite databases are
// created with AutoMigrate.
func Migrate(cfg DatabaseConfig, up bool) error {
	if cfg.Driver == DriverSQLite {
		return errors.New("sql migrations require the postgres driver, use auto_migrate for sqlite")
	}

	path, err := filepath.Abs(cfg.MigrationsPath)
	if err != nil {
		return fmt.Errorf("resolve migrations path: %w", err)
	}

	m, err := migrate.New("file://"+filepath.ToSlash(path), cfg.MigrationURL())
	if err != nil {
		return fmt.Errorf("migration setup failed: %w", err)
	}
	defer m.Close()

	if up {
		err = m.Up()
	} else {
		err = m.Down()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("database migration failed: %w", err)
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		return verr
	}
	logger.Log.Infow("database migrations applied", "up", up, "version", version, "dirty", dirty)
	return nil
}
