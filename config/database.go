package config

import (
	"fmt"

	"prompt-cms/logger"
	"prompt-cms/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func gormLogLevel(level string) gormlogger.LogLevel {
	switch level {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

// InitDB opens the configured database and tunes its pool. Join tables are
// registered so link rows keep their own timestamps.
func InitDB(cfg DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	gormCfg := &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	}

	switch cfg.Driver {
	case DriverSQLite:
		dialector = sqlite.Open(cfg.DSN())
	case DriverPostgres, "":
		dialector = postgres.Open(cfg.DSN())
		gormCfg.PrepareStmt = true
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	if cfg.Driver == DriverSQLite {
		// every connection to an in-memory database is a fresh database
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	if err := SetupJoinTables(db); err != nil {
		return nil, err
	}

	if cfg.AutoMigrate {
		logger.Log.Infow("running auto migration", "driver", cfg.Driver)
		if err := db.AutoMigrate(models.All()...); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
	}

	return db, nil
}

func SetupJoinTables(db *gorm.DB) error {
	for field, join := range models.LinkTables() {
		if err := db.SetupJoinTable(&models.Prompt{}, field, join); err != nil {
			return fmt.Errorf("setup join table %s: %w", field, err)
		}
	}
	return nil
}

// OpenTestDB returns a migrated in-memory SQLite database with foreign keys
// enforced.
func OpenTestDB() (*gorm.DB, error) {
	return InitDB(DatabaseConfig{
		Driver:      DriverSQLite,
		URL:         "file::memory:?_foreign_keys=on",
		LogLevel:    "silent",
		AutoMigrate: true,
	})
}
