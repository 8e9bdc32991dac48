package database

import (
	"fmt"

	"github.com/cinematalkiez/blackhole/internal/config"
	"github.com/cinematalkiez/blackhole/internal/model"
	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dialectors = map[string]func(string) gorm.Dialector{
	"postgres": postgres.Open,
	"sqlite":   sqlite.Open,
}

// Open connects to the configured database driver
func Open(cfg config.DBConfig, env string) (*gorm.DB, error) {
	opener, ok := dialectors[cfg.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}

	dsn := cfg.DSN()
	if cfg.Driver == "sqlite" {
		dsn = cfg.SQLitePath
	}

	gormLogger := logger.Default.LogMode(logger.Info)
	if env == "production" {
		gormLogger = logger.Default.LogMode(logger.Warn)
	}

	return gorm.Open(opener(dsn), &gorm.Config{Logger: gormLogger})
}

// OpenSQLite opens a sqlite database with logging silenced (tests, seeding)
func OpenSQLite(dsn string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
}

// AutoMigrate creates or updates every table the service owns
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.DeviceVerification{},
		&model.Movie{},
	)
}
