package db

import (
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/snnyvrz/books-crud-api/internal/config"
	"github.com/snnyvrz/books-crud-api/internal/logging"
	"github.com/snnyvrz/books-crud-api/internal/model"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Postgres error classes that no amount of retrying will fix.
var fatalPgCodes = map[string]bool{
	"28000": true, // invalid_authorization_specification
	"28P01": true, // invalid_password
	"3D000": true, // invalid_catalog_name
}

func Dialector(cfg *config.Config) (gorm.Dialector, error) {
	switch cfg.DB.Driver {
	case config.DriverSQLite:
		return sqlite.Open(cfg.DSN()), nil
	case config.DriverPostgres:
		return postgres.Open(cfg.DSN()), nil
	case config.DriverMySQL:
		return mysql.Open(cfg.DSN()), nil
	default:
		return nil, fmt.Errorf("unsupported db driver %q", cfg.DB.Driver)
	}
}

func ConnectWithRetry(cfg *config.Config, logger *zap.Logger) (*gorm.DB, error) {
	dialector, err := Dialector(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{Logger: logging.NewGormLogger(logger)}

	var db *gorm.DB
	for attempt := 1; attempt <= cfg.DB.MaxAttempts; attempt++ {
		db, err = open(dialector, gormCfg)
		if err == nil {
			break
		}

		if isFatal(err) {
			return nil, fmt.Errorf("connect to %s: %w", cfg.DB.Driver, err)
		}

		logger.Warn("db not ready",
			zap.String("driver", cfg.DB.Driver),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", cfg.DB.MaxAttempts),
			zap.Error(err),
		)

		if attempt < cfg.DB.MaxAttempts {
			time.Sleep(cfg.DB.RetryDelay)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("could not connect to db after %d attempts: %w", cfg.DB.MaxAttempts, err)
	}

	if cfg.DB.Driver == config.DriverSQLite {
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		// SQLite allows a single writer; one connection keeps writes serialized.
		sqlDB.SetMaxOpenConns(1)
	}

	return db, nil
}

func open(dialector gorm.Dialector, gormCfg *gorm.Config) (*gorm.DB, error) {
	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}

	return db, nil
}

func isFatal(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return fatalPgCodes[pgErr.Code]
	}
	return false
}

// Migrate creates or updates the books table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.Book{})
}

func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
