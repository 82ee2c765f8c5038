package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

type Config struct {
	Addr            string        `koanf:"addr"`
	GinMode         string        `koanf:"gin_mode"`
	LogLevel        string        `koanf:"log_level"`
	TZ              string        `koanf:"tz"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	DB              DBConfig      `koanf:"db"`
}

type DBConfig struct {
	Driver      string        `koanf:"driver"`
	Path        string        `koanf:"path"`
	Host        string        `koanf:"host"`
	Port        string        `koanf:"port"`
	User        string        `koanf:"user"`
	Pass        string        `koanf:"pass"`
	Name        string        `koanf:"name"`
	SSLMode     string        `koanf:"sslmode"`
	MaxAttempts int           `koanf:"max_attempts"`
	RetryDelay  time.Duration `koanf:"retry_delay"`
}

// New returns the configuration used when nothing else is provided: a local
// SQLite file and a debug-mode server on :8000.
func New() *Config {
	return &Config{
		Addr:            ":8000",
		GinMode:         "debug",
		LogLevel:        "info",
		TZ:              "UTC",
		ShutdownTimeout: 10 * time.Second,
		DB: DBConfig{
			Driver:      DriverSQLite,
			Path:        "app.db",
			Host:        "localhost",
			User:        "postgres",
			Name:        "postgres",
			MaxAttempts: 10,
			RetryDelay:  2 * time.Second,
		},
	}
}

func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}

	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return errors.New("db.path must not be empty for sqlite")
		}
	case DriverPostgres, DriverMySQL:
		if c.DB.Host == "" || c.DB.Name == "" {
			return fmt.Errorf("db.host and db.name must be set for %s", c.DB.Driver)
		}
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}

	if c.DB.MaxAttempts < 1 {
		return errors.New("db.max_attempts must be at least 1")
	}

	return nil
}

func (c *Config) DSN() string {
	switch c.DB.Driver {
	case DriverPostgres:
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
			c.DB.Host,
			c.DB.User,
			c.DB.Pass,
			c.DB.Name,
			portOrDefault(c.DB.Port, "5432"),
			c.DB.SSLMode,
			c.TZ,
		)
	case DriverMySQL:
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DB.User,
			c.DB.Pass,
			c.DB.Host,
			portOrDefault(c.DB.Port, "3306"),
			c.DB.Name,
		)
	default:
		return c.DB.Path
	}
}

func portOrDefault(port, def string) string {
	if port != "" {
		return port
	}
	return def
}
