package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	EnvPrefix  = "BOOKS_"
	EnvFileVar = "BOOKS_CONFIG"
)

// Load builds a Config by layering, from lowest to highest precedence:
//  1. defaults from New
//  2. variables from a .env file in the working directory, if one exists
//  3. a YAML file named by BOOKS_CONFIG
//  4. BOOKS_* environment variables (BOOKS_DB_DRIVER -> db.driver)
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. An empty path skips the
// dotenv step.
func LoadFrom(dotenvPath string) (*Config, error) {
	if dotenvPath != "" {
		if err := godotenv.Load(dotenvPath); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	cfg := New()
	k := koanf.New(".")

	if path := os.Getenv(EnvFileVar); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.DB.SSLMode == "" {
		if cfg.GinMode == "release" {
			cfg.DB.SSLMode = "require"
		} else {
			cfg.DB.SSLMode = "disable"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// envKey maps BOOKS_DB_MAX_ATTEMPTS to db.max_attempts and BOOKS_LOG_LEVEL to
// log_level. Only the db section is nested.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	if strings.HasPrefix(s, "db_") {
		return "db." + strings.TrimPrefix(s, "db_")
	}
	return s
}
