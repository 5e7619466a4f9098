package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Load parses environment variables into the provided struct using `env`
// and `envDefault` tags. Values from a local .env file, when present, are
// applied first without overriding variables already set in the process.
//
// Example:
//
//	type Config struct {
//	    Port     int    `env:"CATALOG_HTTP_PORT" envDefault:"8012"`
//	    LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
//	}
func Load(cfg any) error {
	if err := LoadDotEnv(".env"); err != nil {
		return err
	}
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// LoadDotEnv applies the given dotenv files to the process environment.
// Missing files are skipped; malformed files are an error.
func LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}
