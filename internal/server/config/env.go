package config

import (
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/hynorvixx/backend/internal/timex"
	"github.com/joho/godotenv"
)

// dotenvFiles are loaded, when present, before environment variables are read.
// Variables already set in the process environment win over file entries.
var dotenvFiles = []string{".env.local", ".env"}

// envParsers lets duration variables use a day suffix ("7d").
var envParsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(time.Duration(0)): func(v string) (any, error) {
		return timex.ParseDuration(v)
	},
}

// parseEnv loads optional .env files and then overlays environment variables.
// Fields whose variable is unset keep their current value.
func parseEnv(config *Config) error {
	for _, f := range dotenvFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", f, err)
		}
	}
	if err := env.ParseWithOptions(config, env.Options{FuncMap: envParsers}); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
