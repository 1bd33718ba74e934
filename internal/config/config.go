// Package config loads CLI configuration from the environment. Flags take
// precedence over environment values; the environment takes precedence
// over defaults.
package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-configurable settings.
type Config struct {
	// Backend selects the default storage backend for commands that take
	// a --backend flag.
	Backend string `env:"STASH_BACKEND" envDefault:"sqlite"`

	// Database is the SQLite database path for the relational backend.
	Database string `env:"STASH_DB" envDefault:"stash.db"`

	// DynamoTable is the table name for the document backend.
	DynamoTable string `env:"STASH_DYNAMO_TABLE" envDefault:"stash_users"`
}

// FromEnv parses configuration from STASH_* environment variables.
func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
