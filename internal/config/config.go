// Package config reads process configuration from the environment, after
// merging a local .env file when one exists.
package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"golang.org/x/text/language"
)

// Store backends.
const (
	StoreSQLite = "sqlite"
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port  string `env:"PORT" envDefault:"3000"`
	Store string `env:"STORE" envDefault:"sqlite"`

	DBPath   string `env:"DB_PATH" envDefault:"tatpro.db"`
	MongoURI string `env:"MONGO_URI"`
	MongoDB  string `env:"MONGO_DB" envDefault:"tatpro"`

	AdminCode        string        `env:"ADMIN_CODE"`
	AdminTokenSecret string        `env:"ADMIN_TOKEN_SECRET"`
	AdminTokenTTL    time.Duration `env:"ADMIN_TOKEN_TTL" envDefault:"12h"`

	StaticDir string `env:"STATIC_DIR"`
	Locale    string `env:"LOCALE" envDefault:"he-IL"`
	PDFFont   string `env:"PDF_FONT"`

	// Terminal client.
	APIURL  string `env:"INTAKE_API_URL"`
	DataDir string `env:"INTAKE_DATA_DIR" envDefault:".tatpro"`
}

// Load merges .env into the environment and parses it.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("error loading .env file", "err", err)
	}
	var cfg Config
	if err := ParseEnv(&cfg); err != nil {
		return Config{}, err
	}
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (c Config) Validate() error {
	switch c.Store {
	case StoreSQLite, StoreMongo, StoreMemory:
	default:
		return fmt.Errorf("unknown STORE %q (want sqlite, mongo or memory)", c.Store)
	}
	if c.AdminTokenTTL <= 0 {
		return fmt.Errorf("ADMIN_TOKEN_TTL must be positive, got %s", c.AdminTokenTTL)
	}
	return nil
}

// Diagnostics lists settings that leave part of the service unusable
// without stopping it.
func (c Config) Diagnostics() []string {
	var out []string
	if c.Store == StoreMongo && c.MongoURI == "" {
		out = append(out, "MONGO_URI is not set; the document store will be unavailable")
	}
	if c.AdminCode == "" {
		out = append(out, "ADMIN_CODE is not set; admin login is disabled")
	}
	if c.AdminTokenSecret == "" {
		out = append(out, "ADMIN_TOKEN_SECRET is not set; admin sessions end on restart")
	}
	return out
}

// Tag is the configured locale, falling back to Hebrew.
func (c Config) Tag() language.Tag {
	tag, err := language.Parse(c.Locale)
	if err != nil {
		return language.Hebrew
	}
	return tag
}

func (c Config) Addr() string { return ":" + c.Port }
