package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Environment     string        `env:"SCORING_ENV" envDefault:"development"`
	HTTPAddr        string        `env:"SCORING_HTTP_ADDR" envDefault:":8080"`
	StoreDriver     string        `env:"SCORING_STORE_DRIVER" envDefault:"sqlite"`
	DataDir         string        `env:"SCORING_DATA_DIR" envDefault:"./databases"`
	PostgresDSN     string        `env:"SCORING_POSTGRES_DSN"`
	AllowedOrigins  []string      `env:"SCORING_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
	ShutdownTimeout time.Duration `env:"SCORING_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	OutboxSize      int           `env:"SCORING_OUTBOX_SIZE" envDefault:"32"`
	CodeMaxLen      int           `env:"SCORING_CODE_MAX_LEN" envDefault:"16"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}
	return FromEnv()
}

func FromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var dsnRules []validation.Rule
	if c.StoreDriver == DriverPostgres {
		dsnRules = append(dsnRules, validation.Required)
	}
	return validation.ValidateStruct(&c,
		validation.Field(&c.HTTPAddr, validation.Required),
		validation.Field(&c.StoreDriver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
		validation.Field(&c.DataDir, validation.Required),
		validation.Field(&c.PostgresDSN, dsnRules...),
		validation.Field(&c.OutboxSize, validation.Min(1)),
		validation.Field(&c.CodeMaxLen, validation.Min(1), validation.Max(16)),
	)
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}
