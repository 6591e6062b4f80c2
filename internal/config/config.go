package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

type Config struct {
	ServerAddress  string        `env:"SERVER_ADDRESS" envDefault:"0.0.0.0:8080"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"DEBUG"`
	StorageDriver  string        `env:"STORAGE_DRIVER" envDefault:"postgres"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"5s"`
	PostgresConfig
}

func NewConfig() (*Config, error) {
	config := &Config{}

	if err := loadDotEnv(); err != nil {
		return config, fmt.Errorf("config.NewConfig: %w", err)
	}

	err := env.Parse(config)
	if err != nil {
		return config, fmt.Errorf("config.NewConfig: %w", err)
	}

	if config.StorageDriver != StoragePostgres && config.StorageDriver != StorageMemory {
		return config, fmt.Errorf("config.NewConfig: unknown storage driver %q", config.StorageDriver)
	}
	return config, nil
}

type PostgresConfig struct {
	Conn            string `env:"POSTGRES_CONN" envDefault:"postgres://test:test@db:5432/test?sslmode=disable"`
	Host            string `env:"POSTGRES_HOST" envDefault:"db"`
	Port            string `env:"POSTGRES_PORT" envDefault:"5432"`
	Username        string `env:"POSTGRES_USERNAME" envDefault:"test"`
	Password        string `env:"POSTGRES_PASSWORD" envDefault:"test"`
	Database        string `env:"POSTGRES_DATABASE" envDefault:"test"`
	AutoMigrateUp   string `env:"AUTO_MIGRATE_UP" envDefault:"true"`
	AutoMigrateDown string `env:"AUTO_MIGRATE_DOWN" envDefault:"false"`
	// empty means the migrations embedded into the binary
	MigrationsURL string `env:"MIGRATIONS_URL" envDefault:""`
}

func NewPostgresConfig() (*PostgresConfig, error) {
	config := &PostgresConfig{}

	if err := loadDotEnv(); err != nil {
		return config, fmt.Errorf("config.NewPostgresConfig: %w", err)
	}

	err := env.Parse(config)
	if err != nil {
		err = fmt.Errorf("config.NewPostgresConfig: %w", err)
	}
	return config, err
}

// loadDotEnv fills the environment from ./.env when the file exists.
// Variables already set win over the file.
func loadDotEnv() error {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
