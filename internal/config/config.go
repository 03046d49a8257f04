package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the server configuration, read from the environment
type Config struct {
	GRPCAddr string `env:"GRPC_ADDR" envDefault:":8080"`

	// DBConnStr wins over the individual DB_* parts when set
	DBConnStr  string `env:"DB_CONN_STR"`
	DBHost     string `env:"DB_HOST"     envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT"     envDefault:"5432"`
	DBUser     string `env:"DB_USER"     envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME"     envDefault:"fundflow"`
	DBSSLMode  string `env:"DB_SSLMODE"  envDefault:"disable"`

	// StartupDelay is how long the first connection keeps retrying while Postgres comes up
	StartupDelay time.Duration `env:"STARTUP_DELAY" envDefault:"2s"`

	JWTSecret string `env:"JWT_SECRET" envDefault:"dev-secret"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	Currency    string `env:"CURRENCY"     envDefault:"CAD"`
	SeedPresets bool   `env:"SEED_PRESETS" envDefault:"true"`
}

// Load reads the given .env files (default ".env") into the process environment,
// then parses Config. Missing .env files are ignored.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load dotenv: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DSN returns the Postgres connection string
func (c Config) DSN() string {
	if c.DBConnStr != "" {
		return c.DBConnStr
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode)
}

// Logger builds the process logger from LOG_LEVEL and LOG_FORMAT
func (c Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	switch c.LogFormat {
	case "json":
		logger.SetFormatter(&logrus.JSONFormatter{})
	case "text":
		logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	default:
		return nil, fmt.Errorf("log format %q: must be json or text", c.LogFormat)
	}
	return logger, nil
}
