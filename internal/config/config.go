package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

type Config struct {
	DBDriver        string
	DatabaseURL     string
	MigrationsPath  string
	ServerPort      int
	SessionLifetime time.Duration
	CORSOrigin      string

	DiscordKey         string
	DiscordSecret      string
	DiscordCallbackURL string
	GoogleKey          string
	GoogleSecret       string
	GoogleCallbackURL  string
}

func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.ServerPort)
}

// MigrationsURL is the golang-migrate source for the configured driver.
func (c *Config) MigrationsURL() string {
	return fmt.Sprintf("file://%s/%s", c.MigrationsPath, c.DBDriver)
}

// Load reads the configuration from the environment. A .env file is picked up if present.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv(os.Getenv)
}

func fromEnv(getenv func(string) string) (*Config, error) {
	cfg := &Config{
		DBDriver:           orDefault(getenv("DB_DRIVER"), DriverSQLite),
		MigrationsPath:     orDefault(getenv("MIGRATIONS_PATH"), "migrations"),
		CORSOrigin:         getenv("CORS_ORIGIN"),
		DiscordKey:         getenv("DISCORD_KEY"),
		DiscordSecret:      getenv("DISCORD_SECRET"),
		DiscordCallbackURL: getenv("DISCORD_CALLBACK_URL"),
		GoogleKey:          getenv("GOOGLE_KEY"),
		GoogleSecret:       getenv("GOOGLE_SECRET"),
		GoogleCallbackURL:  getenv("GOOGLE_CALLBACK_URL"),
	}

	switch cfg.DBDriver {
	case DriverSQLite:
		cfg.DatabaseURL = orDefault(getenv("DATABASE_URL"), "esports_bracket.db?_journal_mode=WAL")
	case DriverPostgres:
		cfg.DatabaseURL = getenv("DATABASE_URL")
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL environment variable is required for the postgres driver")
		}
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	port, err := strconv.Atoi(orDefault(getenv("SERVER_PORT"), "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	lifetime, err := time.ParseDuration(orDefault(getenv("SESSION_LIFETIME"), "24h"))
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_LIFETIME environment variable: %w", err)
	}
	cfg.SessionLifetime = lifetime

	return cfg, nil
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
