package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the pollwatch daemon and CLI.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	NATS     NATSConfig     `mapstructure:"nats"`
	Program  ProgramConfig  `mapstructure:"program"`
	Database DatabaseConfig `mapstructure:"database"`
	Sink     SinkConfig     `mapstructure:"sink"`
	Metrics  MetricsConfig  `mapstructure:"metrics"`
}

// LogConfig holds structured-logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// NATSConfig holds the update-source transport settings.
type NATSConfig struct {
	URL           string `mapstructure:"url"`
	Name          string `mapstructure:"name"`
	SubjectPrefix string `mapstructure:"subject_prefix"`
}

// ProgramConfig identifies the on-chain program whose account updates are
// consumed, and the encoding the relay publishes account data in.
type ProgramConfig struct {
	ID       string `mapstructure:"id"`
	Encoding string `mapstructure:"encoding"`
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
}

// PostgresConfig holds PostgreSQL connection settings.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Database string `mapstructure:"database"`
	SSLMode  string `mapstructure:"sslmode"`
}

// SinkConfig bounds the persistence worker pool.
type SinkConfig struct {
	Workers      int           `mapstructure:"workers"`
	QueueSize    int           `mapstructure:"queue_size"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout"`
}

// MetricsConfig holds the /metrics listener settings.
type MetricsConfig struct {
	Addr string `mapstructure:"addr"`
}

// ConnString builds a pgx-compatible connection string.
func (p PostgresConfig) ConnString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.Database, p.SSLMode,
	)
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.name", "pollwatch")
	v.SetDefault("nats.subject_prefix", "accounts")

	// Deployed voting program on devnet
	v.SetDefault("program.id", "HH6z4hgoYg2ZsSkceAUxPZUJdWt8hLqUm1SoEmWqYhPh")
	v.SetDefault("program.encoding", "base64")

	v.SetDefault("database.postgres.host", "localhost")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.user", "pollwatch")
	v.SetDefault("database.postgres.password", "")
	v.SetDefault("database.postgres.database", "pollwatch")
	v.SetDefault("database.postgres.sslmode", "disable")

	v.SetDefault("sink.workers", 4)
	v.SetDefault("sink.queue_size", 256)
	v.SetDefault("sink.drain_timeout", "10s")

	v.SetDefault("metrics.addr", ":9108")

	// Read from config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Environment variables override file config,
	// e.g. POLLWATCH_NATS_URL maps to nats.url
	v.SetEnvPrefix("POLLWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}
