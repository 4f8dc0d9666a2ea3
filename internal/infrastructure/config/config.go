package config

import (
	"context"
	"log/slog"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port           string   `env:"PORT,            default=8080"`
	Env            string   `env:"ENV,             default=development"`
	LogLevel       string   `env:"LOG_LEVEL,       default=info"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS, default=http://localhost:3000"`

	Database DatabaseConfig
	Redis    RedisConfig
	Invoice  InvoiceConfig
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "pgx".
	Driver string `env:"DB_DRIVER,    default=sqlite"`
	DSN    string `env:"DATABASE_URL, default=file:praktijk.db"`
}

type RedisConfig struct {
	// Addr may be empty, which disables the generation idempotency store.
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type InvoiceConfig struct {
	// DueDays sets each invoice's due date relative to its invoice date.
	DueDays int `env:"INVOICE_DUE_DAYS, default=14"`
	// NumberPrefix is the invoice number prefix: FACT → FACT-2025-001.
	NumberPrefix string `env:"INVOICE_NUMBER_PREFIX, default=FACT"`
	// GenerationWorkers bounds the per-client fan-out of one generation run.
	GenerationWorkers int `env:"INVOICE_GENERATION_WORKERS, default=4"`
	// PracticeName appears on exported documents.
	PracticeName string `env:"PRACTICE_NAME, default=Praktijk Lijf en Leven"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load(logger *slog.Logger) *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		logger.Error("Failed to load configuration", "error", err)
		panic(err)
	}
	return &cfg
}
