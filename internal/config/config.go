package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	ServerPort string
	LogLevel   string

	CustomerCapacity int
	AccountCapacity  int
	LedgerCapacity   int
	OverdraftLimit   decimal.Decimal

	// The ledger mirror and its database are only used when MirrorEnabled is set.
	MirrorEnabled bool
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
}

// Load reads an optional .env file, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Info("No .env file found, relying on system env vars")
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		LogLevel:   getEnv("LOG_LEVEL", "info"),

		CustomerCapacity: getEnvAsInt("CUSTOMER_CAPACITY", 50),
		AccountCapacity:  getEnvAsInt("ACCOUNT_CAPACITY", 50),
		LedgerCapacity:   getEnvAsInt("LEDGER_CAPACITY", 200),
		OverdraftLimit:   getEnvAsDecimal("OVERDRAFT_LIMIT", decimal.NewFromInt(1000)),

		MirrorEnabled: getEnvAsBool("MIRROR_ENABLED", false),
		DBHost:        getEnv("DB_HOST", "localhost"),
		DBPort:        getEnv("DB_PORT", "5432"),
		DBUser:        getEnv("DB_USER", "postgres"),
		DBPassword:    getEnv("DB_PASSWORD", "password"),
		DBName:        getEnv("DB_NAME", "bank_ledger"),
	}
}

// GetDBConnectionString builds a lib/pq DSN for the mirror database.
func (c *Config) GetDBConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName)
}

// Level maps LOG_LEVEL to a slog level. Unknown values log at info.
func (c *Config) Level() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return fallback
	}
	return value
}

func getEnvAsBool(key string, fallback bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return fallback
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return fallback
	}
	return value
}

func getEnvAsDecimal(key string, fallback decimal.Decimal) decimal.Decimal {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return fallback
	}
	value, err := decimal.NewFromString(valueStr)
	if err != nil || value.IsNegative() {
		return fallback
	}
	return value
}
