// Package config loads environment-level configuration with defaults.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// DefaultProgramAddress is the watched auction program.
const DefaultProgramAddress = "EDFwnAysttkv5TW7davfHDuFctxnZxNRb8WCU2AVf7um"

// Config holds all externally supplied settings.
type Config struct {
	HTTPAddr string

	NATSURL string

	StreamWSURL    string
	StreamToken    string
	ProgramAddress string

	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBPoolSize int

	// ClickhouseDSN enables the event archive when non-empty.
	ClickhouseDSN string
}

// Load reads configuration from the environment, first loading a .env file
// if one exists. Every key has a default.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		NATSURL: getenv("NATS_URL", "nats://localhost:4222"),

		StreamWSURL:    getenv("STREAM_WS_URL", "ws://127.0.0.1:8900"),
		StreamToken:    getenv("STREAM_X_TOKEN", ""),
		ProgramAddress: getenv("PROGRAM_ADDRESS", DefaultProgramAddress),

		DBHost:     getenv("DB_HOST", "127.0.0.1"),
		DBPort:     getenv("DB_PORT", "5432"),
		DBName:     getenv("DB_NAME", "task"),
		DBUser:     getenv("DB_USER", "dev"),
		DBPassword: getenv("DB_PASSWORD", "dev"),
		DBPoolSize: getenvInt("DB_POOL_SIZE", 16),

		ClickhouseDSN: getenv("CLICKHOUSE_DSN", ""),
	}
}

// PostgresDSN builds the connection string for the storage pool.
func (c Config) PostgresDSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable&pool_max_conns=%d",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBPoolSize)
}

func getenv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getenvInt(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return defaultValue
}
