package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, "nats://localhost:4222", cfg.NATSURL)
	assert.Equal(t, DefaultProgramAddress, cfg.ProgramAddress)
	assert.Equal(t, 16, cfg.DBPoolSize)
	assert.Empty(t, cfg.ClickhouseDSN)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NATS_URL", "nats://broker:4222")
	t.Setenv("DB_POOL_SIZE", "4")
	t.Setenv("DB_POOL_SIZE_BAD", "x") // unrelated key, ignored

	cfg := Load()

	assert.Equal(t, "nats://broker:4222", cfg.NATSURL)
	assert.Equal(t, 4, cfg.DBPoolSize)
}

func TestLoad_BadIntFallsBack(t *testing.T) {
	t.Setenv("DB_POOL_SIZE", "not-a-number")

	cfg := Load()

	assert.Equal(t, 16, cfg.DBPoolSize)
}

func TestPostgresDSN(t *testing.T) {
	cfg := Config{
		DBHost: "db", DBPort: "5433", DBName: "auction",
		DBUser: "svc", DBPassword: "secret", DBPoolSize: 8,
	}

	assert.Equal(t,
		"postgres://svc:secret@db:5433/auction?sslmode=disable&pool_max_conns=8",
		cfg.PostgresDSN())
}
