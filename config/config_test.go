package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "")
	t.Setenv("STARTING_COINS", "")

	cfg := Load()
	assert.Equal(t, "postgres", cfg.StorageDriver)
	assert.False(t, cfg.UseMemoryStore())
	assert.Equal(t, int64(100), cfg.StartingCoins)
	assert.Equal(t, 5*time.Minute, cfg.PresenceWindow)
	assert.Equal(t, 20, cfg.OnlineListSize)
	assert.Equal(t, "karaoke.events", cfg.RabbitMQEventsQueue)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "Memory")
	t.Setenv("STARTING_COINS", "250")
	t.Setenv("PRESENCE_WINDOW", "90s")
	t.Setenv("DB_MAX_CONNS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	cfg := Load()
	assert.True(t, cfg.UseMemoryStore())
	assert.Equal(t, int64(250), cfg.StartingCoins)
	assert.Equal(t, 90*time.Second, cfg.PresenceWindow)
	assert.Equal(t, int32(10), cfg.DBMaxConns)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSOrigins())
}

func TestPostgresDSN(t *testing.T) {
	cfg := &Config{DBUser: "u", DBPassword: "p", DBHost: "db", DBPort: "5432", DBName: "karaoke", DBSSLMode: "disable"}
	assert.Equal(t, "postgres://u:p@db:5432/karaoke?sslmode=disable", cfg.PostgresDSN())
}

func TestPostgresDSNEscapesCredentials(t *testing.T) {
	cfg := &Config{DBUser: "app", DBPassword: "p@ss/word", DBHost: "db", DBPort: "5432", DBName: "karaoke", DBSSLMode: "require"}
	assert.Equal(t, "postgres://app:p%40ss%2Fword@db:5432/karaoke?sslmode=require", cfg.PostgresDSN())
}

func TestValidate(t *testing.T) {
	cfg := &Config{Env: "development", StorageDriver: "memory", JWTAccessSecret: devAccessSecret, JWTRefreshSecret: devRefreshSecret}
	assert.NoError(t, cfg.Validate())

	cfg.Env = "production"
	err := cfg.Validate()
	assert.ErrorContains(t, err, "JWT secrets")
	assert.ErrorContains(t, err, "memory store")

	cfg = &Config{StorageDriver: "mysql", StartingCoins: -1}
	err = cfg.Validate()
	assert.ErrorContains(t, err, "STORAGE_DRIVER")
	assert.ErrorContains(t, err, "STARTING_COINS")
}
