package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validKey = "0123456789abcdef0123456789abcdef"

func TestLoad_RequiresSessionKey(t *testing.T) {
	t.Setenv("SESSION_KEY", "")
	_, err := Load()
	require.Error(t, err, "startup must fail without a signing key, never default")

	t.Setenv("SESSION_KEY", "too-short")
	_, err = Load()
	require.Error(t, err)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_KEY", validKey)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, 24*time.Hour, cfg.Auth.SessionTokenDuration)
	assert.Equal(t, SessionStorePostgres, cfg.Auth.SessionStore)
	assert.Len(t, cfg.Auth.SessionKey, 32)
}

func TestLoad_SessionStoreSelector(t *testing.T) {
	t.Setenv("SESSION_KEY", validKey)

	t.Setenv("SESSION_STORE", "redis")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, SessionStoreRedis, cfg.Auth.SessionStore)

	t.Setenv("SESSION_STORE", "memcached")
	_, err = Load()
	assert.Error(t, err)
}

func TestLoad_TokenDurationFromEnv(t *testing.T) {
	t.Setenv("SESSION_KEY", validKey)
	t.Setenv("SESSION_TOKEN_DURATION", "3600")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTokenDuration)
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	c := DatabaseConfig{
		Host: "db", Port: "5432", User: "app", Password: "pw",
		DBName: "enroll", SSLMode: "disable",
	}
	assert.Equal(t,
		"host=db port=5432 user=app password=pw dbname=enroll sslmode=disable",
		c.ConnectionString(),
	)

	c.ChannelBinding = "require"
	assert.Contains(t, c.ConnectionString(), "channel_binding=require")
}
