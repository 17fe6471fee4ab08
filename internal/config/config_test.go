package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const test32ByteSecret = "config-test-secret-32-bytes-long"

func TestLoadRequiresAccessSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "some-secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, "dev", cfg.Server.Env)
	assert.True(t, cfg.Server.IsDevelopment())
	assert.Equal(t, "jwt", cfg.Auth.Backend)
	assert.Equal(t, 7*24*time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, 30*24*time.Hour, cfg.Auth.RefreshTokenDuration)
	// Without a dedicated refresh secret, the access secret is shared.
	assert.Equal(t, cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret)
}

func TestLoadDedicatedRefreshSecret(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "access-secret")
	t.Setenv("REFRESH_TOKEN_SECRET", "refresh-secret")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "access-secret", cfg.Auth.AccessSecret)
	assert.Equal(t, "refresh-secret", cfg.Auth.RefreshSecret)
}

func TestLoadPasetoBackend(t *testing.T) {
	t.Setenv("TOKEN_BACKEND", "paseto")
	t.Setenv("ACCESS_TOKEN_SECRET", test32ByteSecret)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "paseto", cfg.Auth.Backend)
}

func TestLoadPasetoRejectsBadKeyLength(t *testing.T) {
	t.Setenv("TOKEN_BACKEND", "paseto")
	t.Setenv("ACCESS_TOKEN_SECRET", "too-short")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadUnknownBackend(t *testing.T) {
	t.Setenv("TOKEN_BACKEND", "opaque")
	t.Setenv("ACCESS_TOKEN_SECRET", "some-secret")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDurationAndOrigins(t *testing.T) {
	t.Setenv("ACCESS_TOKEN_SECRET", "some-secret")
	t.Setenv("ACCESS_TOKEN_DURATION", "3600")
	t.Setenv("TRUSTED_ORIGINS", "https://app.example.com, https://admin.example.com")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, time.Hour, cfg.Auth.AccessTokenDuration)
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.Server.TrustedOrigins)
}

func TestConnectionString(t *testing.T) {
	dbCfg := DatabaseConfig{
		Host:     "localhost",
		Port:     "5432",
		User:     "postgres",
		Password: "postgres",
		DBName:   "gobeyond",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=postgres password=postgres dbname=gobeyond sslmode=disable",
		dbCfg.ConnectionString())

	dbCfg.ChannelBinding = "require"
	assert.Contains(t, dbCfg.ConnectionString(), "channel_binding=require")
}
