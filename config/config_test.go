package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppConfig_Defaults(t *testing.T) {
	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.False(t, cfg.IsDev)
	assert.Equal(t, ProviderModeOIDC, cfg.Identity.Mode)
	assert.Equal(t, 3*time.Second, cfg.Directory.LookupTimeout)
	assert.Zero(t, cfg.Directory.ResolveDeadline)
	assert.Equal(t, "slpCode", cfg.Directory.CodeExpression)
	assert.Equal(t, "slpCode", cfg.Directory.BypassParam)
	assert.Equal(t, "localhost", cfg.Postgres.Host)
	assert.Equal(t, 5432, cfg.Postgres.Port)
	assert.Equal(t, "localhost:6379", cfg.Redis.URI)
	assert.True(t, cfg.Postgres.RunMigrationsOnStart)
}

func TestAppConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DEV", "true")
	t.Setenv("LAUNCH_URL", "https://app.fantastico.example/?slpCode=9")
	t.Setenv("IDENTITY_MODE", "mock")
	t.Setenv("DIRECTORY_LOOKUP_TIMEOUT", "500ms")
	t.Setenv("DIRECTORY_SECONDARY_URL", "https://api.fantastico.example")
	t.Setenv("ADMIN_OVERRIDES", "admin@fantastico.example:-1,ops@fantastico.example:-1")
	t.Setenv("DB_NAME", "telesales_test")
	t.Setenv("REDIS_URI", "localhost:56379")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()

	assert.True(t, cfg.IsDev)
	assert.Equal(t, "https://app.fantastico.example/?slpCode=9", cfg.LaunchURL)
	assert.Equal(t, ProviderModeMock, cfg.Identity.Mode)
	assert.Equal(t, 500*time.Millisecond, cfg.Directory.LookupTimeout)
	assert.Equal(t, "https://api.fantastico.example", cfg.Directory.SecondaryBaseURL)
	assert.Equal(t, map[string]string{
		"admin@fantastico.example": "-1",
		"ops@fantastico.example":   "-1",
	}, cfg.Identity.AdminOverrides)
	assert.Equal(t, "telesales_test", cfg.Postgres.Name)
	assert.Equal(t, "localhost:56379", cfg.Redis.URI)
}

func TestAppConfig_InvalidProviderMode(t *testing.T) {
	t.Setenv("IDENTITY_MODE", "ldap")

	var cfg AppConfig
	err := env.Parse(&cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid ProviderMode")
}

func TestDirectoryConfig_Sanitize(t *testing.T) {
	cfg := DirectoryConfig{LookupTimeout: -time.Second, ResolveDeadline: -time.Minute}
	cfg.Sanitize()
	assert.Equal(t, DefaultLookupTimeout, cfg.LookupTimeout)
	assert.Zero(t, cfg.ResolveDeadline)
}

func TestAppConfig_NodeEnvDevMode(t *testing.T) {
	t.Setenv("NODE_ENV", "development")

	var cfg AppConfig
	require.NoError(t, env.Parse(&cfg))
	cfg.Sanitize()
	assert.True(t, cfg.IsDev)
}
