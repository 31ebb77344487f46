package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fantastico/telesales-go/config"
	"github.com/fantastico/telesales-go/internal/testutil"
)

func mockModeConfig() config.AppConfig {
	var cfg config.AppConfig
	cfg.Identity.Mode = config.ProviderModeMock
	cfg.Identity.Dev = config.DevIdentityConfig{
		SubjectID:     "dev-user",
		Email:         "dev@fantastico.example",
		EmailVerified: true,
	}
	cfg.Directory.SecondaryBaseURL = "https://api.fantastico.example"
	cfg.Sanitize()
	return cfg
}

func testRedis(t *testing.T) redis.UniversalClient {
	t.Helper()
	mr := miniredis.RunT(t)
	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func TestBuildEngine_MockMode(t *testing.T) {
	db := testutil.SetupTestDB(t)
	t.Cleanup(func() { testutil.TeardownTestDB(t, db) })

	engine, err := BuildEngine(context.Background(), EngineDeps{
		Config: mockModeConfig(),
		DB:     db,
		Redis:  testRedis(t),
	})
	require.NoError(t, err)
	assert.NotNil(t, engine)
}

func TestBuildEngine_MissingSecondaryURL(t *testing.T) {
	cfg := mockModeConfig()
	cfg.Directory.SecondaryBaseURL = ""

	_, err := BuildEngine(context.Background(), EngineDeps{Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "secondary directory")
}

func TestBuildEngine_UnknownIdentityMode(t *testing.T) {
	cfg := mockModeConfig()
	cfg.Identity.Mode = "ldap"

	_, err := BuildEngine(context.Background(), EngineDeps{Config: cfg})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "identity")
}

func TestLoadConfig_Defaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, config.ProviderModeOIDC, cfg.Identity.Mode)
	assert.Positive(t, cfg.Directory.LookupTimeout)
}

func TestInitLogger(t *testing.T) {
	logger := InitLogger()
	require.NotNil(t, logger)
}
