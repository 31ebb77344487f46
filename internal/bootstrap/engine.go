package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/fantastico/telesales-go/config"
	"github.com/fantastico/telesales-go/internal/adapters/devid"
	"github.com/fantastico/telesales-go/internal/adapters/httpdirectory"
	"github.com/fantastico/telesales-go/internal/adapters/launchurl"
	"github.com/fantastico/telesales-go/internal/adapters/oidcid"
	"github.com/fantastico/telesales-go/internal/adapters/pgdirectory"
	"github.com/fantastico/telesales-go/internal/adapters/redisstore"
	"github.com/fantastico/telesales-go/internal/observability/notify"
	"github.com/fantastico/telesales-go/internal/ports"
	"github.com/fantastico/telesales-go/internal/service"
)

// EngineDeps contains the infrastructure handles BuildEngine wires together.
type EngineDeps struct {
	Config config.AppConfig
	DB     *sql.DB
	Redis  redis.UniversalClient
	Logger *slog.Logger
}

// BuildEngine assembles the session resolution engine from configuration:
// the identity provider (live or mock), both directories, the Redis-backed
// record store, and the launch-URL reader.
func BuildEngine(ctx context.Context, deps EngineDeps) (*service.Engine, error) {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	provider, err := buildIdentityProvider(ctx, deps.Config.Identity, logger)
	if err != nil {
		return nil, fmt.Errorf("build identity provider: %w", err)
	}

	secondary, err := httpdirectory.NewSecondary(httpdirectory.Options{
		BaseURL:        deps.Config.Directory.SecondaryBaseURL,
		APIKey:         deps.Config.Directory.SecondaryAPIKey,
		CodeExpression: deps.Config.Directory.CodeExpression,
		Logger:         logger,
	})
	if err != nil {
		return nil, fmt.Errorf("build secondary directory: %w", err)
	}

	if deps.DB == nil {
		return nil, errors.New("database handle is required")
	}
	if deps.Redis == nil {
		return nil, errors.New("redis client is required")
	}

	return service.NewEngine(service.EngineOptions{
		Provider:  provider,
		Primary:   pgdirectory.NewPrimary(deps.DB, logger),
		Secondary: secondary,
		Records:   redisstore.NewRecordStore(deps.Redis),
		Launch: launchurl.New(launchurl.Options{
			RawURL: deps.Config.LaunchURL,
			Param:  deps.Config.Directory.BypassParam,
		}),
		Notifier:        notify.NewNotifier(logger),
		Logger:          logger,
		AdminOverrides:  deps.Config.Identity.AdminOverrides,
		LookupTimeout:   deps.Config.Directory.LookupTimeout,
		ResolveDeadline: deps.Config.Directory.ResolveDeadline,
	}), nil
}

//nolint:ireturn // the provider implementation is selected at runtime by config.
func buildIdentityProvider(ctx context.Context, cfg config.IdentityConfig, logger *slog.Logger) (ports.IdentityProvider, error) {
	switch cfg.Mode {
	case config.ProviderModeMock:
		logger.Warn("using mock identity provider; do not use in production")
		return devid.NewProvider(devid.Config{
			SubjectID:     cfg.Dev.SubjectID,
			Email:         cfg.Dev.Email,
			EmailVerified: cfg.Dev.EmailVerified,
			SignedIn:      cfg.Dev.SignedIn,
		})
	case config.ProviderModeOIDC:
		return oidcid.NewProvider(ctx, oidcid.ProviderConfig{
			ClientID:     cfg.OIDC.ClientID,
			ClientSecret: cfg.OIDC.ClientSecret,
			DiscoveryURL: cfg.OIDC.DiscoveryURL,
			Scope:        cfg.OIDC.Scope,
			Logger:       logger,
		})
	default:
		return nil, fmt.Errorf("unknown identity mode: %q", cfg.Mode)
	}
}
