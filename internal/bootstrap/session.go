package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	// pgx driver for database/sql, used by the postgres store backend.
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/coursehub/coursehub-ui/config"
	"github.com/coursehub/coursehub-ui/internal/adapters/devgateway"
	"github.com/coursehub/coursehub-ui/internal/adapters/gateway"
	"github.com/coursehub/coursehub-ui/internal/adapters/oidcidp"
	"github.com/coursehub/coursehub-ui/internal/adapters/pgstore"
	redisadapter "github.com/coursehub/coursehub-ui/internal/adapters/redis"
	"github.com/coursehub/coursehub-ui/internal/adapters/sessionfile"
	domainauth "github.com/coursehub/coursehub-ui/internal/domain/auth"
	"github.com/coursehub/coursehub-ui/internal/ports"
	"github.com/coursehub/coursehub-ui/internal/session"
)

// BuildSessionManager wires the store, gateway, and optional federated
// provider selected by config, then constructs the rehydrated manager.
// The returned cleanup closes any connections the wiring opened.
func BuildSessionManager(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (*session.Manager, func(), error) {
	cleanup := func() {}

	store, storeCleanup, err := buildSessionStore(ctx, cfg, logger)
	if err != nil {
		return nil, cleanup, err
	}
	cleanup = storeCleanup

	gw, err := buildGateway(cfg)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	provider, err := buildProvider(ctx, cfg, logger)
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}

	mgr, err := session.NewManager(ctx, session.Options{
		Gateway:        gw,
		Provider:       provider,
		Store:          store,
		Logger:         logger,
		GatewayTimeout: cfg.Auth.Gateway.Timeout,
	})
	if err != nil {
		cleanup()
		return nil, func() {}, err
	}
	return mgr, cleanup, nil
}

func buildSessionStore(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (ports.SessionStore, func(), error) {
	noop := func() {}

	switch cfg.Session.Backend {
	case config.StoreMemory:
		return &memStore{}, noop, nil

	case config.StoreFile:
		store, err := sessionfile.NewStore(cfg.Session.FileDir)
		if err != nil {
			return nil, noop, fmt.Errorf("session store: %w", err)
		}
		logger.Info("session store", "backend", "file", "path", store.Path())
		return store, noop, nil

	case config.StoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, noop, fmt.Errorf("session store: redis ping: %w", err)
		}
		logger.Info("session store", "backend", "redis", "addr", cfg.Redis.Addr)
		closeClient := func() {
			if err := client.Close(); err != nil {
				logger.Warn("close redis client failed", "error", err)
			}
		}
		return redisadapter.NewSessionStoreWithKey(client, cfg.Session.RedisKey), closeClient, nil

	case config.StorePostgres:
		db, err := sql.Open("pgx", cfg.Postgres.DSN())
		if err != nil {
			return nil, noop, fmt.Errorf("session store: open postgres: %w", err)
		}
		store := pgstore.NewStore(db)
		if err := store.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, noop, err
		}
		logger.Info("session store", "backend", "postgres", "host", cfg.Postgres.Host)
		closeDB := func() {
			if err := db.Close(); err != nil {
				logger.Warn("close postgres failed", "error", err)
			}
		}
		return store, closeDB, nil

	default:
		return nil, noop, fmt.Errorf("unknown session store backend %q", cfg.Session.Backend)
	}
}

func buildGateway(cfg config.AppConfig) (ports.AuthGateway, error) {
	switch cfg.Auth.Mode {
	case config.GatewayModeHTTP:
		client, err := gateway.NewClient(gateway.Config{BaseURL: cfg.Auth.Gateway.BaseURL})
		if err != nil {
			return nil, fmt.Errorf("auth gateway: %w", err)
		}
		return client, nil

	case config.GatewayModeDev:
		return buildDevGateway(cfg.Auth.Dev)
	default:
		return nil, fmt.Errorf("unknown auth gateway mode %q", cfg.Auth.Mode)
	}
}

func buildDevGateway(cfg config.DevGatewayConfig) (*devgateway.Gateway, error) {
	learnerHash, err := devgateway.HashPassword(cfg.LearnerPassword)
	if err != nil {
		return nil, fmt.Errorf("dev gateway: %w", err)
	}
	instructorHash, err := devgateway.HashPassword(cfg.InstructorPassword)
	if err != nil {
		return nil, fmt.Errorf("dev gateway: %w", err)
	}

	return devgateway.New(devgateway.Config{
		SigningKey: cfg.SigningKey,
		TokenTTL:   cfg.TokenTTL,
		Accounts: []devgateway.Account{
			{
				Profile: domainauth.Profile{
					ID: "dev-learner", Email: cfg.LearnerEmail,
					FirstName: "Dev", LastName: "Learner",
				},
				PasswordHash: learnerHash,
				Role:         domainauth.RoleLearner,
			},
			{
				Profile: domainauth.Profile{
					ID: "dev-instructor", Email: cfg.InstructorEmail,
					FirstName: "Dev", LastName: "Instructor",
				},
				PasswordHash: instructorHash,
				Role:         domainauth.RoleInstructor,
			},
		},
	})
}

// buildProvider returns nil when federated sign-in is not configured;
// the manager then rejects it with ErrProviderUnavailable.
func buildProvider(ctx context.Context, cfg config.AppConfig, logger *slog.Logger) (ports.IdentityProvider, error) {
	if !cfg.Auth.OIDC.Enabled() {
		logger.Info("federated sign-in disabled: no OIDC client configured")
		return nil, nil
	}

	provider, err := oidcidp.NewProvider(ctx, oidcidp.ProviderConfig{
		ClientID:     cfg.Auth.OIDC.ClientID,
		ClientSecret: cfg.Auth.OIDC.ClientSecret,
		DiscoveryURL: cfg.Auth.OIDC.DiscoveryURL,
		Scope:        cfg.Auth.OIDC.Scope,
		CallbackAddr: cfg.Auth.OIDC.CallbackAddr,
		OpenBrowser:  OpenBrowser,
	})
	if err != nil {
		return nil, fmt.Errorf("oidc provider: %w", err)
	}
	return provider, nil
}
