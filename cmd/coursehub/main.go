package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/coursehub/coursehub-ui/internal/bootstrap"
)

func main() {
	ctx := context.Background()
	logger := bootstrap.InitLogger()
	if err := run(ctx, logger); err != nil {
		logger.ErrorContext(ctx, "fatal error", "error", err)
		os.Exit(1) //nolint:forbidigo // Main entrypoint should exit with non-zero status on fatal errors.
	}
}

func run(ctx context.Context, logger *slog.Logger) error {
	cfg, err := bootstrap.LoadConfig()
	if err != nil {
		return err
	}

	logger.InfoContext(ctx, "starting coursehub ui",
		"gateway_mode", cfg.Auth.Mode,
		"session_store", cfg.Session.Backend,
		"federated_signin", cfg.Auth.OIDC.Enabled(),
		"addr", cfg.HTTP.Addr)

	mgr, cleanup, err := bootstrap.BuildSessionManager(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer cleanup()

	server := bootstrap.NewHTTPServer(cfg, mgr, logger)
	return bootstrap.RunWithShutdown(ctx, cfg, server, logger)
}
