package bootstrap

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/coursehub/coursehub-ui/config"
	httpx "github.com/coursehub/coursehub-ui/internal/http"
	"github.com/coursehub/coursehub-ui/internal/session"
)

// NewHTTPServer builds the UI server around the session manager.
func NewHTTPServer(cfg config.AppConfig, mgr *session.Manager, logger *slog.Logger) *http.Server {
	router := httpx.NewRouter(httpx.RouterServices{Manager: mgr, Logger: logger})
	return &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// RunWithShutdown serves until ctx is done or SIGINT/SIGTERM arrives,
// then shuts down gracefully within the configured timeout.
func RunWithShutdown(ctx context.Context, cfg config.AppConfig, server *http.Server, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		logger.Info("http server listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return group.Wait()
}
