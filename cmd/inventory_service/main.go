// Command inventory_service serves the inventory HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/abgdnv/inventory/internal/app"
	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/pkg/bootstrap"
	"github.com/abgdnv/inventory/pkg/config/configloader"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Printf("inventory service failed: %v", err)
		os.Exit(1)
	}
	log.Println("inventory service stopped")
}

// run serves the API, and pprof when enabled, until ctx is cancelled.
func run(ctx context.Context) error {
	cfg, err := configloader.Load[*config.Config](config.EnvPrefix,
		configloader.WithFile(os.Getenv("INVENTORY_CONFIG_FILE")),
		configloader.WithDefaults(config.Defaults()))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	log.Printf("Configuration loaded: %v", cfg)

	logger := bootstrap.NewLogger(cfg.Log.Level)
	slog.SetDefault(logger)

	deps, err := app.SetupDependencies(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to set up dependencies: %w", err)
	}
	defer deps.Close()

	g, gCtx := errgroup.WithContext(ctx)
	serve(g, gCtx, logger, "http", app.SetupHttpServer(deps, cfg), cfg.Shutdown.Timeout)
	if cfg.PProf.Enabled {
		// net/http/pprof registers on http.DefaultServeMux
		serve(g, gCtx, logger, "pprof", &http.Server{Addr: cfg.PProf.Addr, ReadHeaderTimeout: cfg.HTTPServer.Timeout.ReadHeader}, cfg.Shutdown.Timeout)
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("server group stopped with error: %w", err)
	}
	return nil
}

// serve runs srv in g and shuts it down within timeout once ctx is done.
func serve(g *errgroup.Group, ctx context.Context, logger *slog.Logger, name string, srv *http.Server, timeout time.Duration) {
	logger = logger.With("server", name, "addr", srv.Addr)
	g.Go(func() error {
		logger.Info("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("%s server failed: %w", name, err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
