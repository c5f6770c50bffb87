// Package app wires the inventory service together.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/abgdnv/inventory/internal/auth"
	"github.com/abgdnv/inventory/internal/config"
	"github.com/abgdnv/inventory/internal/events"
	"github.com/abgdnv/inventory/internal/inventory"
	"github.com/abgdnv/inventory/internal/service"
	"github.com/abgdnv/inventory/internal/transport/rest"
	"github.com/abgdnv/inventory/pkg/messaging"
	natsclient "github.com/abgdnv/inventory/pkg/nats"
	"github.com/abgdnv/inventory/pkg/server"
	"github.com/go-chi/chi/v5"
)

type Dependencies struct {
	Inventories      *inventory.Inventories
	Directory        *auth.Directory
	InventoryService service.InventoryService
	Logger           *slog.Logger
	// closers are run by Close in reverse order.
	closers []func()
}

// SetupDependencies opens the inventory files and credential files and, when
// enabled, connects the event publisher to NATS JetStream.
func SetupDependencies(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Dependencies, error) {
	inv, err := inventory.Open(cfg.Store.DataDir, cfg.Store.Seed, logger)
	if err != nil {
		return nil, err
	}
	directory, err := OpenDirectory(cfg.Auth, logger)
	if err != nil {
		return nil, err
	}

	deps := &Dependencies{
		Inventories: inv,
		Directory:   directory,
		Logger:      logger,
	}

	var publisher messaging.Publisher = messaging.NoopPublisher{}
	if cfg.NATS.Enabled {
		nc, err := natsclient.NewClient(cfg.NATS.Url, cfg.NATS.Timeout, logger)
		if err != nil {
			return nil, err
		}
		deps.closers = append(deps.closers, func() {
			if err := nc.Drain(); err != nil {
				logger.Warn("Failed to drain NATS connection", "error", err)
			}
		})
		js, err := natsclient.NewJetStreamContext(nc)
		if err != nil {
			deps.Close()
			return nil, err
		}
		streamCtx, cancel := context.WithTimeout(ctx, cfg.NATS.Timeout)
		defer cancel()
		if err := natsclient.EnsureStream(streamCtx, js, cfg.NATS.Stream, events.AllSubjects()); err != nil {
			deps.Close()
			return nil, err
		}
		publisher = messaging.NewBreakerPublisher(natsclient.NewNatsPublisher(js, cfg.NATS.Timeout), cfg.CircuitBreaker)
		logger.Info("Publishing record events to NATS", "url", cfg.NATS.Url, "stream", cfg.NATS.Stream)
	}

	deps.InventoryService = service.NewService(inv, publisher, logger)
	return deps, nil
}

// OpenDirectory creates the credential directory, writing the default accounts
// into missing files when configured to.
func OpenDirectory(cfg config.AuthConfig, logger *slog.Logger) (*auth.Directory, error) {
	directory := auth.NewDirectory(cfg.AdminFile, cfg.EmployeeFile)
	if !cfg.CreateDefaults {
		return directory, nil
	}
	created, err := directory.EnsureDefaults()
	if err != nil {
		return nil, fmt.Errorf("failed to create default credentials: %w", err)
	}
	for _, role := range created {
		logger.Warn("Created credential file with the default account, change its password", "role", role)
	}
	return directory, nil
}

// Close releases the broker connection and writes stores whose last save failed.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
	d.closers = nil
	if d.Inventories != nil {
		if err := d.Inventories.Flush(); err != nil {
			d.Logger.Error("Failed to save inventories on shutdown", "error", err)
		}
	}
}

// SetupHttpHandler initializes the router and routes of the inventory service.
func SetupHttpHandler(deps *Dependencies) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps)
	return mux
}

// wireRoutes sets up the HTTP routes for the inventory service.
func wireRoutes(mux *chi.Mux, deps *Dependencies) {
	handler := rest.NewHandler(deps.InventoryService, deps.Directory, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures the HTTP server of the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {
	return server.NewHTTPServer(cfg.HTTPServer, SetupHttpHandler(deps))
}
