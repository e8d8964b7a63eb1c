// Package server provides the main server initialization and run logic.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/nebari-dev/registrar/internal/api"
	"github.com/nebari-dev/registrar/internal/api/handlers"
	"github.com/nebari-dev/registrar/internal/api/middleware"
	"github.com/nebari-dev/registrar/internal/config"
	"github.com/nebari-dev/registrar/internal/db"
	"github.com/nebari-dev/registrar/internal/events"
	"github.com/nebari-dev/registrar/internal/logger"
	"github.com/nebari-dev/registrar/internal/models"
	"github.com/nebari-dev/registrar/internal/seedfile"
	"github.com/nebari-dev/registrar/internal/service"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// ShutdownTimeout bounds the graceful shutdown of every listener.
const ShutdownTimeout = 10 * time.Second

// Options holds the command-line overrides for a server run.
type Options struct {
	Kinds     []string       // Kinds to serve: "components", "roles" or "all" (empty = all)
	Ports     map[string]int // Port per kind, overriding config when non-zero
	SeedFiles []string       // Seed documents applied after migrations, added to seed.files
	Version   string         // Version string to report
}

// Run starts one listener per requested kind and blocks until ctx is canceled.
func Run(ctx context.Context, opts Options) error {
	// Set version in handlers
	if opts.Version != "" {
		handlers.Version = opts.Version
	}

	// Load configuration
	appCfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override ports from CLI flags if provided
	for plural, port := range opts.Ports {
		if port == 0 {
			continue
		}
		switch plural {
		case models.Components.Plural:
			appCfg.Services.Components.Port = port
		case models.Roles.Plural:
			appCfg.Services.Roles.Port = port
		}
	}

	kinds, err := ResolveKinds(opts.Kinds)
	if err != nil {
		return err
	}

	// Initialize logger
	logger.Init(appCfg.Log.Format, appCfg.Log.Level)
	slog.Info("Starting registrar", "version", opts.Version, "mode", appCfg.Server.Mode)

	database, err := OpenDatabase(appCfg)
	if err != nil {
		return err
	}
	defer db.Close(database)

	// Initialize server ID (generate if not exists)
	serverID, err := db.EnsureServerID(ctx, database)
	if err != nil {
		return fmt.Errorf("failed to initialize server ID: %w", err)
	}
	slog.Info("Server ID initialized", "server_id", serverID)

	broker, err := NewBroker(appCfg.Events)
	if err != nil {
		return fmt.Errorf("failed to initialize event broker: %w", err)
	}
	defer broker.Close()
	slog.Info("Event broker initialized", "type", appCfg.Events.Type)

	seeds := append(append([]string{}, appCfg.Seed.Files...), opts.SeedFiles...)
	if len(seeds) > 0 {
		if _, err := Seed(ctx, database, broker, seeds...); err != nil {
			return err
		}
	}

	listeners, err := Listen(appCfg, kinds)
	if err != nil {
		return err
	}

	err = Serve(ctx, appCfg, database, broker, listeners)
	slog.Info("registrar exited")
	return err
}

// RunWithSignalHandling starts the server and handles OS signals for graceful shutdown.
func RunWithSignalHandling(opts Options) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- Run(ctx, opts)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Received shutdown signal")
		return <-errCh
	case err := <-errCh:
		return err
	}
}

// ResolveKinds maps kind names to kinds. No names, or "all", selects every kind.
func ResolveKinds(names []string) ([]models.Kind, error) {
	if len(names) == 0 {
		return models.Kinds(), nil
	}

	var kinds []models.Kind
	seen := make(map[string]bool)
	for _, name := range names {
		if name == "all" {
			return models.Kinds(), nil
		}
		kind, ok := models.KindByName(name)
		if !ok {
			return nil, fmt.Errorf("unknown kind %q (valid: components, roles, all)", name)
		}
		if !seen[kind.Plural] {
			seen[kind.Plural] = true
			kinds = append(kinds, kind)
		}
	}
	return kinds, nil
}

// OpenDatabase connects to the configured database and runs migrations.
func OpenDatabase(appCfg *config.Config) (*gorm.DB, error) {
	database, err := db.New(appCfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	slog.Info("Database initialized", "driver", appCfg.Database.Driver)

	if err := db.Migrate(database); err != nil {
		_ = db.Close(database)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}
	slog.Info("Database migrations completed")
	return database, nil
}

// NewBroker creates the event broker selected by configuration.
func NewBroker(cfg config.EventsConfig) (events.Broker, error) {
	switch cfg.Type {
	case "", "memory":
		return events.NewMemoryBroker(100), nil
	case "valkey":
		if cfg.ValkeyAddr == "" {
			return nil, fmt.Errorf("valkey address is required when events type is valkey")
		}
		return events.NewValkeyBroker(cfg.ValkeyAddr)
	default:
		return nil, fmt.Errorf("unsupported events type: %s (supported: memory, valkey)", cfg.Type)
	}
}

// NewServices builds a ResourceService per kind, keyed by plural name, with
// created records counted in the metrics.
func NewServices(database *gorm.DB, broker events.Broker) map[string]*service.ResourceService {
	services := make(map[string]*service.ResourceService)
	for _, kind := range models.Kinds() {
		svc := service.New(database, kind, broker, slog.Default())
		svc.OnCreate = func(k models.Kind) { middleware.RecordCreated(k.Plural) }
		services[kind.Plural] = svc
	}
	return services
}

// Seed loads the seed documents matched by patterns and inserts their entries.
// Names that already exist are skipped, so seeding is idempotent.
func Seed(ctx context.Context, database *gorm.DB, broker events.Broker, patterns ...string) (seedfile.Result, error) {
	doc, files, err := seedfile.LoadAll(patterns...)
	if err != nil {
		return seedfile.Result{}, fmt.Errorf("failed to load seed files: %w", err)
	}

	seeders := make(map[string]seedfile.Seeder)
	for plural, svc := range NewServices(database, broker) {
		seeders[plural] = svc
	}

	res, err := seedfile.Apply(ctx, doc, seeders)
	if err != nil {
		return res, fmt.Errorf("failed to apply seed files: %w", err)
	}
	for _, kind := range models.Kinds() {
		slog.Info("Seed applied", "kind", kind.Plural, "files", len(files),
			"created", res.Created[kind.Plural], "skipped", res.Skipped[kind.Plural])
	}
	return res, nil
}

// Listen opens a TCP listener on the configured port of every kind.
func Listen(appCfg *config.Config, kinds []models.Kind) (map[string]net.Listener, error) {
	listeners := make(map[string]net.Listener)
	for _, kind := range kinds {
		port, err := appCfg.Port(kind.Plural)
		if err != nil {
			closeAll(listeners)
			return nil, err
		}
		ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
		if err != nil {
			closeAll(listeners)
			return nil, fmt.Errorf("failed to listen for %s: %w", kind.Plural, err)
		}
		listeners[kind.Plural] = ln
	}
	return listeners, nil
}

func closeAll(listeners map[string]net.Listener) {
	for _, ln := range listeners {
		_ = ln.Close()
	}
}

// Serve runs one HTTP server per listener, keyed by kind plural. It returns
// when ctx is canceled or any server fails, after shutting all of them down.
// The broker is closed when shutdown begins so open event streams end.
func Serve(ctx context.Context, appCfg *config.Config, database *gorm.DB, broker events.Broker, listeners map[string]net.Listener) error {
	services := NewServices(database, broker)

	type listener struct {
		plural string
		ln     net.Listener
		srv    *http.Server
	}
	var running []listener
	for plural, ln := range listeners {
		svc, ok := services[plural]
		if !ok {
			closeAll(listeners)
			return fmt.Errorf("no service for %q", plural)
		}
		router, err := api.NewRouter(appCfg, database, svc, broker)
		if err != nil {
			closeAll(listeners)
			return err
		}
		srv := &http.Server{Handler: router, ReadHeaderTimeout: 10 * time.Second}
		if broker != nil {
			srv.RegisterOnShutdown(func() { _ = broker.Close() })
		}
		running = append(running, listener{plural: plural, ln: ln, srv: srv})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, l := range running {
		g.Go(func() error {
			slog.Info("Server listening", "service", l.plural, "address", l.ln.Addr().String())
			if err := l.srv.Serve(l.ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s server failed: %w", l.plural, err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		var errs []error
		for _, l := range running {
			if err := l.srv.Shutdown(shutdownCtx); err != nil {
				errs = append(errs, err)
			}
		}
		if err := errors.Join(errs...); err != nil {
			return fmt.Errorf("server forced to shutdown: %w", err)
		}
		slog.Info("Servers stopped")
		return nil
	})

	return g.Wait()
}
