package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/aussiebroadwan/bartab-oidc/internal/auth/domain"
	httpapi "github.com/aussiebroadwan/bartab-oidc/internal/auth/http"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/identity"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/service"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/store"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/store/drivers/sqlite"
	"github.com/aussiebroadwan/bartab-oidc/internal/auth/tokenstore"
	"github.com/aussiebroadwan/bartab-oidc/pkg/cryptox"
	"github.com/aussiebroadwan/bartab-oidc/pkg/httpx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/jwtx"
	"github.com/aussiebroadwan/bartab-oidc/pkg/slogx"
)

const (
	// BuildVersion should be set at build time via ldflags.
	BuildVersion = "v0.1.0"
)

// Application wires the token service together and owns its lifecycle.
type Application struct {
	cfg    Config
	logger *slog.Logger

	// Core dependencies
	db       store.Store
	clients  domain.ClientRegistry
	keys     *jwtx.StaticKeyStore
	jwks     jwtx.JWKS
	tokens   *tokenstore.Store
	registry *prometheus.Registry

	// Services
	accounts            *identity.AccountDB
	tokenService        *service.TokenService
	userService         *service.UserService
	housekeepingService *service.HousekeepingService

	// HTTP server
	server *http.Server
	router *httpapi.Router
}

// New creates a new Application instance with all dependencies initialized
func New(cfg Config) (*Application, error) {
	app := &Application{
		cfg: cfg,
		logger: slogx.New(slogx.Config{
			Service: "bartab-oidc",
			Version: BuildVersion,
			Env:     cfg.Env,
			Level:   cfg.LogLevel,
			Format:  cfg.LogFormat,
		}),
		tokens:   tokenstore.New(),
		registry: prometheus.NewRegistry(),
	}

	cryptox.SetPepperPath(app.cfg.PepperFile)

	clients, err := LoadClients(cfg.ClientsFile)
	if err != nil {
		return nil, err
	}
	app.clients = clients

	app.keys, app.jwks, err = InitSigningKeys(cfg, clients, app.logger)
	if err != nil {
		return nil, err
	}

	if err := app.initDatabase(); err != nil {
		return nil, err
	}

	if err := app.initMetrics(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	app.initServices()

	if err := app.initHTTP(); err != nil {
		_ = app.db.Close()
		return nil, err
	}

	return app, nil
}

// Handler returns the fully wired HTTP handler.
func (app *Application) Handler() http.Handler {
	return app.router
}

// Run starts the application and blocks until shutdown is requested
func (app *Application) Run() error {
	app.housekeepingService.Start()

	app.logger.Info("token service starting",
		"port", app.cfg.Port,
		"version", BuildVersion,
		"issuer", app.cfg.Issuer,
		"token_expiration", app.cfg.TokenExpiration,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- app.server.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		app.housekeepingService.Stop()
		_ = app.db.Close()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-shutdown:
		app.logger.Info("shutdown signal received", "signal", sig)

		if err := app.Shutdown(); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// Shutdown gracefully shuts down the application
func (app *Application) Shutdown() error {
	app.logger.Info("shutting down token service...")

	ctx, cancel := context.WithTimeout(context.Background(), app.cfg.ShutdownGracePeriod)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("graceful server shutdown failed", "error", err)
		if err := app.server.Close(); err != nil {
			app.logger.Error("error closing server", "error", err)
		}
	}

	app.housekeepingService.Stop()

	if err := app.db.Close(); err != nil {
		app.logger.Error("error closing database", "error", err)
		return err
	}

	app.logger.Info("token service stopped")
	return nil
}

// Close releases the database without touching the HTTP server. Used when
// the application was never Run.
func (app *Application) Close() error {
	return app.db.Close()
}

func (app *Application) initDatabase() error {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", app.cfg.DatabaseFile)
	db, err := sqlite.NewStore(dsn)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	app.db = db

	if err := db.ApplyMigrations(); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to apply database migrations: %w", err)
	}

	version, _, err := db.SchemaVersion()
	if err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to read schema version: %w", err)
	}
	app.logger.Info("database migrations applied successfully", "schema_version", version)
	return nil
}

func (app *Application) initMetrics() error {
	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		tokenstore.NewCollector(app.tokens),
	} {
		if err := app.registry.Register(c); err != nil {
			return fmt.Errorf("register metrics: %w", err)
		}
	}
	return httpx.RegisterMetrics(app.registry)
}

func (app *Application) initServices() {
	app.accounts = identity.NewAccountDB(app.db, app.logger)

	factory := &service.TokenFactory{
		Authenticator: app.accounts,
		Logger:        app.logger,
		Now:           app.tokens.Now,
	}

	app.tokenService = &service.TokenService{
		Factory:       factory,
		Tokens:        app.tokens,
		Keys:          app.keys,
		Clients:       app.clients,
		Authenticator: app.accounts,
		Issuer:        app.cfg.Issuer,
		Expiration:    app.cfg.TokenExpiration,
	}

	app.userService = &service.UserService{
		Accounts: app.accounts,
		Factory:  factory,
		Tokens:   app.tokens,
		Keys:     app.keys,
		Clients:  app.clients,
	}

	app.housekeepingService = service.NewHousekeepingService(
		app.tokens,
		app.logger,
		app.cfg.TokenExpiration,
		app.cfg.SweepInterval,
		app.registry,
	)
}

func (app *Application) initHTTP() error {
	router, err := httpapi.NewRouter(app.jwks, app.cfg.Issuer, BuildVersion, app.db, app.logger)
	if err != nil {
		return fmt.Errorf("router: %w", err)
	}

	router.TokenService = app.tokenService
	router.UserService = app.userService
	router.Gatherer = app.registry
	router.ApplyRoutes()

	app.router = router

	app.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", app.cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 3 * time.Second,
	}
	return nil
}
