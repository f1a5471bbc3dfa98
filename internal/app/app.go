// Package app wires the application: warehouse backend selection, services,
// handlers, and the HTTP server. Everything is built once at startup and
// passed down explicitly.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
	"golang.org/x/sync/errgroup"

	"booklake/internal/api"
	"booklake/internal/config"
	"booklake/internal/db"
	"booklake/internal/domain"
	"booklake/internal/loader"
	"booklake/internal/middleware"
	"booklake/internal/service/analytics"
	"booklake/internal/service/books"
	"booklake/internal/service/sales"
	"booklake/internal/service/users"
	"booklake/internal/ui"
	"booklake/internal/warehouse"
)

// Deps holds the external dependencies main() must provide.
type Deps struct {
	Cfg    *config.Config
	Exec   domain.Executor
	Logger *slog.Logger
}

// App holds the fully wired application.
type App struct {
	Router    http.Handler
	Loader    *loader.Loader
	Scheduler *loader.Scheduler // nil when no refresh schedule is configured
}

// New wires services, handlers, and the optional summary-refresh scheduler.
func New(deps Deps) (*App, error) {
	logger := deps.Logger

	salesSvc := sales.New(deps.Exec, logger)
	booksSvc := books.New(deps.Exec, logger)
	usersSvc := users.New(deps.Exec, logger)
	analyticsSvc := analytics.New(deps.Exec, logger)

	ld := loader.New(deps.Exec, logger)
	var sched *loader.Scheduler
	if deps.Cfg.RefreshSchedule != "" {
		s, err := loader.NewScheduler(ld, deps.Cfg.RefreshSchedule, logger)
		if err != nil {
			return nil, fmt.Errorf("scheduler: %w", err)
		}
		sched = s
	}

	dashboard := ui.NewHandler(salesSvc, booksSvc, analyticsSvc, logger)
	handler := api.NewHandler(salesSvc, booksSvc, usersSvc, analyticsSvc, deps.Exec, deps.Cfg.Version, logger)
	router := api.NewRouter(handler, api.RouterConfig{
		CORSAllowedOrigins: deps.Cfg.CORSAllowedOrigins,
		RateLimit: middleware.RateLimitConfig{
			RequestsPerSecond: deps.Cfg.RateLimitRPS,
			Burst:             deps.Cfg.RateLimitBurst,
		},
		Dashboard: dashboard.Routes(),
	})

	return &App{Router: router, Loader: ld, Scheduler: sched}, nil
}

// OpenExecutor selects the warehouse backend and applies migrations: the
// Redshift Data API when a cluster is configured, an embedded DuckDB database
// otherwise. The returned closer is non-nil only for the local handle.
func OpenExecutor(ctx context.Context, cfg *config.Config, logger *slog.Logger) (domain.Executor, func() error, error) {
	if cfg.Redshift.Configured() {
		exec := warehouse.NewRedshiftExecutor(cfg, logger)
		if err := db.RunRemoteMigrations(ctx, exec, logger); err != nil {
			return nil, nil, fmt.Errorf("remote migrations: %w", err)
		}
		logger.Info("warehouse ready", "backend", "redshift", "cluster", cfg.Redshift.ClusterIdentifier())
		return exec, nil, nil
	}

	handle, err := sql.Open("duckdb", cfg.LocalDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open duckdb: %w", err)
	}
	if err := db.RunMigrations(handle); err != nil {
		_ = handle.Close()
		return nil, nil, fmt.Errorf("local migrations: %w", err)
	}
	logger.Info("warehouse ready", "backend", "duckdb", "path", cfg.LocalDBPath)
	return warehouse.NewLocalExecutor(handle), handle.Close, nil
}

// RunServer serves the app until ctx is cancelled, then shuts down gracefully.
func RunServer(ctx context.Context, a *App, cfg *config.Config, logger *slog.Logger) error {
	if a.Scheduler != nil {
		a.Scheduler.Start()
		defer a.Scheduler.Stop()
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("http server listening", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
