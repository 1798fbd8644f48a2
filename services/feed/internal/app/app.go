package app

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"go.uber.org/zap"

	_ "github.com/jackc/pgx/v5/stdlib" //для goose миграций

	platformhealth "github.com/shestoi/catalog-browser/platform/health/http"
	platformlogging "github.com/shestoi/catalog-browser/platform/logging"
	"github.com/shestoi/catalog-browser/platform/observability"
	platformshutdown "github.com/shestoi/catalog-browser/platform/shutdown"
	httpapi "github.com/shestoi/catalog-browser/services/feed/internal/api/http"
	"github.com/shestoi/catalog-browser/services/feed/internal/config"
	"github.com/shestoi/catalog-browser/services/feed/internal/repository"
	"github.com/shestoi/catalog-browser/services/feed/internal/repository/memory"
	"github.com/shestoi/catalog-browser/services/feed/internal/repository/postgres"
	"github.com/shestoi/catalog-browser/services/feed/internal/service"
	"github.com/shestoi/catalog-browser/services/feed/migrations"
)

// App содержит все зависимости для запуска и корректного shutdown фида
type App struct {
	logger      *zap.Logger
	httpServer  *http.Server
	shutdownMgr *platformshutdown.Manager
	wg          sync.WaitGroup
}

// Build создаёт и настраивает все зависимости фида
func Build(cfg config.Config) (*App, error) {
	const op = "app.Build"

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "feed",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
	})
	if err != nil {
		return nil, err
	}
	cfg.Log(logger)
	logger.Info("Building feed service", zap.String("op", op), zap.String("http_addr", cfg.HTTPAddr))

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)

	otelShutdown, err := observability.Init(context.Background(), observability.Config{
		Enabled:               cfg.OTelEnabled,
		OTLPEndpoint:          cfg.OTelEndpoint,
		SamplingRatio:         cfg.OTelSamplingRatio,
		ServiceName:           "feed",
		DeploymentEnvironment: string(cfg.AppEnv),
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	shutdownMgr.Add("otel", otelShutdown)

	var (
		repo   repository.ProductRepository
		checks []platformhealth.Check
	)
	switch cfg.Storage {
	case config.StoragePostgres:
		pool, err := connectPostgres(logger, cfg.PostgresDSN)
		if err != nil {
			shutdownMgr.Shutdown()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		shutdownMgr.Add("postgres_pool", platformshutdown.ClosePool(pool))
		checks = append(checks, platformhealth.Check{Name: "postgres", Fn: pool.Ping})
		repo = postgres.NewRepository(pool)
	default:
		logger.Info("Using in-memory storage")
		repo = memory.NewRepository()
	}

	products := service.NewProductService(logger.With(zap.String("component", "service")), repo)

	seedCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := products.Seed(seedCtx, cfg.SeedSize); err != nil {
		shutdownMgr.Shutdown()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	handler := httpapi.NewHandler(products, logger.With(zap.String("component", "http")))
	router := httpapi.NewRouter(handler, logger, checks...)

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	shutdownMgr.Add("http_server", platformshutdown.ShutdownHTTPServer(httpServer))

	return &App{
		logger:      logger,
		httpServer:  httpServer,
		shutdownMgr: shutdownMgr,
	}, nil
}

// Handler HTTP роутер фида
func (a *App) Handler() http.Handler {
	return a.httpServer.Handler
}

// Run запускает HTTP сервер и блокируется до сигнала shutdown или отмены ctx
func (a *App) Run(ctx context.Context) error {
	defer platformlogging.Sync(a.logger)

	ln, err := net.Listen("tcp", a.httpServer.Addr)
	if err != nil {
		a.shutdownMgr.Shutdown()
		return err
	}

	a.logger.Info("Starting feed service", zap.String("addr", ln.Addr().String()))
	a.logger.Info("Health check available", zap.String("url", "http://"+ln.Addr().String()+"/health"))

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := a.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	a.shutdownMgr.WaitContext(ctx)

	a.wg.Wait()
	a.logger.Info("Feed service stopped")
	return nil
}

// connectPostgres накатывает миграции через goose и открывает pgxpool
func connectPostgres(logger *zap.Logger, dsn string) (*pgxpool.Pool, error) {
	logger.Info("Running migrations")
	db, err := goose.OpenDBWithDriver("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open migrations db: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.FS)
	if err := goose.Up(db, "."); err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}

	logger.Info("Connecting to PostgreSQL")
	pool, err := pgxpool.New(context.Background(), dsn)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	logger.Info("PostgreSQL connection established")
	return pool, nil
}
