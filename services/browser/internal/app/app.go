package app

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	platformlogging "github.com/shestoi/catalog-browser/platform/logging"
	"github.com/shestoi/catalog-browser/platform/observability"
	platformshutdown "github.com/shestoi/catalog-browser/platform/shutdown"
	"github.com/shestoi/catalog-browser/services/browser/internal/catalog"
	httpclient "github.com/shestoi/catalog-browser/services/browser/internal/client/http"
	"github.com/shestoi/catalog-browser/services/browser/internal/config"
	eventkafka "github.com/shestoi/catalog-browser/services/browser/internal/event/kafka"
	"github.com/shestoi/catalog-browser/services/browser/internal/render"
	"github.com/shestoi/catalog-browser/services/browser/internal/service"
	"github.com/shestoi/catalog-browser/services/browser/internal/terminal"
)

// App содержит все зависимости для запуска и корректного shutdown браузера каталога
type App struct {
	logger      *zap.Logger
	browser     *service.BrowserService
	terminal    *terminal.Terminal
	shutdownMgr *platformshutdown.Manager
}

// Build создаёт и настраивает все зависимости браузера.
// in/out терминальный ввод и вывод (os.Stdin/os.Stdout в cmd/browser).
func Build(cfg config.Config, in io.Reader, out io.Writer) (*App, error) {
	const op = "app.Build"

	logOutput, closeLog, err := openLogOutput(cfg.LogFile)
	if err != nil {
		return nil, err
	}

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "browser",
		Env:         string(cfg.AppEnv),
		Level:       cfg.LogLevel,
		Format:      cfg.LogFormat,
		Output:      logOutput,
	})
	if err != nil {
		closeLog()
		return nil, err
	}
	cfg.Log(logger)
	logger.Info("Building browser", zap.String("op", op))

	shutdownMgr := platformshutdown.New(cfg.ShutdownTimeout, logger)
	shutdownMgr.Add("log_file", func(ctx context.Context) error {
		platformlogging.Sync(logger)
		closeLog()
		return nil
	})

	otelShutdown, err := observability.Init(context.Background(), observability.Config{
		Enabled:               cfg.OTelEnabled,
		OTLPEndpoint:          cfg.OTelEndpoint,
		SamplingRatio:         cfg.OTelSamplingRatio,
		ServiceName:           "browser",
		DeploymentEnvironment: string(cfg.AppEnv),
	})
	if err != nil {
		closeLog()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	shutdownMgr.Add("otel", otelShutdown)

	transport, err := httpclient.NewTransport(logger.With(zap.String("component", "transport")), cfg.CatalogBaseURL, cfg.HTTPTimeout)
	if err != nil {
		shutdownMgr.Shutdown()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	client := catalog.NewClient(transport, httpclient.JSONDecoder{}, logger.With(zap.String("component", "catalog")))

	var publisher service.EventPublisher
	if cfg.EventsEnabled {
		logger.Info("Exporting catalog events to Kafka",
			zap.Strings("brokers", cfg.Kafka.Brokers),
			zap.String("topic", cfg.Kafka.Topic),
		)
		kafkaPublisher := eventkafka.NewEventPublisher(logger.With(zap.String("component", "events")), cfg.Kafka.Brokers, cfg.Kafka.Topic)
		shutdownMgr.Add("kafka_writer", platformshutdown.CloseWithError(kafkaPublisher))
		publisher = kafkaPublisher
	} else {
		publisher = service.NewNoOpPublisher(logger)
	}

	browser := service.NewBrowserService(logger, client, publisher, service.Options{
		PageSize: cfg.PageSize,
		Debounce: cfg.SearchDebounce,
	})
	// закрывается раньше writer, чтобы последние события успели уйти в буфер
	shutdownMgr.Add("browser", platformshutdown.CloseWithError(browser))

	renderer, err := render.NewRenderer(logger)
	if err != nil {
		shutdownMgr.Shutdown()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &App{
		logger:      logger,
		browser:     browser,
		terminal:    terminal.New(logger.With(zap.String("component", "terminal")), browser, renderer, in, out),
		shutdownMgr: shutdownMgr,
	}, nil
}

// Run запускает браузер и терминал; блокируется до quit/EOF или сигнала shutdown
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	a.logger.Info("Starting browser")
	if err := a.browser.Start(ctx); err != nil {
		a.shutdownMgr.Shutdown()
		return err
	}

	termErr := make(chan error, 1)
	go func() {
		termErr <- a.terminal.Run(ctx)
		cancel()
	}()

	a.shutdownMgr.WaitContext(ctx)
	cancel()

	err := <-termErr
	a.logger.Info("Browser stopped")
	return err
}

func openLogOutput(path string) (io.Writer, func(), error) {
	if path == "" {
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open LOG_FILE: %w", err)
	}
	return f, func() { _ = f.Close() }, nil
}
