package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/platform/kafka"
)

// Env представляет окружение приложения
type Env string

const (
	// EnvLocal - локальное окружение (для разработки на хосте)
	EnvLocal Env = "local"
	// EnvDocker - Docker окружение (для запуска в контейнерах)
	EnvDocker Env = "docker"
)

// Config содержит конфигурацию браузера каталога
type Config struct {
	AppEnv          Env           `env:"APP_ENV" envDefault:"local"`
	CatalogBaseURL  string        `env:"CATALOG_BASE_URL"`
	PageSize        int           `env:"CATALOG_PAGE_SIZE" envDefault:"21"`
	SearchDebounce  time.Duration `env:"SEARCH_DEBOUNCE" envDefault:"1s"`
	HTTPTimeout     time.Duration `env:"HTTP_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"5s"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT"`
	// LogFile файл логов; терминальный фронтенд занимает stdout, по умолчанию логи идут в stderr
	LogFile string `env:"LOG_FILE"`

	EventsEnabled bool `env:"EVENTS_ENABLED" envDefault:"false"`
	Kafka         kafka.Config

	OTelEnabled       bool    `env:"OTEL_ENABLED" envDefault:"false"`
	OTelEndpoint      string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTelSamplingRatio float64 `env:"OTEL_SAMPLING_RATIO" envDefault:"1"`
}

// Load загружает конфигурацию из переменных окружения
// Читает APP_ENV и устанавливает дефолты адресов в зависимости от окружения
func Load() (Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse browser env: %w", err)
	}
	if cfg.AppEnv != EnvLocal && cfg.AppEnv != EnvDocker {
		return Config{}, fmt.Errorf("invalid APP_ENV: %s (must be 'local' or 'docker')", cfg.AppEnv)
	}

	if cfg.AppEnv == EnvLocal {
		cfg.CatalogBaseURL = orDefault(cfg.CatalogBaseURL, "http://127.0.0.1:8085")
		cfg.Kafka.Brokers = orDefaultList(cfg.Kafka.Brokers, []string{"127.0.0.1:19092"})
		cfg.OTelEndpoint = orDefault(cfg.OTelEndpoint, "127.0.0.1:4317")
	} else {
		cfg.CatalogBaseURL = orDefault(cfg.CatalogBaseURL, "http://feed:8085")
		cfg.Kafka.Brokers = orDefaultList(cfg.Kafka.Brokers, []string{"kafka:9092"})
		cfg.OTelEndpoint = orDefault(cfg.OTelEndpoint, "otel-collector:4317")
	}

	// Валидация
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// Validate проверяет корректность конфигурации
func (c Config) Validate() error {
	u, err := url.Parse(c.CatalogBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("CATALOG_BASE_URL must be an absolute http(s) url, got %q", c.CatalogBaseURL)
	}
	if c.PageSize < 2 {
		return fmt.Errorf("CATALOG_PAGE_SIZE must be at least 2 (one item is the sentinel), got %d", c.PageSize)
	}
	if c.SearchDebounce <= 0 {
		return fmt.Errorf("SEARCH_DEBOUNCE must be positive")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("HTTP_TIMEOUT must be positive")
	}
	if c.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.EventsEnabled && (len(c.Kafka.Brokers) == 0 || c.Kafka.Topic == "") {
		return fmt.Errorf("KAFKA_BROKERS and CATALOG_EVENTS_TOPIC are required when EVENTS_ENABLED")
	}
	if c.OTelSamplingRatio < 0 || c.OTelSamplingRatio > 1 {
		return fmt.Errorf("OTEL_SAMPLING_RATIO must be in [0, 1]")
	}
	return nil
}

// Log выводит конфигурацию в лог
func (c Config) Log(logger *zap.Logger) {
	logger.Info("config loaded",
		zap.String("app_env", string(c.AppEnv)),
		zap.String("catalog_base_url", c.CatalogBaseURL),
		zap.Int("catalog_page_size", c.PageSize),
		zap.Duration("search_debounce", c.SearchDebounce),
		zap.Duration("http_timeout", c.HTTPTimeout),
		zap.Duration("shutdown_timeout", c.ShutdownTimeout),
		zap.Bool("events_enabled", c.EventsEnabled),
		zap.Strings("kafka_brokers", c.Kafka.Brokers),
		zap.String("catalog_events_topic", c.Kafka.Topic),
		zap.Bool("otel_enabled", c.OTelEnabled),
		zap.String("otel_endpoint", c.OTelEndpoint),
	)
}

func orDefault(value, def string) string {
	if value == "" {
		return def
	}
	return value
}

func orDefaultList(value, def []string) []string {
	if len(value) == 0 {
		return def
	}
	return value
}
