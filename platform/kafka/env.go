package kafka

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// LoadEnv загружает конфигурацию из переменных окружения поверх уже заполненных значений
// Использует пакет caarlos0/env/v10 для парсинга env-тегов
func LoadEnv(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("kafka env: %w", err)
	}
	if len(cfg.Brokers) == 0 {
		return fmt.Errorf("kafka env: KAFKA_BROKERS is empty")
	}
	if cfg.Topic == "" {
		return fmt.Errorf("kafka env: CATALOG_EVENTS_TOPIC is empty")
	}
	return nil
}
