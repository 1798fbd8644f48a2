package kafka

// Config содержит конфигурацию для подключения к Kafka
type Config struct {
	// Brokers список брокеров Kafka.
	//   - локальная разработка (go run): localhost:19092
	//   - запуск в Docker: kafka:9092
	// Можно указать несколько брокеров через запятую: "broker1:9092,broker2:9092"
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	// Topic топик экспорта событий каталога (поисковые запросы и изменения корзины)
	Topic string `env:"CATALOG_EVENTS_TOPIC" envDefault:"catalog.events"`
	// GroupID consumer group для читателей событий (events-tail)
	GroupID string `env:"KAFKA_GROUP_ID" envDefault:"catalog-events-tail"`
}

// DefaultConfig возвращает конфигурацию с дефолтными значениями для локальной разработки.
// Актуальные значения приходят из переменных окружения через LoadEnv.
func DefaultConfig() Config {
	return Config{
		Brokers: []string{"localhost:19092"},
		Topic:   "catalog.events",
		GroupID: "catalog-events-tail",
	}
}
