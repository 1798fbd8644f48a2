// Package main читает топик событий каталога и печатает их в лог.
//
// По умолчанию подключается к localhost:19092 и топику catalog.events.
// Переопределяется через KAFKA_BROKERS, CATALOG_EVENTS_TOPIC и KAFKA_GROUP_ID.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	platformkafka "github.com/shestoi/catalog-browser/platform/kafka"
	platformlogging "github.com/shestoi/catalog-browser/platform/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := platformlogging.New(platformlogging.Config{
		ServiceName: "events-tail",
		Env:         "local",
		Level:       os.Getenv("LOG_LEVEL"),
		Format:      "console",
		AddCaller:   true,
	})
	if err != nil {
		os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer platformlogging.Sync(logger)

	cfg := platformkafka.DefaultConfig()
	if err := platformkafka.LoadEnv(&cfg); err != nil {
		logger.Error("failed to load kafka config", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("kafka config loaded",
		zap.Strings("brokers", cfg.Brokers),
		zap.String("topic", cfg.Topic),
		zap.String("group_id", cfg.GroupID),
	)

	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    cfg.Topic,
		GroupID:  cfg.GroupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	defer func() {
		if err := reader.Close(); err != nil {
			logger.Error("failed to close kafka reader", zap.Error(err))
		}
	}()

	if err := tail(ctx, reader, newSeenEvents(time.Hour), logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("events tail stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("events tail stopped")
}
