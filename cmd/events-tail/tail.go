package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/platform/observability"
)

// envelope формат событий браузера в топике каталога
type envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   string          `json:"occurred_at"`
	Payload      json.RawMessage `json:"payload"`
}

// messageReader часть kafka.Reader, нужная tail (подменяется в тестах)
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// tail читает сообщения до отмены ctx или ошибки чтения.
// Невалидные сообщения логируются и пропускаются, повторы по event_id отбрасываются.
func tail(ctx context.Context, r messageReader, seen *seenEvents, logger *zap.Logger) error {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return fmt.Errorf("read message: %w", err)
		}

		msgCtx := observability.ExtractKafka(ctx, &msg)
		log := observability.L(msgCtx, logger)

		env, fields, err := describe(msg)
		if err != nil {
			log.Warn("skipping malformed event",
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			continue
		}
		if env.EventID != "" && !seen.markNew(env.EventID) {
			log.Debug("duplicate event skipped", zap.String("event_id", env.EventID))
			continue
		}
		log.Info("catalog event", fields...)
	}
}

// describe превращает сообщение в поля лога
func describe(msg kafka.Message) (envelope, []zap.Field, error) {
	var env envelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return envelope{}, nil, fmt.Errorf("decode envelope: %w", err)
	}
	if env.EventType == "" {
		return envelope{}, nil, fmt.Errorf("decode envelope: event_type is empty")
	}

	return env, []zap.Field{
		zap.String("event_id", env.EventID),
		zap.String("event_type", env.EventType),
		zap.Int("event_version", env.EventVersion),
		zap.String("occurred_at", env.OccurredAt),
		zap.String("key", string(msg.Key)),
		zap.Int("partition", msg.Partition),
		zap.Int64("offset", msg.Offset),
		zap.String("payload", string(env.Payload)),
	}, nil
}
