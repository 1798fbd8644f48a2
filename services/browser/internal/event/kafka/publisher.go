package kafka

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/platform/observability"
	"github.com/shestoi/catalog-browser/services/browser/internal/service"
)

const (
	// EventTypeSearchCommitted тип события фиксации поиска
	EventTypeSearchCommitted = "catalog.search.committed"
	// EventTypeCartUpdated тип события изменения корзины
	EventTypeCartUpdated = "catalog.cart.updated"

	eventVersion = 1
)

// Envelope JSON payload события в топике каталога
type Envelope struct {
	EventID      string          `json:"event_id"`
	EventType    string          `json:"event_type"`
	EventVersion int             `json:"event_version"`
	OccurredAt   string          `json:"occurred_at"`
	Payload      json.RawMessage `json:"payload"`
}

// SearchCommittedPayload payload события catalog.search.committed
type SearchCommittedPayload struct {
	Query      string `json:"query"`
	Generation uint64 `json:"generation"`
}

// CartUpdatedPayload payload события catalog.cart.updated
type CartUpdatedPayload struct {
	Seq              uint64 `json:"seq"`
	ItemID           int64  `json:"item_id"`
	Index            int    `json:"index"`
	Quantity         int    `json:"quantity"`
	ShouldReloadView bool   `json:"should_reload_view"`
}

// MessageWriter часть kafka.Writer, нужная publisher (подменяется в тестах)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// EventPublisher реализует service.EventPublisher поверх Kafka.
// Writer асинхронный: публикация не блокирует действие пользователя, ошибки доставки только логируются.
type EventPublisher struct {
	logger *zap.Logger
	writer MessageWriter
	topic  string
}

// NewEventPublisher создаёт publisher с асинхронным kafka.Writer
func NewEventPublisher(logger *zap.Logger, brokers []string, topic string) *EventPublisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		Async:        true,
		BatchTimeout: 50 * time.Millisecond,
		Completion: func(messages []kafka.Message, err error) {
			if err != nil {
				logger.Warn("failed to deliver catalog events",
					zap.String("topic", topic),
					zap.Int("messages", len(messages)),
					zap.Error(err),
				)
			}
		},
	}
	return NewEventPublisherWithWriter(logger, writer, topic)
}

// NewEventPublisherWithWriter создаёт publisher поверх готового writer
func NewEventPublisherWithWriter(logger *zap.Logger, writer MessageWriter, topic string) *EventPublisher {
	return &EventPublisher{
		logger: logger,
		writer: writer,
		topic:  topic,
	}
}

// Close сбрасывает буфер и закрывает writer
func (p *EventPublisher) Close() error {
	return p.writer.Close()
}

// PublishSearchCommitted публикует фиксацию поискового запроса; ключ сообщения пустой запрос или текст
func (p *EventPublisher) PublishSearchCommitted(ctx context.Context, event service.SearchCommittedEvent) error {
	return p.publish(ctx, EventTypeSearchCommitted, []byte(event.Query), event.OccurredAt, SearchCommittedPayload{
		Query:      event.Query,
		Generation: event.Generation,
	})
}

// PublishCartUpdated публикует изменение корзины; ключ id товара, чтобы события товара шли в одну партицию по порядку
func (p *EventPublisher) PublishCartUpdated(ctx context.Context, event service.CartUpdatedEvent) error {
	return p.publish(ctx, EventTypeCartUpdated, []byte(strconv.FormatInt(event.ItemID, 10)), event.OccurredAt, CartUpdatedPayload{
		Seq:              event.Seq,
		ItemID:           event.ItemID,
		Index:            event.Index,
		Quantity:         event.Quantity,
		ShouldReloadView: event.ShouldReloadView,
	})
}

func (p *EventPublisher) publish(ctx context.Context, eventType string, key []byte, occurredAt time.Time, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		p.logger.Error("failed to marshal catalog event", zap.String("event_type", eventType), zap.Error(err))
		return err
	}

	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	envelope := Envelope{
		EventID:      uuid.New().String(),
		EventType:    eventType,
		EventVersion: eventVersion,
		OccurredAt:   occurredAt.UTC().Format(time.RFC3339Nano),
		Payload:      body,
	}
	value, err := json.Marshal(envelope)
	if err != nil {
		p.logger.Error("failed to marshal catalog event", zap.String("event_type", eventType), zap.Error(err))
		return err
	}

	msg := kafka.Message{
		Key:   key,
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(eventType)},
		},
	}
	observability.InjectKafka(ctx, &msg)

	// ctx действия пользователя может быть уже отменён, а Async writer всё равно пишет в фоне
	if err := p.writer.WriteMessages(context.WithoutCancel(ctx), msg); err != nil {
		p.logger.Error("failed to publish catalog event",
			zap.String("topic", p.topic),
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		return err
	}

	p.logger.Debug("catalog event published",
		zap.String("topic", p.topic),
		zap.String("event_type", eventType),
		zap.String("event_id", envelope.EventID),
	)
	return nil
}
