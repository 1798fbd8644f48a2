package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/service"
)

type writerStub struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *writerStub) WriteMessages(ctx context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *writerStub) Close() error {
	w.closed = true
	return nil
}

func header(msg kafka.Message, key string) string {
	for _, h := range msg.Headers {
		if h.Key == key {
			return string(h.Value)
		}
	}
	return ""
}

func TestEventPublisher_CartUpdated(t *testing.T) {
	w := &writerStub{}
	p := NewEventPublisherWithWriter(zap.NewNop(), w, "catalog.events")

	at := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	err := p.PublishCartUpdated(context.Background(), service.CartUpdatedEvent{
		OccurredAt: at, Seq: 7, ItemID: 42, Index: 3, Quantity: 2, ShouldReloadView: true,
	})
	require.NoError(t, err)
	require.Len(t, w.messages, 1)

	msg := w.messages[0]
	require.Equal(t, "42", string(msg.Key))
	require.Equal(t, EventTypeCartUpdated, header(msg, "event_type"))

	var env Envelope
	require.NoError(t, json.Unmarshal(msg.Value, &env))
	require.Equal(t, EventTypeCartUpdated, env.EventType)
	require.Equal(t, 1, env.EventVersion)
	require.NotEmpty(t, env.EventID)
	require.Equal(t, "2026-01-02T03:04:05Z", env.OccurredAt)

	var payload CartUpdatedPayload
	require.NoError(t, json.Unmarshal(env.Payload, &payload))
	require.Equal(t, CartUpdatedPayload{Seq: 7, ItemID: 42, Index: 3, Quantity: 2, ShouldReloadView: true}, payload)
}

func TestEventPublisher_SearchCommitted(t *testing.T) {
	w := &writerStub{}
	p := NewEventPublisherWithWriter(zap.NewNop(), w, "catalog.events")

	require.NoError(t, p.PublishSearchCommitted(context.Background(), service.SearchCommittedEvent{Query: "shoe", Generation: 3}))
	require.NoError(t, p.PublishSearchCommitted(context.Background(), service.SearchCommittedEvent{Query: "shoe", Generation: 4}))

	require.Len(t, w.messages, 2)
	var first, second Envelope
	require.NoError(t, json.Unmarshal(w.messages[0].Value, &first))
	require.NoError(t, json.Unmarshal(w.messages[1].Value, &second))
	require.NotEqual(t, first.EventID, second.EventID)

	var payload SearchCommittedPayload
	require.NoError(t, json.Unmarshal(first.Payload, &payload))
	require.Equal(t, SearchCommittedPayload{Query: "shoe", Generation: 3}, payload)
}

func TestEventPublisher_WriteError(t *testing.T) {
	w := &writerStub{err: errors.New("broker down")}
	p := NewEventPublisherWithWriter(zap.NewNop(), w, "catalog.events")

	err := p.PublishSearchCommitted(context.Background(), service.SearchCommittedEvent{})
	require.EqualError(t, err, "broker down")

	require.NoError(t, p.Close())
	require.True(t, w.closed)
}
