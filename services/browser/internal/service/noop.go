package service

import (
	"context"

	"go.uber.org/zap"
)

// NoOpPublisher no-op реализация EventPublisher (когда экспорт событий выключен)
type NoOpPublisher struct {
	logger *zap.Logger
}

// NewNoOpPublisher создаёт no-op publisher
func NewNoOpPublisher(logger *zap.Logger) *NoOpPublisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &NoOpPublisher{logger: logger}
}

// PublishSearchCommitted только логирует
func (p *NoOpPublisher) PublishSearchCommitted(ctx context.Context, event SearchCommittedEvent) error {
	p.logger.Debug("no-op publisher: search event not exported", zap.String("query", event.Query))
	return nil
}

// PublishCartUpdated только логирует
func (p *NoOpPublisher) PublishCartUpdated(ctx context.Context, event CartUpdatedEvent) error {
	p.logger.Debug("no-op publisher: cart event not exported",
		zap.Int64("item_id", event.ItemID),
		zap.Int("quantity", event.Quantity),
	)
	return nil
}
