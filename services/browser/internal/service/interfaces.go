package service

import (
	"context"
	"time"

	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=CatalogClient --dir=. --output=./mocks --outpkg=mocks

// CatalogClient источник страниц и карточек товаров (реализует catalog.Client)
type CatalogClient interface {
	FetchPage(ctx context.Context, query string, page, pageSize int) ([]model.Item, error)
	FetchItem(ctx context.Context, id int64) (model.ItemDetail, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=EventPublisher --dir=. --output=./mocks --outpkg=mocks

// EventPublisher экспорт событий браузера (поиск, корзина) во внешнюю систему.
// Вызывается синхронно на пути пользовательского действия, реализация не должна блокироваться надолго.
type EventPublisher interface {
	PublishSearchCommitted(ctx context.Context, event SearchCommittedEvent) error
	PublishCartUpdated(ctx context.Context, event CartUpdatedEvent) error
}

// SearchCommittedEvent зафиксирован новый поисковый запрос
type SearchCommittedEvent struct {
	OccurredAt time.Time
	Query      string
	Generation uint64
}

// CartUpdatedEvent изменилось количество товара в корзине
type CartUpdatedEvent struct {
	OccurredAt       time.Time
	Seq              uint64
	ItemID           int64
	Index            int
	Quantity         int
	ShouldReloadView bool
}
