package catalog

import (
	"context"

	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Transport --dir=. --output=./mocks --outpkg=mocks

// Transport достаёт сырые ответы фида.
// Ошибки сети, таймауты и не-2xx статусы возвращаются как *TransportError.
type Transport interface {
	FetchPage(ctx context.Context, query string, page, pageSize int) ([]byte, error)
	FetchItem(ctx context.Context, id int64) ([]byte, error)
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=Decoder --dir=. --output=./mocks --outpkg=mocks

// Decoder переводит сырые ответы в доменные типы; битый payload даёт *DecodeError
type Decoder interface {
	DecodePage(raw []byte) ([]model.Item, error)
	DecodeItem(raw []byte) (model.ItemDetail, error)
}
