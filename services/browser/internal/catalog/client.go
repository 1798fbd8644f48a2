package catalog

import (
	"context"
	"errors"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/shestoi/catalog-browser/platform/observability"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

const instrumentationName = "github.com/shestoi/catalog-browser/services/browser/internal/catalog"

// Client Catalog Fetch Client: ходит в Transport и декодирует ответы.
// Отменой устаревших запросов страниц управляет вызывающий через ctx.
type Client struct {
	transport Transport
	decoder   Decoder
	logger    *zap.Logger
	tracer    trace.Tracer
	requests  metric.Int64Counter

	items       singleflight.Group
	itemTimeout time.Duration
}

// DefaultItemTimeout ограничение общего запроса карточки, который не зависит от отмены отдельного вызывающего
const DefaultItemTimeout = 10 * time.Second

// NewClient создаёт Client
func NewClient(transport Transport, decoder Decoder, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	requests, err := otel.Meter(instrumentationName).Int64Counter("catalog.fetch.requests",
		metric.WithDescription("catalog feed requests by operation and outcome"),
	)
	if err != nil {
		logger.Warn("failed to create catalog request counter", zap.Error(err))
	}
	return &Client{
		transport: transport,
		decoder:   decoder,
		logger:    logger,
		tracer:    otel.Tracer(instrumentationName),
		requests:  requests,

		itemTimeout: DefaultItemTimeout,
	}
}

// FetchPage загружает и декодирует страницу каталога
func (c *Client) FetchPage(ctx context.Context, query string, page, pageSize int) ([]model.Item, error) {
	const op = "catalog.FetchPage"

	ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(
		attribute.String("catalog.query", query),
		attribute.Int("catalog.page", page),
		attribute.Int("catalog.page_size", pageSize),
	))
	defer span.End()

	raw, err := c.transport.FetchPage(ctx, query, page, pageSize)
	if err != nil {
		err = asTransportError(op, err)
		c.fail(ctx, span, op, err)
		return nil, err
	}

	items, err := c.decoder.DecodePage(raw)
	if err != nil {
		err = asDecodeError(op, err)
		c.fail(ctx, span, op, err)
		return nil, err
	}

	span.SetAttributes(attribute.Int("catalog.items", len(items)))
	c.count(ctx, op, "ok")
	observability.L(ctx, c.logger).Debug("catalog page fetched",
		zap.String("op", op),
		zap.String("query", query),
		zap.Int("page", page),
		zap.Int("items", len(items)),
	)
	return items, nil
}

// FetchItem загружает полную карточку товара.
// Параллельные запросы одного id схлопываются в один вызов Transport.
// Общий вызов не отменяется вместе с первым вызывающим; каждый вызывающий перестаёт ждать по своему ctx.
func (c *Client) FetchItem(ctx context.Context, id int64) (model.ItemDetail, error) {
	const op = "catalog.FetchItem"

	ch := c.items.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.itemTimeout)
		defer cancel()

		ctx, span := c.tracer.Start(ctx, op, trace.WithAttributes(attribute.Int64("catalog.item_id", id)))
		defer span.End()

		raw, err := c.transport.FetchItem(ctx, id)
		if err != nil {
			err = asTransportError(op, err)
			c.fail(ctx, span, op, err)
			return model.ItemDetail{}, err
		}
		item, err := c.decoder.DecodeItem(raw)
		if err != nil {
			err = asDecodeError(op, err)
			c.fail(ctx, span, op, err)
			return model.ItemDetail{}, err
		}
		c.count(ctx, op, "ok")
		return item, nil
	})

	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return model.ItemDetail{}, asTransportError(op, ctx.Err())
	}
	if res.Shared {
		c.logger.Debug("catalog item fetch shared", zap.Int64("item_id", id))
	}
	if res.Err != nil {
		return model.ItemDetail{}, res.Err
	}

	item := res.Val.(model.ItemDetail)
	// Categories общий срез у всех ждавших, отдаём каждому копию
	item.Categories = append([]model.Category(nil), item.Categories...)
	return item, nil
}

func (c *Client) fail(ctx context.Context, span trace.Span, op string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	outcome := "decode_error"
	if IsTransport(err) {
		outcome = "transport_error"
	}
	c.count(ctx, op, outcome)

	observability.L(ctx, c.logger).Warn("catalog request failed",
		zap.String("op", op),
		zap.Error(err),
	)
}

func (c *Client) count(ctx context.Context, op, outcome string) {
	if c.requests == nil {
		return
	}
	c.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("outcome", outcome),
	))
}

func asTransportError(op string, err error) error {
	var te *TransportError
	if errors.As(err, &te) {
		return err
	}
	return &TransportError{Op: op, Err: err}
}

func asDecodeError(op string, err error) error {
	var de *DecodeError
	if errors.As(err, &de) {
		return err
	}
	return &DecodeError{Op: op, Err: err}
}
