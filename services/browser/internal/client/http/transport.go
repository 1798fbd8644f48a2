package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/platform/observability"
	"github.com/shestoi/catalog-browser/services/browser/internal/catalog"
)

// maxBodySize ограничение на размер ответа фида
const maxBodySize = 8 << 20

// Transport реализует catalog.Transport поверх HTTP фида.
// Страница: GET {base}/products?maxItems=N&startFrom=S[&filter[title]=q], товар: GET {base}/products/{id}.
type Transport struct {
	logger  *zap.Logger
	baseURL *url.URL
	client  *http.Client
}

// NewTransport создаёт HTTP transport; запросы идут через observability.ClientTransport
func NewTransport(logger *zap.Logger, baseURL string, timeout time.Duration) (*Transport, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid catalog base url %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid catalog base url %q: scheme must be http or https", baseURL)
	}
	return &Transport{
		logger:  logger,
		baseURL: u,
		client: &http.Client{
			Timeout:   timeout,
			Transport: observability.ClientTransport("catalog-browser", nil),
		},
	}, nil
}

// StartFrom смещение страницы в фиде. Соседние страницы пересекаются на один товар:
// последний (сторожевой) товар страницы N приходит первым на странице N+1.
func StartFrom(page, pageSize int) int {
	if page < 1 {
		page = 1
	}
	return (page - 1) * (pageSize - 1)
}

// FetchPage запрашивает страницу каталога
func (t *Transport) FetchPage(ctx context.Context, query string, page, pageSize int) ([]byte, error) {
	const op = "http.FetchPage"

	params := url.Values{}
	params.Set("maxItems", strconv.Itoa(pageSize))
	params.Set("startFrom", strconv.Itoa(StartFrom(page, pageSize)))
	if query != "" {
		params.Set("filter[title]", query)
	}

	u := t.baseURL.JoinPath("products")
	u.RawQuery = params.Encode()
	return t.get(ctx, op, u.String())
}

// FetchItem запрашивает карточку товара
func (t *Transport) FetchItem(ctx context.Context, id int64) ([]byte, error) {
	const op = "http.FetchItem"
	u := t.baseURL.JoinPath("products", strconv.FormatInt(id, 10))
	return t.get(ctx, op, u.String())
}

func (t *Transport) get(ctx context.Context, op, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, &catalog.TransportError{Op: op, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, &catalog.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, &catalog.TransportError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	// При не-2xx тело ответа идёт в ошибку для диагностики
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &catalog.TransportError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status: %s", strings.TrimSpace(truncate(string(body), 200))),
		}
	}

	t.logger.Debug("catalog feed response",
		zap.String("op", op),
		zap.String("url", target),
		zap.Int("bytes", len(body)),
	)
	return body, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
