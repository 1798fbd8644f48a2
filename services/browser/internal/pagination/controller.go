package pagination

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

// DefaultPageSize размер страницы фида (20 товаров + 1 сторожевой)
const DefaultPageSize = 21

// Fetcher загружает страницу каталога (реализует catalog.Client)
type Fetcher interface {
	FetchPage(ctx context.Context, query string, page, pageSize int) ([]model.Item, error)
}

// Sink принимает результат пагинации (реализует store.Store)
type Sink interface {
	Reset(query string)
	Append(items []model.Item)
	SetLoading(loading bool)
	Fail(err error)
	ItemID(index int) (int64, bool)
}

// Cursor состояние пагинации
type Cursor struct {
	Generation uint64
	Query      string
	// Page номер последней загруженной страницы, 0 пока первая не пришла
	Page    int
	HasMore bool
	Loading bool
	// BoundaryID id последнего товара последней загруженной страницы
	BoundaryID int64
	// SentinelID id отрезанного сторожевого товара, он же первый товар следующей страницы
	SentinelID int64
}

// Controller Pagination Controller: курсор страниц, "есть ещё", циклы загрузки.
// Каждый ResetAndLoad начинает новое поколение; ответы старых поколений отбрасываются.
// Внутри поколения одновременно идёт не больше одной загрузки.
type Controller struct {
	fetcher  Fetcher
	sink     Sink
	pageSize int
	logger   *zap.Logger

	mu     sync.Mutex
	cursor Cursor
	// cancelFetch отменяет загрузку, запущенную последней; в поколении их не больше одной
	cancelFetch context.CancelFunc

	wg sync.WaitGroup
}

// New создаёт Controller; pageSize < 2 заменяется на DefaultPageSize
func New(fetcher Fetcher, sink Sink, pageSize int, logger *zap.Logger) *Controller {
	if pageSize < 2 {
		pageSize = DefaultPageSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		fetcher:  fetcher,
		sink:     sink,
		pageSize: pageSize,
		logger:   logger,
	}
}

// Cursor копия текущего курсора
func (c *Controller) Cursor() Cursor {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cursor
}

// ResetAndLoad очищает список, начинает новое поколение и запрашивает первую страницу.
// Список очищается синхронно, до возврата.
func (c *Controller) ResetAndLoad(ctx context.Context, query string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// запрос прошлого поколения больше не нужен, его ответ всё равно будет отброшен
	if c.cancelFetch != nil {
		c.cancelFetch()
		c.cancelFetch = nil
	}

	c.cursor = Cursor{
		Generation: c.cursor.Generation + 1,
		Query:      query,
		Loading:    true,
	}
	c.sink.Reset(query)
	c.sink.SetLoading(true)

	c.logger.Info("search reset",
		zap.String("query", query),
		zap.Uint64("generation", c.cursor.Generation),
	)
	c.startLocked(ctx, 1)
}

// LoadNextIfAtEnd запрашивает следующую страницу, если товар index граничный и страницы ещё есть.
// Повторные вызовы для той же границы, пока загрузка идёт, ничего не делают.
func (c *Controller) LoadNextIfAtEnd(ctx context.Context, index int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor.Loading || !c.cursor.HasMore {
		return false
	}
	id, ok := c.sink.ItemID(index)
	if !ok || id != c.cursor.BoundaryID {
		return false
	}

	c.cursor.Loading = true
	c.startLocked(ctx, c.cursor.Page+1)
	return true
}

// Retry повторяет загрузку после ошибки: первую страницу, если она не пришла, иначе следующую
func (c *Controller) Retry(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cursor.Loading {
		return false
	}
	if c.cursor.Page == 0 {
		c.cursor.Loading = true
		c.sink.SetLoading(true)
		c.startLocked(ctx, 1)
		return true
	}
	if !c.cursor.HasMore {
		return false
	}
	c.cursor.Loading = true
	c.startLocked(ctx, c.cursor.Page+1)
	return true
}

// Wait ждёт завершения всех запущенных загрузок
func (c *Controller) Wait() {
	c.wg.Wait()
}

func (c *Controller) startLocked(ctx context.Context, page int) {
	gen := c.cursor.Generation
	query := c.cursor.Query

	ctx, cancel := context.WithCancel(ctx)
	c.cancelFetch = cancel

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer cancel()
		items, err := c.fetcher.FetchPage(ctx, query, page, c.pageSize)
		c.complete(gen, page, items, err)
	}()
}

func (c *Controller) complete(gen uint64, page int, items []model.Item, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	logger := c.logger.With(
		zap.Uint64("generation", gen),
		zap.Int("page", page),
		zap.String("query", c.cursor.Query),
	)

	if gen != c.cursor.Generation {
		logger.Debug("stale page dropped", zap.Uint64("active_generation", c.cursor.Generation))
		return
	}

	c.cursor.Loading = false

	// HasMore и загруженные товары при ошибке не меняются
	if err != nil {
		logger.Warn("page load failed", zap.Error(err))
		c.sink.Fail(err)
		return
	}

	if page > 1 && c.cursor.SentinelID != 0 && len(items) > 0 && items[0].ID != c.cursor.SentinelID {
		logger.Warn("page continuity broken",
			zap.Int64("expected_first_id", c.cursor.SentinelID),
			zap.Int64("got_first_id", items[0].ID),
		)
	}

	if len(items) >= c.pageSize {
		if len(items) > c.pageSize {
			logger.Warn("feed returned more items than requested", zap.Int("items", len(items)))
		}
		c.cursor.SentinelID = items[c.pageSize-1].ID
		items = items[:c.pageSize-1]
		c.cursor.HasMore = true
	} else {
		c.cursor.SentinelID = 0
		c.cursor.HasMore = false
	}
	if len(items) > 0 {
		c.cursor.BoundaryID = items[len(items)-1].ID
	}
	c.cursor.Page = page

	c.sink.Append(items)
	if page == 1 {
		c.sink.SetLoading(false)
	}

	logger.Debug("page loaded",
		zap.Int("items", len(items)),
		zap.Bool("has_more", c.cursor.HasMore),
		zap.Int64("boundary_id", c.cursor.BoundaryID),
	)
}
