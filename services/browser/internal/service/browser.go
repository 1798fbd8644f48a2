package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/platform/observability"
	"github.com/shestoi/catalog-browser/services/browser/internal/cart"
	"github.com/shestoi/catalog-browser/services/browser/internal/debounce"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
	"github.com/shestoi/catalog-browser/services/browser/internal/pagination"
	"github.com/shestoi/catalog-browser/services/browser/internal/store"
)

// DefaultDebounce окно тишины поиска по умолчанию
const DefaultDebounce = time.Second

var (
	// ErrNotStarted вызов до Start
	ErrNotStarted = errors.New("browser is not started")
	// ErrAlreadyStarted повторный Start
	ErrAlreadyStarted = errors.New("browser is already started")
	// ErrItemMismatch фид вернул карточку другого товара
	ErrItemMismatch = errors.New("feed returned another product")
)

// Options параметры BrowserService
type Options struct {
	PageSize int
	Debounce time.Duration
	// Clock таймеры debounce, nil означает реальное время
	Clock debounce.Clock
}

// BrowserService точки входа для слоёв рендера: ввод поиска, прокрутка, корзина, детали.
// Собирает debounce -> pagination -> store и cart -> store в один граф.
type BrowserService struct {
	logger    *zap.Logger
	catalog   CatalogClient
	publisher EventPublisher

	store     *store.Store
	pager     *pagination.Controller
	cart      *cart.Synchronizer
	debouncer *debounce.Debouncer
	detaches  []func()

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc

	closeOnce sync.Once
}

// NewBrowserService создаёт BrowserService; publisher == nil означает NoOpPublisher
func NewBrowserService(logger *zap.Logger, catalog CatalogClient, publisher EventPublisher, opts Options) *BrowserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if publisher == nil {
		publisher = NewNoOpPublisher(logger)
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}

	s := &BrowserService{
		logger:    logger,
		catalog:   catalog,
		publisher: publisher,
	}
	s.store = store.New(logger.With(zap.String("component", "store")))
	s.pager = pagination.New(catalog, s.store, opts.PageSize, logger.With(zap.String("component", "pagination")))
	s.cart = cart.New(s.store, logger.With(zap.String("component", "cart")))
	s.debouncer = debounce.New(opts.Debounce, opts.Clock, s.onQueryCommitted)

	s.detaches = append(s.detaches,
		s.cart.Attach(s.store),
		s.cart.Attach(cart.ObserverFunc(s.exportCartUpdate)),
	)
	return s
}

// Start запускает браузер: фиксирует пустой запрос и грузит первую страницу.
// ctx ограничивает все фоновые загрузки; Close отменяет его.
func (s *BrowserService) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.ctx != nil {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.logger.Info("browser started")
	s.debouncer.CommitNow("")
	return nil
}

// OnSearchInput текст поля поиска изменился
func (s *BrowserService) OnSearchInput(text string) {
	s.debouncer.OnTextChanged(text)
}

// OnVisibleItem рендер показал товар index
func (s *BrowserService) OnVisibleItem(index int) {
	ctx, err := s.runContext()
	if err != nil {
		return
	}
	s.pager.LoadNextIfAtEnd(ctx, index)
}

// OnCartTap кнопка "в корзину" в строке списка
func (s *BrowserService) OnCartTap(index int) {
	s.cart.SetQuantity(index, 1, false)
}

// OnCartAdjust кнопки +/- в строке списка
func (s *BrowserService) OnCartAdjust(index, delta int) {
	s.cart.Adjust(index, delta, false)
}

// Retry повторяет загрузку после ошибки
func (s *BrowserService) Retry() bool {
	ctx, err := s.runContext()
	if err != nil {
		return false
	}
	return s.pager.Retry(ctx)
}

// OpenDetail открывает экран деталей товара index и загружает его полную карточку
func (s *BrowserService) OpenDetail(ctx context.Context, index int) (*Detail, error) {
	const op = "service.OpenDetail"

	item, err := s.store.Navigate(index)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	d := newDetail(s.logger.With(zap.String("component", "detail")), s.cart, index, item, func() {
		s.store.ClearNavigate(item.ID)
	})
	d.detach = s.cart.Attach(d)
	if id, quantity, ok := s.store.Resolve(index); ok && id == item.ID {
		d.seed(quantity)
	}

	full, err := s.catalog.FetchItem(ctx, item.ID)
	if err == nil && full.ID != item.ID {
		err = fmt.Errorf("%w: want %d, got %d", ErrItemMismatch, item.ID, full.ID)
	}
	if err != nil {
		d.Close()
		observability.L(ctx, s.logger).Warn("failed to open detail",
			zap.String("op", op),
			zap.Int("index", index),
			zap.Int64("item_id", item.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	d.fill(full)
	return d, nil
}

// Subscribe подписка на изменения состояния списка
func (s *BrowserService) Subscribe() *store.Subscription {
	return s.store.Subscribe()
}

// SubscribeWithSnapshot текущее состояние и подписка на изменения после него
func (s *BrowserService) SubscribeWithSnapshot() (store.State, *store.Subscription) {
	return s.store.SubscribeWithSnapshot()
}

// Snapshot текущее состояние списка
func (s *BrowserService) Snapshot() store.State {
	return s.store.Snapshot()
}

// Cursor состояние пагинации
func (s *BrowserService) Cursor() pagination.Cursor {
	return s.pager.Cursor()
}

// Close останавливает debounce, отменяет загрузки, ждёт их и закрывает подписки
func (s *BrowserService) Close() error {
	s.closeOnce.Do(func() {
		s.debouncer.Stop()

		s.mu.Lock()
		if s.cancel != nil {
			s.cancel()
		}
		s.mu.Unlock()

		s.pager.Wait()
		for _, detach := range s.detaches {
			detach()
		}
		s.store.Close()
		s.logger.Info("browser closed")
	})
	return nil
}

func (s *BrowserService) runContext() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		return nil, ErrNotStarted
	}
	return s.ctx, nil
}

func (s *BrowserService) onQueryCommitted(query string) {
	ctx, err := s.runContext()
	if err != nil {
		s.logger.Warn("search committed before start", zap.String("query", query))
		return
	}

	s.pager.ResetAndLoad(ctx, query)

	event := SearchCommittedEvent{
		OccurredAt: time.Now().UTC(),
		Query:      query,
		Generation: s.pager.Cursor().Generation,
	}
	if err := s.publisher.PublishSearchCommitted(ctx, event); err != nil {
		s.logger.Warn("failed to export search event", zap.String("query", query), zap.Error(err))
	}
}

func (s *BrowserService) exportCartUpdate(u model.CartUpdate) {
	ctx, err := s.runContext()
	if err != nil {
		ctx = context.Background()
	}

	event := CartUpdatedEvent{
		OccurredAt:       time.Now().UTC(),
		Seq:              u.Seq,
		ItemID:           u.ItemID,
		Index:            u.Index,
		Quantity:         u.Quantity,
		ShouldReloadView: u.ShouldReloadView,
	}
	if err := s.publisher.PublishCartUpdated(ctx, event); err != nil {
		s.logger.Warn("failed to export cart event", zap.Int64("item_id", u.ItemID), zap.Error(err))
	}
}
