package store

import (
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/catalog"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

// Store View-Facing State Store: список товаров, запрос, индикатор загрузки, сигнал навигации.
// Все записи сериализуются mu, изменения публикуются подписчикам под тем же mu, поэтому порядок
// доставки совпадает с порядком записей. Пишут только pagination, cart и service.
type Store struct {
	logger *zap.Logger
	hub    *Broadcaster

	mu         sync.Mutex
	query      string
	items      []model.Item
	loading    bool
	navigation Navigation
	lastReload model.Reload
	lastErr    error
}

// New создаёт пустой Store
func New(logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		logger: logger,
		hub:    NewBroadcaster(),
	}
}

// Subscribe подписка на все изменения после момента вызова; начальное состояние берётся из Snapshot
func (s *Store) Subscribe() *Subscription {
	return s.hub.Subscribe()
}

// SubscribeWithSnapshot атомарно снимает состояние и подписывается, так что ни одно изменение не теряется
func (s *Store) SubscribeWithSnapshot() (State, *Subscription) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(), s.hub.Subscribe()
}

// Snapshot копия текущего состояния
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Len количество загруженных товаров
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Close закрывает все подписки
func (s *Store) Close() {
	s.hub.CloseAll()
}

// Reset очищает список под новый запрос
func (s *Store) Reset(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.query = query
	s.items = nil
	s.lastErr = nil
	s.lastReload = model.ReloadFull
	s.hub.Publish(Change{Kind: ChangeReset, Query: query})
}

// Append добавляет товары в конец списка в порядке прихода
func (s *Store) Append(items []model.Item) {
	if len(items) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	from := len(s.items)
	s.items = append(s.items, items...)
	s.lastErr = nil
	s.hub.Publish(Change{Kind: ChangeAppended, From: from, Items: cloneItems(items)})
}

// SetLoading меняет индикатор загрузки; повтор того же значения не публикуется
func (s *Store) SetLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setLoadingLocked(loading)
}

// Fail снимает индикатор загрузки и публикует ошибку; загруженные товары не трогаются
func (s *Store) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLoadingLocked(false)
	s.lastErr = err
	s.hub.Publish(Change{Kind: ChangeError, Err: err})
}

// ItemID id товара по индексу
func (s *Store) ItemID(index int) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return 0, false
	}
	return s.items[index].ID, true
}

// Resolve id и текущее количество товара по индексу
func (s *Store) Resolve(index int) (int64, int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return 0, 0, false
	}
	return s.items[index].ID, s.items[index].SelectedAmount, true
}

// ApplyCartUpdate применяет изменение количества, если по индексу всё ещё тот же товар
func (s *Store) ApplyCartUpdate(u model.CartUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u.Index < 0 || u.Index >= len(s.items) || s.items[u.Index].ID != u.ItemID {
		s.logger.Debug("cart update dropped",
			zap.Int("index", u.Index),
			zap.Int64("item_id", u.ItemID),
			zap.Error(catalog.ErrIndexOutOfRange),
		)
		return
	}

	s.items[u.Index].SelectedAmount = u.Quantity
	s.lastReload = u.Reload()
	s.hub.Publish(Change{
		Kind:   ChangeItemUpdated,
		Index:  u.Index,
		Item:   s.items[u.Index],
		Reload: s.lastReload,
	})
}

// Navigate поднимает сигнал перехода к деталям товара index
func (s *Store) Navigate(index int) (model.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return model.Item{}, fmt.Errorf("navigate to %d: %w", index, catalog.ErrIndexOutOfRange)
	}

	item := s.items[index]
	s.navigation = Navigation{Active: true, Index: index, ItemID: item.ID}
	s.hub.Publish(Change{Kind: ChangeNavigate, Active: true, Index: index, Item: item})
	return item, nil
}

// ClearNavigate снимает сигнал навигации, если он указывает на itemID
func (s *Store) ClearNavigate(itemID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.navigation.Active || s.navigation.ItemID != itemID {
		return
	}
	index := s.navigation.Index
	s.navigation = Navigation{}
	s.hub.Publish(Change{Kind: ChangeNavigate, Active: false, Index: index})
}

func (s *Store) setLoadingLocked(loading bool) {
	if s.loading == loading {
		return
	}
	s.loading = loading
	s.hub.Publish(Change{Kind: ChangeLoading, Loading: loading})
}

func (s *Store) snapshotLocked() State {
	return State{
		Query:      s.query,
		Items:      cloneItems(s.items),
		Loading:    s.loading,
		Navigation: s.navigation,
		LastReload: s.lastReload,
		LastError:  s.lastErr,
	}
}

func cloneItems(items []model.Item) []model.Item {
	if items == nil {
		return nil
	}
	out := make([]model.Item, len(items))
	copy(out, items)
	return out
}
