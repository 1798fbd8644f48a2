package cart

import (
	"sync"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/catalog"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

// Resolver отдаёт id и текущее количество товара по индексу списка (реализует store.Store)
type Resolver interface {
	Resolve(index int) (itemID int64, quantity int, ok bool)
}

// Observer применяет CartUpdate к своей копии товара.
// Вызывается под блокировкой Synchronizer и не должен вызывать его обратно.
type Observer interface {
	ApplyCartUpdate(u model.CartUpdate)
}

// ObserverFunc адаптер функции к Observer
type ObserverFunc func(u model.CartUpdate)

// ApplyCartUpdate вызывает f(u)
func (f ObserverFunc) ApplyCartUpdate(u model.CartUpdate) { f(u) }

// Synchronizer единая точка упорядочивания изменений количества.
// Чтение текущего количества, расчёт нового и рассылка всем наблюдателям идут под одним mu,
// поэтому к следующему изменению все наблюдатели уже видят предыдущее.
type Synchronizer struct {
	resolver Resolver
	logger   *zap.Logger

	mu        sync.Mutex
	seq       uint64
	nextID    uint64
	observers []registration
}

type registration struct {
	id       uint64
	observer Observer
}

// New создаёт Synchronizer
func New(resolver Resolver, logger *zap.Logger) *Synchronizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Synchronizer{
		resolver: resolver,
		logger:   logger,
	}
}

// Attach подключает наблюдателя; обновления приходят в порядке подключения наблюдателей.
// Возвращённая функция отключает его, повторный вызов безопасен.
func (s *Synchronizer) Attach(o Observer) (detach func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.observers = append(s.observers, registration{id: id, observer: o})

	var once sync.Once
	return func() {
		once.Do(func() { s.detach(id) })
	}
}

// SetQuantity ставит количество товара index (отрицательное приводится к 0).
// Устаревший индекс молча игнорируется: ok == false.
func (s *Synchronizer) SetQuantity(index, quantity int, reload bool) (model.CartUpdate, bool) {
	return s.apply(index, 0, false, func(int) int { return quantity }, reload)
}

// Adjust меняет количество на delta, не опускаясь ниже 0
func (s *Synchronizer) Adjust(index, delta int, reload bool) (model.CartUpdate, bool) {
	return s.apply(index, 0, false, func(current int) int { return current + delta }, reload)
}

// SetQuantityFor как SetQuantity, но только если по index всё ещё лежит itemID
func (s *Synchronizer) SetQuantityFor(index int, itemID int64, quantity int, reload bool) (model.CartUpdate, bool) {
	return s.apply(index, itemID, true, func(int) int { return quantity }, reload)
}

// AdjustFor как Adjust, но только если по index всё ещё лежит itemID
func (s *Synchronizer) AdjustFor(index int, itemID int64, delta int, reload bool) (model.CartUpdate, bool) {
	return s.apply(index, itemID, true, func(current int) int { return current + delta }, reload)
}

func (s *Synchronizer) apply(index int, wantID int64, checkID bool, next func(current int) int, reload bool) (model.CartUpdate, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	itemID, current, ok := s.resolver.Resolve(index)
	if !ok || (checkID && itemID != wantID) {
		s.logger.Debug("cart update ignored",
			zap.Int("index", index),
			zap.Int64("item_id", wantID),
			zap.Error(catalog.ErrIndexOutOfRange),
		)
		return model.CartUpdate{}, false
	}

	quantity := next(current)
	if quantity < 0 {
		quantity = 0
	}

	s.seq++
	u := model.CartUpdate{
		Seq:              s.seq,
		Index:            index,
		ItemID:           itemID,
		Quantity:         quantity,
		ShouldReloadView: reload,
	}

	for _, r := range s.observers {
		r.observer.ApplyCartUpdate(u)
	}

	s.logger.Debug("cart quantity updated",
		zap.Uint64("seq", u.Seq),
		zap.Int("index", index),
		zap.Int64("item_id", itemID),
		zap.Int("quantity", quantity),
		zap.Bool("reload", reload),
	)
	return u, true
}

func (s *Synchronizer) detach(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, r := range s.observers {
		if r.id == id {
			s.observers = append(s.observers[:i:i], s.observers[i+1:]...)
			return
		}
	}
}
