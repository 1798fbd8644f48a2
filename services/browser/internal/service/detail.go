package service

import (
	"sync"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/cart"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
	"github.com/shestoi/catalog-browser/services/browser/internal/store"
)

// Detail открытый экран деталей товара.
// Подключён к cart.Synchronizer и видит изменения количества своего товара, откуда бы они ни пришли.
type Detail struct {
	logger  *zap.Logger
	cart    *cart.Synchronizer
	hub     *store.Broadcaster
	index   int
	itemID  int64
	onClose func()

	mu     sync.Mutex
	item   model.ItemDetail
	seen   bool
	closed bool

	detach    func()
	closeOnce sync.Once
}

func newDetail(logger *zap.Logger, synchronizer *cart.Synchronizer, index int, item model.Item, onClose func()) *Detail {
	return &Detail{
		logger:  logger.With(zap.Int64("item_id", item.ID), zap.Int("index", index)),
		cart:    synchronizer,
		hub:     store.NewBroadcaster(),
		index:   index,
		itemID:  item.ID,
		onClose: onClose,
		item:    model.ItemDetail{Item: item},
	}
}

// ItemID id товара
func (d *Detail) ItemID() int64 {
	return d.itemID
}

// Index позиция товара в списке
func (d *Detail) Index() int {
	return d.index
}

// Item карточка товара с текущим количеством
func (d *Detail) Item() model.ItemDetail {
	d.mu.Lock()
	defer d.mu.Unlock()
	item := d.item
	item.Categories = append([]model.Category(nil), d.item.Categories...)
	return item
}

// Quantity текущее количество в корзине
func (d *Detail) Quantity() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.item.SelectedAmount
}

// AddToCart кнопка "в корзину": количество 1, полная перерисовка
func (d *Detail) AddToCart() bool {
	_, ok := d.cart.SetQuantityFor(d.index, d.itemID, 1, true)
	return ok
}

// Adjust кнопки +/-; количество не опускается ниже 0
func (d *Detail) Adjust(delta int) bool {
	_, ok := d.cart.AdjustFor(d.index, d.itemID, delta, true)
	return ok
}

// Subscribe изменения количества на экране деталей
func (d *Detail) Subscribe() *store.Subscription {
	return d.hub.Subscribe()
}

// ApplyCartUpdate применяет обновление своего товара
func (d *Detail) ApplyCartUpdate(u model.CartUpdate) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || u.ItemID != d.itemID {
		return
	}
	d.item.SelectedAmount = u.Quantity
	d.seen = true
	d.hub.Publish(store.Change{
		Kind:   store.ChangeItemUpdated,
		Index:  u.Index,
		Item:   d.item.Item,
		Reload: u.Reload(),
	})
}

// Close отключает экран от синхронизатора и снимает сигнал навигации
func (d *Detail) Close() {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		d.mu.Unlock()

		if d.detach != nil {
			d.detach()
		}
		if d.onClose != nil {
			d.onClose()
		}
		d.hub.CloseAll()
		d.logger.Debug("detail closed")
	})
}

// seed ставит количество из списка, если обновление после подключения ещё не приходило
func (d *Detail) seed(quantity int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.seen {
		d.item.SelectedAmount = quantity
	}
}

// fill дополняет карточку полными данными, количество остаётся своим
func (d *Detail) fill(full model.ItemDetail) {
	d.mu.Lock()
	defer d.mu.Unlock()
	full.SelectedAmount = d.item.SelectedAmount
	d.item = full
}
