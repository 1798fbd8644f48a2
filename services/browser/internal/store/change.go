package store

import (
	"fmt"

	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

// ChangeKind вид изменения состояния
type ChangeKind int

const (
	// ChangeReset список очищен под новый запрос
	ChangeReset ChangeKind = iota + 1
	// ChangeAppended в конец списка добавлены товары
	ChangeAppended
	// ChangeLoading изменился глобальный индикатор загрузки
	ChangeLoading
	// ChangeItemUpdated изменилось количество товара в корзине
	ChangeItemUpdated
	// ChangeNavigate запрошен (или снят) переход к деталям товара
	ChangeNavigate
	// ChangeError загрузка страницы завершилась ошибкой, можно повторить
	ChangeError
)

func (k ChangeKind) String() string {
	switch k {
	case ChangeReset:
		return "reset"
	case ChangeAppended:
		return "appended"
	case ChangeLoading:
		return "loading"
	case ChangeItemUpdated:
		return "item_updated"
	case ChangeNavigate:
		return "navigate"
	case ChangeError:
		return "error"
	default:
		return fmt.Sprintf("change(%d)", int(k))
	}
}

// Change одно изменение состояния. Заполнены только поля, относящиеся к Kind.
type Change struct {
	Seq  uint64
	Kind ChangeKind

	// ChangeReset
	Query string
	// ChangeAppended: From индекс первого добавленного товара
	From  int
	Items []model.Item
	// ChangeItemUpdated, ChangeNavigate
	Index int
	Item  model.Item
	// ChangeItemUpdated
	Reload model.Reload
	// ChangeLoading
	Loading bool
	// ChangeNavigate: false означает, что экран деталей закрыт
	Active bool
	// ChangeError
	Err error
}

// Navigation сигнал перехода к деталям
type Navigation struct {
	Active bool
	Index  int
	ItemID int64
}

// State снимок состояния для рендера
type State struct {
	Query      string
	Items      []model.Item
	Loading    bool
	Navigation Navigation
	LastReload model.Reload
	LastError  error
}
