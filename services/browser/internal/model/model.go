package model

// Category категория товара из фида
type Category struct {
	ID    int64
	Title string
}

// Item товар в списке каталога.
// SelectedAmount меняется только через cart.Synchronizer.
type Item struct {
	ID             int64
	Title          string
	Category       string // первая категория товара
	Producer       string
	Price          float64
	ImageURL       string
	SelectedAmount int
}

// ItemDetail полная карточка товара для экрана деталей
type ItemDetail struct {
	Item
	ShortDescription string
	Categories       []Category
}

// Reload подсказка рендеру после изменения количества в корзине
type Reload int

const (
	// ReloadUnchanged изменений количества не было
	ReloadUnchanged Reload = iota
	// ReloadIncremental достаточно обновить одну строку
	ReloadIncremental
	// ReloadFull нужна полная перерисовка видимой области
	ReloadFull
)

// ReloadFromHint переводит флаг shouldReloadView в Reload
func ReloadFromHint(shouldReloadView bool) Reload {
	if shouldReloadView {
		return ReloadFull
	}
	return ReloadIncremental
}

func (r Reload) String() string {
	switch r {
	case ReloadIncremental:
		return "incremental"
	case ReloadFull:
		return "full"
	default:
		return "unchanged"
	}
}

// CartUpdate каноническое изменение количества, которое Synchronizer рассылает наблюдателям.
// Seq растёт монотонно, по нему наблюдатели видят общий порядок изменений.
type CartUpdate struct {
	Seq              uint64
	Index            int
	ItemID           int64
	Quantity         int
	ShouldReloadView bool
}

// Reload подсказка рендеру для этого обновления
func (u CartUpdate) Reload() Reload {
	return ReloadFromHint(u.ShouldReloadView)
}
