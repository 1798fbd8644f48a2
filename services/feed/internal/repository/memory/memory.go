package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/shestoi/catalog-browser/services/feed/internal/repository"
)

// Repository реализует ProductRepository используя in-memory map
// Используется для локального запуска и тестов
type Repository struct {
	mu       sync.RWMutex
	products map[int64]repository.Product
	ids      []int64 // отсортированные id
}

// NewRepository создаёт новый in-memory репозиторий
func NewRepository() *Repository {
	return &Repository{
		products: make(map[int64]repository.Product),
	}
}

// List возвращает товары по фильтру в порядке id
func (r *Repository) List(ctx context.Context, filter repository.ListFilter) ([]repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	title := strings.ToLower(filter.Title)
	out := make([]repository.Product, 0, filter.Limit)
	skipped := 0
	for _, id := range r.ids {
		if len(out) >= filter.Limit {
			break
		}
		p := r.products[id]
		if title != "" && !strings.Contains(strings.ToLower(p.Title), title) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, clone(p))
	}
	return out, nil
}

// GetByID получает товар по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (repository.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return repository.Product{}, repository.ErrNotFound
	}
	return clone(p), nil
}

// Upsert сохраняет товары
func (r *Repository) Upsert(ctx context.Context, products ...repository.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range products {
		if _, exists := r.products[p.ID]; !exists {
			r.ids = append(r.ids, p.ID)
		}
		r.products[p.ID] = clone(p)
	}
	sort.Slice(r.ids, func(i, j int) bool { return r.ids[i] < r.ids[j] })
	return nil
}

// Count количество товаров
func (r *Repository) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.products), nil
}

func clone(p repository.Product) repository.Product {
	p.Categories = append([]repository.Category(nil), p.Categories...)
	return p
}
