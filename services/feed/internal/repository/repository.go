package repository

import (
	"context"
	"errors"
)

// Product товар фида
type Product struct {
	ID               int64
	Title            string
	Producer         string
	ShortDescription string
	ImageURL         string
	Price            float64
	Categories       []Category
}

// Category категория товара; порядок в Product.Categories сохраняется
type Category struct {
	ID    int64
	Title string
}

// ListFilter выборка страницы: товары по возрастанию id, Title ищется без учёта регистра
type ListFilter struct {
	Title  string
	Offset int
	Limit  int
}

//go:generate go run github.com/vektra/mockery/v2@v2.53.5 --name=ProductRepository --dir=. --output=./mocks --outpkg=mocks

// ProductRepository определяет интерфейс для работы с хранилищем товаров
// Service слой зависит от этого интерфейса, а не от конкретной реализации
type ProductRepository interface {
	// List возвращает товары по фильтру в порядке id
	List(ctx context.Context, filter ListFilter) ([]Product, error)

	// GetByID получает товар по ID
	// Возвращает ErrNotFound, если товар не найден
	GetByID(ctx context.Context, id int64) (Product, error)

	// Upsert сохраняет товары, перезаписывая существующие
	Upsert(ctx context.Context, products ...Product) error

	// Count количество товаров
	Count(ctx context.Context) (int, error)
}

// ErrNotFound возвращается, когда товар не найден в хранилище
var ErrNotFound = errors.New("product not found")
