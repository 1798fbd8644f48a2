package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/feed/internal/repository"
)

const (
	// DefaultMaxItems размер страницы, если maxItems не передан (страница браузера плюс один сторожевой элемент)
	DefaultMaxItems = 21
	// MaxItemsLimit верхняя граница maxItems
	MaxItemsLimit = 100
)

var (
	// ErrInvalidArgument некорректные параметры запроса
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound товар не найден
	ErrNotFound = errors.New("not found")
)

// ListProductsInput параметры выборки страницы
type ListProductsInput struct {
	MaxItems  int
	StartFrom int
	Title     string
}

// ProductService содержит бизнес-логику фида товаров
type ProductService struct {
	repo   repository.ProductRepository
	logger *zap.Logger
}

// NewProductService создаёт новый ProductService
func NewProductService(logger *zap.Logger, repo repository.ProductRepository) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		repo:   repo,
		logger: logger,
	}
}

// ListProducts возвращает до MaxItems товаров начиная с позиции StartFrom
func (s *ProductService) ListProducts(ctx context.Context, in ListProductsInput) ([]repository.Product, error) {
	const op = "service.ListProducts"

	if in.MaxItems == 0 {
		in.MaxItems = DefaultMaxItems
	}
	if in.MaxItems < 0 || in.MaxItems > MaxItemsLimit {
		return nil, fmt.Errorf("%s: maxItems must be in 1..%d: %w", op, MaxItemsLimit, ErrInvalidArgument)
	}
	if in.StartFrom < 0 {
		return nil, fmt.Errorf("%s: startFrom must be non-negative: %w", op, ErrInvalidArgument)
	}

	products, err := s.repo.List(ctx, repository.ListFilter{
		Title:  strings.TrimSpace(in.Title),
		Offset: in.StartFrom,
		Limit:  in.MaxItems,
	})
	if err != nil {
		s.logger.Error("list products failed", zap.String("op", op), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.logger.Debug("products listed",
		zap.String("title", in.Title),
		zap.Int("start_from", in.StartFrom),
		zap.Int("max_items", in.MaxItems),
		zap.Int("count", len(products)))
	return products, nil
}

// GetProduct возвращает товар по id
func (s *ProductService) GetProduct(ctx context.Context, id int64) (repository.Product, error) {
	const op = "service.GetProduct"

	if id <= 0 {
		return repository.Product{}, fmt.Errorf("%s: id must be positive: %w", op, ErrInvalidArgument)
	}

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Product{}, fmt.Errorf("%s: product %d: %w", op, id, ErrNotFound)
		}
		s.logger.Error("get product failed", zap.String("op", op), zap.Int64("id", id), zap.Error(err))
		return repository.Product{}, fmt.Errorf("%s: %w", op, err)
	}
	return p, nil
}

// Seed заполняет пустое хранилище демо-каталогом, непустое не трогает
func (s *ProductService) Seed(ctx context.Context, n int) error {
	const op = "service.Seed"

	if n <= 0 {
		return nil
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count > 0 {
		s.logger.Info("storage already seeded", zap.Int("count", count))
		return nil
	}

	if err := s.repo.Upsert(ctx, repository.SeedProducts(n)...); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.logger.Info("storage seeded", zap.Int("count", n))
	return nil
}
