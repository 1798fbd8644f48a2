package postgres

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/shestoi/catalog-browser/services/feed/internal/repository"
)

// Repository реализует ProductRepository используя PostgreSQL
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository создаёт новый PostgreSQL репозиторий
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{
		pool: pool,
	}
}

// List возвращает страницу товаров в порядке id
// Категории подтягиваются одним запросом для всей страницы
func (r *Repository) List(ctx context.Context, filter repository.ListFilter) ([]repository.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, producer, short_description, image_url, price
		 FROM products
		 WHERE $1 = '' OR title ILIKE $2
		 ORDER BY id
		 OFFSET $3 LIMIT $4`,
		filter.Title, containsPattern(filter.Title), filter.Offset, filter.Limit)
	if err != nil {
		return nil, err
	}

	products, err := pgx.CollectRows(rows, scanProduct)
	if err != nil {
		return nil, err
	}
	if len(products) == 0 {
		return products, nil
	}

	ids := make([]int64, 0, len(products))
	byID := make(map[int64]int, len(products))
	for i, p := range products {
		ids = append(ids, p.ID)
		byID[p.ID] = i
	}

	catRows, err := r.pool.Query(ctx,
		`SELECT pc.product_id, c.id, c.title
		 FROM product_categories pc
		 JOIN categories c ON c.id = pc.category_id
		 WHERE pc.product_id = ANY($1)
		 ORDER BY pc.product_id, pc.position`,
		ids)
	if err != nil {
		return nil, err
	}
	defer catRows.Close()

	for catRows.Next() {
		var productID int64
		var c repository.Category
		if err := catRows.Scan(&productID, &c.ID, &c.Title); err != nil {
			return nil, err
		}
		i := byID[productID]
		products[i].Categories = append(products[i].Categories, c)
	}
	if err := catRows.Err(); err != nil {
		return nil, err
	}

	return products, nil
}

// GetByID получает товар по ID из PostgreSQL
func (r *Repository) GetByID(ctx context.Context, id int64) (repository.Product, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, title, producer, short_description, image_url, price
		 FROM products
		 WHERE id = $1`,
		id)
	if err != nil {
		return repository.Product{}, err
	}

	p, err := pgx.CollectExactlyOneRow(rows, scanProduct)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Product{}, repository.ErrNotFound
		}
		return repository.Product{}, err
	}

	catRows, err := r.pool.Query(ctx,
		`SELECT c.id, c.title
		 FROM product_categories pc
		 JOIN categories c ON c.id = pc.category_id
		 WHERE pc.product_id = $1
		 ORDER BY pc.position`,
		id)
	if err != nil {
		return repository.Product{}, err
	}

	p.Categories, err = pgx.CollectRows(catRows, func(row pgx.CollectableRow) (repository.Category, error) {
		var c repository.Category
		err := row.Scan(&c.ID, &c.Title)
		return c, err
	})
	if err != nil {
		return repository.Product{}, err
	}

	return p, nil
}

// Upsert сохраняет товары в одной транзакции
// Категории товара перезаписываются целиком
func (r *Repository) Upsert(ctx context.Context, products ...repository.Product) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	batch := &pgx.Batch{}
	for _, p := range products {
		batch.Queue(
			`INSERT INTO products (id, title, producer, short_description, image_url, price)
			 VALUES ($1, $2, $3, $4, $5, $6)
			 ON CONFLICT (id) DO UPDATE SET
			   title = EXCLUDED.title,
			   producer = EXCLUDED.producer,
			   short_description = EXCLUDED.short_description,
			   image_url = EXCLUDED.image_url,
			   price = EXCLUDED.price`,
			p.ID, p.Title, p.Producer, p.ShortDescription, p.ImageURL, p.Price)
		batch.Queue(`DELETE FROM product_categories WHERE product_id = $1`, p.ID)

		for pos, c := range p.Categories {
			batch.Queue(
				`INSERT INTO categories (id, title) VALUES ($1, $2)
				 ON CONFLICT (id) DO UPDATE SET title = EXCLUDED.title`,
				c.ID, c.Title)
			batch.Queue(
				`INSERT INTO product_categories (product_id, category_id, position)
				 VALUES ($1, $2, $3)
				 ON CONFLICT (product_id, category_id) DO UPDATE SET position = EXCLUDED.position`,
				p.ID, c.ID, pos)
		}
	}

	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

// Count количество товаров
func (r *Repository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products`).Scan(&n)
	return n, err
}

// containsPattern экранирует спецсимволы LIKE, подстрока ищется буквально
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanProduct(row pgx.CollectableRow) (repository.Product, error) {
	var p repository.Product
	err := row.Scan(&p.ID, &p.Title, &p.Producer, &p.ShortDescription, &p.ImageURL, &p.Price)
	return p, err
}
