package http

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shestoi/catalog-browser/services/browser/internal/catalog"
	"github.com/shestoi/catalog-browser/services/browser/internal/model"
)

// ProductDTO товар в JSON фида; тот же формат отдаёт services/feed
type ProductDTO struct {
	ID               int64         `json:"id"`
	Title            string        `json:"title"`
	Producer         string        `json:"producer"`
	ShortDescription string        `json:"shortDescription"`
	ImageURL         string        `json:"imageUrl"`
	Price            float64       `json:"price"`
	Categories       []CategoryDTO `json:"categories"`
}

// CategoryDTO категория товара в JSON фида
type CategoryDTO struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ItemResponse ответ GET /products/{id}
type ItemResponse struct {
	Product *ProductDTO `json:"product"`
}

// JSONDecoder реализует catalog.Decoder
type JSONDecoder struct{}

// DecodePage разбирает страницу; отсутствие ключа products считается битым ответом
func (JSONDecoder) DecodePage(raw []byte) ([]model.Item, error) {
	const op = "json.DecodePage"

	var resp struct {
		Products *[]ProductDTO `json:"products"`
	}
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, &catalog.DecodeError{Op: op, Err: err}
	}
	if resp.Products == nil {
		return nil, &catalog.DecodeError{Op: op, Err: errors.New("missing products")}
	}

	items := make([]model.Item, 0, len(*resp.Products))
	for i, p := range *resp.Products {
		if p.ID <= 0 {
			return nil, &catalog.DecodeError{Op: op, Err: fmt.Errorf("product %d: invalid id %d", i, p.ID)}
		}
		items = append(items, p.toItem())
	}
	return items, nil
}

// DecodeItem разбирает карточку товара
func (JSONDecoder) DecodeItem(raw []byte) (model.ItemDetail, error) {
	const op = "json.DecodeItem"

	var resp ItemResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return model.ItemDetail{}, &catalog.DecodeError{Op: op, Err: err}
	}
	if resp.Product == nil {
		return model.ItemDetail{}, &catalog.DecodeError{Op: op, Err: errors.New("missing product")}
	}
	if resp.Product.ID <= 0 {
		return model.ItemDetail{}, &catalog.DecodeError{Op: op, Err: fmt.Errorf("invalid id %d", resp.Product.ID)}
	}

	p := resp.Product
	detail := model.ItemDetail{
		Item:             p.toItem(),
		ShortDescription: p.ShortDescription,
	}
	for _, c := range p.Categories {
		detail.Categories = append(detail.Categories, model.Category{ID: c.ID, Title: c.Title})
	}
	return detail, nil
}

func (p ProductDTO) toItem() model.Item {
	item := model.Item{
		ID:       p.ID,
		Title:    p.Title,
		Producer: p.Producer,
		Price:    p.Price,
		ImageURL: p.ImageURL,
	}
	if len(p.Categories) > 0 {
		item.Category = p.Categories[0].Title
	}
	return item
}
