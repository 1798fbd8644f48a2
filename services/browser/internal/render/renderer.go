package render

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"go.uber.org/zap"

	"github.com/shestoi/catalog-browser/services/browser/internal/model"
	"github.com/shestoi/catalog-browser/services/browser/internal/store"
)

// PlaceholderImage картинка товара без imageUrl
const PlaceholderImage = "nophoto"

// currency суффикс цены
const currency = " ₽"

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer рендерит список и карточку товара для терминального фронтенда
type Renderer struct {
	logger         *zap.Logger
	listTemplate   *template.Template
	detailTemplate *template.Template
}

// NewRenderer загружает шаблоны
func NewRenderer(logger *zap.Logger) (*Renderer, error) {
	funcs := template.FuncMap{"join": strings.Join}

	listTemplate, err := template.New("list.tmpl").Funcs(funcs).ParseFS(templatesFS, "templates/list.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse list template: %w", err)
	}
	detailTemplate, err := template.New("detail.tmpl").Funcs(funcs).ParseFS(templatesFS, "templates/detail.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse detail template: %w", err)
	}

	return &Renderer{
		logger:         logger,
		listTemplate:   listTemplate,
		detailTemplate: detailTemplate,
	}, nil
}

// FormatPrice цена в формате %g с суффиксом валюты
func FormatPrice(price float64) string {
	return strconv.FormatFloat(price, 'g', -1, 64) + currency
}

// ImageRef ссылка на картинку или PlaceholderImage, если её нет
func ImageRef(url string) string {
	if strings.TrimSpace(url) == "" {
		return PlaceholderImage
	}
	return url
}

type row struct {
	Index    int
	Title    string
	Category string
	Producer string
	Price    string
	Image    string
	Quantity int
}

type listData struct {
	Query   string
	Loading bool
	HasMore bool
	Error   string
	Rows    []row
}

type detailData struct {
	Title       string
	Producer    string
	Categories  []string
	Price       string
	Image       string
	Description string
	Quantity    int
}

// RenderList рендерит состояние списка
func (r *Renderer) RenderList(state store.State, hasMore bool) (string, error) {
	data := listData{
		Query:   state.Query,
		Loading: state.Loading,
		HasMore: hasMore,
		Rows:    make([]row, 0, len(state.Items)),
	}
	if state.LastError != nil {
		data.Error = state.LastError.Error()
	}
	for i, it := range state.Items {
		data.Rows = append(data.Rows, toRow(i, it))
	}

	var buf bytes.Buffer
	if err := r.listTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render list template: %w", err)
	}
	return buf.String(), nil
}

// RenderRow одна строка списка для инкрементального обновления
func (r *Renderer) RenderRow(index int, item model.Item) string {
	rw := toRow(index, item)
	cart := "add to cart"
	if rw.Quantity > 0 {
		cart = "in cart: " + strconv.Itoa(rw.Quantity)
	}
	return fmt.Sprintf("[%d] %s | %s | %s | %s | img: %s | %s", rw.Index, rw.Title, rw.Category, rw.Producer, rw.Price, rw.Image, cart)
}

// RenderDetail рендерит карточку товара
func (r *Renderer) RenderDetail(item model.ItemDetail) (string, error) {
	data := detailData{
		Title:       item.Title,
		Producer:    item.Producer,
		Price:       FormatPrice(item.Price),
		Image:       ImageRef(item.ImageURL),
		Description: item.ShortDescription,
		Quantity:    item.SelectedAmount,
	}
	for _, c := range item.Categories {
		data.Categories = append(data.Categories, c.Title)
	}

	var buf bytes.Buffer
	if err := r.detailTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to render detail template: %w", err)
	}
	return buf.String(), nil
}

func toRow(index int, it model.Item) row {
	return row{
		Index:    index,
		Title:    it.Title,
		Category: it.Category,
		Producer: it.Producer,
		Price:    FormatPrice(it.Price),
		Image:    ImageRef(it.ImageURL),
		Quantity: it.SelectedAmount,
	}
}
