package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	platformobservability "github.com/shestoi/catalog-browser/platform/observability"
	"github.com/shestoi/catalog-browser/services/feed/internal/api/http/middleware"
	"github.com/shestoi/catalog-browser/services/feed/internal/repository"
	"github.com/shestoi/catalog-browser/services/feed/internal/service"
)

// Handler содержит HTTP-обработчики фида товаров
type Handler struct {
	products *service.ProductService
	logger   *zap.Logger
}

// NewHandler создаёт новый HTTP handler
func NewHandler(products *service.ProductService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		products: products,
		logger:   logger,
	}
}

// CategoryResponse категория в ответе
type CategoryResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

// ProductResponse товар в ответе
type ProductResponse struct {
	ID               int64              `json:"id"`
	Title            string             `json:"title"`
	Producer         string             `json:"producer"`
	ShortDescription string             `json:"shortDescription"`
	ImageURL         string             `json:"imageUrl"`
	Price            float64            `json:"price"`
	Categories       []CategoryResponse `json:"categories"`
}

// ListResponse ответ GET /products
type ListResponse struct {
	Products []ProductResponse `json:"products"`
}

// ItemResponse ответ GET /products/{id}
type ItemResponse struct {
	Product ProductResponse `json:"product"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// GetProducts обрабатывает GET /products?maxItems=&startFrom=&filter[title]=
func (h *Handler) GetProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	q := r.URL.Query()

	maxItems, err := intParam(q.Get("maxItems"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "maxItems must be an integer")
		return
	}
	startFrom, err := intParam(q.Get("startFrom"))
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "startFrom must be an integer")
		return
	}

	products, err := h.products.ListProducts(ctx, service.ListProductsInput{
		MaxItems:  maxItems,
		StartFrom: startFrom,
		Title:     q.Get("filter[title]"),
	})
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := ListResponse{Products: make([]ProductResponse, 0, len(products))}
	for _, p := range products {
		resp.Products = append(resp.Products, toResponse(p))
	}
	h.writeJSON(w, r, http.StatusOK, resp)
}

// GetProduct обрабатывает GET /products/{id}
func (h *Handler) GetProduct(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := strconv.ParseInt(rawID, 10, 64)
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "id must be an integer")
		return
	}

	p, err := h.products.GetProduct(r.Context(), id)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, ItemResponse{Product: toResponse(p)})
}

func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidArgument):
		h.writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		h.writeError(w, r, http.StatusNotFound, "product not found")
	default:
		h.log(r).Error("request failed", zap.Error(err))
		h.writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	h.writeJSON(w, r, status, errorResponse{Error: msg})
}

func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.log(r).Warn("write response failed", zap.Error(err))
	}
}

func (h *Handler) log(r *http.Request) *zap.Logger {
	return platformobservability.LoggerFromContext(r.Context(), h.logger).
		With(zap.String("request_id", middleware.RequestIDFromContext(r.Context())))
}

func intParam(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

func toResponse(p repository.Product) ProductResponse {
	cats := make([]CategoryResponse, 0, len(p.Categories))
	for _, c := range p.Categories {
		cats = append(cats, CategoryResponse{ID: c.ID, Title: c.Title})
	}
	return ProductResponse{
		ID:               p.ID,
		Title:            p.Title,
		Producer:         p.Producer,
		ShortDescription: p.ShortDescription,
		ImageURL:         p.ImageURL,
		Price:            p.Price,
		Categories:       cats,
	}
}
