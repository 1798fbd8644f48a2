package httpapi

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	platformhealth "github.com/shestoi/catalog-browser/platform/health/http"
	platformobservability "github.com/shestoi/catalog-browser/platform/observability"
	"github.com/shestoi/catalog-browser/services/feed/internal/api/http/middleware"
)

// NewRouter создаёт и настраивает HTTP роутер фида
// checks проверки готовности для /health (например, ping БД)
func NewRouter(handler *Handler, logger *zap.Logger, checks ...platformhealth.Check) chi.Router {
	router := chi.NewRouter()

	// Observability: trace context + span на каждый запрос, logger с trace_id в контексте
	if logger != nil {
		router.Use(platformobservability.HTTPMiddleware("feed", logger))
	}

	router.Route("/products", func(r chi.Router) {
		r.Use(middleware.WithRequestID)
		r.Get("/", handler.GetProducts)
		r.Get("/{id}", func(w http.ResponseWriter, r *http.Request) {
			handler.GetProduct(w, r, chi.URLParam(r, "id"))
		})
	})

	router.Get("/health", platformhealth.Handler(2*time.Second, checks...))

	return router
}
