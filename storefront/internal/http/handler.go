// Package http exposes the storefront's cart and checkout over JSON.
package http

import (
	"net/http"
	"time"

	"github.com/fjod/growthshop/pkg/logger"
	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/fjod/growthshop/storefront/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// Catalog lists the offerings shown to buyers.
type Catalog interface {
	All() []domain.Offering
}

type Handler struct {
	sessions *session.Manager
	catalog  Catalog
	timeout  time.Duration
	logger   *zap.Logger
}

func NewHandler(sessions *session.Manager, catalog Catalog, timeout time.Duration, l *zap.Logger) *Handler {
	return &Handler{
		sessions: sessions,
		catalog:  catalog,
		timeout:  timeout,
		logger:   logger.OrNop(l),
	}
}

// Router wires the storefront routes.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.ListCatalog)

		r.Group(func(r chi.Router) {
			r.Use(h.SessionMiddleware)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Delete("/", h.ClearCart)
				r.Post("/items", h.AddItem)
				r.Put("/items/{item_id}", h.UpdateQuantity)
				r.Delete("/items/{item_id}", h.RemoveItem)
			})

			r.Route("/checkout", func(r chi.Router) {
				r.Get("/", h.GetCheckout)
				r.Post("/", h.BeginCheckout)
				r.Delete("/", h.CancelCheckout)
				r.Put("/info", h.SubmitInfo)
				r.Post("/payment", h.SubmitPayment)
			})
		})
	})

	return r
}

// GET /api/v1/catalog
func (h *Handler) ListCatalog(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, CatalogResponseDTO{Offerings: h.catalog.All()})
}

type CatalogResponseDTO struct {
	Offerings []domain.Offering `json:"offerings"`
}
