package http

import (
	"context"
	"net/http"

	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/fjod/growthshop/storefront/internal/session"
	"github.com/go-chi/chi/v5"
)

type AddItemRequestDTO struct {
	OfferingID string `json:"offering_id"`
}

type UpdateQuantityRequestDTO struct {
	Quantity *int `json:"quantity"`
}

type CartResponseDTO struct {
	Items  []domain.LineItem `json:"items"`
	Totals domain.Totals     `json:"totals"`
}

func cartResponse(s *session.Session) CartResponseDTO {
	items, totals := s.Cart.Snapshot()
	return CartResponseDTO{Items: items, Totals: totals}
}

// GET /api/v1/cart
func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	sess := sessionFromContext(r.Context())
	h.respondJSON(w, http.StatusOK, cartResponse(sess))
}

// POST /api/v1/cart/items
func (h *Handler) AddItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())

	var req AddItemRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.OfferingID == "" {
		h.respondError(w, http.StatusBadRequest, "invalid_offering_id", "offering_id is required")
		return
	}
	if _, err := sess.Checkout.AddItem(ctx, req.OfferingID); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, cartResponse(sess))
}

// PUT /api/v1/cart/items/{item_id}
func (h *Handler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())
	itemID := chi.URLParam(r, "item_id")

	var req UpdateQuantityRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	if req.Quantity == nil {
		h.respondError(w, http.StatusBadRequest, "invalid_quantity", "quantity is required")
		return
	}
	if err := sess.Checkout.SetItemQuantity(ctx, itemID, *req.Quantity); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cartResponse(sess))
}

// DELETE /api/v1/cart/items/{item_id}
func (h *Handler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())

	if err := sess.Checkout.RemoveItem(ctx, chi.URLParam(r, "item_id")); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cartResponse(sess))
}

// DELETE /api/v1/cart
func (h *Handler) ClearCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())

	if err := sess.Checkout.ClearCart(ctx); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, cartResponse(sess))
}
