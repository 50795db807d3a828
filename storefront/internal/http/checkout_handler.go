package http

import (
	"context"
	"net"
	"net/http"

	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/fjod/growthshop/storefront/internal/notifier"
)

type PaymentRequestDTO struct {
	Method       string `json:"method"`
	SenderNumber string `json:"sender_number"`
}

type ConfirmationResponseDTO struct {
	OrderID string `json:"order_id"`
	Total   string `json:"total"`
	Method  string `json:"method"`
}

// GET /api/v1/checkout
func (h *Handler) GetCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())

	h.respondJSON(w, http.StatusOK, sess.Checkout.View(ctx))
}

// POST /api/v1/checkout
func (h *Handler) BeginCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())

	if err := sess.Checkout.BeginCheckout(ctx); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sess.Checkout.View(ctx))
}

// DELETE /api/v1/checkout
func (h *Handler) CancelCheckout(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())

	if err := sess.Checkout.Cancel(ctx); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sess.Checkout.View(ctx))
}

// PUT /api/v1/checkout/info
func (h *Handler) SubmitInfo(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())

	var info domain.OrderInfo
	if err := decodeJSON(w, r, &info); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}

	if err := sess.Checkout.SubmitInfo(ctx, info); err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusOK, sess.Checkout.View(ctx))
}

// POST /api/v1/checkout/payment
func (h *Handler) SubmitPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	sess := sessionFromContext(r.Context())

	var req PaymentRequestDTO
	if err := decodeJSON(w, r, &req); err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_request", "invalid JSON body")
		return
	}
	method, err := domain.ParsePaymentMethod(req.Method)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "invalid_payment_method", err.Error())
		return
	}

	ctx = notifier.WithBuyerAddr(ctx, buyerAddr(r))
	conf, err := sess.Checkout.SubmitPayment(ctx, method, req.SenderNumber)
	if err != nil {
		h.handleError(w, r, err)
		return
	}
	h.respondJSON(w, http.StatusCreated, ConfirmationResponseDTO{
		OrderID: conf.OrderID,
		Total:   conf.Total.String(),
		Method:  string(conf.Method),
	})
}

// buyerAddr is the client address after RealIP has applied any proxy headers.
func buyerAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
