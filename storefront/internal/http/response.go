package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/fjod/growthshop/pkg/logger"
	"github.com/fjod/growthshop/storefront/internal/cart"
	"github.com/fjod/growthshop/storefront/internal/checkout"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details string `json:"details,omitempty"`
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}

func (h *Handler) respondError(w http.ResponseWriter, status int, code, message string) {
	h.respondJSON(w, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize))
	return dec.Decode(v)
}

// handleError maps cart and checkout errors to HTTP status codes.
func (h *Handler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *checkout.ValidationError
	switch {
	case errors.As(err, &verr):
		h.respondJSON(w, http.StatusBadRequest, ErrorResponse{
			Error:   verr.Error(),
			Code:    "validation_failed",
			Details: strings.Join(verr.Fields, ","),
		})
	case errors.Is(err, cart.ErrUnknownOffering):
		h.respondError(w, http.StatusNotFound, "unknown_offering", err.Error())
	case errors.Is(err, checkout.ErrUnknownLineItem):
		h.respondError(w, http.StatusNotFound, "item_not_found", "line item not found")
	case errors.Is(err, checkout.ErrEmptyCart):
		h.respondError(w, http.StatusUnprocessableEntity, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		h.respondError(w, http.StatusConflict, "submission_in_progress", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		h.respondError(w, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, checkout.ErrNoPendingOrder):
		h.respondError(w, http.StatusConflict, "pending_order_missing", "order details must be entered again")
	case errors.Is(err, checkout.ErrAttemptAbandoned):
		h.respondError(w, http.StatusConflict, "attempt_abandoned", err.Error())
	case errors.Is(err, checkout.ErrNotificationFailed):
		details := ""
		if sess := sessionFromContext(r.Context()); sess != nil {
			details = sess.Checkout.View(r.Context()).ManualContactURL
		}
		h.respondJSON(w, http.StatusBadGateway, ErrorResponse{
			Error:   "order could not be placed, please retry or contact us directly",
			Code:    "notification_failed",
			Details: details,
		})
	default:
		logger.WithTrace(r.Context(), h.logger).Error("request failed",
			zap.String("path", r.URL.Path), zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
