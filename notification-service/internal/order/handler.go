package order

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/fjod/growthshop/notification-service/internal/dispatch"
	"github.com/fjod/growthshop/pkg/logger"
	"github.com/fjod/growthshop/pkg/ratelimit"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

const maxRequestBodySize = 1 << 20

type OrderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId,omitempty"`
	Error   string `json:"error,omitempty"`
}

type Handler struct {
	dispatcher dispatch.Dispatcher
	branding   Branding
	newID      func() string
	timeout    time.Duration
	limiter    *ratelimit.Limiter
	logger     *zap.Logger
}

func NewHandler(d dispatch.Dispatcher, b Branding, timeout time.Duration, l *zap.Logger) *Handler {
	return &Handler{
		dispatcher: d,
		branding:   b,
		newID:      NewOrderID,
		timeout:    timeout,
		logger:     logger.OrNop(l),
	}
}

// SetLimiter throttles order placement per client address.
func (h *Handler) SetLimiter(l *ratelimit.Limiter) {
	h.limiter = l
}

func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logger.RequestLogger(h.logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Group(func(r chi.Router) {
		if h.limiter != nil {
			r.Use(ratelimit.Middleware(h.limiter, http.HandlerFunc(h.tooManyRequests)))
		}
		r.Post("/api/order", h.PlaceOrder)
	})
	return r
}

// POST /api/order
func (h *Handler) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	log := logger.WithTrace(r.Context(), h.logger)

	var o Order
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodySize)).Decode(&o); err != nil {
		h.respondJSON(w, http.StatusBadRequest, OrderResponse{Error: "invalid JSON body"})
		return
	}
	if err := o.Validate(); err != nil {
		h.respondJSON(w, http.StatusBadRequest, OrderResponse{Error: err.Error()})
		return
	}

	id := h.newID()
	log = log.With(zap.String("order_id", id))
	if sum := o.ItemsTotal(); !sum.Equal(o.Total) {
		log.Warn("order total does not match its items",
			zap.String("total", o.Total.String()),
			zap.String("items_total", sum.String()))
	}

	msgs, err := h.branding.Render(id, o)
	if err != nil {
		log.Error("render notifications failed", zap.Error(err))
		h.respondJSON(w, http.StatusInternalServerError, OrderResponse{Error: err.Error()})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	for _, msg := range msgs {
		if err := h.dispatcher.Dispatch(ctx, msg); err != nil {
			log.Error("notification failed", zap.String("kind", msg.Kind), zap.Error(err))
			h.respondJSON(w, http.StatusInternalServerError, OrderResponse{Error: errorText(err)})
			return
		}
	}

	log.Info("order placed",
		zap.String("total", o.Total.String()),
		zap.String("method", o.Payment.Method),
		zap.Int("items", len(o.Cart)))
	h.respondJSON(w, http.StatusOK, OrderResponse{Success: true, OrderID: id})
}

func (h *Handler) tooManyRequests(w http.ResponseWriter, r *http.Request) {
	logger.WithTrace(r.Context(), h.logger).Warn("order rate limited", zap.String("remote", r.RemoteAddr))
	h.respondJSON(w, http.StatusTooManyRequests, OrderResponse{Error: "too many requests, try again shortly"})
}

func errorText(err error) string {
	if errors.Is(err, dispatch.ErrDelivery) {
		return "notification delivery failed"
	}
	return err.Error()
}

func (h *Handler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Warn("failed to encode response", zap.Error(err))
	}
}
