// Package notifier submits placed orders to the notification service.
package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/growthshop/pkg/circuitbreaker"
	"github.com/fjod/growthshop/storefront/internal/domain"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const maxResponseBody = 1 << 20

var ErrRejected = errors.New("order rejected by notification service")

// ForwardedForHeader carries the buyer's address to the notification
// service, which throttles per buyer.
const ForwardedForHeader = "X-Forwarded-For"

type buyerAddrKey struct{}

// WithBuyerAddr records the address of the buyer placing the order.
func WithBuyerAddr(ctx context.Context, addr string) context.Context {
	return context.WithValue(ctx, buyerAddrKey{}, addr)
}

// BuyerAddr returns the address recorded by WithBuyerAddr, if any.
func BuyerAddr(ctx context.Context) string {
	addr, _ := ctx.Value(buyerAddrKey{}).(string)
	return addr
}

type orderResponse struct {
	Success bool   `json:"success"`
	OrderID string `json:"orderId"`
	Error   string `json:"error"`
}

// Client posts orders to the notification service behind a circuit breaker.
type Client struct {
	endpoint string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[string]
	logger   *zap.Logger
}

func NewClient(endpoint string, timeout time.Duration, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		endpoint: endpoint,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[string](circuitbreaker.DefaultSettings("notification-service"), logger),
		logger:  logger,
	}
}

// Submit returns the order id assigned by the notification service.
func (c *Client) Submit(ctx context.Context, order domain.OrderSubmission) (string, error) {
	return c.breaker.Execute(func() (string, error) {
		return c.post(ctx, order)
	})
}

func (c *Client) post(ctx context.Context, order domain.OrderSubmission) (string, error) {
	body, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("marshal order failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if addr := BuyerAddr(ctx); addr != "" {
		req.Header.Set(ForwardedForHeader, addr)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("post order: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out orderResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("%w: status %d with unreadable body", ErrRejected, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return "", fmt.Errorf("%w: %s", ErrRejected, msg)
	}
	if out.OrderID == "" {
		return "", fmt.Errorf("%w: response carried no order id", ErrRejected)
	}

	c.logger.Debug("order accepted", zap.String("order_id", out.OrderID))
	return out.OrderID, nil
}
