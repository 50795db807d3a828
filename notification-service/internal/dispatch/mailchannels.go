package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fjod/growthshop/pkg/circuitbreaker"
	"github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

const DefaultMailChannelsURL = "https://api.mailchannels.net/tx/v1/send"

type mailPersonalization struct {
	To []Address `json:"to"`
}

type mailContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

type mailRequest struct {
	Personalizations []mailPersonalization `json:"personalizations"`
	From             Address               `json:"from"`
	Subject          string                `json:"subject"`
	Content          []mailContent         `json:"content"`
}

// MailChannels sends messages through the MailChannels transactional API.
type MailChannels struct {
	endpoint string
	http     *http.Client
	breaker  *gobreaker.CircuitBreaker[struct{}]
	logger   *zap.Logger
}

func NewMailChannels(endpoint string, timeout time.Duration, logger *zap.Logger) *MailChannels {
	if logger == nil {
		logger = zap.NewNop()
	}
	if endpoint == "" {
		endpoint = DefaultMailChannelsURL
	}
	return &MailChannels{
		endpoint: endpoint,
		http: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		breaker: circuitbreaker.New[struct{}](circuitbreaker.DefaultSettings("mailchannels"), logger),
		logger:  logger,
	}
}

func (m *MailChannels) Dispatch(ctx context.Context, msg Message) error {
	_, err := m.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, m.send(ctx, msg)
	})
	return err
}

func (m *MailChannels) send(ctx context.Context, msg Message) error {
	body, err := json.Marshal(mailRequest{
		Personalizations: []mailPersonalization{{To: []Address{msg.To}}},
		From:             msg.From,
		Subject:          msg.Subject,
		Content:          []mailContent{{Type: "text/plain", Value: msg.Body}},
	})
	if err != nil {
		return fmt.Errorf("marshal mail failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build mail request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrDelivery, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%w: mail api returned %d: %s", ErrDelivery, resp.StatusCode, bytes.TrimSpace(detail))
	}

	m.logger.Info("mail sent",
		zap.String("order_id", msg.OrderID),
		zap.String("kind", msg.Kind))
	return nil
}
