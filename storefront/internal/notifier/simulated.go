package notifier

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/fjod/growthshop/storefront/internal/domain"
	"go.uber.org/zap"
)

// Simulated accepts every order without delivering anything. It stands in
// for the notification service in local runs.
type Simulated struct {
	logger *zap.Logger
}

func NewSimulated(logger *zap.Logger) *Simulated {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Simulated{logger: logger}
}

func (s *Simulated) Submit(ctx context.Context, order domain.OrderSubmission) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id := fmt.Sprintf("ORD-%d", 10000+rand.IntN(90000))
	s.logger.Info("simulated order submission",
		zap.String("order_id", id),
		zap.String("total", order.Total.String()),
		zap.Int("items", len(order.Cart)))
	return id, nil
}
