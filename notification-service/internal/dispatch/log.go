package dispatch

import (
	"context"

	"go.uber.org/zap"
)

// LogDispatcher only logs messages. Used when no delivery backend is set up.
type LogDispatcher struct {
	logger *zap.Logger
}

func NewLogDispatcher(logger *zap.Logger) *LogDispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogDispatcher{logger: logger}
}

func (d *LogDispatcher) Dispatch(_ context.Context, msg Message) error {
	d.logger.Info("notification",
		zap.String("order_id", msg.OrderID),
		zap.String("kind", msg.Kind),
		zap.String("to", msg.To.Email),
		zap.String("subject", msg.Subject),
		zap.String("body", msg.Body))
	return nil
}
