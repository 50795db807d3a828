// Package relay delivers notifications published to Kafka by the order
// endpoint.
package relay

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/fjod/growthshop/notification-service/internal/dispatch"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

const (
	DefaultGroupID = "notification-relay"
	maxAttempts    = 3
)

type messageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Consumer struct {
	reader  messageReader
	sender  dispatch.Dispatcher
	backoff time.Duration
	logger  *zap.Logger
}

func NewConsumer(sender dispatch.Dispatcher, logger *zap.Logger, topic, groupID string, brokers ...string) *Consumer {
	if topic == "" {
		topic = dispatch.DefaultTopic
	}
	if groupID == "" {
		groupID = DefaultGroupID
	}
	reader := kafka.NewReader(kafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MaxBytes: 10e6, // 10MB
	})
	return newConsumer(reader, sender, logger)
}

func newConsumer(reader messageReader, sender dispatch.Dispatcher, logger *zap.Logger) *Consumer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{reader: reader, sender: sender, backoff: time.Second, logger: logger}
}

// Run delivers messages until ctx is cancelled.
func (c *Consumer) Run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		c.processMessage(ctx)
	}
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Warn("error closing kafka reader", zap.Error(err))
	}
}

// processMessage delivers one message and commits it. Undecodable messages
// and messages that keep failing are committed too so they cannot block the
// partition.
func (c *Consumer) processMessage(ctx context.Context) {
	m, err := c.reader.FetchMessage(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		c.logger.Warn("error reading message", zap.Error(err))
		c.sleep(ctx)
		return
	}

	var msg dispatch.Message
	if err := json.Unmarshal(m.Value, &msg); err != nil {
		c.logger.Error("dropping unparsable notification",
			zap.Int("partition", m.Partition),
			zap.Int64("offset", m.Offset),
			zap.Error(err))
		c.commit(ctx, m)
		return
	}

	log := c.logger.With(zap.String("order_id", msg.OrderID), zap.String("kind", msg.Kind))
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err = c.sender.Dispatch(ctx, msg)
		if err == nil {
			break
		}
		log.Warn("notification delivery failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt < maxAttempts && !c.sleep(ctx) {
			return
		}
	}
	if err != nil {
		log.Error("giving up on notification", zap.Error(err))
	}
	c.commit(ctx, m)
}

func (c *Consumer) commit(ctx context.Context, m kafka.Message) {
	if err := c.reader.CommitMessages(ctx, m); err != nil {
		c.logger.Warn("commit failed", zap.Int64("offset", m.Offset), zap.Error(err))
	}
}

// sleep waits one backoff period. It returns false when ctx ends first.
func (c *Consumer) sleep(ctx context.Context) bool {
	t := time.NewTimer(c.backoff)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
