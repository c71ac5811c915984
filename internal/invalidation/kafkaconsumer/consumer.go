// Package kafkaconsumer consumes survey-refresh events and flushes the
// cached responses for the republished layer.
package kafkaconsumer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/IBM/sarama"

	"github.com/kmurflow98/landsage-app/internal/cache"
	"github.com/kmurflow98/landsage-app/internal/cache/keys"
	"github.com/kmurflow98/landsage-app/internal/invalidation"
	"github.com/kmurflow98/landsage-app/internal/observability"
)

type Consumer struct {
	cfg    Config
	logger *slog.Logger
	cache  cache.Interface
}

func New(cfg Config, logger *slog.Logger, c cache.Interface) *Consumer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{cfg: cfg, logger: logger, cache: c}
}

// Start runs the consumer group loop until ctx is done.
func (c *Consumer) Start(ctx context.Context) error {
	if c.cache == nil {
		return errors.New("kafkaconsumer: missing cache dependency")
	}

	cfg := sarama.NewConfig()
	cfg.Version = sarama.V2_1_0_0
	cfg.Consumer.Group.Session.Timeout = c.cfg.SessionTimeout
	cfg.Consumer.Group.Heartbeat.Interval = c.cfg.Heartbeat
	cfg.Consumer.Group.Rebalance.Timeout = c.cfg.RebalanceTimeout
	if c.cfg.InitialOffsetOldest {
		cfg.Consumer.Offsets.Initial = sarama.OffsetOldest
	} else {
		cfg.Consumer.Offsets.Initial = sarama.OffsetNewest
	}
	cfg.Consumer.Offsets.AutoCommit.Enable = true

	group, err := sarama.NewConsumerGroup(c.cfg.Brokers, c.cfg.GroupID, cfg)
	if err != nil {
		return fmt.Errorf("create consumer group: %w", err)
	}
	defer func() { _ = group.Close() }()

	handler := &groupHandler{process: c.ProcessOne}

	c.logger.Info("survey-refresh consumer starting",
		"brokers", c.cfg.Brokers, "topic", c.cfg.Topic, "group", c.cfg.GroupID)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("survey-refresh consumer shutting down")
			return nil
		default:
			if err := group.Consume(ctx, []string{c.cfg.Topic}, handler); err != nil {
				c.logger.Error("consumer error", "err", err)
				time.Sleep(2 * time.Second)
			}
		}
	}
}

// ProcessOne handles a single survey-refresh message. Malformed events are
// counted and skipped; cache failures are returned so the message is
// retried.
func (c *Consumer) ProcessOne(ctx context.Context, msg *sarama.ConsumerMessage) error {
	var ev invalidation.Event
	if err := json.Unmarshal(msg.Value, &ev); err != nil {
		observability.IncInvalidation("decode_error")
		c.logger.Error("survey-refresh event decode failed",
			"topic", msg.Topic, "partition", msg.Partition, "offset", msg.Offset, "err", err)
		return nil // skip, do not retry a malformed payload
	}
	if err := ev.Validate(); err != nil {
		observability.IncInvalidation("invalid")
		c.logger.Warn("survey-refresh event rejected", "layer", ev.Layer, "err", err)
		return nil
	}

	prefix := keys.LayerPrefix(ev.Layer)
	if err := c.cache.DelPrefix(ctx, prefix); err != nil {
		observability.IncInvalidation("flush_error")
		return fmt.Errorf("flush cached responses for %q: %w", ev.Layer, err)
	}

	observability.IncInvalidation("applied")
	c.logger.Info("flushed cached responses",
		"layer", ev.Layer, "prefix", prefix, "event_ts", ev.TS)
	return nil
}
