package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/claimsight/claimsight/internal/config"
	"github.com/claimsight/claimsight/internal/reports"
)

// Consumer drains the claim queue and drives report processing. Prefetch
// bounds in-flight deliveries; the default of one keeps claim batches
// strictly sequential across the worker.
type Consumer struct {
	cfg     config.QueueConfig
	reports reports.System
	logger  *slog.Logger
}

// NewConsumer creates a Consumer bound to the report processing system.
func NewConsumer(cfg config.QueueConfig, reportSys reports.System, logger *slog.Logger) *Consumer {
	return &Consumer{
		cfg:     cfg,
		reports: reportSys,
		logger:  logger.With("system", "consumer"),
	}
}

// Run consumes until ctx is canceled, redialing the broker after
// connection loss.
func (c *Consumer) Run(ctx context.Context) error {
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.logger.Warn("consumer disconnected, reconnecting",
			"delay", c.cfg.ReconnectDelay,
			"error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.cfg.ReconnectDelayDuration()):
		}
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.cfg.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	defer ch.Close()

	if _, err := declareQueue(ch, c.cfg.Name); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}

	if err := ch.Qos(c.cfg.Prefetch, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := ch.Consume(
		c.cfg.Name,
		"",    // consumer tag
		false, // auto-ack
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}

	c.logger.Info("consuming", "queue", c.cfg.Name, "prefetch", c.cfg.Prefetch)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return ErrNotConnected
			}
			c.handle(ctx, d)
		}
	}
}

// handle processes one delivery. Malformed messages and processing
// failures are rejected without requeue: the claim row already records the
// failure, and redelivery would repeat it.
func (c *Consumer) handle(ctx context.Context, d amqp.Delivery) {
	var msg Message
	if err := json.Unmarshal(d.Body, &msg); err != nil {
		c.logger.Error("rejecting message", "error", fmt.Errorf("%w: %v", ErrBadMessage, err))
		d.Nack(false, false)
		return
	}

	start := time.Now()
	report, err := c.reports.Process(ctx, msg.ClaimID)
	if err != nil {
		c.logger.Error("claim processing failed",
			"claim", msg.ClaimID,
			"duration", time.Since(start),
			"error", err)
		d.Nack(false, false)
		return
	}

	c.logger.Info("claim processed",
		"claim", msg.ClaimID,
		"risk", report.RiskScore,
		"confidence", report.Confidence,
		"duration", time.Since(start))
	d.Ack(false)
}
