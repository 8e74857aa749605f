package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/itaysc/foozool-ai-support-sub000/internal/metrics"
	"github.com/itaysc/foozool-ai-support-sub000/internal/ticket"
)

// handleTimeout bounds the processing of one inbound message.
const handleTimeout = 30 * time.Second

// ConsumerConfig controls the NATS subscription.
type ConsumerConfig struct {
	Subject string
	Queue   string
}

// Validate checks required fields.
func (c ConsumerConfig) Validate() error {
	if c.Subject == "" {
		return fmt.Errorf("subject is required")
	}
	if c.Queue == "" {
		return fmt.Errorf("queue is required")
	}
	return nil
}

// Consumer subscribes to inbound ticket messages and feeds the pipeline.
// Queue-group subscription shares the subject across daemon replicas.
type Consumer struct {
	cfg      ConsumerConfig
	conn     *nats.Conn
	pipeline *Pipeline
	logger   *zap.Logger
	metrics  *metrics.Metrics

	sub *nats.Subscription
}

func NewConsumer(cfg ConsumerConfig, conn *nats.Conn, pipeline *Pipeline, logger *zap.Logger, m *metrics.Metrics) (*Consumer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid consumer config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Consumer{
		cfg:      cfg,
		conn:     conn,
		pipeline: pipeline,
		logger:   logger,
		metrics:  m,
	}, nil
}

// Start subscribes to the configured subject. Message handling runs on the
// NATS delivery goroutine; a malformed or failing message is logged and
// dropped, never redelivered.
func (c *Consumer) Start(ctx context.Context) error {
	sub, err := c.conn.QueueSubscribe(c.cfg.Subject, c.cfg.Queue, func(msg *nats.Msg) {
		c.handleMessage(ctx, msg)
	})
	if err != nil {
		return fmt.Errorf("subscribing to %s: %w", c.cfg.Subject, err)
	}
	c.sub = sub
	c.logger.Info("ticket consumer started",
		zap.String("subject", c.cfg.Subject),
		zap.String("queue", c.cfg.Queue))
	return nil
}

// Stop drains the subscription so in-flight messages finish.
func (c *Consumer) Stop() error {
	if c.sub == nil {
		return nil
	}
	if err := c.sub.Drain(); err != nil {
		return fmt.Errorf("draining subscription: %w", err)
	}
	return nil
}

func (c *Consumer) handleMessage(ctx context.Context, msg *nats.Msg) {
	var t ticket.Ticket
	if err := json.Unmarshal(msg.Data, &t); err != nil {
		if c.metrics != nil {
			c.metrics.TicketsProcessed.WithLabelValues("malformed").Inc()
		}
		c.logger.Warn("dropping malformed ticket message",
			zap.String("subject", msg.Subject),
			zap.Error(err))
		return
	}

	handleCtx, cancel := context.WithTimeout(ctx, handleTimeout)
	defer cancel()

	if _, err := c.pipeline.Handle(handleCtx, t); err != nil {
		if c.metrics != nil {
			c.metrics.TicketsProcessed.WithLabelValues("error").Inc()
		}
		c.logger.Error("ticket processing failed",
			zap.String("external_id", t.ExternalID),
			zap.Error(err))
		return
	}
	if c.metrics != nil {
		c.metrics.TicketsProcessed.WithLabelValues("ok").Inc()
	}
}
