// Package kafka ingests highscore submissions from a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/IBM/sarama"

	"github.com/highscore-board/internal/config"
	"github.com/highscore-board/internal/domain"
	"github.com/highscore-board/internal/metrics"
)

// messageTimeout bounds the document round trips for one message
const messageTimeout = 10 * time.Second

// MessageTypeHeader names the record header selecting how a message is applied.
// Messages without it are highscore submissions.
const MessageTypeHeader = "message-type"

// Message types
const (
	MessageTypeHighscore = "highscore"
	MessageTypeNewPlayer = "new_player"
)

// Submitter applies highscore submissions and player registrations
type Submitter interface {
	SubmitHighscore(ctx context.Context, cmd domain.SubmitHighscore) (*domain.Player, bool, error)
	NewPlayer(ctx context.Context, cmd domain.NewPlayer) (*domain.Player, error)
}

// Recorder counts consumed messages by result
type Recorder interface {
	KafkaMessage(result string)
}

// Consumer consumes highscore submissions from Kafka
type Consumer struct {
	config        *config.KafkaConfig
	submitter     Submitter
	recorder      Recorder
	logger        *slog.Logger
	consumerGroup sarama.ConsumerGroup
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
	ready         chan bool
}

// NewConsumer creates a consumer without connecting; Start joins the group
func NewConsumer(cfg *config.KafkaConfig, submitter Submitter, recorder Recorder, logger *slog.Logger) *Consumer {
	ctx, cancel := context.WithCancel(context.Background())
	return &Consumer{
		config:    cfg,
		submitter: submitter,
		recorder:  recorder,
		logger:    logger,
		ctx:       ctx,
		cancel:    cancel,
		ready:     make(chan bool),
	}
}

// Start joins the consumer group and waits until the first session is set up
func (c *Consumer) Start(ctx context.Context) error {
	saramaConfig := sarama.NewConfig()
	saramaConfig.Version = sarama.V3_0_0_0
	saramaConfig.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}
	saramaConfig.Consumer.Offsets.Initial = sarama.OffsetNewest
	saramaConfig.Consumer.Return.Errors = true

	consumerGroup, err := sarama.NewConsumerGroup(c.config.Brokers, c.config.GroupID, saramaConfig)
	if err != nil {
		return fmt.Errorf("creating consumer group: %w", err)
	}
	c.consumerGroup = consumerGroup

	c.logger.Info("starting Kafka consumer",
		"brokers", c.config.Brokers,
		"topic", c.config.Topic,
		"group_id", c.config.GroupID,
	)

	ready := c.ready
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			handler := &consumerGroupHandler{
				consumer: c,
				ready:    ready,
			}

			if err := c.consumerGroup.Consume(c.ctx, []string{c.config.Topic}, handler); err != nil {
				if errors.Is(err, sarama.ErrClosedConsumerGroup) {
					return
				}
				c.logger.Error("error from consumer", "error", err)
			}

			if c.ctx.Err() != nil {
				return
			}

			// A fresh channel per session; only the first one is awaited
			ready = make(chan bool)
		}
	}()

	select {
	case <-c.ready:
		c.logger.Info("Kafka consumer ready")
	case <-ctx.Done():
		c.Stop()
		return fmt.Errorf("waiting for consumer group session: %w", ctx.Err())
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			select {
			case <-c.ctx.Done():
				return
			case err, ok := <-c.consumerGroup.Errors():
				if !ok {
					return
				}
				c.logger.Error("consumer group error", "error", err)
			}
		}
	}()

	return nil
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() error {
	c.logger.Info("stopping Kafka consumer")
	c.cancel()
	c.wg.Wait()
	if c.consumerGroup == nil {
		return nil
	}
	return c.consumerGroup.Close()
}

// Handle applies one message and returns its result label. Malformed or
// rejected submissions are not retried.
func (c *Consumer) Handle(ctx context.Context, value []byte) string {
	var payload domain.SubmissionPayload
	if err := json.Unmarshal(value, &payload); err != nil {
		c.logger.Warn("failed to unmarshal message", "error", err)
		return metrics.ResultInvalid
	}
	cmd, err := payload.Command()
	if err != nil {
		c.logger.Warn("invalid highscore submission", "error", err)
		return metrics.ResultInvalid
	}

	ctx, cancel := context.WithTimeout(ctx, messageTimeout)
	defer cancel()

	p, created, err := c.submitter.SubmitHighscore(ctx, cmd)
	switch {
	case err == nil:
		c.logger.Debug("applied highscore submission", "id", p.ID, "name", p.Name, "created", created)
		return metrics.ResultOK
	case domain.IsClientError(err), errors.Is(err, domain.ErrNotFound):
		c.logger.Warn("rejected highscore submission", "name", cmd.Name, "error", err)
		return metrics.ResultInvalid
	default:
		c.logger.Error("failed to apply highscore submission", "name", cmd.Name, "error", err)
		return metrics.ResultError
	}
}

// HandleNewPlayer registers the player named in value. A name that is already
// registered counts as applied, so replaying registrations creates no duplicates.
func (c *Consumer) HandleNewPlayer(ctx context.Context, value []byte) string {
	var cmd domain.NewPlayer
	if err := json.Unmarshal(value, &cmd); err != nil {
		c.logger.Warn("failed to unmarshal message", "error", err)
		return metrics.ResultInvalid
	}
	cmd.Name = strings.TrimSpace(cmd.Name)

	ctx, cancel := context.WithTimeout(ctx, messageTimeout)
	defer cancel()

	p, err := c.submitter.NewPlayer(ctx, cmd)
	switch {
	case err == nil:
		c.logger.Debug("registered player", "id", p.ID, "name", p.Name)
		return metrics.ResultOK
	case errors.Is(err, domain.ErrConflict):
		c.logger.Debug("player already registered", "name", cmd.Name)
		return metrics.ResultOK
	case domain.IsClientError(err):
		c.logger.Warn("rejected player registration", "name", cmd.Name, "error", err)
		return metrics.ResultInvalid
	default:
		c.logger.Error("failed to register player", "name", cmd.Name, "error", err)
		return metrics.ResultError
	}
}

// Dispatch routes a message by its type header
func (c *Consumer) Dispatch(ctx context.Context, message *sarama.ConsumerMessage) string {
	switch messageType(message) {
	case MessageTypeNewPlayer:
		return c.HandleNewPlayer(ctx, message.Value)
	case MessageTypeHighscore, "":
		return c.Handle(ctx, message.Value)
	default:
		c.logger.Warn("unknown message type", "type", messageType(message))
		return metrics.ResultInvalid
	}
}

func messageType(message *sarama.ConsumerMessage) string {
	for _, h := range message.Headers {
		if h != nil && string(h.Key) == MessageTypeHeader {
			return string(h.Value)
		}
	}
	return ""
}

func (c *Consumer) record(result string) {
	if c.recorder != nil {
		c.recorder.KafkaMessage(result)
	}
}

// consumerGroupHandler implements sarama.ConsumerGroupHandler
type consumerGroupHandler struct {
	consumer *Consumer
	ready    chan bool
}

// Setup is called at the beginning of a new session
func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error {
	close(h.ready)
	return nil
}

// Cleanup is called at the end of a session
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error {
	return nil
}

// ConsumeClaim applies messages one at a time; each one is a full document
// read-modify-write, so there is nothing to gain from batching.
func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil

		case message, ok := <-claim.Messages():
			if !ok {
				return nil
			}

			result := h.consumer.Dispatch(session.Context(), message)
			h.consumer.record(result)
			if result == metrics.ResultError {
				h.consumer.logger.Warn("message left unapplied",
					"offset", message.Offset,
					"partition", message.Partition,
				)
			}
			session.MarkMessage(message, "")
		}
	}
}
