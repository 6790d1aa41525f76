package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/khoahotran/portfolio-builder/internal/application/service"
	"github.com/khoahotran/portfolio-builder/internal/config"
	"github.com/khoahotran/portfolio-builder/pkg/logger"
)

const (
	TopicUserEvents      = "user.events"
	TopicPortfolioEvents = "portfolio.events"
)

const (
	UserEventTypeRegistered   = "user.registered"
	PortfolioEventTypeUpdated = "portfolio.updated"
)

type UserEventPayload struct {
	EventType  string    `json:"event_type"`
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type PortfolioEventPayload struct {
	EventType  string    `json:"event_type"`
	UserID     uuid.UUID `json:"user_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

// messageWriter is the part of *kafka.Writer the producer needs.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaProducerClient struct {
	UserEventsWriter      messageWriter
	PortfolioEventsWriter messageWriter
	logger                logger.Logger
}

var _ service.EventPublisher = (*KafkaProducerClient)(nil)

func NewKafkaProducerClient(cfg config.Config, log logger.Logger) (*KafkaProducerClient, error) {
	brokers := cfg.Kafka.Brokers
	if len(brokers) == 0 {
		return nil, fmt.Errorf("config Kafka brokers not found")
	}

	// writer 'user.events'
	userWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicUserEvents,
		Balancer:               &kafka.LeastBytes{},
		AllowAutoTopicCreation: true,
	}

	// writer 'portfolio.events'
	portfolioWriter := &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  TopicPortfolioEvents,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: true,
	}

	log.Info("Initialize Kafka Producers successfully.", zap.Strings("brokers", brokers))

	return &KafkaProducerClient{
		UserEventsWriter:      userWriter,
		PortfolioEventsWriter: portfolioWriter,
		logger:                log,
	}, nil
}

func publish(ctx context.Context, w messageWriter, key uuid.UUID, payload any) error {
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	return w.WriteMessages(ctx, kafka.Message{
		Key:   []byte(key.String()),
		Value: value,
	})
}

func (c *KafkaProducerClient) PublishUserRegistered(ctx context.Context, userID uuid.UUID) error {
	return publish(ctx, c.UserEventsWriter, userID, UserEventPayload{
		EventType:  UserEventTypeRegistered,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
}

// PublishPortfolioUpdated keys messages by user id so updates for one user stay ordered.
func (c *KafkaProducerClient) PublishPortfolioUpdated(ctx context.Context, userID uuid.UUID) error {
	return publish(ctx, c.PortfolioEventsWriter, userID, PortfolioEventPayload{
		EventType:  PortfolioEventTypeUpdated,
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
}

func (c *KafkaProducerClient) Close() {
	if c.UserEventsWriter != nil {
		if err := c.UserEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close user events writer", zap.Error(err))
		}
	}
	if c.PortfolioEventsWriter != nil {
		if err := c.PortfolioEventsWriter.Close(); err != nil {
			c.logger.Warn("Failed to close portfolio events writer", zap.Error(err))
		}
	}
	c.logger.Info("Closed Kafka Producers")
}

// NoopPublisher is used when no brokers are configured.
type NoopPublisher struct{}

var _ service.EventPublisher = NoopPublisher{}

func (NoopPublisher) PublishUserRegistered(context.Context, uuid.UUID) error   { return nil }
func (NoopPublisher) PublishPortfolioUpdated(context.Context, uuid.UUID) error { return nil }
