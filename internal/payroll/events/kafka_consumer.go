package events

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type Handler func(context.Context, *models.Event) error

type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler Handler
	wg      sync.WaitGroup
}

// NewConsumer consumes ledger events of topic as part of groupID.
func NewConsumer(brokers []string, topic, groupID string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
			Dialer:  kafka.DefaultDialer,
		}),
		logger: logger.Named("kafka_consumer"),
	}
}

// Start consumes until ctx ends. A message is committed only after the
// handler accepts it; messages that cannot be parsed are skipped.
func (c *Consumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		for {
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				c.logger.Error("Failed to fetch message", zap.Error(err))
				continue
			}

			var m Message
			if err := json.Unmarshal(msg.Value, &m); err != nil {
				c.logger.Error("Failed to parse event",
					zap.Error(err),
					zap.ByteString("value", msg.Value),
				)
				continue
			}

			if c.handler != nil {
				if err := c.handler(ctx, m.Event()); err != nil {
					c.logger.Error("Failed to handle event",
						zap.Error(err),
						zap.String("event_type", string(m.Type)),
					)
					continue
				}
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				c.logger.Error("Failed to commit message",
					zap.Error(err),
					zap.String("event_type", string(m.Type)),
				)
			}
		}
	}()
}

func (c *Consumer) RegisterHandler(fn Handler) {
	c.handler = fn
}

// Close waits for the consume loop to stop, so ctx passed to Start should be
// cancelled first.
func (c *Consumer) Close() {
	c.wg.Wait()
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
