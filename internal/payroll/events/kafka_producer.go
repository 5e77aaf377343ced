package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

var jsonMarshal = json.Marshal

const (
	queueSize      = 1000
	connectRetries = 8
)

type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer publishes events asynchronously. Produce never blocks: when the
// queue is full the event is dropped and logged. Dropped events are still in
// the outbox, and consumers that need every event page it with ListEvents
// from their last seen sequence number. Close publishes whatever is still
// queued before it returns.
type Producer struct {
	writer    KafkaWriter
	events    chan *models.Event
	logger    *zap.Logger
	closeChan chan struct{}
	wg        sync.WaitGroup
}

func NewProducer(brokers []string, topic string, logger *zap.Logger) *Producer {
	p := &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.Hash{},
			Topic:        topic,
			RequiredAcks: kafka.RequireOne,
		},
		events:    make(chan *models.Event, queueSize),
		logger:    logger.Named("kafka_producer"),
		closeChan: make(chan struct{}),
	}

	p.wg.Add(1)
	go p.eventLoop()
	return p
}

// EnsureTopic creates topic on the cluster, retrying until the broker answers
// or ctx ends. A topic that already exists is not an error.
func EnsureTopic(ctx context.Context, brokers []string, topic string, logger *zap.Logger) error {
	if len(brokers) == 0 {
		return fmt.Errorf("no kafka brokers configured")
	}
	b := backoff.WithContext(backoff.WithMaxRetries(backoff.NewExponentialBackOff(), connectRetries), ctx)
	return backoff.Retry(func() error {
		conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			logger.Warn("Kafka not reachable, retrying", zap.Error(err))
			return err
		}
		defer conn.Close()

		err = conn.CreateTopics(kafka.TopicConfig{
			Topic:             topic,
			NumPartitions:     3,
			ReplicationFactor: 1,
		})
		if err != nil {
			logger.Warn("failed to create topic (may already exist)", zap.Error(err))
		}
		return nil
	}, b)
}

func (p *Producer) Produce(event *models.Event) {
	select {
	case p.events <- event:
	default:
		p.logger.Warn("Kafka producer queue full, dropping event",
			zap.String("event_type", string(event.Type)),
			zap.Uint64("seq", event.Seq),
		)
	}
}

func (p *Producer) eventLoop() {
	defer p.wg.Done()
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		case <-p.closeChan:
			p.drain()
			return
		}
	}
}

func (p *Producer) drain() {
	for {
		select {
		case event := <-p.events:
			p.sendEvent(context.Background(), event)
		default:
			return
		}
	}
}

func (p *Producer) sendEvent(ctx context.Context, event *models.Event) {
	value, err := jsonMarshal(NewMessage(event))
	if err != nil {
		p.logger.Error("Failed to serialize event",
			zap.Error(err),
			zap.Uint64("seq", event.Seq),
		)
		return
	}
	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ID.String()),
		Value: value,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
	if err != nil {
		p.logger.Error("Failed to produce event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.Uint64("seq", event.Seq),
		)
		return
	}
}

func (p *Producer) Close() {
	close(p.closeChan)
	p.wg.Wait()
	if err := p.writer.Close(); err != nil {
		p.logger.Error("Failed to close Kafka writer", zap.Error(err))
	}
}
