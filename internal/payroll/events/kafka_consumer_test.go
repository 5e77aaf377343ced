package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeReader serves queued messages, then blocks until ctx ends.
type fakeReader struct {
	msgs      chan kafka.Message
	committed chan kafka.Message
	closed    bool
}

func newFakeReader(msgs ...kafka.Message) *fakeReader {
	r := &fakeReader{
		msgs:      make(chan kafka.Message, len(msgs)),
		committed: make(chan kafka.Message, len(msgs)),
	}
	for _, m := range msgs {
		r.msgs <- m
	}
	return r
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	select {
	case m := <-r.msgs:
		return m, nil
	case <-ctx.Done():
		return kafka.Message{}, ctx.Err()
	}
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	for _, m := range msgs {
		r.committed <- m
	}
	return nil
}

func (r *fakeReader) Close() error {
	r.closed = true
	return nil
}

func encode(t *testing.T, ev *models.Event) kafka.Message {
	value, err := json.Marshal(NewMessage(ev))
	require.NoError(t, err)
	return kafka.Message{Key: []byte(ev.ID.String()), Value: value}
}

func TestConsumer_Start(t *testing.T) {
	good := testEvent()
	rejected := testEvent()
	rejected.Type = models.PaymentClaimed

	reader := newFakeReader(
		kafka.Message{Value: []byte("not json")},
		encode(t, rejected),
		encode(t, good),
	)
	core, recorded := observer.New(zap.ErrorLevel)
	consumer := &Consumer{reader: reader, logger: zap.New(core)}

	handled := make(chan *models.Event, 3)
	consumer.RegisterHandler(func(_ context.Context, ev *models.Event) error {
		if ev.Type == models.PaymentClaimed {
			return errors.New("handler error")
		}
		handled <- ev
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	consumer.Start(ctx)

	select {
	case ev := <-handled:
		assert.Equal(t, good, ev)
	case <-time.After(time.Second):
		t.Fatal("event not handled")
	}
	select {
	case m := <-reader.committed:
		assert.Equal(t, []byte(good.ID.String()), m.Key, "only handled messages are committed")
	case <-time.After(time.Second):
		t.Fatal("message not committed")
	}

	cancel()
	consumer.Close()
	assert.True(t, reader.closed)
	assert.Empty(t, reader.committed)
	assert.Equal(t, 1, recorded.FilterMessage("Failed to parse event").Len())
	assert.Equal(t, 1, recorded.FilterMessage("Failed to handle event").Len())
}
