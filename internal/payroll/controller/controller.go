// Package controller implements the payroll ledger's business logic: the
// company and employee registries, the payment vault, the payroll manager and
// the token the vault holds. Every public operation is one call: it runs in a
// single database transaction, appends the events it emits to the outbox in
// that same transaction, and hands them to the event producer only after the
// transaction commits.
package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/db"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"github.com/OBuskas/ananaPayroll/internal/payroll/token"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type EventProducer interface {
	Produce(event *models.Event)
}

// Repository is the transactional store every service runs its calls against.
type Repository interface {
	WithTransaction(ctx context.Context, fn func(repo *db.Repository) error) error
}

// Clock supplies the time a call executes at.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// executor runs calls. It is shared by all services of one ledger.
type executor struct {
	repo     Repository
	producer EventProducer
	clock    Clock
	decimals uint8
	logger   *zap.Logger
}

func newExecutor(repo Repository, producer EventProducer, clock Clock, decimals uint8, logger *zap.Logger) *executor {
	if clock == nil {
		clock = SystemClock{}
	}
	return &executor{
		repo:     repo,
		producer: producer,
		clock:    clock,
		decimals: decimals,
		logger:   logger,
	}
}

// call is one executing operation.
type call struct {
	ctx    context.Context
	repo   *db.Repository
	now    time.Time
	token  *token.Ledger
	events []*models.Event
}

func (c *call) emit(eventType models.EventType, companyID *uint64, payload interface{}) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode %s event: %w", eventType, err)
	}
	c.events = append(c.events, &models.Event{
		ID:        uuid.New(),
		Type:      eventType,
		CompanyID: companyID,
		Payload:   raw,
		CreatedAt: c.now,
	})
	return nil
}

// run executes fn as one call. Events emitted by fn are published only when
// the transaction commits.
func (x *executor) run(ctx context.Context, fn func(c *call) error) error {
	var committed []*models.Event
	err := x.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		c := &call{
			ctx:   ctx,
			repo:  repo,
			now:   x.clock.Now().Truncate(time.Second),
			token: token.New(repo, x.decimals),
		}
		if err := fn(c); err != nil {
			return err
		}
		if len(c.events) > 0 {
			if err := repo.AppendEvents(ctx, c.events); err != nil {
				return fmt.Errorf("failed to append events: %w", err)
			}
		}
		committed = c.events
		return nil
	})
	if err != nil {
		return err
	}

	for _, ev := range committed {
		x.logger.Debug("Event committed",
			zap.String("type", string(ev.Type)),
			zap.Uint64("seq", ev.Seq),
			zap.String("event_id", ev.ID.String()),
		)
		if x.producer != nil {
			x.producer.Produce(ev)
		}
	}
	return nil
}

// view runs a read-only call. It never emits events.
func (x *executor) view(ctx context.Context, fn func(c *call) error) error {
	return x.repo.WithTransaction(ctx, func(repo *db.Repository) error {
		return fn(&call{
			ctx:   ctx,
			repo:  repo,
			now:   x.clock.Now().Truncate(time.Second),
			token: token.New(repo, x.decimals),
		})
	})
}
