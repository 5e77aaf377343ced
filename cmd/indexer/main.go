// The indexer follows the ledger's event stream and logs every event, the
// way an off-chain indexer would follow contract logs.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/OBuskas/ananaPayroll/internal/payroll/config"
	"github.com/OBuskas/ananaPayroll/internal/payroll/events"
	"github.com/OBuskas/ananaPayroll/internal/payroll/models"
	"go.uber.org/zap"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()

	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}
	if len(cfg.KafkaBrokers) == 0 {
		logger.Fatal("KAFKA_BROKERS must be set for the indexer")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	consumer := events.NewConsumer(cfg.KafkaBrokers, cfg.Topic, cfg.GroupID, logger)
	consumer.RegisterHandler(func(_ context.Context, ev *models.Event) error {
		fields := []zap.Field{
			zap.Uint64("seq", ev.Seq),
			zap.String("event_type", string(ev.Type)),
			zap.String("event_id", ev.ID.String()),
			zap.ByteString("payload", ev.Payload),
		}
		if ev.CompanyID != nil {
			fields = append(fields, zap.Uint64("company_id", *ev.CompanyID))
		}
		logger.Info("Ledger event", fields...)
		return nil
	})
	consumer.Start(ctx)

	logger.Info("Indexer started", zap.String("topic", cfg.Topic), zap.String("group_id", cfg.GroupID))
	<-ctx.Done()
	consumer.Close()
	logger.Info("Indexer stopped")
}
