package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/auth"
	"github.com/OBuskas/ananaPayroll/internal/payroll/config"
	"github.com/OBuskas/ananaPayroll/internal/payroll/controller"
	"github.com/OBuskas/ananaPayroll/internal/payroll/db"
	"github.com/OBuskas/ananaPayroll/internal/payroll/events"
	"github.com/OBuskas/ananaPayroll/internal/payroll/handlers"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

const dbConnectRetries = 10

func main() {
	logger := initLogger()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)

	cfg, err := config.Load(config.Path())
	if err != nil {
		logger.Fatal("failed to load config", zap.Error(err))
	}

	repo, err := connectDatabase(cfg.Database(), logger)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	var producer controller.EventProducer
	if len(cfg.KafkaBrokers) > 0 {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		if err := events.EnsureTopic(ctx, cfg.KafkaBrokers, cfg.Topic, logger); err != nil {
			logger.Warn("Could not ensure Kafka topic", zap.Error(err))
		}
		cancel()

		kafkaProducer := events.NewProducer(cfg.KafkaBrokers, cfg.Topic, logger)
		defer kafkaProducer.Close()
		producer = kafkaProducer
	} else {
		logger.Info("No Kafka brokers configured, events stay in the outbox")
	}

	ledger := controller.NewLedger(repo, producer, cfg.LedgerOptions(), logger)
	if err := ledger.Init(context.Background()); err != nil {
		logger.Fatal("failed to initialize ledger", zap.Error(err))
	}

	handler := handlers.NewPayrollHandler(handlers.ServicesFromLedger(ledger), logger)

	authInterceptor := auth.NewAuthInterceptor(cfg.JWTSecret, handlers.ProtectedMethods()...)
	server := handlers.NewServer(cfg.GRPCPort, cfg.HTTPPort, logger, grpc.UnaryInterceptor(authInterceptor.Unary()))
	server.RegisterGRPCHandler(handler)
	if err := server.RegisterHTTPGateway(handler, cfg.JWTSecret); err != nil {
		logger.Fatal("Failed to register HTTP gateway", zap.Error(err))
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start()
	}()

	waitForShutdown(server, errCh, logger)
}

// initLogger initializes a Zap production logger.
func initLogger() *zap.Logger {
	logger, _ := zap.NewProduction()
	return logger
}

// connectDatabase retries until the database accepts connections.
func connectDatabase(cfg *db.Config, logger *zap.Logger) (*db.Repository, error) {
	var repo *db.Repository
	err := backoff.Retry(func() error {
		var err error
		repo, err = db.NewRepository(cfg)
		if err != nil {
			logger.Warn("Database not ready, retrying", zap.Error(err))
		}
		return err
	}, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), dbConnectRetries))
	return repo, err
}

// waitForShutdown blocks until an interrupt, SIGTERM or a server failure, then shuts down servers.
func waitForShutdown(server *handlers.Server, errCh <-chan error, logger *zap.Logger) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed", zap.Error(err))
		}
	}

	server.Stop()
	logger.Info("Servers stopped properly")
}
