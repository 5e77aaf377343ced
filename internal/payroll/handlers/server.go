// Package handlers serves the payroll ledger over gRPC (JSON codec) and a
// REST gateway, translating between wire messages and domain models.
package handlers

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/OBuskas/ananaPayroll/internal/payroll/auth"
	"go.uber.org/zap"
	"google.golang.org/grpc"
)

// Server holds references to both a gRPC server and an HTTP server.
type Server struct {
	grpcServer   *grpc.Server
	httpServer   *http.Server
	logger       *zap.Logger
	grpcEndpoint string
	httpEndpoint string
}

// NewServer constructs a Server with separate endpoints for gRPC and HTTP.
// The gRPC server always speaks JSONCodec.
func NewServer(
	grpcPort int,
	httpPort int,
	logger *zap.Logger,
	grpcOpts ...grpc.ServerOption,
) *Server {
	opts := append([]grpc.ServerOption{grpc.ForceServerCodec(JSONCodec{})}, grpcOpts...)
	return &Server{
		grpcServer:   grpc.NewServer(opts...),
		httpServer:   &http.Server{ReadHeaderTimeout: 10 * time.Second},
		logger:       logger,
		grpcEndpoint: fmt.Sprintf(":%d", grpcPort),
		httpEndpoint: fmt.Sprintf(":%d", httpPort),
	}
}

// RegisterGRPCHandler registers h as the PayrollService implementation.
func (s *Server) RegisterGRPCHandler(h PayrollServiceServer) {
	s.grpcServer.RegisterService(&ServiceDesc, h)
}

// RegisterHTTPGateway mounts the REST gateway for h behind the auth middleware.
func (s *Server) RegisterHTTPGateway(h PayrollServiceServer, jwtSecret string) error {
	mux, err := NewGatewayMux(h, s.logger)
	if err != nil {
		return err
	}

	s.httpServer.Handler = auth.HTTPMiddleware(mux, jwtSecret)
	s.httpServer.Addr = s.httpEndpoint
	return nil
}

// Start runs the gRPC and HTTP servers concurrently, returning on the first error.
func (s *Server) Start() error {
	var wg sync.WaitGroup
	wg.Add(2)
	errChan := make(chan error, 2)

	go func() {
		defer wg.Done()
		s.logger.Info("Starting gRPC server", zap.String("endpoint", s.grpcEndpoint))
		lis, err := net.Listen("tcp", s.grpcEndpoint)
		if err != nil {
			errChan <- fmt.Errorf("gRPC listen error: %w", err)
			return
		}
		if err := s.grpcServer.Serve(lis); err != nil {
			errChan <- fmt.Errorf("gRPC serve error: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		s.logger.Info("Starting HTTP server", zap.String("endpoint", s.httpEndpoint))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("HTTP serve error: %w", err)
		}
	}()

	go func() {
		wg.Wait()
		close(errChan)
	}()

	for err := range errChan {
		if err != nil {
			return err
		}
	}
	return nil
}

// Stop gracefully shuts down both gRPC and HTTP servers.
func (s *Server) Stop() {
	s.logger.Info("Shutting down servers...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s.grpcServer.GracefulStop()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.logger.Error("HTTP server shutdown error", zap.Error(err))
	}

	s.logger.Info("Servers stopped")
}
