// Package server runs the formkeeper gRPC server.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"

	"github.com/solatis/formkeeper/internal/core/api"
	"github.com/solatis/formkeeper/internal/core/auth"
	"github.com/solatis/formkeeper/internal/core/config"
)

// ShutdownTimeout bounds graceful shutdown before in-flight calls are cut.
const ShutdownTimeout = 30 * time.Second

// GRPCServer owns the gRPC server and its health service.
type GRPCServer struct {
	server *grpc.Server
	health *health.Server
	cfg    config.ServerConfig
}

// NewGRPCServer registers service behind the interceptor chain
// recovery, logging, timeout, auth. A nil authenticator disables auth.
func NewGRPCServer(cfg config.ServerConfig, service api.EvaluationServer, authenticator *auth.Authenticator, logger *slog.Logger) (*GRPCServer, error) {
	if service == nil {
		return nil, fmt.Errorf("service cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	interceptors := []grpc.UnaryServerInterceptor{
		RecoveryInterceptor(),
		LoggingInterceptor(logger),
		TimeoutInterceptor(cfg.RequestTimeout),
	}
	if authenticator != nil {
		interceptors = append(interceptors, authenticator.UnaryInterceptor())
	}

	opts := []grpc.ServerOption{grpc.ChainUnaryInterceptor(interceptors...)}
	if cfg.MaxMessageBytes > 0 {
		opts = append(opts, grpc.MaxRecvMsgSize(cfg.MaxMessageBytes))
	}

	server := grpc.NewServer(opts...)
	api.RegisterEvaluationServer(server, service)

	healthServer := health.NewServer()
	grpc_health_v1.RegisterHealthServer(server, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(api.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	return &GRPCServer{server: server, health: healthServer, cfg: cfg}, nil
}

// Addr is the configured listen address.
func (s *GRPCServer) Addr() string {
	return net.JoinHostPort(s.cfg.Host, fmt.Sprint(s.cfg.Port))
}

// Start listens on the configured address and serves until Shutdown.
func (s *GRPCServer) Start(ctx context.Context) error {
	var lc net.ListenConfig
	listener, err := lc.Listen(ctx, "tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to bind %s: %w", s.Addr(), err)
	}
	return s.Serve(listener)
}

// Serve serves on an existing listener.
func (s *GRPCServer) Serve(listener net.Listener) error {
	return s.server.Serve(listener)
}

// Shutdown marks the server NOT_SERVING and stops gracefully, forcing a
// stop when ctx ends or ShutdownTimeout passes.
func (s *GRPCServer) Shutdown(ctx context.Context) error {
	s.health.Shutdown()

	stopped := make(chan struct{})
	go func() {
		s.server.GracefulStop()
		close(stopped)
	}()

	timer := time.NewTimer(ShutdownTimeout)
	defer timer.Stop()

	select {
	case <-stopped:
		return nil
	case <-ctx.Done():
		s.server.Stop()
		return fmt.Errorf("shutdown cancelled by context: %w", ctx.Err())
	case <-timer.C:
		s.server.Stop()
		return fmt.Errorf("graceful shutdown timeout, forced stop")
	}
}
