package grpcserver

import (
	"context"
	"errors"
	"fmt"
	"net"

	"pulse-node/pkg/defaults"

	grpc_mw "github.com/grpc-ecosystem/go-grpc-middleware"
	grpc_prometheus "github.com/grpc-ecosystem/go-grpc-prometheus"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

// Server serves the standard gRPC health service for the simulator.
type Server struct {
	grpc    *grpc.Server
	health  *health.Server
	metrics *grpc_prometheus.ServerMetrics
	logger  *logrus.Entry
}

// New creates the server and registers its interceptor metrics with registry.
func New(registry prometheus.Registerer, logger *logrus.Entry) (*Server, error) {
	serverMetrics := grpc_prometheus.NewServerMetrics()
	if err := registry.Register(serverMetrics); err != nil {
		return nil, fmt.Errorf("failed to register grpc server metrics: %w", err)
	}

	grpcServer := grpc.NewServer(generateOpts(serverMetrics)...)

	healthServer := health.NewServer()
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(defaults.ServiceName, healthpb.HealthCheckResponse_SERVING)

	healthpb.RegisterHealthServer(grpcServer, healthServer)
	reflection.Register(grpcServer)
	serverMetrics.InitializeMetrics(grpcServer)

	return &Server{
		grpc:    grpcServer,
		health:  healthServer,
		metrics: serverMetrics,
		logger:  logger.WithField("component", "grpc"),
	}, nil
}

func generateOpts(serverMetrics *grpc_prometheus.ServerMetrics) []grpc.ServerOption {
	return []grpc.ServerOption{
		grpc.StreamInterceptor(grpc_mw.ChainStreamServer(
			serverMetrics.StreamServerInterceptor(),
		)),
		grpc.UnaryInterceptor(grpc_mw.ChainUnaryServer(
			serverMetrics.UnaryServerInterceptor(),
		)),
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	return s.Serve(ctx, listener)
}

// Serve serves on listener until ctx is cancelled. The health status flips to NOT_SERVING
// before in-flight calls are drained.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	stopped := make(chan struct{})

	go func() {
		defer close(stopped)

		<-ctx.Done()

		s.logger.Info("shutting down gRPC server")
		s.health.Shutdown()
		s.grpc.GracefulStop()
	}()

	s.logger.Infof("starting gRPC server on %s", listener.Addr())

	if err := s.grpc.Serve(listener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("failed to serve: %w", err)
	}

	<-stopped

	return nil
}
