package grpc

import (
	"fmt"
	"log/slog"
	"net"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/saaayf/smartmedishop/pkg/auth"
	"github.com/saaayf/smartmedishop/pkg/tlsutil"
)

// ServerConfig holds the optional gRPC server features.
type ServerConfig struct {
	Address     string
	TLSCertFile string
	TLSKeyFile  string
	Reflection  bool
}

// Server wraps the gRPC server with fraud detection handlers.
type Server struct {
	grpcServer *grpc.Server
	health     *health.Server
	handler    *FraudDetectionHandler
	logger     *slog.Logger
	address    string
}

// NewServer creates a new gRPC server. A nil validator disables the auth
// interceptor.
func NewServer(handler *FraudDetectionHandler, cfg ServerConfig, logger *slog.Logger, validator auth.TokenValidator) *Server {
	var serverOpts []grpc.ServerOption

	if validator != nil {
		// Health checks stay reachable without a token.
		authInterceptor := auth.UnaryAuthInterceptor(validator, []string{
			"/grpc.health.v1.Health/Check",
			"/grpc.health.v1.Health/Watch",
		})
		serverOpts = append(serverOpts, grpc.UnaryInterceptor(authInterceptor))
	} else {
		logger.Warn("gRPC authentication disabled")
	}

	if cfg.TLSCertFile != "" && cfg.TLSKeyFile != "" {
		creds, err := tlsutil.ServerTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
		if err != nil {
			logger.Error("failed to load TLS credentials, starting without TLS", slog.String("error", err.Error()))
		} else {
			serverOpts = append(serverOpts, grpc.Creds(creds))
			logger.Info("gRPC TLS enabled", slog.String("cert", cfg.TLSCertFile))
		}
	} else {
		logger.Info("gRPC TLS not configured, running without TLS")
	}

	grpcServer := grpc.NewServer(serverOpts...)

	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(ServiceName, healthpb.HealthCheckResponse_SERVING)

	RegisterFraudDetectionServer(grpcServer, handler)

	if cfg.Reflection {
		reflection.Register(grpcServer)
	}

	return &Server{
		grpcServer: grpcServer,
		health:     healthServer,
		handler:    handler,
		logger:     logger,
		address:    cfg.Address,
	}
}

// Start begins listening and serving gRPC requests.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.address, err)
	}
	return s.Serve(listener)
}

// Serve serves gRPC requests on listener.
func (s *Server) Serve(listener net.Listener) error {
	s.logger.Info("gRPC server starting", slog.String("address", listener.Addr().String()))
	return s.grpcServer.Serve(listener)
}

// Stop marks the service as not serving and gracefully stops the server.
func (s *Server) Stop() {
	s.logger.Info("gRPC server shutting down")
	s.health.Shutdown()
	s.grpcServer.GracefulStop()
}
