package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/saaayf/smartmedishop/internal/application/usecase"
	"github.com/saaayf/smartmedishop/internal/domain/port"
	"github.com/saaayf/smartmedishop/internal/domain/service"
	"github.com/saaayf/smartmedishop/internal/infrastructure/config"
	fraudkafka "github.com/saaayf/smartmedishop/internal/infrastructure/kafka"
	"github.com/saaayf/smartmedishop/internal/infrastructure/ml"
	"github.com/saaayf/smartmedishop/internal/infrastructure/postgres"
	"github.com/saaayf/smartmedishop/internal/infrastructure/telemetry"
	grpcpresentation "github.com/saaayf/smartmedishop/internal/presentation/grpc"
	"github.com/saaayf/smartmedishop/internal/presentation/rest"
	"github.com/saaayf/smartmedishop/pkg/auth"
	pkgkafka "github.com/saaayf/smartmedishop/pkg/kafka"
	"github.com/saaayf/smartmedishop/pkg/observability"
	pkgpostgres "github.com/saaayf/smartmedishop/pkg/postgres"
)

const serviceName = "fraud-detector"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := observability.InitLogger(observability.LogConfig{
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
		Service: serviceName,
	})

	logger.Info("starting fraud-detector",
		"http_port", cfg.HTTPPort,
		"grpc_port", cfg.GRPCPort,
		"ml_mode", cfg.MLMode,
	)

	if cfg.OTLPEndpoint != "" {
		shutdown, err := observability.InitTracer(ctx, observability.TracingConfig{
			ServiceName: serviceName,
			Endpoint:    cfg.OTLPEndpoint,
			Insecure:    !cfg.IsProduction(),
		})
		if err != nil {
			logger.Warn("failed to initialize tracer, continuing without tracing", "error", err)
		} else {
			defer func() { _ = shutdown(context.Background()) }()
		}
	}

	meterProvider, metricsHandler, err := observability.InitMetrics(observability.MetricsConfig{ServiceName: serviceName})
	if err != nil {
		logger.Error("failed to initialize metrics", "error", err)
		os.Exit(1)
	}
	defer func() { _ = meterProvider.Shutdown(context.Background()) }()

	recorder, err := telemetry.NewRecorder(meterProvider.Meter(telemetry.MeterName))
	if err != nil {
		logger.Error("failed to create metric instruments", "error", err)
		os.Exit(1)
	}

	// Database connection.
	dbCtx, dbCancel := context.WithTimeout(ctx, 10*time.Second)
	defer dbCancel()

	pool, err := pkgpostgres.NewPool(dbCtx, pkgpostgres.Config{URL: cfg.DatabaseURL})
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("connected to database")

	if err := pkgpostgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsDir); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	analysisRepo := postgres.NewAnalysisRepository(pool)
	alertRepo := postgres.NewAlertRepository(pool)

	// Event publishing is optional.
	var publisher port.EventPublisher
	kafkaCfg := pkgkafka.Config{
		Brokers:       cfg.KafkaBrokers,
		ConsumerGroup: cfg.KafkaConsumerGroup,
	}
	if cfg.KafkaEnabled() {
		producer, err := pkgkafka.NewProducer(kafkaCfg)
		if err != nil {
			logger.Error("failed to create kafka producer", "error", err)
			os.Exit(1)
		}
		defer producer.Close()
		publisher = fraudkafka.NewPublisher(producer, cfg.KafkaEventsTopic, logger)
	} else {
		logger.Info("kafka not configured, events will not be published")
	}

	mlScorer, err := newMLScorer(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize ML scorer", "error", err)
		os.Exit(1)
	}

	detector := service.NewHybridDetector(service.NewRuleScorer(), mlScorer, logger)
	simulator := service.NewSimulator(nil)

	analyzeTransactionUC := usecase.NewAnalyzeTransaction(detector, analysisRepo, publisher, recorder, logger)
	getAnalysisUC := usecase.NewGetAnalysis(analysisRepo)
	listTransactionsUC := usecase.NewListTransactions(analysisRepo)
	listFraudAlertsUC := usecase.NewListFraudAlerts(alertRepo)
	updateAlertStatusUC := usecase.NewUpdateAlertStatus(alertRepo, publisher, logger)
	simulateTransactionUC := usecase.NewSimulateTransaction(simulator, detector, recorder)

	validator, err := newTokenValidator(cfg)
	if err != nil {
		logger.Error("failed to create JWT service", "error", err)
		os.Exit(1)
	}
	if validator == nil {
		logger.Warn("no JWT key configured, API authentication disabled")
	}

	// gRPC server.
	grpcHandler := grpcpresentation.NewFraudDetectionHandler(analyzeTransactionUC, getAnalysisUC, logger, validator != nil)
	grpcServer := grpcpresentation.NewServer(grpcHandler, grpcpresentation.ServerConfig{
		Address:     cfg.GRPCAddress(),
		TLSCertFile: cfg.GRPCTLSCertFile,
		TLSKeyFile:  cfg.GRPCTLSKeyFile,
		Reflection:  cfg.GRPCReflection,
	}, logger, validator)

	// HTTP server.
	httpMux := http.NewServeMux()
	rest.NewHandler(
		analyzeTransactionUC,
		getAnalysisUC,
		listTransactionsUC,
		listFraudAlertsUC,
		updateAlertStatusUC,
		simulateTransactionUC,
		logger,
	).RegisterRoutes(httpMux)
	rest.NewHealthHandler(logger, map[string]rest.Checker{
		"database": func(ctx context.Context) error { return pkgpostgres.HealthCheck(ctx, pool) },
	}).RegisterRoutes(httpMux)
	httpMux.Handle("GET /metrics", metricsHandler)

	public := []string{"/healthz", "/readyz", "/metrics"}
	middlewares := []func(http.Handler) http.Handler{
		rest.RecoverMiddleware(logger),
		rest.LoggingMiddleware(logger),
	}
	if cfg.RateLimitRPS > 0 {
		limiter := rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.RateLimitBurst)
		middlewares = append(middlewares, rest.RateLimitMiddleware(limiter, public))
	}
	if validator != nil {
		middlewares = append(middlewares, auth.HTTPMiddleware(validator, append(public, "/api/health")))
	}

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress(),
		Handler:      rest.Chain(httpMux, middlewares...),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start servers and the transaction consumer.
	errCh := make(chan error, 3)

	go func() {
		if err := grpcServer.Start(); err != nil {
			errCh <- fmt.Errorf("gRPC server error: %w", err)
		}
	}()

	go func() {
		logger.Info("HTTP server starting", "address", cfg.HTTPAddress())
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	if cfg.KafkaEnabled() {
		handler := fraudkafka.NewTransactionConsumer(analyzeTransactionUC, logger)
		consumer, err := pkgkafka.NewConsumer(kafkaCfg, cfg.KafkaTransactionsTopic, handler.Handle, logger)
		if err != nil {
			logger.Error("failed to create kafka consumer", "error", err)
			os.Exit(1)
		}
		defer consumer.Close()

		go func() {
			if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				errCh <- fmt.Errorf("kafka consumer error: %w", err)
			}
		}()
	}

	logger.Info("fraud-detector started",
		"grpc_address", cfg.GRPCAddress(),
		"http_address", cfg.HTTPAddress(),
		"environment", cfg.Environment,
	)

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		logger.Error("server error", "error", err)
	}

	logger.Info("shutting down fraud-detector")

	grpcServer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	logger.Info("fraud-detector stopped")
}

// newTokenValidator returns nil when no verification key is configured. A
// public key file selects validation-only RS256 mode.
func newTokenValidator(cfg *config.Config) (auth.TokenValidator, error) {
	if !cfg.AuthEnabled() {
		return nil, nil
	}

	jwtCfg := auth.JWTConfig{Secret: cfg.JWTSecret, Issuer: serviceName}
	if cfg.JWTPublicKeyFile != "" {
		pem, err := auth.LoadKeyFromFile(cfg.JWTPublicKeyFile)
		if err != nil {
			return nil, err
		}
		jwtCfg.PublicKeyPEM = string(pem)
	}
	svc, err := auth.NewJWTService(jwtCfg)
	if err != nil {
		return nil, err
	}
	return svc, nil
}

// newMLScorer builds the estimator scorer for the configured mode. It
// returns nil when ML scoring is disabled, leaving the detector rule-only.
func newMLScorer(cfg *config.Config, logger *slog.Logger) (port.MLScorer, error) {
	features := service.NewFeatureEngineer()

	switch cfg.MLMode {
	case config.MLModeStub:
		stub := ml.NewStubEstimators(logger)
		return service.NewEstimatorScorer(features, stub.AnomalyDetector(), stub.Classifier()), nil
	case config.MLModeRemote:
		client, err := ml.NewModelServerClient(ml.ModelServerConfig{
			BaseURL: cfg.MLServerURL,
			Timeout: cfg.MLTimeout,
		}, logger)
		if err != nil {
			return nil, err
		}
		return service.NewEstimatorScorer(features, client.AnomalyDetector(), client.Classifier()), nil
	default:
		logger.Info("ML scoring disabled, using rule-based scoring only")
		return nil, nil
	}
}
