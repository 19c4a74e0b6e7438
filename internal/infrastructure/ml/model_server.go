package ml

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/saaayf/smartmedishop/internal/domain/model"
)

const meterName = "github.com/saaayf/smartmedishop/internal/infrastructure/ml"

// Model server endpoints. Each accepts a FeatureVector and returns {"value": n}.
const (
	anomalyPredictPath    = "/v1/anomaly/predict"
	anomalyDecisionPath   = "/v1/anomaly/decision"
	classifierPredictPath = "/v1/classifier/predict"
	classifierProbaPath   = "/v1/classifier/proba"
)

const maxResponseBytes int64 = 1 << 20

// ErrModelServer is returned for non-2xx model server responses.
var ErrModelServer = errors.New("model server error")

// ModelServerConfig configures the remote estimator client.
type ModelServerConfig struct {
	HTTPClient *http.Client
	BaseURL    string
	Timeout    time.Duration
}

// ModelServerClient calls a model server hosting the pre-trained anomaly
// detector and classifier. Calls go through a circuit breaker so a dead
// server degrades the detector to rule-only scoring without waiting out
// the timeout on every request.
type ModelServerClient struct {
	httpClient  *http.Client
	breaker     *gobreaker.CircuitBreaker[float64]
	logger      *slog.Logger
	rejected    metric.Int64Counter
	transitions metric.Int64Counter
	baseURL     string
}

// NewModelServerClient creates a client for the model server at cfg.BaseURL.
func NewModelServerClient(cfg ModelServerConfig, logger *slog.Logger) (*ModelServerClient, error) {
	if cfg.BaseURL == "" {
		return nil, errors.New("ml: model server base URL is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	meter := otel.Meter(meterName)
	rejected, err := meter.Int64Counter("ml_requests_rejected_total",
		metric.WithDescription("Model server calls rejected by the open circuit breaker"))
	if err != nil {
		return nil, fmt.Errorf("ml: create rejected counter: %w", err)
	}
	transitions, err := meter.Int64Counter("ml_breaker_transitions_total",
		metric.WithDescription("Model server circuit breaker state transitions"))
	if err != nil {
		return nil, fmt.Errorf("ml: create transitions counter: %w", err)
	}

	c := &ModelServerClient{
		httpClient:  httpClient,
		logger:      logger,
		rejected:    rejected,
		transitions: transitions,
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
	}

	c.breaker = gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "ml-model-server",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return counts.ConsecutiveFailures >= 5
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("ml circuit breaker state change",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			c.transitions.Add(context.Background(), 1, metric.WithAttributes(
				attribute.String("from", from.String()),
				attribute.String("to", to.String()),
			))
		},
	})

	return c, nil
}

// AnomalyDetector returns the remote isolation forest.
func (c *ModelServerClient) AnomalyDetector() *RemoteDetector {
	return &RemoteDetector{client: c}
}

// Classifier returns the remote fraud classifier.
func (c *ModelServerClient) Classifier() *RemoteClassifier {
	return &RemoteClassifier{client: c}
}

// State reports the circuit breaker state.
func (c *ModelServerClient) State() gobreaker.State {
	return c.breaker.State()
}

type valueResponse struct {
	Value *float64 `json:"value"`
}

func (c *ModelServerClient) call(ctx context.Context, path string, features model.FeatureVector) (float64, error) {
	value, err := c.breaker.Execute(func() (float64, error) {
		return c.post(ctx, path, features)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.rejected.Add(ctx, 1, metric.WithAttributes(attribute.String("path", path)))
	}
	if err != nil {
		return 0, fmt.Errorf("ml %s: %w", path, err)
	}
	return value, nil
}

func (c *ModelServerClient) post(ctx context.Context, path string, features model.FeatureVector) (float64, error) {
	body, err := json.Marshal(features)
	if err != nil {
		return 0, fmt.Errorf("encode features: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return 0, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return 0, fmt.Errorf("%w: status %d: %s", ErrModelServer, resp.StatusCode, strings.TrimSpace(string(data)))
	}

	var out valueResponse
	if err := json.Unmarshal(data, &out); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if out.Value == nil {
		return 0, fmt.Errorf("%w: response has no value", ErrModelServer)
	}
	return *out.Value, nil
}

// RemoteDetector implements port.AnomalyDetector over the model server.
type RemoteDetector struct {
	client *ModelServerClient
}

// Predict returns -1 for an outlier and 1 otherwise.
func (d *RemoteDetector) Predict(ctx context.Context, features model.FeatureVector) (int, error) {
	v, err := d.client.call(ctx, anomalyPredictPath, features)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return model.AnomalyLabel, nil
	}
	return 1, nil
}

// DecisionFunction returns the signed decision value.
func (d *RemoteDetector) DecisionFunction(ctx context.Context, features model.FeatureVector) (float64, error) {
	return d.client.call(ctx, anomalyDecisionPath, features)
}

// RemoteClassifier implements port.Classifier over the model server.
type RemoteClassifier struct {
	client *ModelServerClient
}

// Predict returns 1 for fraud and 0 otherwise.
func (c *RemoteClassifier) Predict(ctx context.Context, features model.FeatureVector) (int, error) {
	v, err := c.client.call(ctx, classifierPredictPath, features)
	if err != nil {
		return 0, err
	}
	if v >= 0.5 {
		return model.FraudLabel, nil
	}
	return 0, nil
}

// PredictProba returns the probability of the fraud class.
func (c *RemoteClassifier) PredictProba(ctx context.Context, features model.FeatureVector) (float64, error) {
	return c.client.call(ctx, classifierProbaPath, features)
}
