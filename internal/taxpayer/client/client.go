// Package client speaks the DGI RUC/DV lookup protocol.
package client

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

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fiscalid/internal/taxpayer/metrics"
	"fiscalid/internal/taxpayer/models"
	"fiscalid/pkg/platform/circuit"
	"fiscalid/pkg/platform/sentinel"
	"fiscalid/pkg/requestcontext"
)

const (
	lookupPath      = "/feConsRucDV"
	apiKeyHeader    = "api-key"
	maxResponseSize = 1 << 20
)

// ErrNotConfigured is returned when no API key is set. It is an operator
// problem and must never be reported to customers as invalid input.
var ErrNotConfigured = fmt.Errorf("taxpayer registry: api key missing: %w", sentinel.ErrNotConfigured)

// Config is the registry endpoint configuration.
type Config struct {
	BaseURL     string
	APIKey      string
	CompanyCode string
	Timeout     time.Duration
}

// Client calls the registry. Safe for concurrent use.
type Client struct {
	cfg     Config
	http    *http.Client
	breaker *circuit.Breaker
	logger  *slog.Logger
	metrics *metrics.Metrics
	tracer  trace.Tracer
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) { cl.http = c }
}

func WithBreaker(b *circuit.Breaker) Option {
	return func(cl *Client) { cl.breaker = b }
}

func WithLogger(l *slog.Logger) Option {
	return func(cl *Client) { cl.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(cl *Client) { cl.metrics = m }
}

func New(cfg Config, opts ...Option) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	c := &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		breaker: circuit.New("taxpayer-registry"),
		logger:  slog.Default(),
		tracer:  otel.Tracer("fiscalid/taxpayer/client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return strings.TrimSpace(c.cfg.APIKey) != ""
}

// Lookup performs one registry call. Transport problems come back as a
// TransientFailure result; the only error is ErrNotConfigured.
func (c *Client) Lookup(ctx context.Context, q models.Query) (models.LookupResult, error) {
	if !c.Configured() {
		return models.LookupResult{}, ErrNotConfigured
	}

	ctx, span := c.tracer.Start(ctx, "taxpayer.registry.lookup", trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()
	span.SetAttributes(attribute.String("taxpayer.kind", string(q.Kind)))

	start := time.Now()
	result, err := c.call(ctx, q)
	elapsed := time.Since(start)

	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(CategoryOf(err)))
		c.logger.WarnContext(ctx, "taxpayer registry call failed",
			"request_id", requestcontext.RequestID(ctx),
			"category", CategoryOf(err),
			"error", err,
		)
	}
	span.SetAttributes(attribute.String("taxpayer.outcome", string(result.Outcome)))
	c.metrics.ObserveLookup(string(result.Outcome), elapsed)
	return result, nil
}

func (c *Client) call(ctx context.Context, q models.Query) (models.LookupResult, error) {
	transient := models.LookupResult{Outcome: models.TransientFailure}

	if !c.breaker.Allow() {
		return transient, &RegistryError{Category: ErrorCircuitOpen, Message: "circuit open"}
	}

	body, err := json.Marshal(lookupRequest{Number: q.Number, Kind: string(q.Kind), CompanyCode: c.cfg.CompanyCode})
	if err != nil {
		return transient, &RegistryError{Category: ErrorBadData, Message: "encode request", Underlying: err}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+lookupPath, bytes.NewReader(body))
	if err != nil {
		return transient, &RegistryError{Category: ErrorBadData, Message: "build request", Underlying: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(apiKeyHeader, c.cfg.APIKey)

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure()
		category := ErrorProviderOutage
		if errors.Is(err, context.DeadlineExceeded) {
			category = ErrorTimeout
		}
		return transient, &RegistryError{Category: category, Message: "request failed", Underlying: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.recordFailure()
		return transient, &RegistryError{Category: ErrorProviderOutage, Message: "read response", Underlying: err}
	}

	result, fault := interpret(resp.StatusCode, raw, q.Number)
	if fault {
		c.recordFailure()
		return result, &RegistryError{Category: ErrorProviderOutage, Message: result.Detail}
	}
	c.recordSuccess()
	return result, nil
}

func (c *Client) recordFailure() {
	if _, change := c.breaker.RecordFailure(); change.Opened {
		c.logger.Warn("taxpayer registry circuit opened", "breaker", c.breaker.Name())
		c.metrics.SetBreakerOpen(true)
	}
}

func (c *Client) recordSuccess() {
	if _, change := c.breaker.RecordSuccess(); change.Closed {
		c.logger.Info("taxpayer registry circuit closed", "breaker", c.breaker.Name())
		c.metrics.SetBreakerOpen(false)
	}
}
