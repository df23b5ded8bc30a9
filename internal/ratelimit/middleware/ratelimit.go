package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"fiscalid/internal/ratelimit/metrics"
	"fiscalid/internal/ratelimit/models"
	"fiscalid/pkg/platform/httputil"
	"fiscalid/pkg/requestcontext"
)

const msgTooManyRequests = "Demasiadas solicitudes. Por favor, intente nuevamente en unos minutos."

// Store admits or denies one request against a sliding window.
type Store interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (*models.Result, error)
}

type Middleware struct {
	store    Store
	fallback Store
	limits   map[models.Class]models.Limit
	logger   *slog.Logger
	metrics  *metrics.Metrics
	disabled bool
}

type Option func(*Middleware)

// WithFallback answers checks while the primary store is failing.
// Without one the middleware fails open.
func WithFallback(store Store) Option {
	return func(m *Middleware) {
		m.fallback = store
	}
}

func WithMetrics(metrics *metrics.Metrics) Option {
	return func(m *Middleware) {
		m.metrics = metrics
	}
}

// WithDisabled turns every RateLimit wrapper into a pass-through.
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

func New(store Store, limits map[models.Class]models.Limit, logger *slog.Logger, opts ...Option) *Middleware {
	m := &Middleware{
		store:  store,
		limits: limits,
		logger: logger,
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
	}
	return m
}

// RateLimit enforces the class budget per client IP. Classes without a
// configured limit pass through.
func (m *Middleware) RateLimit(class models.Class) func(http.Handler) http.Handler {
	limit, ok := m.limits[class]
	if m.disabled || !ok || limit.Requests <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			ip := requestcontext.ClientIP(ctx)
			if ip == "" {
				next.ServeHTTP(w, r)
				return
			}

			result, err := m.check(ctx, models.Key(class, ip), limit)
			if err != nil {
				m.logger.ErrorContext(ctx, "rate limit check failed; allowing request",
					"request_id", requestcontext.RequestID(ctx),
					"class", string(class),
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}

			m.metrics.ObserveDecision(string(class), result.Allowed)
			addRateLimitHeaders(w, result)
			if !result.Allowed {
				m.logger.WarnContext(ctx, "rate limit exceeded",
					"request_id", requestcontext.RequestID(ctx),
					"class", string(class),
				)
				writeRateLimitExceeded(w, result)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (m *Middleware) check(ctx context.Context, key string, limit models.Limit) (*models.Result, error) {
	result, err := m.store.Allow(ctx, key, limit.Requests, limit.Window)
	if err == nil {
		return result, nil
	}
	m.metrics.IncrementStoreFailure()
	if m.fallback == nil {
		return nil, err
	}
	m.logger.WarnContext(ctx, "rate limit store failed; using in-memory fallback",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	m.metrics.IncrementFallback()
	return m.fallback.Allow(ctx, key, limit.Requests, limit.Window)
}

func addRateLimitHeaders(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(result.Limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))
}

func writeRateLimitExceeded(w http.ResponseWriter, result *models.Result) {
	w.Header().Set("Retry-After", strconv.Itoa(result.RetryAfter))
	httputil.WriteJSON(w, http.StatusTooManyRequests, &models.ExceededResponse{
		Error:      "rate_limit_exceeded",
		Message:    msgTooManyRequests,
		RetryAfter: result.RetryAfter,
	})
}
