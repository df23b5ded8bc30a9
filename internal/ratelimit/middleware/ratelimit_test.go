package middleware

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"fiscalid/internal/ratelimit/metrics"
	"fiscalid/internal/ratelimit/models"
	"fiscalid/internal/ratelimit/store/bucket"
	"fiscalid/pkg/requestcontext"
)

type failingStore struct{}

func (failingStore) Allow(context.Context, string, int, time.Duration) (*models.Result, error) {
	return nil, errors.New("dial tcp 10.0.0.5:6379: connect: connection refused")
}

type RateLimitSuite struct {
	suite.Suite
	logger  *slog.Logger
	metrics *metrics.Metrics
	limits  map[models.Class]models.Limit
}

func TestRateLimitSuite(t *testing.T) {
	suite.Run(t, new(RateLimitSuite))
}

func (s *RateLimitSuite) SetupTest() {
	s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.limits = map[models.Class]models.Limit{
		models.ClassRegistryLookup: {Requests: 2, Window: time.Minute},
	}
}

func (s *RateLimitSuite) wrap(m *Middleware, class models.Class) http.Handler {
	return m.RateLimit(class)(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
}

func (s *RateLimitSuite) serve(h http.Handler, ip string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/contribuyente/validate", nil)
	req = req.WithContext(requestcontext.WithClientMetadata(req.Context(), ip, "test-agent"))
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func (s *RateLimitSuite) TestDeniesOverBudget() {
	h := s.wrap(New(bucket.NewMemoryStore(), s.limits, s.logger, WithMetrics(s.metrics)), models.ClassRegistryLookup)

	w := s.serve(h, "192.0.2.10")
	s.Equal(http.StatusOK, w.Code)
	s.Equal("2", w.Header().Get("X-RateLimit-Limit"))
	s.Equal("1", w.Header().Get("X-RateLimit-Remaining"))

	s.Equal(http.StatusOK, s.serve(h, "192.0.2.10").Code)

	w = s.serve(h, "192.0.2.10")
	s.Equal(http.StatusTooManyRequests, w.Code)
	s.NotEmpty(w.Header().Get("Retry-After"))
	s.Contains(w.Body.String(), `"error":"rate_limit_exceeded"`)

	s.Equal(http.StatusOK, s.serve(h, "192.0.2.11").Code, "other clients keep their own budget")

	s.Equal(3.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues(string(models.ClassRegistryLookup), "allowed")))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.Decisions.WithLabelValues(string(models.ClassRegistryLookup), "denied")))
}

func (s *RateLimitSuite) TestUnconfiguredClassPassesThrough() {
	h := s.wrap(New(bucket.NewMemoryStore(), s.limits, s.logger), models.ClassProfileWrite)

	for range 5 {
		w := s.serve(h, "192.0.2.10")
		s.Equal(http.StatusOK, w.Code)
		s.Empty(w.Header().Get("X-RateLimit-Limit"))
	}
}

func (s *RateLimitSuite) TestDisabled() {
	h := s.wrap(New(bucket.NewMemoryStore(), s.limits, s.logger, WithDisabled(true)), models.ClassRegistryLookup)

	for range 5 {
		s.Equal(http.StatusOK, s.serve(h, "192.0.2.10").Code)
	}
}

func (s *RateLimitSuite) TestStoreFailureFailsOpen() {
	h := s.wrap(New(failingStore{}, s.limits, s.logger, WithMetrics(s.metrics)), models.ClassRegistryLookup)

	for range 5 {
		s.Equal(http.StatusOK, s.serve(h, "192.0.2.10").Code)
	}
	s.Equal(5.0, testutil.ToFloat64(s.metrics.StoreFailures))
}

func (s *RateLimitSuite) TestStoreFailureUsesFallback() {
	m := New(failingStore{}, s.limits, s.logger,
		WithFallback(bucket.NewMemoryStore()),
		WithMetrics(s.metrics),
	)
	h := s.wrap(m, models.ClassRegistryLookup)

	s.Equal(http.StatusOK, s.serve(h, "192.0.2.10").Code)
	s.Equal(http.StatusOK, s.serve(h, "192.0.2.10").Code)
	s.Equal(http.StatusTooManyRequests, s.serve(h, "192.0.2.10").Code)
	s.Equal(3.0, testutil.ToFloat64(s.metrics.FallbackChecks))
}
