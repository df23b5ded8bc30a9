package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"fiscalid/internal/taxpayer/cache"
	"fiscalid/internal/taxpayer/metrics"
	"fiscalid/internal/taxpayer/models"
	"fiscalid/internal/taxpayer/service/mocks"
	"fiscalid/pkg/platform/sentinel"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Registry
type ValidatorSuite struct {
	suite.Suite
	ctx       context.Context
	registry  *mocks.MockRegistry
	cache     *cache.MemoryCache
	metrics   *metrics.Metrics
	validator *Validator
}

func TestValidatorSuite(t *testing.T) {
	suite.Run(t, new(ValidatorSuite))
}

func (s *ValidatorSuite) SetupTest() {
	s.ctx = context.Background()
	ctrl := gomock.NewController(s.T())
	s.registry = mocks.NewMockRegistry(ctrl)
	s.cache = cache.NewMemoryCache(time.Minute)
	s.metrics = metrics.NewWithRegisterer(prometheus.NewRegistry())
	s.validator = New(s.registry,
		WithCache(s.cache),
		WithMetrics(s.metrics),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
}

var juan = models.LookupResult{Outcome: models.Verified, CheckDigit: "07", LegalName: "JUAN PEREZ"}

// =============================================================================
// Input gating
// =============================================================================

func (s *ValidatorSuite) TestIncompleteInputIsNotAttempted() {
	cases := []struct{ number, kind string }{
		{"", "1"},
		{"   ", "2"},
		{"8-123-456", ""},
		{"8-123-456", "3"},
	}
	for _, tc := range cases {
		got, err := s.validator.Validate(s.ctx, tc.number, tc.kind)
		s.Require().NoError(err)
		s.Equal(models.NotAttempted, got.Outcome, "number=%q kind=%q", tc.number, tc.kind)
	}
}

func (s *ValidatorSuite) TestMissingKeyIsConfigurationError() {
	s.registry.EXPECT().Configured().Return(false)

	_, err := s.validator.Validate(s.ctx, "8-123-456", "1")
	s.Require().Error(err)
	s.True(errors.Is(err, sentinel.ErrNotConfigured))
}

// =============================================================================
// Lookup and cache
// =============================================================================

func (s *ValidatorSuite) TestVerifiedIsCached() {
	q := models.Query{Number: "8-123-456", Kind: models.KindNatural}
	s.registry.EXPECT().Configured().Return(true).Times(2)
	s.registry.EXPECT().Lookup(gomock.Any(), q).Return(juan, nil).Times(1)

	first, err := s.validator.Validate(s.ctx, " 8-123-456 ", "1")
	s.Require().NoError(err)
	s.Equal(juan, first)

	second, err := s.validator.Validate(s.ctx, "8-123-456", "1")
	s.Require().NoError(err)
	s.Equal(juan, second)
	s.Equal(2.0, testutil.ToFloat64(s.metrics.LookupOutcome.WithLabelValues("verified")))
}

func (s *ValidatorSuite) TestTransientIsNotCached() {
	transient := models.LookupResult{Outcome: models.TransientFailure}
	s.registry.EXPECT().Configured().Return(true).Times(2)
	s.registry.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(transient, nil).Times(2)

	for range 2 {
		got, err := s.validator.Validate(s.ctx, "8-1-1", "1")
		s.Require().NoError(err)
		s.Equal(models.TransientFailure, got.Outcome)
	}
	s.Zero(s.cache.Len())
}

func (s *ValidatorSuite) TestNumberIsUppercased() {
	s.registry.EXPECT().Configured().Return(true)
	s.registry.EXPECT().Lookup(gomock.Any(), models.Query{Number: "PE-1-2", Kind: models.KindNatural}).
		Return(models.LookupResult{Outcome: models.NotRegistered}, nil)

	got, err := s.validator.Validate(s.ctx, "pe-1-2", "1")
	s.Require().NoError(err)
	s.Equal(models.NotRegistered, got.Outcome)
}

func (s *ValidatorSuite) TestUnexpectedRegistryErrorIsTransient() {
	s.registry.EXPECT().Configured().Return(true)
	s.registry.EXPECT().Lookup(gomock.Any(), gomock.Any()).Return(models.LookupResult{}, errors.New("boom"))

	got, err := s.validator.Validate(s.ctx, "8-1-1", "2")
	s.Require().NoError(err)
	s.Equal(models.TransientFailure, got.Outcome)
}

// =============================================================================
// Concurrency
// =============================================================================

func (s *ValidatorSuite) TestConcurrentIdenticalLookupsShareOneCall() {
	entered := make(chan struct{})
	release := make(chan struct{})
	s.registry.EXPECT().Configured().Return(true).Times(2)
	s.registry.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.Query) (models.LookupResult, error) {
			close(entered)
			<-release
			return juan, nil
		}).Times(1)

	var wg sync.WaitGroup
	results := make([]models.LookupResult, 2)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = s.validator.Validate(s.ctx, "8-123-456", "1")
	}()
	<-entered

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[1], _ = s.validator.Validate(s.ctx, "8-123-456", "1")
	}()
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	s.Equal(juan, results[0])
	s.Equal(juan, results[1])
	s.Equal(2.0, testutil.ToFloat64(s.metrics.SharedLookups), "both callers report a shared result")
}

func (s *ValidatorSuite) TestCancelledCallerGetsTransient() {
	release := make(chan struct{})
	defer close(release)
	s.registry.EXPECT().Configured().Return(true)
	s.registry.EXPECT().Lookup(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, models.Query) (models.LookupResult, error) {
			<-release
			return juan, nil
		}).AnyTimes()

	ctx, cancel := context.WithTimeout(s.ctx, 20*time.Millisecond)
	defer cancel()

	got, err := s.validator.Validate(ctx, "8-9-9", "1")
	s.Require().NoError(err)
	s.Equal(models.TransientFailure, got.Outcome)
}
