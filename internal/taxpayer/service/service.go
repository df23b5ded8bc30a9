// Package service validates identity numbers against the taxpayer registry.
package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"golang.org/x/sync/singleflight"

	"fiscalid/internal/taxpayer/cache"
	"fiscalid/internal/taxpayer/metrics"
	"fiscalid/internal/taxpayer/models"
	"fiscalid/pkg/platform/sentinel"
	"fiscalid/pkg/requestcontext"
)

// ErrNotConfigured reports a registry without credentials.
var ErrNotConfigured = fmt.Errorf("taxpayer validator: %w", sentinel.ErrNotConfigured)

// Registry performs a single registry lookup.
type Registry interface {
	Lookup(ctx context.Context, q models.Query) (models.LookupResult, error)
	Configured() bool
}

// Validator fronts the registry with a cache and collapses identical
// concurrent lookups.
type Validator struct {
	registry Registry
	cache    cache.Cache
	group    singleflight.Group
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

type Option func(*Validator)

func WithCache(c cache.Cache) Option {
	return func(v *Validator) { v.cache = c }
}

func WithLogger(l *slog.Logger) Option {
	return func(v *Validator) { v.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Validator) { v.metrics = m }
}

func New(registry Registry, opts ...Option) *Validator {
	v := &Validator{
		registry: registry,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Validate looks up number under kind. An empty number or a kind other than
// "1"/"2" yields NotAttempted without a call. The only error is
// ErrNotConfigured; every registry problem is a TransientFailure result.
func (v *Validator) Validate(ctx context.Context, number, kind string) (models.LookupResult, error) {
	q := models.Query{Number: models.NormalizeNumber(number)}
	k, ok := models.ParseKind(kind)
	if q.Number == "" || !ok {
		return models.LookupResult{Outcome: models.NotAttempted}, nil
	}
	q.Kind = k

	if !v.registry.Configured() {
		v.logger.ErrorContext(ctx, "taxpayer registry api key is not configured",
			"request_id", requestcontext.RequestID(ctx),
		)
		return models.LookupResult{}, ErrNotConfigured
	}

	if v.cache != nil {
		cached, err := v.cache.Find(ctx, q)
		if err == nil {
			v.metrics.IncrementOutcome(string(cached.Outcome))
			return cached, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			v.logger.WarnContext(ctx, "taxpayer cache read failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
		}
	}

	// The shared call outlives any single caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	ch := v.group.DoChan(q.Key(), func() (any, error) {
		result, err := v.registry.Lookup(flightCtx, q)
		if err != nil {
			return result, err
		}
		if v.cache != nil && result.Cacheable() {
			if err := v.cache.Save(flightCtx, q, result); err != nil {
				v.logger.WarnContext(flightCtx, "taxpayer cache write failed",
					"request_id", requestcontext.RequestID(flightCtx),
					"error", err,
				)
			}
		}
		return result, nil
	})

	select {
	case <-ctx.Done():
		v.metrics.IncrementOutcome(string(models.TransientFailure))
		return models.LookupResult{Outcome: models.TransientFailure, Detail: "cancelled"}, nil
	case res := <-ch:
		if res.Shared {
			v.metrics.IncrementShared()
		}
		if res.Err != nil {
			if errors.Is(res.Err, sentinel.ErrNotConfigured) {
				return models.LookupResult{}, ErrNotConfigured
			}
			v.logger.WarnContext(ctx, "taxpayer lookup failed",
				"request_id", requestcontext.RequestID(ctx),
				"error", res.Err,
			)
			v.metrics.IncrementOutcome(string(models.TransientFailure))
			return models.LookupResult{Outcome: models.TransientFailure}, nil
		}
		result := res.Val.(models.LookupResult)
		v.metrics.IncrementOutcome(string(result.Outcome))
		return result, nil
	}
}
