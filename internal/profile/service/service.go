// Package service orchestrates profile reads and writes: classification,
// format checks, registry enrichment, reconciliation and the store sync.
package service

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"fiscalid/internal/audit"
	"fiscalid/internal/profile/completeness"
	"fiscalid/internal/profile/metrics"
	"fiscalid/internal/profile/models"
	"fiscalid/internal/profile/validation"
	"fiscalid/internal/recordstore"
	tpmodels "fiscalid/internal/taxpayer/models"
	dErrors "fiscalid/pkg/domain-errors"
	"fiscalid/pkg/platform/sentinel"
	"fiscalid/pkg/requestcontext"
)

const (
	msgCustomerNotFound = "Cliente no encontrado"
	msgEmailTaken       = "Este email ya está registrado"
	msgEmailAvailable   = "Email disponible"
	msgSaveFailed       = "No se pudieron guardar los datos. Por favor, intente nuevamente."
	msgStoreUnavailable = "No se pudo consultar el cliente. Por favor, intente nuevamente."
)

// TaxpayerValidator looks identity numbers up in the taxpayer registry.
type TaxpayerValidator interface {
	Validate(ctx context.Context, number, kind string) (tpmodels.LookupResult, error)
}

// AuditPublisher receives profile audit events.
type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// View is a profile together with its completeness answer.
type View struct {
	Profile        models.Profile
	Classification models.Classification
	Missing        []string
	Complete       bool
}

func newView(p models.Profile) *View {
	c := p.Classification()
	missing := completeness.Resolve(c, p.Fields())
	return &View{Profile: p, Classification: c, Missing: missing, Complete: len(missing) == 0}
}

// EmailCheck answers whether an email is already registered.
type EmailCheck struct {
	Exists  bool
	Message string
}

type Service struct {
	customers  recordstore.CustomerStore
	metafields recordstore.MetafieldStore
	taxpayers  TaxpayerValidator
	auditor    AuditPublisher
	logger     *slog.Logger
	metrics    *metrics.Metrics
	tracer     trace.Tracer
}

type Option func(*Service)

func WithAuditor(a AuditPublisher) Option {
	return func(s *Service) { s.auditor = a }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) { s.metrics = m }
}

func New(customers recordstore.CustomerStore, metafields recordstore.MetafieldStore, taxpayers TaxpayerValidator, opts ...Option) *Service {
	s := &Service{
		customers:  customers,
		metafields: metafields,
		taxpayers:  taxpayers,
		logger:     slog.Default(),
		tracer:     otel.Tracer("fiscalid/profile/service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get loads the profile and resolves its missing fields.
func (s *Service) Get(ctx context.Context, owner models.OwnerID) (*View, error) {
	p, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	v := newView(p)
	s.metrics.ObserveRead(v.Complete)
	return v, nil
}

// EmailExists reports whether email belongs to a registered customer.
func (s *Service) EmailExists(ctx context.Context, email string) (*EmailCheck, error) {
	if res := validation.Email(email); !res.Valid {
		return nil, dErrors.Validation(res.Errors)
	}
	_, err := s.customers.FindByEmail(ctx, email)
	switch {
	case err == nil:
		return &EmailCheck{Exists: true, Message: msgEmailTaken}, nil
	case errors.Is(err, sentinel.ErrNotFound):
		return &EmailCheck{Exists: false, Message: msgEmailAvailable}, nil
	default:
		s.logger.ErrorContext(ctx, "failed to look up customer by email",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgStoreUnavailable)
	}
}

// load reads the native record and the extended fields concurrently.
func (s *Service) load(ctx context.Context, owner models.OwnerID) (models.Profile, error) {
	var (
		native   models.Native
		extended models.FieldValueMap
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		n, err := s.customers.GetCustomer(gctx, owner)
		native = n
		return err
	})
	g.Go(func() error {
		m, err := s.metafields.Get(gctx, owner, models.Namespace)
		extended = m
		return err
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Profile{}, dErrors.Wrap(err, dErrors.CodeNotFound, msgCustomerNotFound)
		}
		s.logger.ErrorContext(ctx, "failed to load customer profile",
			"request_id", requestcontext.RequestID(ctx),
			"owner_id", owner.String(),
			"error", err,
		)
		return models.Profile{}, dErrors.Wrap(err, dErrors.CodeUnavailable, msgStoreUnavailable)
	}
	if extended == nil {
		extended = models.FieldValueMap{}
	}
	return models.Profile{Native: native, Extended: extended}, nil
}

func (s *Service) emit(ctx context.Context, e audit.Event) {
	if s.auditor == nil {
		return
	}
	e.RequestID = requestcontext.RequestID(ctx)
	if err := s.auditor.Emit(ctx, e); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", e.RequestID,
			"action", string(e.Action),
			"error", err,
		)
	}
}
