package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"fiscalid/internal/audit"
	"fiscalid/internal/profile/completeness"
	"fiscalid/internal/profile/models"
	"fiscalid/internal/profile/reconcile"
	"fiscalid/internal/profile/validation"
	"fiscalid/internal/recordstore"
	dErrors "fiscalid/pkg/domain-errors"
	"fiscalid/pkg/email"
	"fiscalid/pkg/platform/sentinel"
	"fiscalid/pkg/requestcontext"
)

// draft is a validated, enriched submission with its plan.
type draft struct {
	submitted models.FieldValueMap
	oldClass  models.Classification
	newClass  models.Classification
	plan      models.SyncPlan
	// effective is the flattened profile as it will look once the plan runs.
	effective models.FieldValueMap
	enriched  bool
}

// Create registers a new customer from a full submission.
func (s *Service) Create(ctx context.Context, raw models.FieldValueMap) (v *View, err error) {
	ctx, span := s.tracer.Start(ctx, "profile.create")
	start := time.Now()
	defer func() { s.finish(span, "create", start, err) }()

	addr := email.Normalize(raw[models.KeyEmail])
	if email.IsValid(addr) {
		if _, err := s.customers.FindByEmail(ctx, addr); err == nil {
			return nil, dErrors.New(dErrors.CodeConflict, msgEmailTaken)
		} else if !errors.Is(err, sentinel.ErrNotFound) {
			s.logger.ErrorContext(ctx, "failed to look up customer by email",
				"request_id", requestcontext.RequestID(ctx),
				"error", err,
			)
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgStoreUnavailable)
		}
	}

	empty := models.Profile{Extended: models.FieldValueMap{}}
	d, err := s.prepare(ctx, "", empty, raw)
	if err != nil {
		return nil, err
	}

	native, err := s.customers.CreateCustomer(ctx, models.Native{
		FirstName: d.effective.Value(models.KeyFirstName),
		LastName:  d.effective.Value(models.KeyLastName),
		Email:     d.effective.Value(models.KeyEmail),
	})
	if err != nil {
		if errors.Is(err, recordstore.ErrEmailTaken) {
			return nil, dErrors.Wrap(err, dErrors.CodeConflict, msgEmailTaken)
		}
		s.logger.ErrorContext(ctx, "failed to create customer",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgSaveFailed)
	}
	span.SetAttributes(attribute.String("owner_id", native.ID.String()))

	if err := s.applySets(ctx, native.ID, d.plan); err != nil {
		s.rollbackCreate(ctx, native.ID)
		return nil, err
	}

	s.emit(ctx, audit.Event{
		Action:         audit.ActionProfileCreated,
		OwnerID:        native.ID.String(),
		Classification: d.newClass.String(),
		SetKeys:        d.plan.SetKeys(),
	})
	s.emitEnrichment(ctx, native.ID, d)
	return newView(models.Profile{Native: native, Extended: d.effective.Extended()}), nil
}

// Update reconciles a full submission against the stored profile. Nothing is
// written when the submission is rejected or invalid.
func (s *Service) Update(ctx context.Context, owner models.OwnerID, raw models.FieldValueMap) (v *View, err error) {
	ctx, span := s.tracer.Start(ctx, "profile.update", trace.WithAttributes(attribute.String("owner_id", owner.String())))
	start := time.Now()
	defer func() { s.finish(span, "update", start, err) }()

	persisted, err := s.load(ctx, owner)
	if err != nil {
		return nil, err
	}
	d, err := s.prepare(ctx, owner, persisted, raw)
	if err != nil {
		return nil, err
	}

	// Native fields go first: a failed native write leaves nothing applied.
	native := persisted.Native
	native.FirstName = d.effective.Value(models.KeyFirstName)
	native.LastName = d.effective.Value(models.KeyLastName)
	if native != persisted.Native {
		if err := s.customers.UpdateNative(ctx, native); err != nil {
			s.logger.ErrorContext(ctx, "failed to update customer",
				"request_id", requestcontext.RequestID(ctx),
				"owner_id", owner.String(),
				"error", err,
			)
			return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, msgSaveFailed)
		}
	}

	if err := s.applySets(ctx, owner, d.plan); err != nil {
		return nil, err
	}

	s.applyDeletes(ctx, owner, d)

	s.emit(ctx, audit.Event{
		Action:         audit.ActionProfileUpdated,
		OwnerID:        owner.String(),
		Classification: d.newClass.String(),
		SetKeys:        d.plan.SetKeys(),
		DeletedKeys:    d.plan.DeleteOps,
	})
	s.emitEnrichment(ctx, owner, d)
	return newView(models.Profile{Native: native, Extended: d.effective.Extended()}), nil
}

// prepare runs every check that must pass before anything is written.
func (s *Service) prepare(ctx context.Context, owner models.OwnerID, persisted models.Profile, raw models.FieldValueMap) (*draft, error) {
	stored := persisted.Fields()
	d := &draft{
		submitted: validation.Normalize(raw),
		oldClass:  persisted.Classification(),
	}
	d.newClass = models.ClassifyRecord(d.submitted)
	if d.newClass.Known() {
		d.submitted[models.KeyCustomerType] = d.newClass.TypeCode()
		d.submitted[models.KeyResidesInPanama] = models.FormatResidency(d.newClass.Resident())
	}

	if err := reconcile.CheckConstraints(stored, d.submitted, d.oldClass, d.newClass); err != nil {
		return nil, s.rejected(ctx, owner, d.newClass, err)
	}
	if res := validation.ValidateSubmission(d.newClass, d.submitted, requestcontext.Now(ctx)); !res.Valid {
		return nil, dErrors.Validation(res.Errors)
	}

	enriched, err := s.enrich(ctx, d.newClass, stored, d.submitted)
	if err != nil {
		return nil, err
	}
	d.enriched = enriched

	plan, err := reconcile.Plan(stored, d.submitted, d.oldClass, d.newClass)
	if err != nil {
		return nil, s.rejected(ctx, owner, d.newClass, err)
	}
	d.plan = plan

	d.effective = plan.ApplyTo(stored)
	for _, k := range []string{models.KeyFirstName, models.KeyLastName} {
		if v, ok := d.submitted[k]; ok {
			d.effective[k] = v
		}
	}
	// Email is written on create only.
	if stored.Blank(models.KeyEmail) {
		d.effective[models.KeyEmail] = d.submitted.Value(models.KeyEmail)
	}

	if missing := completeness.Resolve(d.newClass, d.effective); len(missing) > 0 {
		return nil, dErrors.Validation(completeness.Messages(missing))
	}
	return d, nil
}

// rejected maps a planner rejection onto the error taxonomy.
func (s *Service) rejected(ctx context.Context, owner models.OwnerID, c models.Classification, err error) error {
	var rej *reconcile.Rejection
	if !errors.As(err, &rej) {
		return dErrors.Wrap(err, dErrors.CodeInternal, "reconcile failed")
	}
	if rej.Reason == reconcile.ReasonClassificationRequired {
		return dErrors.Validation([]string{rej.Message()})
	}

	s.metrics.IncrementRejection(string(rej.Reason))
	s.logger.WarnContext(ctx, "profile submission rejected",
		"request_id", requestcontext.RequestID(ctx),
		"owner_id", owner.String(),
		"reason", string(rej.Reason),
		"field", rej.Field,
	)
	if owner != "" {
		s.emit(ctx, audit.Event{
			Action:         audit.ActionUpdateRejected,
			OwnerID:        owner.String(),
			Classification: c.String(),
			Reason:         rej.Error(),
		})
	}
	return dErrors.Wrap(rej, dErrors.CodeConflict, rej.Message())
}

// applySets writes every set op or fails the request.
func (s *Service) applySets(ctx context.Context, owner models.OwnerID, plan models.SyncPlan) error {
	if len(plan.SetOps) == 0 {
		return nil
	}
	err := s.metafields.Set(ctx, owner, models.Namespace, plan.SetOps)
	if err == nil {
		return nil
	}
	rejectedKeys := plan.SetKeys()
	var batch *recordstore.BatchError
	if errors.As(err, &batch) {
		rejectedKeys = nil
		for _, ue := range batch.Errors {
			rejectedKeys = append(rejectedKeys, ue.Key)
		}
	}
	s.logger.ErrorContext(ctx, "failed to write metafields",
		"request_id", requestcontext.RequestID(ctx),
		"owner_id", owner.String(),
		"keys", rejectedKeys,
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeUnavailable, msgSaveFailed)
}

// rollbackCreate removes a customer whose extended fields could not be
// written, so the email stays free for a retry.
func (s *Service) rollbackCreate(ctx context.Context, owner models.OwnerID) {
	if err := s.customers.DeleteCustomer(context.WithoutCancel(ctx), owner); err != nil {
		s.logger.ErrorContext(ctx, "failed to roll back customer after metafield write failure",
			"request_id", requestcontext.RequestID(ctx),
			"owner_id", owner.String(),
			"error", err,
		)
	}
}

// applyDeletes is best effort: a stale metafield is not worth failing a
// write that already succeeded.
func (s *Service) applyDeletes(ctx context.Context, owner models.OwnerID, d *draft) {
	if len(d.plan.DeleteOps) == 0 {
		return
	}
	err := s.metafields.Delete(ctx, owner, models.Namespace, d.plan.DeleteOps)
	if err == nil {
		return
	}
	s.metrics.IncrementCleanupFailure()
	s.logger.WarnContext(ctx, "failed to delete stale metafields",
		"request_id", requestcontext.RequestID(ctx),
		"owner_id", owner.String(),
		"keys", d.plan.DeleteOps,
		"error", err,
	)
	s.emit(ctx, audit.Event{
		Action:         audit.ActionCleanupFailed,
		OwnerID:        owner.String(),
		Classification: d.newClass.String(),
		DeletedKeys:    d.plan.DeleteOps,
		Reason:         err.Error(),
	})
}

func (s *Service) emitEnrichment(ctx context.Context, owner models.OwnerID, d *draft) {
	if !d.enriched {
		return
	}
	s.emit(ctx, audit.Event{
		Action:         audit.ActionTaxpayerEnrichment,
		OwnerID:        owner.String(),
		Classification: d.newClass.String(),
		SetKeys:        enrichedKeys(d.newClass),
	})
}

func (s *Service) finish(span trace.Span, operation string, start time.Time, err error) {
	result := "ok"
	if err != nil {
		result = string(dErrors.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, result)
	}
	span.End()
	s.metrics.ObserveWrite(operation, result, time.Since(start))
}
