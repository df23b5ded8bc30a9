package service

import (
	"context"
	"errors"

	"fiscalid/internal/profile/models"
	tpmodels "fiscalid/internal/taxpayer/models"
	dErrors "fiscalid/pkg/domain-errors"
	"fiscalid/pkg/platform/sentinel"
	"fiscalid/pkg/requestcontext"
)

// enrich fills the registry-derived fields of submitted. It reports whether
// a fresh registry answer was written into the submission.
func (s *Service) enrich(ctx context.Context, c models.Classification, stored, submitted models.FieldValueMap) (bool, error) {
	switch c {
	case models.Taxpayer:
		return s.enrichTaxpayer(ctx, stored, submitted)
	case models.FinalConsumer:
		return s.enrichFinalConsumer(ctx, stored, submitted), nil
	default:
		return false, nil
	}
}

// enrichTaxpayer is strict: a taxpayer must be a verified registrant.
func (s *Service) enrichTaxpayer(ctx context.Context, stored, submitted models.FieldValueMap) (bool, error) {
	number := identityNumber(stored, submitted)
	kind := submitted.Value(models.KeyTaxpayerKind)
	if number == "" || kind == "" {
		return false, nil
	}
	if stored.Value(models.KeyTaxID) == number && stored.Value(models.KeyTaxpayerKind) == kind &&
		!stored.Blank(models.KeyCheckDigit) && !stored.Blank(models.KeyTaxpayerName) {
		submitted[models.KeyCheckDigit] = stored.Value(models.KeyCheckDigit)
		submitted[models.KeyTaxpayerName] = stored.Value(models.KeyTaxpayerName)
		return false, nil
	}

	res, err := s.taxpayers.Validate(ctx, number, kind)
	if err != nil {
		return false, s.registryError(ctx, err)
	}
	switch res.Outcome {
	case tpmodels.Verified:
		submitted[models.KeyCheckDigit] = res.CheckDigit
		submitted[models.KeyTaxpayerName] = res.LegalName
		return true, nil
	case tpmodels.TransientFailure:
		return false, dErrors.New(dErrors.CodeUnavailable, tpmodels.MsgUnavailable)
	case tpmodels.NotAttempted:
		return false, nil
	default:
		s.logger.InfoContext(ctx, "taxpayer registry refused identity number",
			"request_id", requestcontext.RequestID(ctx),
			"outcome", string(res.Outcome),
		)
		return false, dErrors.Validation([]string{res.Message()})
	}
}

// enrichFinalConsumer is lenient: the registry name is a convenience, so
// every failure is logged and ignored. Lookups always use the natural kind.
func (s *Service) enrichFinalConsumer(ctx context.Context, stored, submitted models.FieldValueMap) bool {
	if submitted.Blank(models.KeyTaxpayerKind) {
		submitted[models.KeyTaxpayerKind] = string(tpmodels.KindNatural)
	}
	number := identityNumber(stored, submitted)
	if number == "" {
		return false
	}
	if stored.Value(models.KeyTaxID) == number && !stored.Blank(models.KeyTaxpayerName) {
		if submitted.Blank(models.KeyTaxpayerName) {
			submitted[models.KeyTaxpayerName] = stored.Value(models.KeyTaxpayerName)
		}
		return false
	}

	res, err := s.taxpayers.Validate(ctx, number, string(tpmodels.KindNatural))
	if err != nil {
		s.logger.WarnContext(ctx, "final consumer registry lookup skipped",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return false
	}
	if res.Outcome != tpmodels.Verified {
		s.logger.InfoContext(ctx, "final consumer not found in registry",
			"request_id", requestcontext.RequestID(ctx),
			"outcome", string(res.Outcome),
		)
		return false
	}
	submitted[models.KeyTaxpayerName] = res.LegalName
	return true
}

func (s *Service) registryError(ctx context.Context, err error) error {
	if errors.Is(err, sentinel.ErrNotConfigured) {
		return dErrors.Wrap(err, dErrors.CodeUnavailable, tpmodels.MsgNotConfigured)
	}
	s.logger.ErrorContext(ctx, "taxpayer registry lookup failed",
		"request_id", requestcontext.RequestID(ctx),
		"error", err,
	)
	return dErrors.Wrap(err, dErrors.CodeUnavailable, tpmodels.MsgUnavailable)
}

// identityNumber is the submitted number, or the stored one when the
// submission leaves the immutable field blank.
func identityNumber(stored, submitted models.FieldValueMap) string {
	if n := submitted.Value(models.KeyTaxID); n != "" {
		return n
	}
	return stored.Value(models.KeyTaxID)
}

func enrichedKeys(c models.Classification) []string {
	if c == models.Taxpayer {
		return []string{models.KeyCheckDigit, models.KeyTaxpayerName}
	}
	return []string{models.KeyTaxpayerName}
}
