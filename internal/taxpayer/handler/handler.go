package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"fiscalid/internal/taxpayer/models"
	"fiscalid/pkg/platform/httputil"
	"fiscalid/pkg/platform/sentinel"
	"fiscalid/pkg/requestcontext"
)

// Service validates an identity number against the registry.
type Service interface {
	Validate(ctx context.Context, number, kind string) (models.LookupResult, error)
}

// Handler serves the storefront's live taxpayer check.
type Handler struct {
	service Service
	logger  *slog.Logger
	guards  []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithGuards wraps the validate route, e.g. with a per-IP rate limit.
func WithGuards(guards ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.guards = append(h.guards, guards...)
	}
}

func New(service Service, logger *slog.Logger, opts ...Option) *Handler {
	h := &Handler{service: service, logger: logger}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *Handler) Register(r chi.Router) {
	r.With(h.guards...).Post("/contribuyente/validate", h.HandleValidate)
}

// HandleValidate handles POST /contribuyente/validate.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Number == "" {
		httputil.WriteJSON(w, http.StatusBadRequest, failure(models.MsgNumberRequired))
		return
	}
	if _, ok := models.ParseKind(req.Kind); !ok {
		httputil.WriteJSON(w, http.StatusBadRequest, failure(models.MsgKindRequired))
		return
	}

	result, err := h.service.Validate(ctx, req.Number, req.Kind)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotConfigured) {
			httputil.WriteJSON(w, http.StatusServiceUnavailable, failure(models.MsgNotConfigured))
			return
		}
		h.logger.ErrorContext(ctx, "taxpayer validation failed",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteJSON(w, http.StatusInternalServerError, failure(msgInternal))
		return
	}

	h.logger.InfoContext(ctx, "taxpayer validated",
		"request_id", requestID,
		"outcome", result.Outcome,
	)
	httputil.WriteJSON(w, statusFor(result.Outcome), FromResult(result))
}

func statusFor(o models.Outcome) int {
	switch o {
	case models.TransientFailure:
		return http.StatusServiceUnavailable
	case models.NotAttempted:
		return http.StatusBadRequest
	default:
		return http.StatusOK
	}
}

// ValidateRequest is the body of POST /contribuyente/validate.
type ValidateRequest struct {
	Number string `json:"dRuc"`
	Kind   string `json:"dTipoRuc"`
}

// Normalize implements httputil.Normalizable.
func (r *ValidateRequest) Normalize() {
	r.Number = models.NormalizeNumber(r.Number)
	r.Kind = strings.TrimSpace(r.Kind)
}

const msgInternal = "Ocurrió un error al procesar la solicitud. Por favor, intente nuevamente más tarde."

// ValidateResponse mirrors the storefront contract.
type ValidateResponse struct {
	Success bool      `json:"success"`
	Data    *Taxpayer `json:"data,omitempty"`
	Error   string    `json:"error,omitempty"`
}

type Taxpayer struct {
	CheckDigit string `json:"dDV"`
	Name       string `json:"dNomb"`
}

func FromResult(r models.LookupResult) ValidateResponse {
	if r.Outcome == models.Verified {
		return ValidateResponse{Success: true, Data: &Taxpayer{CheckDigit: r.CheckDigit, Name: r.LegalName}}
	}
	return failure(r.Message())
}

func failure(msg string) ValidateResponse {
	return ValidateResponse{Error: msg}
}
