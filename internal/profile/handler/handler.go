// Package handler exposes customer profiles to the storefront.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fiscalid/internal/profile/models"
	"fiscalid/internal/profile/service"
	dErrors "fiscalid/pkg/domain-errors"
	"fiscalid/pkg/platform/httputil"
	"fiscalid/pkg/requestcontext"
)

// Service is the profile orchestration the handler needs.
type Service interface {
	Get(ctx context.Context, owner models.OwnerID) (*service.View, error)
	Create(ctx context.Context, fields models.FieldValueMap) (*service.View, error)
	Update(ctx context.Context, owner models.OwnerID, fields models.FieldValueMap) (*service.View, error)
	EmailExists(ctx context.Context, email string) (*service.EmailCheck, error)
}

type Handler struct {
	service     Service
	logger      *slog.Logger
	writeGuards []func(http.Handler) http.Handler
}

type Option func(*Handler)

// WithWriteGuards wraps the POST routes. Reads are left unguarded.
func WithWriteGuards(guards ...func(http.Handler) http.Handler) Option {
	return func(h *Handler) {
		h.writeGuards = append(h.writeGuards, guards...)
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
	r.Route("/customers", func(r chi.Router) {
		r.Get("/get", h.HandleGet)
		r.Group(func(r chi.Router) {
			r.Use(h.writeGuards...)
			r.Post("/create", h.HandleCreate)
			r.Post("/update", h.HandleUpdate)
			r.Post("/email-check", h.HandleEmailCheck)
		})
	})
}

// HandleGet handles GET /customers/get?customer_id=.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	raw := r.URL.Query().Get("customer_id")
	if raw == "" {
		raw = r.URL.Query().Get("id")
	}
	owner, err := models.ParseOwnerID(raw)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	view, err := h.service.Get(ctx, owner)
	if err != nil {
		h.logFailure(ctx, "failed to get customer profile", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGetResponse(view))
}

// HandleCreate handles POST /customers/create.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	view, err := h.service.Create(ctx, req.Fields())
	if err != nil {
		h.logFailure(ctx, "failed to create customer profile", requestID, err)
		writeFailure(w, err)
		return
	}

	h.logger.InfoContext(ctx, "customer profile created",
		"request_id", requestID,
		"owner_id", view.Profile.Native.ID.String(),
		"classification", view.Classification.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, written(view))
}

// HandleUpdate handles POST /customers/update.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ProfileRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	owner, err := models.ParseOwnerID(req.CustomerID)
	if err != nil {
		writeFailure(w, err)
		return
	}

	view, err := h.service.Update(ctx, owner, req.Fields())
	if err != nil {
		h.logFailure(ctx, "failed to update customer profile", requestID, err)
		writeFailure(w, err)
		return
	}

	h.logger.InfoContext(ctx, "customer profile updated",
		"request_id", requestID,
		"owner_id", owner.String(),
		"classification", view.Classification.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, written(view))
}

// HandleEmailCheck handles POST /customers/email-check.
func (h *Handler) HandleEmailCheck(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[EmailCheckRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	if req.Email == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "Email is required"))
		return
	}

	check, err := h.service.EmailExists(ctx, req.Email)
	if err != nil {
		h.logFailure(ctx, "failed to check email", requestID, err)
		httputil.WriteError(w, err)
		return
	}
	resp := EmailCheckResponse{Exists: check.Exists}
	if check.Exists {
		resp.Message = check.Message
	}
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// writeFailure renders a write error as {success:false, errors:[...]}.
func writeFailure(w http.ResponseWriter, err error) {
	httputil.WriteJSON(w, httputil.StatusFor(dErrors.CodeOf(err)), WriteResponse{
		Success: false,
		Errors:  dErrors.Messages(err),
	})
}

// logFailure records the outcome code only. Causes are logged by the service.
func (h *Handler) logFailure(ctx context.Context, msg, requestID string, err error) {
	level := slog.LevelInfo
	if code := dErrors.CodeOf(err); code == dErrors.CodeInternal {
		level = slog.LevelError
	}
	h.logger.Log(ctx, level, msg,
		"request_id", requestID,
		"code", string(dErrors.CodeOf(err)),
	)
}
