package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bioclock/internal/attendance"
	"bioclock/internal/attendance/models"
	"bioclock/internal/device"
	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
	"bioclock/pkg/platform/httputil"
	"bioclock/pkg/requestcontext"
)

// Service is the attendance behaviour the handler needs.
type Service interface {
	Mark(ctx context.Context, subject id.SubjectID, req attendance.MarkRequest) (*models.Event, error)
	Today(ctx context.Context, subject id.SubjectID) ([]*models.Event, error)
	Summary(ctx context.Context, subject id.SubjectID, period models.Period) (models.Summary, error)
}

// Handler serves attendance endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a new attendance Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts attendance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/attendance", h.HandleMark)
	r.Get("/attendance/today", h.HandleToday)
	r.Get("/attendance/summary", h.HandleSummary)
}

// HandleMark handles POST /attendance.
func (h *Handler) HandleMark(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	caller := requestcontext.SubjectID(ctx)
	if caller.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[MarkRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	subject := caller
	if req.Override != nil {
		if !requestcontext.IsOperator(ctx) {
			httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "operator role required for overrides"))
			return
		}
		subject = req.target
	}

	info := device.Parse(requestcontext.UserAgent(ctx))
	dev := models.Device{Browser: info.Browser, OS: info.OS, Mobile: info.Mobile}

	event, err := h.service.Mark(ctx, subject, req.ToModel(caller, dev))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, event)
}

// HandleToday handles GET /attendance/today.
func (h *Handler) HandleToday(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject := requestcontext.SubjectID(ctx)
	if subject.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	events, err := h.service.Today(ctx, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list today's attendance",
			"request_id", requestcontext.RequestID(ctx),
			"subject_id", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{"events": events})
}

// HandleSummary handles GET /attendance/summary?period=weekly|monthly.
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject := requestcontext.SubjectID(ctx)
	if subject.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	raw := r.URL.Query().Get("period")
	if raw == "" {
		raw = string(models.PeriodWeekly)
	}
	period, ok := models.ParsePeriod(raw)
	if !ok {
		httputil.WriteError(w, dErrors.New(dErrors.CodeValidation, "period must be weekly or monthly"))
		return
	}

	summary, err := h.service.Summary(ctx, subject, period)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to build attendance summary",
			"request_id", requestcontext.RequestID(ctx),
			"subject_id", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summary)
}
