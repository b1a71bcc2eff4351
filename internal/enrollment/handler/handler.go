package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"bioclock/internal/enrollment/models"
	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
	"bioclock/pkg/platform/httputil"
	"bioclock/pkg/requestcontext"
)

// Service is the enrollment behaviour the handler needs.
type Service interface {
	Register(ctx context.Context, subject id.SubjectID, req models.RegisterRequest) (*models.Profile, error)
	Status(ctx context.Context, subject id.SubjectID) (models.Summary, error)
}

// Handler serves biometric registration endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a new enrollment Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts enrollment endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/biometrics/register", h.HandleRegister)
	r.Get("/biometrics/status", h.HandleStatus)
}

// HandleRegister handles POST /biometrics/register.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject := requestcontext.SubjectID(ctx)
	if subject.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	req, ok := httputil.DecodeAndPrepare[RegisterRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	profile, err := h.service.Register(ctx, subject, req.ToModel())
	if err != nil {
		h.logger.WarnContext(ctx, "biometric registration failed",
			"request_id", requestID,
			"subject_id", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, profile.Summarize())
}

// HandleStatus handles GET /biometrics/status.
func (h *Handler) HandleStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject := requestcontext.SubjectID(ctx)
	if subject.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	summary, err := h.service.Status(ctx, subject)
	if err != nil {
		h.logger.ErrorContext(ctx, "biometric status lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"subject_id", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, summary)
}
