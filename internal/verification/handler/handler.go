package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"bioclock/internal/verification"
	"bioclock/internal/verification/models"
	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
	"bioclock/pkg/platform/httputil"
	"bioclock/pkg/requestcontext"
)

// Service is the verification behaviour the handler needs.
type Service interface {
	Start(ctx context.Context, subject id.SubjectID, data json.RawMessage) (*models.Session, error)
	Get(ctx context.Context, subject id.SubjectID, sessionID id.SessionID) (*models.Session, error)
	Update(ctx context.Context, subject id.SubjectID, sessionID id.SessionID, patch models.Patch) (*models.Session, error)
	RecordAttempt(ctx context.Context, subject id.SubjectID, sessionID id.SessionID, attempt verification.Attempt) (*verification.AttemptResult, error)
	TTL() time.Duration
}

// SessionResponse adds the expiry deadline to a session.
type SessionResponse struct {
	*models.Session
	ExpiresAt time.Time `json:"expires_at"`
}

// Handler serves verification session endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New creates a new verification Handler.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts verification endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/biometrics/sessions", h.HandleStart)
	r.Get("/biometrics/sessions/{id}", h.HandleGet)
	r.Put("/biometrics/sessions/{id}", h.HandleUpdate)
	r.Post("/biometrics/sessions/{id}/attempts", h.HandleAttempt)
}

// HandleStart handles POST /biometrics/sessions. The body is optional.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, ok := h.subject(w, ctx)
	if !ok {
		return
	}

	var data json.RawMessage
	if r.ContentLength != 0 {
		req, ok := httputil.DecodeAndPrepare[StartRequest](w, r, h.logger, ctx, requestID)
		if !ok {
			return
		}
		data = req.SessionData
	}

	session, err := h.service.Start(ctx, subject, data)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to start verification session",
			"request_id", requestID,
			"subject_id", subject,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, h.response(session))
}

// HandleGet handles GET /biometrics/sessions/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	subject, ok := h.subject(w, ctx)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}

	session, err := h.service.Get(ctx, subject, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.response(session))
}

// HandleUpdate handles PUT /biometrics/sessions/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, ok := h.subject(w, ctx)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[UpdateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	session, err := h.service.Update(ctx, subject, sessionID, req.ToModel())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, h.response(session))
}

// HandleAttempt handles POST /biometrics/sessions/{id}/attempts.
func (h *Handler) HandleAttempt(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	subject, ok := h.subject(w, ctx)
	if !ok {
		return
	}
	sessionID, ok := sessionIDParam(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AttemptRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.RecordAttempt(ctx, subject, sessionID, req.ToModel())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, map[string]any{
		"session": h.response(result.Session),
		"result":  result.Result,
	})
}

func (h *Handler) response(session *models.Session) SessionResponse {
	return SessionResponse{Session: session, ExpiresAt: session.ExpiresAt(h.service.TTL())}
}

func (h *Handler) subject(w http.ResponseWriter, ctx context.Context) (id.SubjectID, bool) {
	subject := requestcontext.SubjectID(ctx)
	if subject.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return id.SubjectID{}, false
	}
	return subject, true
}

func sessionIDParam(w http.ResponseWriter, r *http.Request) (id.SessionID, bool) {
	sessionID, err := id.ParseSessionID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid session id"))
		return id.SessionID{}, false
	}
	return sessionID, true
}
