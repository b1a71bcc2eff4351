// Package verification runs multi-attempt biometric verification sessions.
//
// Sessions move pending -> in_progress -> {completed, failed, cancelled,
// expired}. Expiry is evaluated when a session is read or updated; nothing
// sweeps sessions in the background.
package verification

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"bioclock/internal/biometric"
	enrollment "bioclock/internal/enrollment/models"
	"bioclock/internal/verification/metrics"
	"bioclock/internal/verification/models"
	"bioclock/internal/verification/ports"
	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
	"bioclock/pkg/platform/sentinel"
	"bioclock/pkg/requestcontext"
)

const (
	DefaultMaxAttempts = 3
	DefaultTTL         = 30 * time.Minute
)

var tracer = otel.Tracer("bioclock/verification")

// Service manages verification sessions.
type Service struct {
	sessions    ports.SessionStore
	enrollments ports.EnrollmentReader
	metrics     *metrics.Metrics
	logger      *slog.Logger

	maxAttempts int
	ttl         time.Duration
	thresholds  biometric.ThresholdConfig
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithMaxAttempts sets the failed-attempt limit for new sessions.
func WithMaxAttempts(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxAttempts = n
		}
	}
}

// WithTTL sets how long a session stays open after creation.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		if ttl > 0 {
			s.ttl = ttl
		}
	}
}

func WithThresholds(cfg biometric.ThresholdConfig) Option {
	return func(s *Service) {
		s.thresholds = cfg
	}
}

// New constructs a Service.
func New(sessions ports.SessionStore, enrollments ports.EnrollmentReader, opts ...Option) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if enrollments == nil {
		return nil, errors.New("enrollment reader is required")
	}
	s := &Service{
		sessions:    sessions,
		enrollments: enrollments,
		logger:      slog.Default(),
		maxAttempts: DefaultMaxAttempts,
		ttl:         DefaultTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// TTL returns the configured session lifetime.
func (s *Service) TTL() time.Duration {
	return s.ttl
}

// Start opens an in-progress session typed by the subject's registered modalities.
func (s *Service) Start(ctx context.Context, subject id.SubjectID, data json.RawMessage) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "verification.Start")
	defer span.End()

	profile, err := s.profile(ctx, subject)
	if err != nil {
		return nil, err
	}
	sessionType, ok := TypeFor(profile.Biometrics)
	if !ok {
		return nil, ErrNotEnrolled
	}

	now := requestcontext.Now(ctx)
	session := &models.Session{
		ID:          id.NewSessionID(),
		Subject:     subject,
		Type:        sessionType,
		Status:      models.StatusInProgress,
		MaxAttempts: s.maxAttempts,
		Data:        data,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create verification session")
	}
	span.SetAttributes(attribute.String("session_type", string(sessionType)))

	s.metrics.IncrementStarted(string(sessionType))
	s.logger.InfoContext(ctx, "verification session started",
		"session_id", session.ID,
		"subject_id", subject,
		"type", sessionType,
		"request_id", requestcontext.RequestID(ctx),
	)
	return session, nil
}

// Get returns the subject's session, expiring it first if its TTL has passed.
func (s *Service) Get(ctx context.Context, subject id.SubjectID, sessionID id.SessionID) (*models.Session, error) {
	session, err := s.load(ctx, subject, sessionID)
	if err != nil {
		return nil, err
	}
	if Expire(session, requestcontext.Now(ctx), s.ttl) {
		if err := s.save(ctx, session); err != nil {
			return nil, err
		}
	}
	return session, nil
}

// Update applies a patch to an open session.
func (s *Service) Update(ctx context.Context, subject id.SubjectID, sessionID id.SessionID, patch models.Patch) (*models.Session, error) {
	ctx, span := tracer.Start(ctx, "verification.Update")
	defer span.End()

	session, err := s.open(ctx, subject, sessionID)
	if err != nil {
		return nil, err
	}
	if err := ApplyPatch(session, patch, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

// Attempt is one verification attempt. When Probe carries vectors the
// outcome is computed against the subject's enrollment and Success is ignored.
type Attempt struct {
	Success    bool
	Probe      biometric.Probe
	Thresholds *biometric.ThresholdOverride
}

// AttemptResult is the session after the attempt, plus the match result
// when a probe was verified.
type AttemptResult struct {
	Session *models.Session   `json:"session"`
	Result  *biometric.Result `json:"result,omitempty"`
}

// RecordAttempt counts one attempt against an open session.
func (s *Service) RecordAttempt(ctx context.Context, subject id.SubjectID, sessionID id.SessionID, attempt Attempt) (*AttemptResult, error) {
	ctx, span := tracer.Start(ctx, "verification.RecordAttempt")
	defer span.End()

	session, err := s.open(ctx, subject, sessionID)
	if err != nil {
		return nil, err
	}

	out := &AttemptResult{Session: session}
	success := attempt.Success
	if attempt.Probe.Present() {
		profile, err := s.profile(ctx, subject)
		if err != nil {
			return nil, err
		}
		result := biometric.Verify(profile.Biometrics, attempt.Probe, biometric.ResolveThresholds(s.thresholds, attempt.Thresholds))
		out.Result = &result
		success = Satisfies(session.Type, result)
	}
	span.SetAttributes(attribute.Bool("success", success))

	RecordAttempt(session, success, requestcontext.Now(ctx))
	s.metrics.IncrementAttempt(success)
	if err := s.save(ctx, session); err != nil {
		return nil, err
	}
	return out, nil
}

// open loads a session and rejects it unless it can still change. A session
// found past its TTL is persisted as expired before returning the error.
func (s *Service) open(ctx context.Context, subject id.SubjectID, sessionID id.SessionID) (*models.Session, error) {
	session, err := s.load(ctx, subject, sessionID)
	if err != nil {
		return nil, err
	}
	changed, err := CheckOpen(session, requestcontext.Now(ctx), s.ttl)
	if changed {
		if saveErr := s.save(ctx, session); saveErr != nil {
			return nil, saveErr
		}
	}
	if err != nil {
		return nil, err
	}
	return session, nil
}

// load hides sessions owned by other subjects behind ErrSessionNotFound.
func (s *Service) load(ctx context.Context, subject id.SubjectID, sessionID id.SessionID) (*models.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load verification session")
	}
	if session.Subject != subject {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) save(ctx context.Context, session *models.Session) error {
	if err := s.sessions.Save(ctx, session); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to save verification session")
	}
	if session.Status.IsTerminal() {
		s.metrics.IncrementClosed(string(session.Status))
		s.logger.InfoContext(ctx, "verification session closed",
			"session_id", session.ID,
			"subject_id", session.Subject,
			"status", session.Status,
			"attempts", session.Attempts,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
	return nil
}

func (s *Service) profile(ctx context.Context, subject id.SubjectID) (*enrollment.Profile, error) {
	profile, err := s.enrollments.Get(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) || dErrors.HasCode(err, dErrors.CodeNotEnrolled) {
			return nil, ErrNotEnrolled
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrollment profile")
	}
	return profile, nil
}
