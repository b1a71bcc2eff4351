// Package enrollment registers the reference vectors that verification
// compares against.
package enrollment

import (
	"context"
	"errors"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"bioclock/internal/biometric"
	"bioclock/internal/enrollment/models"
	"bioclock/internal/enrollment/ports"
	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
	"bioclock/pkg/platform/sentinel"
	"bioclock/pkg/requestcontext"
)

var tracer = otel.Tracer("bioclock/enrollment")

// Service manages biometric enrollment profiles.
type Service struct {
	store  ports.ProfileStore
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New constructs a Service.
func New(store ports.ProfileStore, opts ...Option) (*Service, error) {
	if store == nil {
		return nil, errors.New("profile store is required")
	}
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register stores reference vectors for the requested modalities. A modality
// that is already registered is never overwritten.
func (s *Service) Register(ctx context.Context, subject id.SubjectID, req models.RegisterRequest) (*models.Profile, error) {
	ctx, span := tracer.Start(ctx, "enrollment.Register")
	defer span.End()
	span.SetAttributes(attribute.String("modality", string(req.Modality)))

	if err := validateRegister(req); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	profile, err := s.store.Get(ctx, subject)
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		profile = models.NewProfile(subject, now)
	case err != nil:
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrollment profile")
	}

	if req.Modality.Includes(biometric.ModalityFace) && profile.Biometrics.HasFace() {
		return nil, ErrAlreadyRegistered
	}
	if req.Modality.Includes(biometric.ModalityEar) && profile.Biometrics.HasEar() {
		return nil, ErrAlreadyRegistered
	}

	if req.Modality.Includes(biometric.ModalityFace) {
		profile.Biometrics.Face = req.Face
		profile.FaceRegisteredAt = &now
	}
	if req.Modality.Includes(biometric.ModalityEar) {
		profile.Biometrics.Ear = req.Ear
		profile.EarRegisteredAt = &now
	}
	profile.AccountVerified = true
	profile.UpdatedAt = now

	if err := s.store.Register(ctx, profile, req.Modality); err != nil {
		if errors.Is(err, sentinel.ErrConflict) {
			return nil, ErrAlreadyRegistered
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save enrollment profile")
	}

	s.logger.InfoContext(ctx, "biometric registered",
		"subject_id", subject,
		"modality", req.Modality,
		"status", profile.Status(),
		"request_id", requestcontext.RequestID(ctx),
	)
	return profile, nil
}

// Get returns the subject's profile, or ErrNotEnrolled.
func (s *Service) Get(ctx context.Context, subject id.SubjectID) (*models.Profile, error) {
	profile, err := s.store.Get(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrollment profile")
	}
	return profile, nil
}

// Status returns the vector-free view of the subject's enrollment. Unknown
// subjects report pending rather than an error.
func (s *Service) Status(ctx context.Context, subject id.SubjectID) (models.Summary, error) {
	profile, err := s.store.Get(ctx, subject)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return models.Summary{Subject: subject, Status: models.StatusPending}, nil
		}
		return models.Summary{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load enrollment profile")
	}
	return profile.Summarize(), nil
}

func validateRegister(req models.RegisterRequest) error {
	if _, ok := biometric.ParseModality(string(req.Modality)); !ok {
		return dErrors.New(dErrors.CodeValidation, "type must be one of face, ear, both")
	}
	if req.Modality.Includes(biometric.ModalityFace) && !req.Face.Present() {
		return dErrors.New(dErrors.CodeValidation, "face vector is required")
	}
	if req.Modality.Includes(biometric.ModalityEar) && !req.Ear.Present() {
		return dErrors.New(dErrors.CodeValidation, "at least one ear vector is required")
	}
	return nil
}
