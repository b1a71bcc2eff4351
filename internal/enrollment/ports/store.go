package ports

import (
	"context"

	"bioclock/internal/biometric"
	"bioclock/internal/enrollment/models"
	id "bioclock/pkg/domain"
)

// ProfileStore persists enrollment profiles.
// Get returns sentinel.ErrNotFound for an unknown subject.
// Register writes only the vectors of the given modality and must fail with
// sentinel.ErrConflict, atomically, when the stored profile already has them.
type ProfileStore interface {
	Get(ctx context.Context, subject id.SubjectID) (*models.Profile, error)
	Save(ctx context.Context, profile *models.Profile) error
	Register(ctx context.Context, profile *models.Profile, modality biometric.Modality) error
}
