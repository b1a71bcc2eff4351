// Package ports declares what the verification service needs from the outside.
package ports

import (
	"context"

	enrollment "bioclock/internal/enrollment/models"
	"bioclock/internal/verification/models"
	id "bioclock/pkg/domain"
)

// SessionStore persists sessions. Save is last-write-wins.
type SessionStore interface {
	Create(ctx context.Context, session *models.Session) error
	// FindByID returns sentinel.ErrNotFound for unknown sessions.
	FindByID(ctx context.Context, sessionID id.SessionID) (*models.Session, error)
	Save(ctx context.Context, session *models.Session) error
}

// EnrollmentReader loads a subject's enrollment profile.
type EnrollmentReader interface {
	Get(ctx context.Context, subject id.SubjectID) (*enrollment.Profile, error)
}
