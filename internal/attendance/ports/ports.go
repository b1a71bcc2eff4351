// Package ports declares what the attendance service needs from the outside.
package ports

import (
	"context"

	"bioclock/internal/attendance/models"
	enrollment "bioclock/internal/enrollment/models"
	id "bioclock/pkg/domain"
)

// EnrollmentReader loads a subject's enrollment profile. Unknown subjects
// yield sentinel.ErrNotFound or a not-enrolled domain error.
type EnrollmentReader interface {
	Get(ctx context.Context, subject id.SubjectID) (*enrollment.Profile, error)
}

// EventStore persists attendance events.
type EventStore interface {
	// Insert must be atomic on (subject, day, type) and return
	// sentinel.ErrConflict when an event already holds that key.
	Insert(ctx context.Context, event *models.Event) error
	ListByDay(ctx context.Context, subject id.SubjectID, day string) ([]*models.Event, error)
	// ListRange returns events for days in [from, to], ordered by timestamp.
	ListRange(ctx context.Context, subject id.SubjectID, from, to string) ([]*models.Event, error)
}

// Publisher announces recorded events. Failures never undo a recorded event.
type Publisher interface {
	Publish(ctx context.Context, event *models.Event) error
}
