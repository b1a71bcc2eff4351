package attendance

import (
	"time"

	"bioclock/internal/attendance/models"
	"bioclock/internal/biometric"
	id "bioclock/pkg/domain"
)

// Override is an operator-recorded attendance that bypasses biometrics.
type Override struct {
	OperatorID string
	Reason     string
}

// MarkRequest is what a subject submits to record attendance.
type MarkRequest struct {
	Type models.Type

	// Probe, when it carries any vector, is matched against the enrollment
	// and its outcome replaces every claimed flag below.
	Probe biometric.Probe

	ClaimedFace           bool
	ClaimedEar            bool
	ClaimedFaceConfidence *float64
	ClaimedEarConfidence  *float64

	Location string
	Notes    string
	Device   models.Device

	// Thresholds, when set, override the configured thresholds for this call.
	Thresholds *biometric.ThresholdOverride

	Override *Override
}

// Input is everything Adjudicate needs. It performs no I/O.
type Input struct {
	Subject         id.SubjectID
	AccountVerified bool
	Request         MarkRequest
	Enrolled        biometric.Enrolled
	Today           []*models.Event
	Thresholds      biometric.Thresholds
	// WorkStart is the offset from local midnight after which a check-in is late.
	WorkStart time.Duration
	Location  *time.Location
	Now       time.Time
}

// Adjudicate decides whether an attendance event may be recorded and builds it.
// Rule priority (fail-fast):
//  1. Enrollment: the account must be verified
//  2. Verification: a matching probe or registered claimed modalities
//  3. Uniqueness: one event per type per day
//  4. Ordering: check-out needs a check-in the same day
//
// An Override skips rules 1 and 2.
func Adjudicate(in Input) (*models.Event, error) {
	req := in.Request
	loc := in.Location
	if loc == nil {
		loc = time.UTC
	}
	local := in.Now.In(loc)

	event := &models.Event{
		ID:        id.NewEventID(),
		Subject:   in.Subject,
		Type:      req.Type,
		Day:       local.Format(models.DayLayout),
		Timestamp: in.Now,
		Location:  req.Location,
		Device:    req.Device,
		Notes:     req.Notes,
	}

	if req.Override != nil {
		event.Method = models.MethodManual
		event.OperatorID = req.Override.OperatorID
		if event.Notes == "" {
			event.Notes = req.Override.Reason
		}
	} else {
		// Rule 1: enrollment
		if !in.AccountVerified {
			return nil, ErrNotEnrolled
		}

		// Rule 2: verification
		if err := applyVerification(event, in); err != nil {
			return nil, err
		}
		event.Method = methodFor(event.FaceVerified, event.EarVerified)
	}

	// Rule 3: uniqueness
	if models.HasType(in.Today, req.Type) {
		return nil, ErrDuplicateEvent
	}

	// Rule 4: ordering
	if req.Type == models.TypeCheckOut && !models.HasType(in.Today, models.TypeCheckIn) {
		return nil, ErrCheckInRequired
	}

	event.Status = statusFor(req.Type, local, in.WorkStart)
	return event, nil
}

func applyVerification(event *models.Event, in Input) error {
	req := in.Request
	if req.Probe.Present() {
		result := biometric.Verify(in.Enrolled, req.Probe, in.Thresholds)
		if !result.Any() {
			return ErrNoVerificationProvided
		}
		event.FaceVerified = result.FaceVerified
		event.FaceConfidence = result.FaceConfidence
		event.EarVerified = result.EarVerified
		event.EarConfidence = result.EarConfidence
		return nil
	}

	if !req.ClaimedFace && !req.ClaimedEar {
		return ErrNoVerificationProvided
	}
	if req.ClaimedFace && !in.Enrolled.HasFace() {
		return ErrNoVerificationProvided
	}
	if req.ClaimedEar && !in.Enrolled.HasEar() {
		return ErrNoVerificationProvided
	}
	event.FaceVerified = req.ClaimedFace
	event.EarVerified = req.ClaimedEar
	event.FaceConfidence = valueOr(req.ClaimedFaceConfidence, 0)
	event.EarConfidence = valueOr(req.ClaimedEarConfidence, 0)
	return nil
}

func methodFor(face, ear bool) models.Method {
	switch {
	case face && ear:
		return models.MethodBoth
	case face:
		return models.MethodFaceOnly
	default:
		return models.MethodEarOnly
	}
}

// statusFor marks a check-in late when it happens strictly after work start
// on the local calendar day. Every other event type is present.
func statusFor(t models.Type, local time.Time, workStart time.Duration) models.Status {
	if t != models.TypeCheckIn {
		return models.StatusPresent
	}
	y, m, d := local.Date()
	start := time.Date(y, m, d, int(workStart/time.Hour), int(workStart%time.Hour/time.Minute), 0, 0, local.Location())
	if local.After(start) {
		return models.StatusLate
	}
	return models.StatusPresent
}

func valueOr(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}
