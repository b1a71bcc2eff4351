package verification

import (
	"time"

	"bioclock/internal/biometric"
	"bioclock/internal/verification/models"
	dErrors "bioclock/pkg/domain-errors"
)

// TypeFor derives the session type from the registered modalities.
func TypeFor(enrolled biometric.Enrolled) (models.Type, bool) {
	m, ok := enrolled.Modality()
	if !ok {
		return "", false
	}
	switch m {
	case biometric.ModalityFace:
		return models.TypeFace, true
	case biometric.ModalityEar:
		return models.TypeEar, true
	default:
		return models.TypeBoth, true
	}
}

// Expire moves a non-terminal session past its TTL to expired. It reports
// whether the session changed.
func Expire(s *models.Session, now time.Time, ttl time.Duration) bool {
	if s.Status.IsTerminal() || !now.After(s.ExpiresAt(ttl)) {
		return false
	}
	s.Status = models.StatusExpired
	s.UpdatedAt = now
	return true
}

// CheckOpen rejects sessions that can no longer change. It expires the
// session first, so changed reports whether the caller must persist it.
func CheckOpen(s *models.Session, now time.Time, ttl time.Duration) (changed bool, err error) {
	if s.Status == models.StatusExpired {
		return false, ErrSessionExpired
	}
	if s.Status.IsTerminal() {
		return false, ErrSessionClosed
	}
	if Expire(s, now, ttl) {
		return true, ErrSessionExpired
	}
	return false, nil
}

// ApplyPatch applies an update to an open session. A non-terminal status at
// or over the attempt limit becomes failed.
func ApplyPatch(s *models.Session, p models.Patch, now time.Time) error {
	if p.Attempts != nil && *p.Attempts < 0 {
		return dErrors.New(dErrors.CodeValidation, "attempts must not be negative")
	}
	if p.Status != nil {
		if _, ok := models.ParseUpdateStatus(string(*p.Status)); !ok {
			return dErrors.New(dErrors.CodeValidation, "status must be one of in_progress, completed, failed, cancelled")
		}
	}

	if p.Attempts != nil {
		s.Attempts = *p.Attempts
	}
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Data != nil {
		s.Data = p.Data
	}
	settle(s, now)
	return nil
}

// RecordAttempt applies one attempt outcome to an open session.
func RecordAttempt(s *models.Session, success bool, now time.Time) {
	if success {
		s.Status = models.StatusCompleted
	} else {
		s.Attempts++
	}
	settle(s, now)
}

// Satisfies reports whether a verification result meets the session type.
func Satisfies(t models.Type, r biometric.Result) bool {
	switch t {
	case models.TypeFace:
		return r.FaceVerified
	case models.TypeEar:
		return r.EarVerified
	case models.TypeBoth:
		return r.FaceVerified && r.EarVerified
	default:
		return false
	}
}

func settle(s *models.Session, now time.Time) {
	if !s.Status.IsTerminal() && s.MaxAttempts > 0 && s.Attempts >= s.MaxAttempts {
		s.Status = models.StatusFailed
	}
	if s.Status == models.StatusCompleted || s.Status == models.StatusFailed {
		if s.CompletedAt == nil {
			s.CompletedAt = &now
		}
	}
	s.UpdatedAt = now
}
