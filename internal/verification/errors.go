package verification

import dErrors "bioclock/pkg/domain-errors"

var (
	// ErrNotEnrolled matches enrollment.ErrNotEnrolled.
	ErrNotEnrolled = dErrors.New(dErrors.CodeNotEnrolled, "biometric enrollment required")

	ErrSessionNotFound = dErrors.New(dErrors.CodeSessionNotFound, "verification session not found")
	ErrSessionExpired  = dErrors.New(dErrors.CodeSessionExpired, "verification session expired")
	ErrSessionClosed   = dErrors.New(dErrors.CodeSessionClosed, "verification session is closed")
)
