package attendance

import dErrors "bioclock/pkg/domain-errors"

var (
	// ErrNotEnrolled matches enrollment.ErrNotEnrolled.
	ErrNotEnrolled = dErrors.New(dErrors.CodeNotEnrolled, "biometric enrollment required")

	ErrNoVerificationProvided = dErrors.New(dErrors.CodeNoVerification, "no successful biometric verification provided")
	ErrDuplicateEvent         = dErrors.New(dErrors.CodeDuplicateEvent, "attendance already marked for today")
	ErrCheckInRequired        = dErrors.New(dErrors.CodeCheckInRequired, "must check in before checking out")
)
