package enrollment

import dErrors "bioclock/pkg/domain-errors"

var (
	// ErrNotEnrolled is returned for subjects with no enrollment profile.
	ErrNotEnrolled = dErrors.New(dErrors.CodeNotEnrolled, "biometric enrollment required")

	// ErrAlreadyRegistered refuses to overwrite a registered modality.
	ErrAlreadyRegistered = dErrors.New(dErrors.CodeConflict, "biometric already registered")
)
