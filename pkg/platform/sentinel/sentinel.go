// Package sentinel holds infrastructure facts that stores report.
//
// Stores return these (optionally wrapped with %w) and services translate
// them into domain errors; a store never decides what a fact means to a user.
package sentinel

import "errors"

var (
	// ErrNotFound: no record exists for the key.
	ErrNotFound = errors.New("not found")
	// ErrConflict: a uniqueness constraint rejected the write.
	ErrConflict = errors.New("conflict")
	// ErrUnavailable: the backing service could not be reached.
	ErrUnavailable = errors.New("unavailable")
)
