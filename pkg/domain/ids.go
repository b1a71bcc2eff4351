// Package domain holds typed identifiers shared across modules.
//
// IDs are distinct named types over uuid.UUID so a session ID can never be
// passed where a subject ID is expected. Parsing happens once at trust
// boundaries (HTTP, CLI); everything past that point works with typed values.
package domain

import (
	"strings"

	"github.com/google/uuid"

	dErrors "bioclock/pkg/domain-errors"
)

// SubjectID identifies the employee whose biometrics and attendance are adjudicated.
type SubjectID uuid.UUID

// SessionID identifies a verification session.
type SessionID uuid.UUID

// EventID identifies a recorded attendance event.
type EventID uuid.UUID

func (id SubjectID) String() string { return uuid.UUID(id).String() }
func (id SessionID) String() string { return uuid.UUID(id).String() }
func (id EventID) String() string   { return uuid.UUID(id).String() }

func (id SubjectID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id SessionID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }
func (id EventID) IsNil() bool   { return uuid.UUID(id) == uuid.Nil }

func (id SubjectID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id SessionID) MarshalText() ([]byte, error) { return uuid.UUID(id).MarshalText() }
func (id EventID) MarshalText() ([]byte, error)   { return uuid.UUID(id).MarshalText() }

func (id *SubjectID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *SessionID) UnmarshalText(b []byte) error { return (*uuid.UUID)(id).UnmarshalText(b) }
func (id *EventID) UnmarshalText(b []byte) error   { return (*uuid.UUID)(id).UnmarshalText(b) }

// NewSessionID allocates a random session identifier.
func NewSessionID() SessionID { return SessionID(uuid.New()) }

// NewEventID allocates a random event identifier.
func NewEventID() EventID { return EventID(uuid.New()) }

// ParseSubjectID parses a subject identifier at a trust boundary.
func ParseSubjectID(s string) (SubjectID, error) {
	u, err := parseUUID(s, "subject_id")
	return SubjectID(u), err
}

// ParseSessionID parses a session identifier at a trust boundary.
func ParseSessionID(s string) (SessionID, error) {
	u, err := parseUUID(s, "session_id")
	return SessionID(u), err
}

// ParseEventID parses an event identifier at a trust boundary.
func ParseEventID(s string) (EventID, error) {
	u, err := parseUUID(s, "event_id")
	return EventID(u), err
}

func parseUUID(s, field string) (uuid.UUID, error) {
	if strings.TrimSpace(s) == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" is required")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, "invalid "+field)
	}
	if u == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, field+" must not be nil")
	}
	return u, nil
}
