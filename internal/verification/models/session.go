// Package models holds verification sessions.
package models

import (
	"encoding/json"
	"time"

	id "bioclock/pkg/domain"
)

// Type is the modality a session verifies.
type Type string

const (
	TypeFace Type = "face"
	TypeEar  Type = "ear"
	TypeBoth Type = "both"
)

// Status is a session lifecycle state.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusCancelled  Status = "cancelled"
	StatusExpired    Status = "expired"
)

// IsTerminal reports whether no further transition is allowed.
func (s Status) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusCancelled, StatusExpired:
		return true
	default:
		return false
	}
}

// ParseUpdateStatus accepts the statuses a caller may request.
func ParseUpdateStatus(s string) (Status, bool) {
	switch Status(s) {
	case StatusInProgress, StatusCompleted, StatusFailed, StatusCancelled:
		return Status(s), true
	default:
		return "", false
	}
}

// Session is one multi-attempt verification.
type Session struct {
	ID          id.SessionID    `json:"id"`
	Subject     id.SubjectID    `json:"subject_id"`
	Type        Type            `json:"type"`
	Status      Status          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Data        json.RawMessage `json:"session_data,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
	CompletedAt *time.Time      `json:"completed_at,omitempty"`
}

// ExpiresAt is when a non-terminal session stops accepting updates.
func (s *Session) ExpiresAt(ttl time.Duration) time.Time {
	return s.CreatedAt.Add(ttl)
}

// Patch is a partial update. Nil fields are left alone.
type Patch struct {
	Attempts *int
	Status   *Status
	Data     json.RawMessage
}
