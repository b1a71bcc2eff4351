// Package models holds attendance records and their roll-ups.
package models

import (
	"time"

	id "bioclock/pkg/domain"
)

// DayLayout formats the calendar day an event belongs to.
const DayLayout = "2006-01-02"

// Type is the kind of attendance event.
type Type string

const (
	TypeCheckIn    Type = "check_in"
	TypeCheckOut   Type = "check_out"
	TypeBreakStart Type = "break_start"
	TypeBreakEnd   Type = "break_end"
)

// ParseType accepts the four known event types.
func ParseType(s string) (Type, bool) {
	switch Type(s) {
	case TypeCheckIn, TypeCheckOut, TypeBreakStart, TypeBreakEnd:
		return Type(s), true
	default:
		return "", false
	}
}

// Status is the attendance standing an event records.
type Status string

const (
	StatusPresent Status = "present"
	StatusLate    Status = "late"
	StatusAbsent  Status = "absent"
	StatusHalfDay Status = "half_day"
	StatusOnLeave Status = "on_leave"
)

// Method records how the subject was verified.
type Method string

const (
	MethodFaceOnly Method = "face_only"
	MethodEarOnly  Method = "ear_only"
	MethodBoth     Method = "both"
	MethodManual   Method = "manual"
)

// Device is what the HTTP layer could tell about the client.
type Device struct {
	Browser string `json:"browser,omitempty"`
	OS      string `json:"os,omitempty"`
	Mobile  bool   `json:"mobile"`
}

// Event is one recorded attendance action. At most one exists per
// (Subject, Day, Type).
type Event struct {
	ID             id.EventID   `json:"id"`
	Subject        id.SubjectID `json:"subject_id"`
	Type           Type         `json:"type"`
	Day            string       `json:"day"`
	Timestamp      time.Time    `json:"timestamp"`
	Status         Status       `json:"status"`
	Method         Method       `json:"method"`
	FaceVerified   bool         `json:"face_verified"`
	FaceConfidence float64      `json:"face_confidence"`
	EarVerified    bool         `json:"ear_verified"`
	EarConfidence  float64      `json:"ear_confidence"`
	Location       string       `json:"location,omitempty"`
	Device         Device       `json:"device"`
	Notes          string       `json:"notes,omitempty"`
	OperatorID     string       `json:"operator_id,omitempty"`
}

// HasType reports whether events contains one of the given type.
func HasType(events []*Event, t Type) bool {
	for _, e := range events {
		if e.Type == t {
			return true
		}
	}
	return false
}
