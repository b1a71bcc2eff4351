package models

import (
	"time"

	"bioclock/internal/biometric"
	id "bioclock/pkg/domain"
)

// Status is the derived enrollment state of a subject.
type Status string

const (
	StatusPending  Status = "pending"
	StatusFaceOnly Status = "face_only"
	StatusEarOnly  Status = "ear_only"
	StatusBoth     Status = "both"
)

// Profile is a subject's enrollment record.
type Profile struct {
	Subject          id.SubjectID
	AccountVerified  bool
	Biometrics       biometric.Enrolled
	FaceRegisteredAt *time.Time
	EarRegisteredAt  *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// NewProfile returns an empty, unverified profile.
func NewProfile(subject id.SubjectID, now time.Time) *Profile {
	return &Profile{
		Subject:   subject,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Status derives the enrollment state from the registered vectors.
func (p *Profile) Status() Status {
	switch {
	case p.Biometrics.HasFace() && p.Biometrics.HasEar():
		return StatusBoth
	case p.Biometrics.HasFace():
		return StatusFaceOnly
	case p.Biometrics.HasEar():
		return StatusEarOnly
	default:
		return StatusPending
	}
}

// RegisterRequest is a registration of one or both modalities.
type RegisterRequest struct {
	Modality biometric.Modality
	Face     biometric.Vector
	Ear      biometric.EarSet
}

// Summary is the public view of a profile; it never carries vectors.
type Summary struct {
	Subject          id.SubjectID `json:"subject_id"`
	Status           Status       `json:"status"`
	AccountVerified  bool         `json:"account_verified"`
	FaceRegistered   bool         `json:"face_registered"`
	EarRegistered    bool         `json:"ear_registered"`
	FaceRegisteredAt *time.Time   `json:"face_registered_at,omitempty"`
	EarRegisteredAt  *time.Time   `json:"ear_registered_at,omitempty"`
}

// Summarize strips the vectors from a profile.
func (p *Profile) Summarize() Summary {
	return Summary{
		Subject:          p.Subject,
		Status:           p.Status(),
		AccountVerified:  p.AccountVerified,
		FaceRegistered:   p.Biometrics.HasFace(),
		EarRegistered:    p.Biometrics.HasEar(),
		FaceRegisteredAt: p.FaceRegisteredAt,
		EarRegisteredAt:  p.EarRegisteredAt,
	}
}
