// Package biometric compares feature vectors and decides face and ear matches.
//
// Everything here is pure: no I/O, no clock, no shared state. Missing or
// malformed input degrades to a non-match with zero confidence rather than
// an error.
package biometric

import "time"

// Vector is a feature vector produced by an external extraction pipeline.
// A nil or empty vector means "not provided".
type Vector []float32

// Present reports whether the vector carries any data.
func (v Vector) Present() bool {
	return len(v) > 0
}

// Modality names a biometric channel.
type Modality string

const (
	ModalityFace Modality = "face"
	ModalityEar  Modality = "ear"
	ModalityBoth Modality = "both"
)

// ParseModality accepts face, ear or both.
func ParseModality(s string) (Modality, bool) {
	switch Modality(s) {
	case ModalityFace, ModalityEar, ModalityBoth:
		return Modality(s), true
	default:
		return "", false
	}
}

// Includes reports whether m covers the other modality.
func (m Modality) Includes(other Modality) bool {
	return m == other || m == ModalityBoth
}

// EarSlot identifies one of the three fixed ear vectors.
type EarSlot string

const (
	EarUnified EarSlot = "unified"
	EarLeft    EarSlot = "left"
	EarRight   EarSlot = "right"
)

// EarSet bundles the unified, left and right ear vectors.
type EarSet struct {
	Unified Vector `json:"unified,omitempty"`
	Left    Vector `json:"left,omitempty"`
	Right   Vector `json:"right,omitempty"`
}

// Present reports whether any ear vector is set.
func (e EarSet) Present() bool {
	return e.Unified.Present() || e.Left.Present() || e.Right.Present()
}

// Slot returns the vector stored in the named slot.
func (e EarSet) Slot(slot EarSlot) Vector {
	switch slot {
	case EarUnified:
		return e.Unified
	case EarLeft:
		return e.Left
	case EarRight:
		return e.Right
	default:
		return nil
	}
}

// ProbeMeta is client-declared metadata. None of it affects matching.
type ProbeMeta struct {
	CapturedAt       time.Time
	ClaimedModality  Modality
	ClientConfidence *float64
}

// Probe is the set of vectors captured for a single verification call.
type Probe struct {
	Face Vector
	Ear  EarSet
	Meta ProbeMeta
}

// Present reports whether the probe carries any vector at all.
func (p Probe) Present() bool {
	return p.Face.Present() || p.Ear.Present()
}

// Enrolled is a subject's registered reference data. Read-only here.
type Enrolled struct {
	Face Vector
	Ear  EarSet
}

func (e Enrolled) HasFace() bool { return e.Face.Present() }
func (e Enrolled) HasEar() bool  { return e.Ear.Present() }

// Registered reports whether reference data exists for the modality.
// ModalityBoth requires both.
func (e Enrolled) Registered(m Modality) bool {
	switch m {
	case ModalityFace:
		return e.HasFace()
	case ModalityEar:
		return e.HasEar()
	case ModalityBoth:
		return e.HasFace() && e.HasEar()
	default:
		return false
	}
}

// Modality reports which modalities are registered. ok is false when nothing is.
func (e Enrolled) Modality() (m Modality, ok bool) {
	switch {
	case e.HasFace() && e.HasEar():
		return ModalityBoth, true
	case e.HasFace():
		return ModalityFace, true
	case e.HasEar():
		return ModalityEar, true
	default:
		return "", false
	}
}

// Result is the outcome of one verification. Confidences are in [0,1].
type Result struct {
	FaceVerified   bool    `json:"face_verified"`
	FaceConfidence float64 `json:"face_confidence"`
	EarVerified    bool    `json:"ear_verified"`
	EarConfidence  float64 `json:"ear_confidence"`
	// EarSlot is the pair that produced EarConfidence; empty when no pair compared.
	EarSlot EarSlot `json:"ear_slot,omitempty"`
}

// Any reports whether at least one modality verified.
func (r Result) Any() bool {
	return r.FaceVerified || r.EarVerified
}

// Thresholds are the per-modality acceptance thresholds.
type Thresholds struct {
	Face float64
	Ear  float64
}
