package handler

import (
	"strings"

	"bioclock/internal/attendance"
	"bioclock/internal/attendance/models"
	"bioclock/internal/biometric"
	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
)

const (
	maxVectorLen  = 4096
	maxTextLength = 500
)

// OverrideRequest is an operator recording attendance for another subject.
type OverrideRequest struct {
	SubjectID string `json:"subject_id"`
	Reason    string `json:"reason"`
}

// MarkRequest is the HTTP request body for POST /attendance.
type MarkRequest struct {
	Type string `json:"type"`

	FaceFeatures     []float32 `json:"face_features,omitempty"`
	EarFeatures      []float32 `json:"ear_features,omitempty"`
	EarLeftFeatures  []float32 `json:"ear_left_features,omitempty"`
	EarRightFeatures []float32 `json:"ear_right_features,omitempty"`

	FaceVerified     bool     `json:"face_verified"`
	EarVerified      bool     `json:"ear_verified"`
	FaceConfidence   *float64 `json:"face_confidence,omitempty"`
	EarConfidence    *float64 `json:"ear_confidence,omitempty"`
	VerificationType string   `json:"verification_type,omitempty"`

	Location string `json:"location,omitempty"`
	Notes    string `json:"notes,omitempty"`

	Override *OverrideRequest `json:"override,omitempty"`

	eventType models.Type
	claimed   biometric.Modality
	target    id.SubjectID
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *MarkRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	t, ok := models.ParseType(strings.ToLower(strings.TrimSpace(r.Type)))
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "type must be one of check_in, check_out, break_start, break_end")
	}
	r.eventType = t

	for _, v := range [][]float32{r.FaceFeatures, r.EarFeatures, r.EarLeftFeatures, r.EarRightFeatures} {
		if len(v) > maxVectorLen {
			return dErrors.New(dErrors.CodeValidation, "feature vectors must have at most 4096 elements")
		}
	}
	for _, c := range []*float64{r.FaceConfidence, r.EarConfidence} {
		if c != nil && (*c < 0 || *c > 1) {
			return dErrors.New(dErrors.CodeValidation, "confidence must be between 0 and 1")
		}
	}
	if vt := strings.ToLower(strings.TrimSpace(r.VerificationType)); vt != "" {
		m, ok := biometric.ParseModality(vt)
		if !ok {
			return dErrors.New(dErrors.CodeValidation, "verification_type must be one of face, ear, both")
		}
		r.claimed = m
	}

	r.Location = strings.TrimSpace(r.Location)
	r.Notes = strings.TrimSpace(r.Notes)
	if len(r.Location) > maxTextLength || len(r.Notes) > maxTextLength {
		return dErrors.New(dErrors.CodeValidation, "location and notes must be at most 500 characters")
	}

	if r.Override != nil {
		target, err := id.ParseSubjectID(strings.TrimSpace(r.Override.SubjectID))
		if err != nil {
			return dErrors.New(dErrors.CodeValidation, "override.subject_id must be a valid UUID")
		}
		r.Override.Reason = strings.TrimSpace(r.Override.Reason)
		if r.Override.Reason == "" {
			return dErrors.New(dErrors.CodeValidation, "override.reason is required")
		}
		r.target = target
	}
	return nil
}

// ToModel converts the validated request. operator is the authenticated
// caller, used only when the request carries an override.
func (r *MarkRequest) ToModel(operator id.SubjectID, dev models.Device) attendance.MarkRequest {
	req := attendance.MarkRequest{
		Type: r.eventType,
		Probe: biometric.Probe{
			Face: r.FaceFeatures,
			Ear: biometric.EarSet{
				Unified: r.EarFeatures,
				Left:    r.EarLeftFeatures,
				Right:   r.EarRightFeatures,
			},
			Meta: biometric.ProbeMeta{ClaimedModality: r.claimed},
		},
		ClaimedFace:           r.FaceVerified,
		ClaimedEar:            r.EarVerified,
		ClaimedFaceConfidence: r.FaceConfidence,
		ClaimedEarConfidence:  r.EarConfidence,
		Location:              r.Location,
		Notes:                 r.Notes,
		Device:                dev,
	}
	if r.Override != nil {
		req.Override = &attendance.Override{
			OperatorID: operator.String(),
			Reason:     r.Override.Reason,
		}
	}
	return req
}
