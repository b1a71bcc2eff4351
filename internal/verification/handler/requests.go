package handler

import (
	"encoding/json"
	"strings"

	"bioclock/internal/biometric"
	"bioclock/internal/verification"
	"bioclock/internal/verification/models"
	dErrors "bioclock/pkg/domain-errors"
)

const (
	maxVectorLen   = 4096
	maxSessionData = 64 << 10
)

// StartRequest is the optional body for POST /biometrics/sessions.
type StartRequest struct {
	SessionData json.RawMessage `json:"session_data,omitempty"`
}

func (r *StartRequest) Validate() error {
	if r == nil {
		return nil
	}
	return validateData(r.SessionData)
}

// UpdateRequest is the body for PUT /biometrics/sessions/{id}.
type UpdateRequest struct {
	Attempts    *int            `json:"attempts,omitempty"`
	Status      *string         `json:"status,omitempty"`
	SessionData json.RawMessage `json:"session_data,omitempty"`
}

// Validate validates the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *UpdateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	if r.Attempts == nil && r.Status == nil && r.SessionData == nil {
		return dErrors.New(dErrors.CodeValidation, "at least one of attempts, status, session_data is required")
	}
	if r.Status != nil {
		normalized := strings.ToLower(strings.TrimSpace(*r.Status))
		r.Status = &normalized
	}
	return validateData(r.SessionData)
}

// ToModel converts the validated request. Status values are checked by the
// session machine.
func (r *UpdateRequest) ToModel() models.Patch {
	patch := models.Patch{Attempts: r.Attempts, Data: r.SessionData}
	if r.Status != nil {
		status := models.Status(*r.Status)
		patch.Status = &status
	}
	return patch
}

// AttemptRequest is the body for POST /biometrics/sessions/{id}/attempts.
// Feature vectors, when present, decide the outcome instead of Success.
type AttemptRequest struct {
	Success          bool      `json:"success"`
	FaceFeatures     []float32 `json:"face_features,omitempty"`
	EarFeatures      []float32 `json:"ear_features,omitempty"`
	EarLeftFeatures  []float32 `json:"ear_left_features,omitempty"`
	EarRightFeatures []float32 `json:"ear_right_features,omitempty"`
}

func (r *AttemptRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	for _, v := range [][]float32{r.FaceFeatures, r.EarFeatures, r.EarLeftFeatures, r.EarRightFeatures} {
		if len(v) > maxVectorLen {
			return dErrors.New(dErrors.CodeValidation, "feature vectors must have at most 4096 elements")
		}
	}
	return nil
}

func (r *AttemptRequest) ToModel() verification.Attempt {
	return verification.Attempt{
		Success: r.Success,
		Probe: biometric.Probe{
			Face: r.FaceFeatures,
			Ear: biometric.EarSet{
				Unified: r.EarFeatures,
				Left:    r.EarLeftFeatures,
				Right:   r.EarRightFeatures,
			},
		},
	}
}

func validateData(data json.RawMessage) error {
	if len(data) > maxSessionData {
		return dErrors.New(dErrors.CodeValidation, "session_data is too large")
	}
	if len(data) > 0 && !json.Valid(data) {
		return dErrors.New(dErrors.CodeValidation, "session_data must be valid JSON")
	}
	return nil
}
