package handler

import (
	"strings"

	"bioclock/internal/biometric"
	"bioclock/internal/enrollment/models"
	dErrors "bioclock/pkg/domain-errors"
)

// maxVectorLen bounds a single feature vector.
const maxVectorLen = 4096

// RegisterRequest is the HTTP request body for POST /biometrics/register.
type RegisterRequest struct {
	Type             string    `json:"type"`
	FaceFeatures     []float32 `json:"face_features,omitempty"`
	EarFeatures      []float32 `json:"ear_features,omitempty"`
	EarLeftFeatures  []float32 `json:"ear_left_features,omitempty"`
	EarRightFeatures []float32 `json:"ear_right_features,omitempty"`

	modality biometric.Modality
}

// Validate validates and parses the request.
// Implements the Validatable interface for httputil.DecodeAndPrepare.
func (r *RegisterRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}

	for _, v := range [][]float32{r.FaceFeatures, r.EarFeatures, r.EarLeftFeatures, r.EarRightFeatures} {
		if len(v) > maxVectorLen {
			return dErrors.New(dErrors.CodeValidation, "feature vectors must have at most 4096 elements")
		}
	}

	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		return dErrors.New(dErrors.CodeValidation, "type is required")
	}
	modality, ok := biometric.ParseModality(r.Type)
	if !ok {
		return dErrors.New(dErrors.CodeValidation, "type must be one of face, ear, both")
	}
	r.modality = modality
	return nil
}

// ToModel converts the validated request into a registration.
func (r *RegisterRequest) ToModel() models.RegisterRequest {
	return models.RegisterRequest{
		Modality: r.modality,
		Face:     r.FaceFeatures,
		Ear: biometric.EarSet{
			Unified: r.EarFeatures,
			Left:    r.EarLeftFeatures,
			Right:   r.EarRightFeatures,
		},
	}
}
