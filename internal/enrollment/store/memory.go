// Package store holds the enrollment profile stores.
package store

import (
	"context"
	"slices"
	"sync"

	"bioclock/internal/biometric"
	"bioclock/internal/enrollment/models"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
)

// InMemory is a map-backed ProfileStore for tests and single-node dev runs.
type InMemory struct {
	mu       sync.RWMutex
	profiles map[id.SubjectID]*models.Profile
}

func NewInMemory() *InMemory {
	return &InMemory{profiles: make(map[id.SubjectID]*models.Profile)}
}

func (s *InMemory) Get(_ context.Context, subject id.SubjectID) (*models.Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.profiles[subject]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return cloneProfile(p), nil
}

func (s *InMemory) Save(_ context.Context, profile *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profiles[profile.Subject] = cloneProfile(profile)
	return nil
}

// Register applies the modality's vectors from profile under the write lock,
// returning sentinel.ErrConflict if the stored profile already has them.
func (s *InMemory) Register(_ context.Context, profile *models.Profile, modality biometric.Modality) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.profiles[profile.Subject]
	if !ok {
		s.profiles[profile.Subject] = cloneProfile(profile)
		return nil
	}
	face := modality.Includes(biometric.ModalityFace)
	ear := modality.Includes(biometric.ModalityEar)
	if (face && existing.Biometrics.HasFace()) || (ear && existing.Biometrics.HasEar()) {
		return sentinel.ErrConflict
	}

	merged := cloneProfile(existing)
	incoming := cloneProfile(profile)
	if face {
		merged.Biometrics.Face = incoming.Biometrics.Face
		merged.FaceRegisteredAt = incoming.FaceRegisteredAt
	}
	if ear {
		merged.Biometrics.Ear = incoming.Biometrics.Ear
		merged.EarRegisteredAt = incoming.EarRegisteredAt
	}
	merged.AccountVerified = incoming.AccountVerified
	merged.UpdatedAt = incoming.UpdatedAt
	s.profiles[profile.Subject] = merged
	return nil
}

// cloneProfile keeps callers from mutating stored vectors through shared slices.
func cloneProfile(p *models.Profile) *models.Profile {
	c := *p
	c.Biometrics = biometric.Enrolled{
		Face: slices.Clone(p.Biometrics.Face),
		Ear: biometric.EarSet{
			Unified: slices.Clone(p.Biometrics.Ear.Unified),
			Left:    slices.Clone(p.Biometrics.Ear.Left),
			Right:   slices.Clone(p.Biometrics.Ear.Right),
		},
	}
	return &c
}
