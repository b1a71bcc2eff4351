package store

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bioclock/internal/biometric"
	"bioclock/internal/enrollment/models"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
)

type ProfileStoreSuite struct {
	suite.Suite
	store *InMemory
	ctx   context.Context
}

func (s *ProfileStoreSuite) SetupTest() {
	s.store = NewInMemory()
	s.ctx = context.Background()
}

func TestProfileStoreSuite(t *testing.T) {
	suite.Run(t, new(ProfileStoreSuite))
}

func (s *ProfileStoreSuite) TestSaveAndGet() {
	s.Run("returns ErrNotFound for unknown subject", func() {
		_, err := s.store.Get(s.ctx, id.SubjectID(uuid.New()))
		s.Require().ErrorIs(err, sentinel.ErrNotFound)
	})

	s.Run("round-trips a saved profile", func() {
		p := models.NewProfile(id.SubjectID(uuid.New()), time.Now())
		p.Biometrics.Face = biometric.Vector{0.1, 0.2}
		s.Require().NoError(s.store.Save(s.ctx, p))

		found, err := s.store.Get(s.ctx, p.Subject)
		s.Require().NoError(err)
		s.Equal(p.Biometrics.Face, found.Biometrics.Face)
		s.Equal(models.StatusFaceOnly, found.Status())
	})

	s.Run("returned profiles do not alias stored vectors", func() {
		p := models.NewProfile(id.SubjectID(uuid.New()), time.Now())
		p.Biometrics.Ear.Left = biometric.Vector{1, 2, 3}
		s.Require().NoError(s.store.Save(s.ctx, p))

		found, err := s.store.Get(s.ctx, p.Subject)
		s.Require().NoError(err)
		found.Biometrics.Ear.Left[0] = 99

		again, err := s.store.Get(s.ctx, p.Subject)
		s.Require().NoError(err)
		s.Equal(float32(1), again.Biometrics.Ear.Left[0])
	})
}

func (s *ProfileStoreSuite) TestRegister() {
	s.Run("creates the profile when the subject is unknown", func() {
		p := models.NewProfile(id.SubjectID(uuid.New()), time.Now())
		p.Biometrics.Face = biometric.Vector{0.1, 0.2}
		s.Require().NoError(s.store.Register(s.ctx, p, biometric.ModalityFace))

		found, err := s.store.Get(s.ctx, p.Subject)
		s.Require().NoError(err)
		s.Equal(models.StatusFaceOnly, found.Status())
	})

	s.Run("refuses a modality that is already stored", func() {
		p := models.NewProfile(id.SubjectID(uuid.New()), time.Now())
		p.Biometrics.Ear.Unified = biometric.Vector{1, 0}
		s.Require().NoError(s.store.Register(s.ctx, p, biometric.ModalityEar))

		again := models.NewProfile(p.Subject, time.Now())
		again.Biometrics.Ear.Left = biometric.Vector{0, 1}
		err := s.store.Register(s.ctx, again, biometric.ModalityEar)
		s.Require().ErrorIs(err, sentinel.ErrConflict)

		found, err := s.store.Get(s.ctx, p.Subject)
		s.Require().NoError(err)
		s.Equal(biometric.Vector{1, 0}, found.Biometrics.Ear.Unified)
		s.False(found.Biometrics.Ear.Left.Present())
	})

	s.Run("keeps the other modality's stored vectors", func() {
		p := models.NewProfile(id.SubjectID(uuid.New()), time.Now())
		p.Biometrics.Face = biometric.Vector{0.5}
		s.Require().NoError(s.store.Register(s.ctx, p, biometric.ModalityFace))

		// built without the face vector, as a stale read would be
		ear := models.NewProfile(p.Subject, time.Now())
		ear.Biometrics.Ear.Right = biometric.Vector{0.7}
		s.Require().NoError(s.store.Register(s.ctx, ear, biometric.ModalityEar))

		found, err := s.store.Get(s.ctx, p.Subject)
		s.Require().NoError(err)
		s.Equal(biometric.Vector{0.5}, found.Biometrics.Face)
		s.Equal(biometric.Vector{0.7}, found.Biometrics.Ear.Right)
		s.Equal(models.StatusBoth, found.Status())
	})
}
