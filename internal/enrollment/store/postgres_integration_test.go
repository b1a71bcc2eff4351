//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bioclock/internal/biometric"
	"bioclock/internal/enrollment/models"
	"bioclock/internal/enrollment/store"
	id "bioclock/pkg/domain"
	"bioclock/pkg/platform/sentinel"
	"bioclock/pkg/testutil/containers"
)

type PostgresStoreSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.Postgres
}

func TestPostgresStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PostgresStoreSuite))
}

func (s *PostgresStoreSuite) SetupSuite() {
	mgr := containers.GetManager()
	s.postgres = mgr.GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	err := s.postgres.TruncateTables(context.Background(), "biometric_profiles")
	s.Require().NoError(err)
}

func (s *PostgresStoreSuite) TestVectorsRoundTrip() {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	p := models.NewProfile(id.SubjectID(uuid.New()), now)
	p.AccountVerified = true
	p.Biometrics = biometric.Enrolled{
		Face: biometric.Vector{0.1, 0.2, 0.3},
		Ear:  biometric.EarSet{Left: biometric.Vector{0.5, 0.5}},
	}
	p.FaceRegisteredAt = &now
	s.Require().NoError(s.store.Save(ctx, p))

	found, err := s.store.Get(ctx, p.Subject)
	s.Require().NoError(err)
	s.True(found.AccountVerified)
	s.Equal(p.Biometrics.Face, found.Biometrics.Face)
	s.Equal(p.Biometrics.Ear.Left, found.Biometrics.Ear.Left)
	s.False(found.Biometrics.Ear.Unified.Present())
	s.False(found.Biometrics.Ear.Right.Present())
	s.Require().NotNil(found.FaceRegisteredAt)
	s.True(now.Equal(*found.FaceRegisteredAt))
	s.Nil(found.EarRegisteredAt)
	s.Equal(models.StatusBoth, found.Status())
}

func (s *PostgresStoreSuite) TestSaveUpserts() {
	ctx := context.Background()
	p := models.NewProfile(id.SubjectID(uuid.New()), time.Now())
	s.Require().NoError(s.store.Save(ctx, p))

	p.Biometrics.Ear.Unified = biometric.Vector{1, 0}
	p.AccountVerified = true
	s.Require().NoError(s.store.Save(ctx, p))

	found, err := s.store.Get(ctx, p.Subject)
	s.Require().NoError(err)
	s.Equal(models.StatusEarOnly, found.Status())
}

func (s *PostgresStoreSuite) TestUnknownSubject() {
	_, err := s.store.Get(context.Background(), id.SubjectID(uuid.New()))
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *PostgresStoreSuite) TestRegisterIsConditional() {
	ctx := context.Background()
	p := models.NewProfile(id.SubjectID(uuid.New()), time.Now())
	p.Biometrics.Face = biometric.Vector{0.1, 0.2}
	s.Require().NoError(s.store.Register(ctx, p, biometric.ModalityFace))

	overwrite := models.NewProfile(p.Subject, time.Now())
	overwrite.Biometrics.Face = biometric.Vector{0.9, 0.9}
	s.Require().ErrorIs(s.store.Register(ctx, overwrite, biometric.ModalityFace), sentinel.ErrConflict)

	ear := models.NewProfile(p.Subject, time.Now())
	ear.Biometrics.Ear.Unified = biometric.Vector{1, 0}
	s.Require().NoError(s.store.Register(ctx, ear, biometric.ModalityEar))

	found, err := s.store.Get(ctx, p.Subject)
	s.Require().NoError(err)
	s.Equal(biometric.Vector{0.1, 0.2}, found.Biometrics.Face)
	s.Equal(biometric.Vector{1, 0}, found.Biometrics.Ear.Unified)
	s.Equal(models.StatusBoth, found.Status())
}
