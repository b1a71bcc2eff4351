package enrollment

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bioclock/internal/biometric"
	"bioclock/internal/enrollment/models"
	"bioclock/internal/enrollment/store"
	id "bioclock/pkg/domain"
	dErrors "bioclock/pkg/domain-errors"
	"bioclock/pkg/platform/sentinel"
	"bioclock/pkg/requestcontext"
)

type ServiceSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	store   *store.InMemory
	service *Service
	subject id.SubjectID
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.now = time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	svc, err := New(s.store)
	s.Require().NoError(err)
	s.service = svc
	s.subject = id.SubjectID(uuid.New())
}

func (s *ServiceSuite) TestNewRequiresStore() {
	_, err := New(nil)
	s.Error(err)
}

// =============================================================================
// Register
// =============================================================================

func (s *ServiceSuite) TestRegister() {
	s.Run("face registration creates a verified profile", func() {
		p, err := s.service.Register(s.ctx, s.subject, models.RegisterRequest{
			Modality: biometric.ModalityFace,
			Face:     biometric.Vector{0.1, 0.2},
		})
		s.Require().NoError(err)
		s.True(p.AccountVerified)
		s.Equal(models.StatusFaceOnly, p.Status())
		s.Require().NotNil(p.FaceRegisteredAt)
		s.Equal(s.now, *p.FaceRegisteredAt)
		s.Nil(p.EarRegisteredAt)
	})

	s.Run("ear can be added after face", func() {
		p, err := s.service.Register(s.ctx, s.subject, models.RegisterRequest{
			Modality: biometric.ModalityEar,
			Ear:      biometric.EarSet{Left: biometric.Vector{0.3, 0.4}},
		})
		s.Require().NoError(err)
		s.Equal(models.StatusBoth, p.Status())
	})

	s.Run("re-registration is refused", func() {
		_, err := s.service.Register(s.ctx, s.subject, models.RegisterRequest{
			Modality: biometric.ModalityFace,
			Face:     biometric.Vector{0.9, 0.9},
		})
		s.ErrorIs(err, ErrAlreadyRegistered)

		p, err := s.service.Get(s.ctx, s.subject)
		s.Require().NoError(err)
		s.Equal(biometric.Vector{0.1, 0.2}, p.Biometrics.Face)
	})
}

func (s *ServiceSuite) TestRegisterValidation() {
	cases := []struct {
		name string
		req  models.RegisterRequest
	}{
		{"unknown modality", models.RegisterRequest{Modality: "iris", Face: biometric.Vector{1}}},
		{"face without vector", models.RegisterRequest{Modality: biometric.ModalityFace}},
		{"ear without vectors", models.RegisterRequest{Modality: biometric.ModalityEar}},
		{"both missing ear", models.RegisterRequest{Modality: biometric.ModalityBoth, Face: biometric.Vector{1}}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Register(s.ctx, s.subject, tc.req)
			s.True(dErrors.HasCode(err, dErrors.CodeValidation), "got %v", err)
		})
	}
}

// =============================================================================
// Get / Status
// =============================================================================

func (s *ServiceSuite) TestGetUnknownSubject() {
	_, err := s.service.Get(s.ctx, id.SubjectID(uuid.New()))
	s.ErrorIs(err, ErrNotEnrolled)
	s.True(dErrors.HasCode(err, dErrors.CodeNotEnrolled))
}

func (s *ServiceSuite) TestStatus() {
	summary, err := s.service.Status(s.ctx, s.subject)
	s.Require().NoError(err)
	s.Equal(models.StatusPending, summary.Status)

	_, err = s.service.Register(s.ctx, s.subject, models.RegisterRequest{
		Modality: biometric.ModalityBoth,
		Face:     biometric.Vector{1},
		Ear:      biometric.EarSet{Unified: biometric.Vector{1}},
	})
	s.Require().NoError(err)

	summary, err = s.service.Status(s.ctx, s.subject)
	s.Require().NoError(err)
	s.Equal(models.StatusBoth, summary.Status)
	s.True(summary.FaceRegistered)
	s.True(summary.EarRegistered)
}

type failingStore struct{ err error }

func (f failingStore) Get(context.Context, id.SubjectID) (*models.Profile, error) { return nil, f.err }
func (f failingStore) Save(context.Context, *models.Profile) error { return f.err }
func (f failingStore) Register(context.Context, *models.Profile, biometric.Modality) error {
	return f.err
}

// staleStore hides stored profiles from Get, as a concurrent registration
// landing between the read and the write would.
type staleStore struct{ *store.InMemory }

func (staleStore) Get(context.Context, id.SubjectID) (*models.Profile, error) {
	return nil, sentinel.ErrNotFound
}

func (s *ServiceSuite) TestRegisterRace() {
	s.Run("a registration racing past the read is rejected by the store", func() {
		stale := staleStore{InMemory: s.store}
		svc, err := New(stale)
		s.Require().NoError(err)

		_, err = svc.Register(s.ctx, s.subject, models.RegisterRequest{
			Modality: biometric.ModalityFace,
			Face:     biometric.Vector{0.1, 0.2},
		})
		s.Require().NoError(err)

		_, err = svc.Register(s.ctx, s.subject, models.RegisterRequest{
			Modality: biometric.ModalityFace,
			Face:     biometric.Vector{0.9, 0.9},
		})
		s.ErrorIs(err, ErrAlreadyRegistered)

		stored, err := s.store.Get(s.ctx, s.subject)
		s.Require().NoError(err)
		s.Equal(biometric.Vector{0.1, 0.2}, stored.Biometrics.Face)
	})

	s.Run("a racing registration of the other modality keeps both", func() {
		subject := id.SubjectID(uuid.New())
		svc, err := New(staleStore{InMemory: s.store})
		s.Require().NoError(err)

		_, err = svc.Register(s.ctx, subject, models.RegisterRequest{
			Modality: biometric.ModalityEar,
			Ear:      biometric.EarSet{Left: biometric.Vector{1, 0}},
		})
		s.Require().NoError(err)
		_, err = svc.Register(s.ctx, subject, models.RegisterRequest{
			Modality: biometric.ModalityFace,
			Face:     biometric.Vector{0, 1},
		})
		s.Require().NoError(err)

		stored, err := s.store.Get(s.ctx, subject)
		s.Require().NoError(err)
		s.Equal(models.StatusBoth, stored.Status())
		s.Equal(biometric.Vector{1, 0}, stored.Biometrics.Ear.Left)
	})

	s.Run("concurrent face registrations admit exactly one", func() {
		subject := id.SubjectID(uuid.New())
		const workers = 8
		var (
			wg        sync.WaitGroup
			succeeded atomic.Int32
			rejected  atomic.Int32
		)
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := s.service.Register(s.ctx, subject, models.RegisterRequest{
					Modality: biometric.ModalityFace,
					Face:     biometric.Vector{float32(i), 1},
				})
				switch {
				case err == nil:
					succeeded.Add(1)
				case errors.Is(err, ErrAlreadyRegistered):
					rejected.Add(1)
				}
			}()
		}
		wg.Wait()
		s.Equal(int32(1), succeeded.Load())
		s.Equal(int32(workers-1), rejected.Load())
	})
}

func (s *ServiceSuite) TestStoreFailuresAreInternal() {
	svc, err := New(failingStore{err: errors.New("connection reset")})
	s.Require().NoError(err)

	_, err = svc.Get(s.ctx, s.subject)
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))

	_, err = svc.Register(s.ctx, s.subject, models.RegisterRequest{Modality: biometric.ModalityFace, Face: biometric.Vector{1}})
	s.True(dErrors.HasCode(err, dErrors.CodeInternal))
}
