//go:build integration

package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bioclock/internal/attendance/models"
	"bioclock/internal/attendance/store"
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
	s.postgres = containers.GetManager().GetPostgres(s.T())
	s.store = store.NewPostgres(s.postgres.DB)
}

func (s *PostgresStoreSuite) SetupTest() {
	s.Require().NoError(s.postgres.TruncateTables(context.Background(), "attendance_events"))
}

func (s *PostgresStoreSuite) newEvent(subject id.SubjectID, day string, t models.Type, at time.Time) *models.Event {
	return &models.Event{
		ID:             id.NewEventID(),
		Subject:        subject,
		Type:           t,
		Day:            day,
		Timestamp:      at,
		Status:         models.StatusLate,
		Method:         models.MethodBoth,
		FaceVerified:   true,
		FaceConfidence: 0.97,
		EarVerified:    true,
		EarConfidence:  0.91,
		Location:       "HQ",
		Device:         models.Device{Browser: "Chrome", OS: "Linux"},
	}
}

func (s *PostgresStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	subject := id.SubjectID(uuid.New())
	at := time.Date(2025, 3, 4, 9, 5, 0, 0, time.UTC)

	in := s.newEvent(subject, "2025-03-04", models.TypeCheckIn, at)
	s.Require().NoError(s.store.Insert(ctx, in))

	events, err := s.store.ListByDay(ctx, subject, "2025-03-04")
	s.Require().NoError(err)
	s.Require().Len(events, 1)

	got := events[0]
	s.Equal(in.ID, got.ID)
	s.Equal("2025-03-04", got.Day)
	s.True(in.Timestamp.Equal(got.Timestamp))
	s.Equal(models.StatusLate, got.Status)
	s.Equal(models.MethodBoth, got.Method)
	s.InDelta(0.97, got.FaceConfidence, 1e-9)
	s.Equal("Chrome", got.Device.Browser)
	s.Equal("HQ", got.Location)
}

func (s *PostgresStoreSuite) TestUniqueConstraintMapsToConflict() {
	ctx := context.Background()
	subject := id.SubjectID(uuid.New())
	at := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)

	s.Require().NoError(s.store.Insert(ctx, s.newEvent(subject, "2025-03-04", models.TypeCheckIn, at)))
	err := s.store.Insert(ctx, s.newEvent(subject, "2025-03-04", models.TypeCheckIn, at))
	s.ErrorIs(err, sentinel.ErrConflict)
}

func (s *PostgresStoreSuite) TestConcurrentInsertsAdmitOne() {
	ctx := context.Background()
	subject := id.SubjectID(uuid.New())
	at := time.Date(2025, 3, 4, 8, 0, 0, 0, time.UTC)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		conflicts int
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.store.Insert(ctx, s.newEvent(subject, "2025-03-04", models.TypeCheckIn, at))
			if err != nil {
				s.ErrorIs(err, sentinel.ErrConflict)
				mu.Lock()
				conflicts++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	s.Equal(7, conflicts)
}

func (s *PostgresStoreSuite) TestListRange() {
	ctx := context.Background()
	subject := id.SubjectID(uuid.New())
	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)

	for i, day := range []string{"2025-03-01", "2025-03-03", "2025-03-08"} {
		at := base.AddDate(0, 0, []int{0, 2, 7}[i])
		s.Require().NoError(s.store.Insert(ctx, s.newEvent(subject, day, models.TypeCheckIn, at)))
	}

	events, err := s.store.ListRange(ctx, subject, "2025-03-01", "2025-03-07")
	s.Require().NoError(err)
	s.Require().Len(events, 2)
	s.Equal("2025-03-01", events[0].Day)
	s.Equal("2025-03-03", events[1].Day)
}
