package attendance

import (
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"bioclock/internal/attendance/models"
	"bioclock/internal/biometric"
	id "bioclock/pkg/domain"
)

type AdjudicateSuite struct {
	suite.Suite
	subject id.SubjectID
	face    biometric.Vector
}

func TestAdjudicateSuite(t *testing.T) {
	suite.Run(t, new(AdjudicateSuite))
}

func (s *AdjudicateSuite) SetupTest() {
	s.subject = id.SubjectID(uuid.New())
	s.face = slices.Repeat(biometric.Vector{0.1}, 128)
}

func (s *AdjudicateSuite) at(hour, minute int) time.Time {
	return time.Date(2025, 3, 4, hour, minute, 0, 0, time.UTC)
}

func (s *AdjudicateSuite) input(req MarkRequest, now time.Time) Input {
	return Input{
		Subject:         s.subject,
		AccountVerified: true,
		Request:         req,
		Enrolled:        biometric.Enrolled{Face: s.face},
		Thresholds:      biometric.Thresholds{Face: 0.8, Ear: 0.8},
		WorkStart:       9 * time.Hour,
		Location:        time.UTC,
		Now:             now,
	}
}

func (s *AdjudicateSuite) faceCheckIn() MarkRequest {
	return MarkRequest{
		Type:  models.TypeCheckIn,
		Probe: biometric.Probe{Face: s.face},
	}
}

// =============================================================================
// Verification rules
// =============================================================================

func (s *AdjudicateSuite) TestFaceProbeCheckIn() {
	event, err := Adjudicate(s.input(s.faceCheckIn(), s.at(8, 59)))
	s.Require().NoError(err)

	s.Equal(models.TypeCheckIn, event.Type)
	s.Equal(models.StatusPresent, event.Status)
	s.Equal(models.MethodFaceOnly, event.Method)
	s.True(event.FaceVerified)
	s.InDelta(1.0, event.FaceConfidence, 1e-9)
	s.False(event.EarVerified)
	s.Equal("2025-03-04", event.Day)
	s.Equal(s.subject, event.Subject)
	s.False(event.ID.IsNil())
}

func (s *AdjudicateSuite) TestUnverifiedAccountIsRejected() {
	in := s.input(s.faceCheckIn(), s.at(8, 0))
	in.AccountVerified = false

	_, err := Adjudicate(in)
	s.ErrorIs(err, ErrNotEnrolled)
}

func (s *AdjudicateSuite) TestNoVerification() {
	s.Run("no probe and no claims", func() {
		_, err := Adjudicate(s.input(MarkRequest{Type: models.TypeCheckIn}, s.at(8, 0)))
		s.ErrorIs(err, ErrNoVerificationProvided)
	})

	s.Run("claimed modality is not registered", func() {
		req := MarkRequest{Type: models.TypeCheckIn, ClaimedEar: true}
		_, err := Adjudicate(s.input(req, s.at(8, 0)))
		s.ErrorIs(err, ErrNoVerificationProvided)
	})

	s.Run("probe matches nothing", func() {
		in := s.input(MarkRequest{
			Type:  models.TypeCheckIn,
			Probe: biometric.Probe{Face: biometric.Vector{0, 1}},
		}, s.at(8, 0))
		in.Enrolled = biometric.Enrolled{Face: biometric.Vector{1, 0}}

		_, err := Adjudicate(in)
		s.ErrorIs(err, ErrNoVerificationProvided)
	})
}

func (s *AdjudicateSuite) TestClaimedFlags() {
	conf := 0.93
	in := s.input(MarkRequest{
		Type:                  models.TypeCheckIn,
		ClaimedFace:           true,
		ClaimedEar:            true,
		ClaimedFaceConfidence: &conf,
	}, s.at(8, 0))
	in.Enrolled.Ear = biometric.EarSet{Left: biometric.Vector{0.5, 0.5}}

	event, err := Adjudicate(in)
	s.Require().NoError(err)
	s.Equal(models.MethodBoth, event.Method)
	s.Equal(0.93, event.FaceConfidence)
	s.Zero(event.EarConfidence)
}

func (s *AdjudicateSuite) TestProbeOverridesClaims() {
	req := s.faceCheckIn()
	req.ClaimedEar = true
	in := s.input(req, s.at(8, 0))
	in.Enrolled.Ear = biometric.EarSet{Unified: biometric.Vector{0.5, 0.5}}

	event, err := Adjudicate(in)
	s.Require().NoError(err)
	s.False(event.EarVerified)
	s.Equal(models.MethodFaceOnly, event.Method)
}

func (s *AdjudicateSuite) TestEarOnlyProbe() {
	left := biometric.Vector{0.2, 0.7, 0.1}
	in := s.input(MarkRequest{
		Type:  models.TypeCheckIn,
		Probe: biometric.Probe{Ear: biometric.EarSet{Left: left}},
	}, s.at(8, 0))
	in.Enrolled = biometric.Enrolled{Ear: biometric.EarSet{Left: left}}

	event, err := Adjudicate(in)
	s.Require().NoError(err)
	s.Equal(models.MethodEarOnly, event.Method)
	s.True(event.EarVerified)
	s.InDelta(1.0, event.EarConfidence, 1e-9)
}

// =============================================================================
// Uniqueness and ordering
// =============================================================================

func (s *AdjudicateSuite) TestDuplicateCheckIn() {
	in := s.input(s.faceCheckIn(), s.at(12, 0))
	in.Today = []*models.Event{{Type: models.TypeCheckIn, Day: "2025-03-04"}}

	_, err := Adjudicate(in)
	s.ErrorIs(err, ErrDuplicateEvent)
}

func (s *AdjudicateSuite) TestCheckOutOrdering() {
	req := s.faceCheckIn()
	req.Type = models.TypeCheckOut

	s.Run("check-out before check-in is rejected", func() {
		_, err := Adjudicate(s.input(req, s.at(17, 0)))
		s.ErrorIs(err, ErrCheckInRequired)
	})

	s.Run("check-out after check-in is present", func() {
		in := s.input(req, s.at(17, 0))
		in.Today = []*models.Event{{Type: models.TypeCheckIn, Day: "2025-03-04"}}

		event, err := Adjudicate(in)
		s.Require().NoError(err)
		s.Equal(models.StatusPresent, event.Status)
	})
}

// =============================================================================
// Lateness and calendar day
// =============================================================================

func (s *AdjudicateSuite) TestLateness() {
	cases := []struct {
		name   string
		now    time.Time
		status models.Status
	}{
		{"before work start", s.at(8, 59), models.StatusPresent},
		{"exactly at work start", s.at(9, 0), models.StatusPresent},
		{"after work start", s.at(9, 1), models.StatusLate},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			event, err := Adjudicate(s.input(s.faceCheckIn(), tc.now))
			s.Require().NoError(err)
			s.Equal(tc.status, event.Status)
		})
	}

	s.Run("only check-ins can be late", func() {
		req := s.faceCheckIn()
		req.Type = models.TypeBreakStart
		event, err := Adjudicate(s.input(req, s.at(13, 0)))
		s.Require().NoError(err)
		s.Equal(models.StatusPresent, event.Status)
	})
}

func (s *AdjudicateSuite) TestDayFollowsLocation() {
	plus2 := time.FixedZone("UTC+2", 2*60*60)
	in := s.input(s.faceCheckIn(), time.Date(2025, 3, 4, 6, 30, 0, 0, time.UTC))
	in.Location = plus2

	event, err := Adjudicate(in)
	s.Require().NoError(err)
	s.Equal("2025-03-04", event.Day)
	s.Equal(models.StatusPresent, event.Status, "08:30 local")

	in.Now = time.Date(2025, 3, 4, 23, 30, 0, 0, time.UTC)
	event, err = Adjudicate(in)
	s.Require().NoError(err)
	s.Equal("2025-03-05", event.Day)
	s.Equal(models.StatusPresent, event.Status, "01:30 local")
}

// =============================================================================
// Operator override
// =============================================================================

func (s *AdjudicateSuite) TestOverride() {
	req := MarkRequest{
		Type:     models.TypeCheckIn,
		Override: &Override{OperatorID: "op-7", Reason: "camera offline"},
	}

	s.Run("skips enrollment and verification", func() {
		in := s.input(req, s.at(9, 30))
		in.AccountVerified = false
		in.Enrolled = biometric.Enrolled{}

		event, err := Adjudicate(in)
		s.Require().NoError(err)
		s.Equal(models.MethodManual, event.Method)
		s.False(event.FaceVerified)
		s.False(event.EarVerified)
		s.Equal("op-7", event.OperatorID)
		s.Equal("camera offline", event.Notes)
		s.Equal(models.StatusLate, event.Status)
	})

	s.Run("still refuses duplicates", func() {
		in := s.input(req, s.at(9, 30))
		in.Today = []*models.Event{{Type: models.TypeCheckIn}}

		_, err := Adjudicate(in)
		s.ErrorIs(err, ErrDuplicateEvent)
	})
}
