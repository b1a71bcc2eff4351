package biometric

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

type VerifySuite struct {
	suite.Suite
	th Thresholds
}

func TestVerifySuite(t *testing.T) {
	suite.Run(t, new(VerifySuite))
}

func (s *VerifySuite) SetupTest() {
	s.th = Thresholds{Face: 0.8, Ear: 0.8}
}

// =============================================================================
// Face
// =============================================================================

func (s *VerifySuite) TestFace() {
	s.Run("matching face verifies with full confidence", func() {
		face := repeat(0.1, 128)
		res := Verify(Enrolled{Face: face}, Probe{Face: repeat(0.1, 128)}, s.th)
		s.True(res.FaceVerified)
		s.InDelta(1.0, res.FaceConfidence, 1e-12)
		s.False(res.EarVerified)
		s.Zero(res.EarConfidence)
	})

	s.Run("opposite face is rejected with zero confidence", func() {
		res := Verify(Enrolled{Face: Vector{1, 0}}, Probe{Face: Vector{-1, 0}}, s.th)
		s.False(res.FaceVerified)
		s.InDelta(0.0, res.FaceConfidence, 1e-12)
	})

	s.Run("missing enrolled face never verifies", func() {
		res := Verify(Enrolled{}, Probe{Face: Vector{1, 2}}, Thresholds{})
		s.False(res.FaceVerified)
		s.Zero(res.FaceConfidence)
	})

	s.Run("missing probe face never verifies even at zero threshold", func() {
		res := Verify(Enrolled{Face: Vector{1, 2}}, Probe{}, Thresholds{})
		s.False(res.FaceVerified)
	})

	s.Run("dimension mismatch degrades to zero", func() {
		res := Verify(Enrolled{Face: Vector{1, 2, 3}}, Probe{Face: Vector{1, 2}}, s.th)
		s.False(res.FaceVerified)
		s.Zero(res.FaceConfidence)
	})

	s.Run("confidence equal to threshold verifies", func() {
		res := Verify(Enrolled{Face: Vector{1, 0}}, Probe{Face: Vector{0, 1}}, Thresholds{Face: 0.5})
		s.True(res.FaceVerified)
	})
}

// =============================================================================
// Ear
// =============================================================================

func (s *VerifySuite) TestEar() {
	v := Vector{0.3, 0.4, 0.5}

	s.Run("left ear alone is accepted", func() {
		res := Verify(Enrolled{Ear: EarSet{Left: v}}, Probe{Ear: EarSet{Left: v}}, s.th)
		s.True(res.EarVerified)
		s.InDelta(1.0, res.EarConfidence, 1e-12)
		s.Equal(EarLeft, res.EarSlot)
	})

	s.Run("any passing pair verifies", func() {
		enrolled := Enrolled{Ear: EarSet{Unified: Vector{1, 0}, Right: v}}
		probe := Probe{Ear: EarSet{Unified: Vector{-1, 0}, Right: v}}
		res := Verify(enrolled, probe, s.th)
		s.True(res.EarVerified)
		s.Equal(EarRight, res.EarSlot)
	})

	s.Run("best confidence is reported even when no pair passes", func() {
		enrolled := Enrolled{Ear: EarSet{Unified: Vector{1, 0}, Left: Vector{1, 0}}}
		probe := Probe{Ear: EarSet{Unified: Vector{0, 1}, Left: Vector{-1, 0}}}
		res := Verify(enrolled, probe, Thresholds{Ear: 0.9})
		s.False(res.EarVerified)
		s.InDelta(0.5, res.EarConfidence, 1e-12)
		s.Equal(EarUnified, res.EarSlot)
	})

	s.Run("slots are never crossed", func() {
		res := Verify(Enrolled{Ear: EarSet{Left: v}}, Probe{Ear: EarSet{Right: v}}, s.th)
		s.False(res.EarVerified)
		s.Zero(res.EarConfidence)
		s.Empty(res.EarSlot)
	})
}

func (s *VerifySuite) TestBothModalities() {
	face := Vector{0.2, 0.1}
	ear := Vector{0.5, 0.5}
	enrolled := Enrolled{Face: face, Ear: EarSet{Unified: ear}}

	res := Verify(enrolled, Probe{Face: face, Ear: EarSet{Unified: ear}}, s.th)
	s.True(res.FaceVerified)
	s.True(res.EarVerified)
	s.True(res.Any())

	res = Verify(enrolled, Probe{}, s.th)
	s.False(res.Any())
}

func (s *VerifySuite) TestEnrolledModality() {
	m, ok := Enrolled{Face: Vector{1}, Ear: EarSet{Left: Vector{1}}}.Modality()
	s.True(ok)
	s.Equal(ModalityBoth, m)

	m, ok = Enrolled{Ear: EarSet{Right: Vector{1}}}.Modality()
	s.True(ok)
	s.Equal(ModalityEar, m)

	_, ok = Enrolled{}.Modality()
	s.False(ok)
}
