package biometric

// earPair is one of the three fixed enrolled/probe ear comparisons.
type earPair struct {
	slot     EarSlot
	enrolled Vector
	probe    Vector
}

func earPairs(enrolled, probe EarSet) [3]earPair {
	return [3]earPair{
		{slot: EarUnified, enrolled: enrolled.Unified, probe: probe.Unified},
		{slot: EarLeft, enrolled: enrolled.Left, probe: probe.Left},
		{slot: EarRight, enrolled: enrolled.Right, probe: probe.Right},
	}
}

// Verify compares a probe against enrolled data.
//
// Face verifies when its confidence meets th.Face. Ear verifies when any of
// the unified, left or right pairs meets th.Ear; the reported ear confidence
// is the best of the three, whether or not that pair passed.
func Verify(enrolled Enrolled, probe Probe, th Thresholds) Result {
	var res Result

	if enrolled.Face.Present() && probe.Face.Present() {
		res.FaceConfidence = Compare(enrolled.Face, probe.Face)
		res.FaceVerified = res.FaceConfidence >= th.Face
	}

	for _, p := range earPairs(enrolled.Ear, probe.Ear) {
		if !p.enrolled.Present() || !p.probe.Present() {
			continue
		}
		conf := Compare(p.enrolled, p.probe)
		if conf >= th.Ear {
			res.EarVerified = true
		}
		if res.EarSlot == "" || conf > res.EarConfidence {
			res.EarConfidence = conf
			res.EarSlot = p.slot
		}
	}

	return res
}
