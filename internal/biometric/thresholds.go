package biometric

// DefaultThreshold applies when nothing else is configured.
const DefaultThreshold = 0.8

// ThresholdConfig is the system-level threshold configuration.
// Nil fields are unset.
type ThresholdConfig struct {
	Face          *float64
	Ear           *float64
	MinConfidence *float64
}

// ThresholdOverride carries per-call thresholds. Nil fields defer to config.
type ThresholdOverride struct {
	Face *float64
	Ear  *float64
}

// ResolveThresholds picks each modality's threshold in a fixed order:
// per-call override, modality-specific config, configured minimum
// confidence, DefaultThreshold.
func ResolveThresholds(cfg ThresholdConfig, override *ThresholdOverride) Thresholds {
	var faceOverride, earOverride *float64
	if override != nil {
		faceOverride, earOverride = override.Face, override.Ear
	}
	return Thresholds{
		Face: firstSet(faceOverride, cfg.Face, cfg.MinConfidence),
		Ear:  firstSet(earOverride, cfg.Ear, cfg.MinConfidence),
	}
}

func firstSet(candidates ...*float64) float64 {
	for _, c := range candidates {
		if c != nil {
			return *c
		}
	}
	return DefaultThreshold
}
