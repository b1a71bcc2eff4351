package biometric

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptr(v float64) *float64 { return &v }

func TestResolveThresholds(t *testing.T) {
	t.Run("built-in default when nothing is configured", func(t *testing.T) {
		th := ResolveThresholds(ThresholdConfig{}, nil)
		assert.Equal(t, Thresholds{Face: DefaultThreshold, Ear: DefaultThreshold}, th)
	})

	t.Run("minimum confidence beats the default", func(t *testing.T) {
		th := ResolveThresholds(ThresholdConfig{MinConfidence: ptr(0.6)}, nil)
		assert.Equal(t, Thresholds{Face: 0.6, Ear: 0.6}, th)
	})

	t.Run("modality config beats minimum confidence", func(t *testing.T) {
		cfg := ThresholdConfig{Ear: ptr(0.7), MinConfidence: ptr(0.6)}
		th := ResolveThresholds(cfg, nil)
		assert.Equal(t, Thresholds{Face: 0.6, Ear: 0.7}, th)
	})

	t.Run("per-call override beats everything", func(t *testing.T) {
		cfg := ThresholdConfig{Face: ptr(0.9), Ear: ptr(0.7), MinConfidence: ptr(0.6)}
		th := ResolveThresholds(cfg, &ThresholdOverride{Face: ptr(0.95)})
		assert.Equal(t, Thresholds{Face: 0.95, Ear: 0.7}, th)
	})

	t.Run("explicit zero is honoured", func(t *testing.T) {
		th := ResolveThresholds(ThresholdConfig{Face: ptr(0)}, nil)
		assert.Equal(t, 0.0, th.Face)
		assert.Equal(t, DefaultThreshold, th.Ear)
	})
}
