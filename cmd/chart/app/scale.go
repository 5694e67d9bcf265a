package app

import "math"

// defaultScaleFloor keeps the vertical scale sane before any real signal has
// been observed, so an all-dark session does not divide by zero.
const defaultScaleFloor = 1.0

// ScaleTracker maintains a smoothed vertical scale across successive
// profiles. The scale expands immediately with 20% headroom when a profile
// exceeds it and decays by 5% per profile otherwise, so a single bright flash
// does not pin the chart forever.
type ScaleTracker struct {
	max float64
}

// NewScaleTracker creates a tracker with the minimal scale.
func NewScaleTracker() *ScaleTracker {
	return &ScaleTracker{max: defaultScaleFloor}
}

// Update folds one profile into the tracked scale and returns the new scale.
func (s *ScaleTracker) Update(values []float64) float64 {
	var frameMax float64
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) && v > frameMax {
			frameMax = v
		}
	}

	s.max = math.Max(frameMax*1.2, s.max*0.95)
	if s.max < defaultScaleFloor {
		s.max = defaultScaleFloor
	}
	return s.max
}

// Current returns the current scale without updating it.
func (s *ScaleTracker) Current() float64 {
	return s.max
}

// Normalize maps a value onto [0, 1] against the current scale.
func (s *ScaleTracker) Normalize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return math.Min(1, v/s.max)
}
