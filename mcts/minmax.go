package mcts

import "github.com/chewxy/math32"

// MinMaxStats tracks the running min and max of observed backup values
// for one search (or, as used here, one episode's worth of searches) and
// normalizes Q onto [0,1] so it sits on a comparable scale to PUCT's
// exploration term.
type MinMaxStats struct {
	min, max float32
}

// NewMinMaxStats returns a tracker with the bounds at their identity
// values, widened by the first Update call.
func NewMinMaxStats() *MinMaxStats {
	return &MinMaxStats{
		min: math32.Inf(1),
		max: math32.Inf(-1),
	}
}

// Update widens the tracked bounds to include v.
func (s *MinMaxStats) Update(v float32) {
	if v < s.min {
		s.min = v
	}
	if v > s.max {
		s.max = v
	}
}

// Normalize maps v onto [0,1] given the bounds seen so far. Before any
// bound separation has been observed (max <= min), v is returned as-is.
func (s *MinMaxStats) Normalize(v float32) float32 {
	if s.max > s.min {
		return (v - s.min) / (s.max - s.min)
	}
	return v
}
