package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMinMaxStats_NormalizeBeforeAnyUpdate(t *testing.T) {
	mm := NewMinMaxStats()
	// With min == +Inf and max == -Inf there is no bound separation yet, so
	// Normalize returns v unchanged instead of dividing by (max - min); it
	// must not panic or produce NaN that poisons PUCT comparisons.
	got := mm.Normalize(0.5)
	assert.False(t, got != got, "normalize produced NaN before any Update")
}

func TestMinMaxStats_NormalizeRange(t *testing.T) {
	mm := NewMinMaxStats()
	mm.Update(-1)
	mm.Update(1)

	assert.Equal(t, float32(0), mm.Normalize(-1))
	assert.Equal(t, float32(1), mm.Normalize(1))
	assert.Equal(t, float32(0.5), mm.Normalize(0))
}

func TestMinMaxStats_SinglePoint(t *testing.T) {
	mm := NewMinMaxStats()
	mm.Update(3)
	// min == max: normalize must not divide by zero.
	got := mm.Normalize(3)
	assert.False(t, got != got, "normalize produced NaN with a degenerate range")
}
