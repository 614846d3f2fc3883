package mcts

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portstow/az/env"
)

func TestTranspositionTable_ComputesOnceAndCaches(t *testing.T) {
	tab := NewTranspositionTable()
	var calls int
	compute := func() ([]float32, float32, error) {
		calls++
		return []float32{0.1, 0.9}, 0.5, nil
	}

	var key env.StateKey
	key[0] = 1

	p1, v1, err := tab.GetOrCompute(key, compute)
	require.NoError(t, err)
	p2, v2, err := tab.GetOrCompute(key, compute)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "compute should only run on the first miss")
	assert.Equal(t, p1, p2)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, tab.Len())
}

func TestTranspositionTable_ErrorsAreNotCached(t *testing.T) {
	tab := NewTranspositionTable()
	boom := errors.New("oracle down")
	var calls int
	compute := func() ([]float32, float32, error) {
		calls++
		if calls == 1 {
			return nil, 0, boom
		}
		return []float32{1, 0}, 0.25, nil
	}

	var key env.StateKey
	_, _, err := tab.GetOrCompute(key, compute)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 0, tab.Len())

	_, v, err := tab.GetOrCompute(key, compute)
	require.NoError(t, err)
	assert.Equal(t, float32(0.25), v)
	assert.Equal(t, 1, tab.Len())
}
