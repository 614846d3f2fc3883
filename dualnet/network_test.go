package dualnet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portstow/az/env"
)

func TestNewNetwork_RejectsInvalidConfig(t *testing.T) {
	_, err := NewNetwork(Config{})
	assert.Error(t, err)
}

func TestNetwork_PredictShapes(t *testing.T) {
	cfg := DefaultConfig(4, 3)
	cfg.SharedLayers = 1
	cfg.FC = 8
	n, err := NewNetwork(cfg)
	require.NoError(t, err)

	batch := []env.Observation{
		{0, 1, 0, 1},
		{1, 0, 1, 0},
	}
	policies, values, err := n.Predict(batch)
	require.NoError(t, err)

	require.Len(t, policies, 2)
	require.Len(t, values, 2)
	for _, p := range policies {
		assert.Len(t, p, 3)
	}
}
