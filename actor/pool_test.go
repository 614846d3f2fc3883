package actor

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portstow/az/env"
	"github.com/portstow/az/env/grid"
	"github.com/portstow/az/inference"
	"github.com/portstow/az/mcts"
	"github.com/portstow/az/replay"
)

type flatOracle struct{}

func (flatOracle) Predict(batch []env.Observation) ([][]float32, []float32, error) {
	policies := make([][]float32, len(batch))
	values := make([]float32, len(batch))
	for i := range batch {
		policies[i] = []float32{0.5, 0.5}
	}
	return policies, values, nil
}

func TestPool_RunsEpisodesUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := inference.NewServer(flatOracle{}, 8, 5*time.Millisecond)
	defer server.Close()

	buf := replay.New(1000)
	cfg := Config{
		Workers: 2,
		Seed:    1,
		MCTSConfig: func() mcts.Config {
			c := mcts.DefaultConfig()
			c.SearchIterations = 4
			return c
		}(),
		NewEnv: func(rng *rand.Rand) env.Env {
			return grid.New(2, 2, []byte{0, 1, 1, 1})
		},
		Server:        server,
		Buffer:        buf,
		Deterministic: true,
	}

	pool := Start(ctx, cfg)
	time.Sleep(30 * time.Millisecond)
	cancel()

	err := pool.Close()
	require.NoError(t, err)
	assert.Greater(t, buf.Len(), 0, "at least one episode should have completed and extended the buffer")
}
