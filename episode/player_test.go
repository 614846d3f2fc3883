package episode

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portstow/az/env"
	"github.com/portstow/az/env/grid"
	"github.com/portstow/az/env/stowage"
	"github.com/portstow/az/mcts"
)

// trackingStowage wraps a stowage.State to count Close calls, so a test
// can assert every environment handle an episode creates is actually
// released, including on a truncated run.
type trackingStowage struct {
	*stowage.State
	closed *int
}

func wrapStowage(s *stowage.State, closed *int) *trackingStowage {
	return &trackingStowage{State: s, closed: closed}
}

func (t *trackingStowage) Copy() env.Env {
	return &trackingStowage{State: t.State.Copy().(*stowage.State), closed: t.closed}
}

func (t *trackingStowage) Close() {
	*t.closed++
	t.State.Close()
}

// constOracle always predicts a flat policy and a fixed value.
type constOracle struct{ value float32 }

func (o *constOracle) Predict(batch []env.Observation) ([][]float32, []float32, error) {
	policies := make([][]float32, len(batch))
	values := make([]float32, len(batch))
	for i := range batch {
		policies[i] = []float32{0.5, 0.5}
		values[i] = o.value
	}
	return policies, values, nil
}

func newSolvableBoard() *grid.State {
	// A 2x2, 2-color board, color 1 everywhere except the top-left
	// corner: solvable in exactly one move (recolor to 1).
	return grid.New(2, 2, []byte{0, 1, 1, 1})
}

func newTestEngine(t *testing.T) *mcts.MCTS {
	t.Helper()
	cfg := mcts.DefaultConfig()
	cfg.SearchIterations = 16
	cfg.DirichletWeight = 0
	engine, err := mcts.New(cfg, &constOracle{value: 0}, 1)
	require.NoError(t, err)
	return engine
}

func TestPlayer_RunProducesOneExamplePerDecision(t *testing.T) {
	engine := newTestEngine(t)
	player := New(engine, rand.New(rand.NewSource(1)), true)

	root := mcts.NewRoot(newSolvableBoard())
	examples, err := player.Run(root)
	require.NoError(t, err)

	require.Len(t, examples, 1, "a board solvable in one move should produce exactly one decision")
	assert.Len(t, examples[0].Observation, 2*2*2)
	assert.Len(t, examples[0].Policy, 2)
}

func TestPlayer_BackfillAssignsStepsToGoCounts(t *testing.T) {
	steps := []step{
		{observation: env.Observation{0}, policy: []float32{1, 0}},
		{observation: env.Observation{1}, policy: []float32{0, 1}},
		{observation: env.Observation{2}, policy: []float32{1, 0}},
	}
	examples := backfill(steps, -3)

	assert.Equal(t, float32(-1), examples[0].Value) // -3 + 2 steps-to-go
	assert.Equal(t, float32(-2), examples[1].Value)
	assert.Equal(t, float32(-3), examples[2].Value)
}

func TestPlayer_StowageTruncationClosesEveryEnv(t *testing.T) {
	// One row, one column, a single container cycled through two
	// add/remove round trips: placed=2, reshuffles=2, bay left empty.
	// The only legal continuation from here is another add, which takes
	// ReshufflesPerPort to -2/3, past the -0.5 dominated-branch bound, so
	// the episode's one root child is pruned and the root exhausts on
	// its very first decision.
	raw := stowage.New(1, 1, []int16{5})
	raw.Step(0)
	raw.Step(1)
	raw.Step(0)
	raw.Step(1)

	closed := 0
	root := mcts.NewRoot(wrapStowage(raw, &closed))

	cfg := mcts.DefaultConfig()
	cfg.SearchIterations = 4
	cfg.DirichletWeight = 0
	cfg.EnablePruning = true
	engine, err := mcts.New(cfg, &constOracle{value: 0}, 1)
	require.NoError(t, err)

	player := New(engine, rand.New(rand.NewSource(1)), true)
	examples, err := player.Run(root)

	assert.ErrorIs(t, err, ErrTruncated)
	assert.Empty(t, examples, "truncation before any decision completes yields no training tuples")
	assert.Equal(t, 2, closed, "both the root and its one pruned child must be closed, no leaked handles")
}

func TestPlayer_DeterministicChoosesArgmax(t *testing.T) {
	p := &Player{deterministic: true}
	assert.Equal(t, 2, p.choose([]float32{0.1, 0.2, 0.7}))
}

func TestPlayer_StochasticChooseRespectsSeed(t *testing.T) {
	p := &Player{rng: rand.New(rand.NewSource(42))}
	action := p.choose([]float32{0, 1})
	assert.Equal(t, 1, action)
}
