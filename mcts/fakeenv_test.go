package mcts

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/portstow/az/env"
)

// lineEnv is a minimal deterministic environment used to exercise the
// engine without pulling in a real env/grid or env/stowage dependency:
// two actions (0 = stay, 1 = advance), terminal after a fixed number of
// steps, reward equal to the number of times action 1 was taken.
type lineEnv struct {
	depth, maxDepth int
	advances        int
	closed          *bool
}

func newLineEnv(maxDepth int) *lineEnv {
	closed := false
	return &lineEnv{maxDepth: maxDepth, closed: &closed}
}

func (e *lineEnv) Copy() env.Env {
	closed := false
	cp := *e
	cp.closed = &closed
	return &cp
}

func (e *lineEnv) Step(action int) {
	e.depth++
	if action == 1 {
		e.advances++
	}
}

func (e *lineEnv) Terminal() bool { return e.depth >= e.maxDepth }

func (e *lineEnv) Mask() []bool { return []bool{true, true} }

func (e *lineEnv) ActionSpace() int { return 2 }

func (e *lineEnv) Observation() env.Observation {
	return env.Observation{float32(e.depth), float32(e.advances)}
}

func (e *lineEnv) FinalReward() float64 { return float64(e.advances) }

func (e *lineEnv) Close() { *e.closed = true }

func (e *lineEnv) Key() env.StateKey {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[:4], uint32(e.depth))
	binary.BigEndian.PutUint32(buf[4:], uint32(e.advances))
	return sha256.Sum256(buf[:])
}

func (e *lineEnv) Equal(other env.Env) bool {
	o, ok := other.(*lineEnv)
	return ok && o.depth == e.depth && o.advances == e.advances
}

// uniformOracle always predicts a flat policy and a fixed value,
// regardless of the observation, giving deterministic, reviewable PUCT
// behavior in tests.
type uniformOracle struct {
	value float32
	err   error
}

func (o *uniformOracle) Predict(batch []env.Observation) ([][]float32, []float32, error) {
	if o.err != nil {
		return nil, nil, o.err
	}
	policies := make([][]float32, len(batch))
	values := make([]float32, len(batch))
	for i := range batch {
		policies[i] = []float32{0.5, 0.5}
		values[i] = o.value
	}
	return policies, values, nil
}

// biasedOracle favors action 1 with a configurable prior, to exercise
// PUCT actually preferring one branch.
type biasedOracle struct {
	priorForOne float32
	value       float32
}

func (o *biasedOracle) Predict(batch []env.Observation) ([][]float32, []float32, error) {
	policies := make([][]float32, len(batch))
	values := make([]float32, len(batch))
	for i := range batch {
		policies[i] = []float32{1 - o.priorForOne, o.priorForOne}
		values[i] = o.value
	}
	return policies, values, nil
}

// biasedOracle4 returns a fixed four-action policy regardless of
// observation, for exercising root Dirichlet noise against a
// concentrated prior.
type biasedOracle4 struct {
	priors []float32
}

func (o *biasedOracle4) Predict(batch []env.Observation) ([][]float32, []float32, error) {
	policies := make([][]float32, len(batch))
	values := make([]float32, len(batch))
	for i := range batch {
		policies[i] = append([]float32(nil), o.priors...)
		values[i] = 0
	}
	return policies, values, nil
}

// quadEnv is a one-ply, four-action environment: any action immediately
// terminates, used to isolate root-level noise/selection behavior from
// deeper tree mechanics.
type quadEnv struct {
	depth  int
	closed *bool
}

func newQuadEnv() *quadEnv {
	closed := false
	return &quadEnv{closed: &closed}
}

func (e *quadEnv) Copy() env.Env {
	closed := false
	cp := *e
	cp.closed = &closed
	return &cp
}

func (e *quadEnv) Step(action int) { e.depth++ }

func (e *quadEnv) Terminal() bool { return e.depth >= 1 }

func (e *quadEnv) Mask() []bool { return []bool{true, true, true, true} }

func (e *quadEnv) ActionSpace() int { return 4 }

func (e *quadEnv) Observation() env.Observation { return env.Observation{float32(e.depth)} }

func (e *quadEnv) FinalReward() float64 { return 0 }

func (e *quadEnv) Close() { *e.closed = true }

func (e *quadEnv) Key() env.StateKey {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], uint32(e.depth))
	return sha256.Sum256(buf[:])
}

func (e *quadEnv) Equal(other env.Env) bool {
	o, ok := other.(*quadEnv)
	return ok && o.depth == e.depth
}
