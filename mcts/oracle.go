package mcts

import "github.com/portstow/az/env"

// Oracle is the policy/value estimator the engine consults on expansion.
// Implementations must batch safely from multiple callers; the engine
// itself only ever calls Predict with a single-element batch, leaving
// batching strategy (size, deadline) to the inference layer in front of
// the oracle (package inference).
type Oracle interface {
	Predict(batch []env.Observation) (policies [][]float32, values []float32, err error)
}
