package mcts

import "github.com/portstow/az/env"

type cacheEntry struct {
	policy []float32
	value  float32
}

// TranspositionTable caches the oracle's (policy, value) output per
// canonical state key, so environments with heavy symmetry don't pay for
// repeated oracle calls within one search. It is scoped per episode:
// callers construct a fresh one when the oracle's weights change, so
// cached values never go stale against a reloaded network.
type TranspositionTable struct {
	entries map[env.StateKey]cacheEntry
}

// NewTranspositionTable returns an empty table.
func NewTranspositionTable() *TranspositionTable {
	return &TranspositionTable{entries: make(map[env.StateKey]cacheEntry)}
}

// GetOrCompute returns the cached (policy, value) for key, invoking
// compute on a miss and caching its result. compute is called at most
// once per key.
func (t *TranspositionTable) GetOrCompute(key env.StateKey, compute func() ([]float32, float32, error)) ([]float32, float32, error) {
	if e, ok := t.entries[key]; ok {
		return e.policy, e.value, nil
	}
	policy, value, err := compute()
	if err != nil {
		return nil, 0, err
	}
	t.entries[key] = cacheEntry{policy: policy, value: value}
	return policy, value, nil
}

// Len reports the number of cached entries.
func (t *TranspositionTable) Len() int { return len(t.entries) }
