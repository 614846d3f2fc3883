// Package env defines the capability set the MCTS core requires of a
// sequential decision environment: a legal-action mask, a step function,
// terminal detection, and the resource-acquire/release pair (Copy/Close)
// that lets the core own one environment snapshot per tree node.
package env

// StateKey is a value-equal, hashable digest of an environment's
// observable state, sufficient for transposition-table deduplication. It
// is a plain array so it is directly usable as a Go map key.
type StateKey [32]byte

// Observation is the flattened feature vector an Oracle consumes. Its
// layout is owned entirely by the environment family; the core and the
// oracle only ever see the flat slice.
type Observation []float32

// Env is the capability set the MCTS core requires of a sequential
// decision environment. Implementations must be exclusively owned: Copy
// acquires an independent snapshot, Close releases it, and every Copy
// must be matched by exactly one Close.
type Env interface {
	// Copy returns an independent snapshot of the current state.
	Copy() Env

	// Step mutates the environment in place by applying action.
	Step(action int)

	// Terminal reports whether the episode has ended at this state.
	Terminal() bool

	// Mask reports which of the ActionSpace() actions are currently legal.
	Mask() []bool

	// ActionSpace returns the fixed, per-environment-family action count.
	ActionSpace() int

	// Observation returns the oracle-facing feature vector for this state.
	Observation() Observation

	// FinalReward returns the terminal reward. Only meaningful once
	// Terminal() is true.
	FinalReward() float64

	// Close releases any resources held by this snapshot.
	Close()

	// Key returns the transposition-table digest for this state.
	Key() StateKey

	// Equal reports whether other represents the same logical state.
	Equal(other Env) bool
}

// Boundable is implemented by environment families that support a
// domain-specific pruning predicate: a running total reward along the
// path, and a domain bound that, once violated, marks the branch as
// provably dominated. Environments that don't implement it (e.g. the
// grid family) are never pruned beyond no_valid_children.
type Boundable interface {
	// TotalReward is the accumulated reward along the path to this state.
	TotalReward() float64

	// BelowBound reports whether a domain-specific floor has been
	// violated (e.g. reshuffles-per-port below a configured minimum).
	BelowBound() bool
}

// ColumnCounter is implemented by environment families whose live action
// count is smaller than the oracle's fixed output layout, e.g. a
// stowage bay narrower than the oracle's configured max width.
type ColumnCounter interface {
	// LiveColumns returns the number of columns actually in play.
	LiveColumns() int
}
