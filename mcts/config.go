package mcts

// Config holds the tunable search parameters for an MCTS engine.
type Config struct {
	// SearchIterations is the number of simulations per decision.
	SearchIterations int
	// CPuct is the exploration constant in the PUCT formula.
	CPuct float32
	// Temperature sharpens or flattens the visit-count policy; values
	// near zero collapse to argmax.
	Temperature float32
	// DirichletWeight is epsilon, the root-noise mixing weight.
	DirichletWeight float32
	// DirichletAlpha is the concentration parameter of the root noise.
	DirichletAlpha float64
	// EnablePruning turns on the domain-bound prune predicate (used by
	// the stowage environment; the grid environment leaves this false).
	EnablePruning bool
	// MaxColumns is the oracle's fixed column width for the
	// add/remove policy-vector reduction. Zero disables reduction (the
	// oracle's output already matches the live action space, as with
	// the grid environment).
	MaxColumns int
}

// DefaultConfig returns reasonable defaults for interactive use and
// tests; production training runs override SearchIterations and the
// noise parameters per environment family.
func DefaultConfig() Config {
	return Config{
		SearchIterations: 800,
		CPuct:            1.25,
		Temperature:      1.0,
		DirichletWeight:  0.25,
		DirichletAlpha:   0.3,
		EnablePruning:    false,
	}
}

// Validate reports an InvariantViolation if the configuration cannot
// produce a meaningful search.
func (c Config) Validate() error {
	if c.SearchIterations <= 0 {
		return InvariantViolation("mcts: search_iterations must be positive, got %d", c.SearchIterations)
	}
	if c.Temperature < 0 {
		return InvariantViolation("mcts: temperature must be non-negative, got %v", c.Temperature)
	}
	if c.CPuct < 0 {
		return InvariantViolation("mcts: c_puct must be non-negative, got %v", c.CPuct)
	}
	return nil
}
