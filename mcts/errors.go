package mcts

import "github.com/pkg/errors"

// ErrRootExhausted signals that the root has no_valid_children: every
// legal action has been pruned or is terminal-dominated. The caller
// (episode.Player) recovers from this; it is not fatal to the process.
var ErrRootExhausted = errors.New("mcts: root has no valid children")

// errTruncatedSelection signals that the current simulation hit a node
// that met the prune predicate mid-descent. The search loop does not
// count the simulation and re-enters selection from the root.
var errTruncatedSelection = errors.New("mcts: selection truncated by pruning")

// InvariantViolation constructs a fatal error for a broken tree
// invariant (e.g. a child keyed on an illegal action, a negative visit
// count). Pruning and transposition reuse must never swallow it; the
// caller should abort the actor with the full context the wrapped stack
// trace provides.
func InvariantViolation(format string, args ...interface{}) error {
	return errors.Errorf(format, args...)
}

// ErrOracleUnavailable is the sentinel for an oracle that cannot answer (a
// closed inference connection, a timeout). The engine does not wrap oracle
// errors in it: Search returns whatever error the oracle's Predict
// returned, unchanged, and never retries internally; it is the actor's
// job to decide whether to end the episode.
var ErrOracleUnavailable = errors.New("mcts: oracle unavailable")
