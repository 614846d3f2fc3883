package mcts

import (
	"github.com/chewxy/math32"
	distrand "golang.org/x/exp/rand"

	"github.com/portstow/az/env"
)

// MCTS runs PUCT search over a tree of Nodes, consulting an Oracle for
// leaf evaluation. One MCTS value is owned by exactly one actor goroutine
// for its whole lifetime.
type MCTS struct {
	Config
	oracle Oracle

	mm          *MinMaxStats
	noiseSource distrand.Source

	// bestKnownScore tracks the best Boundable.TotalReward seen across
	// every terminal this MCTS has ever evaluated, feeding the pruning
	// bound. It persists across Search calls on purpose: pruning only
	// ever gets tighter within one MCTS value's lifetime (actor.Pool builds
	// a fresh engine per episode).
	bestKnownScore float32
}

// New constructs an MCTS engine. seed drives Dirichlet noise sampling
// only; selection and backup are otherwise deterministic given the
// oracle's outputs.
func New(cfg Config, oracle Oracle, seed uint64) (*MCTS, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &MCTS{
		Config:         cfg,
		oracle:         oracle,
		mm:             NewMinMaxStats(),
		noiseSource:    distrand.NewSource(seed),
		bestKnownScore: math32.Inf(-1),
	}, nil
}

// ensureRootExpanded evaluates root once if it has not been expanded yet.
// A reused root (ReuseChild) already has children and is left alone here;
// noise is still (re-)applied by Search on every call.
func (t *MCTS) ensureRootExpanded(root *Node, trans *TranspositionTable) error {
	if !root.IsLeaf() {
		return nil
	}
	if root.Env.Terminal() {
		// A root with no legal continuations has nothing to search;
		// mark it exhausted up front rather than spending iterations
		// re-evaluating the same terminal state.
		root.NoValidChildren = true
		return nil
	}
	value, err := t.evaluate(root, trans)
	if err != nil {
		return err
	}
	root.BackupPath(value)
	t.mm.Update(value)
	return nil
}

// Search runs Config.SearchIterations simulations from root and returns
// the resulting tree policy. root must already own its environment;
// Search uses root.Env in place and copies it only to build children.
// A root that is
// already terminal has nothing to simulate and returns its (degenerate,
// all-zero) tree policy immediately rather than an error: ErrRootExhausted
// is reserved for a root that had legal continuations but lost every one
// of them to pruning mid-search.
func (t *MCTS) Search(root *Node, trans *TranspositionTable) ([]float32, error) {
	if err := t.ensureRootExpanded(root, trans); err != nil {
		return nil, err
	}
	if root.Env.Terminal() {
		return treeProbs(root, t.Temperature), nil
	}
	if err := root.AddNoise(t.DirichletAlpha, t.DirichletWeight, t.noiseSource); err != nil {
		return nil, err
	}

	for i := 0; i < t.SearchIterations; i++ {
		if root.NoValidChildren {
			return nil, ErrRootExhausted
		}
		leaf, err := t.selectLeaf(root)
		if err == errTruncatedSelection {
			continue
		}
		if err != nil {
			return nil, err
		}
		value, err := t.evaluate(leaf, trans)
		if err != nil {
			return nil, err
		}
		leaf.BackupPath(value)
		t.mm.Update(value)
	}

	if root.NoValidChildren {
		return nil, ErrRootExhausted
	}
	return treeProbs(root, t.Temperature), nil
}

// selectLeaf walks from root to an unexpanded node via PUCT, pruning any
// node along the way that shouldPrune flags. A pruned node aborts the
// simulation with errTruncatedSelection rather than a leaf, so the caller
// retries with a fresh simulation rather than evaluating dead wood.
func (t *MCTS) selectLeaf(root *Node) (*Node, error) {
	node := root
	for {
		isLeaf := node.IsLeaf()
		if t.EnablePruning && node != root && t.shouldPrune(node, isLeaf) {
			node.Prune()
			return nil, errTruncatedSelection
		}
		if isLeaf {
			return node, nil
		}
		child, err := node.SelectChild(t.mm, t.CPuct)
		if err != nil {
			return nil, err
		}
		node = child
	}
}

// shouldPrune flags a branch that can no longer beat the best terminal
// score seen so far as dead.
// Environments that don't implement Boundable are never pruned this way.
func (t *MCTS) shouldPrune(n *Node, isLeaf bool) bool {
	if n.NoValidChildren {
		return true
	}
	if !isLeaf {
		return false
	}
	b, ok := n.Env.(env.Boundable)
	if !ok {
		return false
	}
	if b.TotalReward() < t.bestKnownScore {
		return true
	}
	return b.BelowBound()
}

// evaluate returns the value of n, expanding its children from the
// oracle's policy on the first visit. Terminal nodes are scored from
// FinalReward and never expanded.
func (t *MCTS) evaluate(n *Node, trans *TranspositionTable) (float32, error) {
	if n.Env.Terminal() {
		v := float32(n.Env.FinalReward())
		if b, ok := n.Env.(env.Boundable); ok {
			if r := b.TotalReward(); r > t.bestKnownScore {
				t.bestKnownScore = r
			}
		}
		return v, nil
	}

	policy, rawValue, err := trans.GetOrCompute(n.Env.Key(), func() ([]float32, float32, error) {
		policies, values, perr := t.oracle.Predict([]env.Observation{n.Env.Observation()})
		if perr != nil {
			return nil, 0, perr
		}
		if len(policies) == 0 || len(values) == 0 {
			return nil, 0, InvariantViolation("mcts: oracle returned an empty batch for a single-element request")
		}
		return policies[0], values[0], nil
	})
	if err != nil {
		return 0, err
	}

	// Subtract the accumulated per-step depth cost: the oracle's raw
	// value estimates reward-to-go from a fresh episode, so a node n
	// levels deep has already "spent" n steps to get here.
	value := rawValue - float32(n.Depth)

	if err := t.expandChildren(n, policy, value); err != nil {
		return 0, err
	}
	return value, nil
}

// expandChildren creates one child per legal action in n.Env.Mask(), each
// seeded with QInit = value and Prior from policy. Policy vectors from
// stowage-style oracles are first reduced to the live action count via
// ReducePolicy.
func (t *MCTS) expandChildren(n *Node, policy []float32, value float32) error {
	if t.MaxColumns > 0 {
		if cc, ok := n.Env.(env.ColumnCounter); ok {
			policy = ReducePolicy(policy, cc.LiveColumns(), t.MaxColumns)
		}
	}

	mask := n.Env.Mask()
	if len(policy) < len(mask) {
		return InvariantViolation("mcts: policy length %d shorter than mask length %d", len(policy), len(mask))
	}

	any := false
	for a, legal := range mask {
		if !legal {
			continue
		}
		childEnv := n.Env.Copy()
		childEnv.Step(a)
		n.addChild(a, childEnv, policy[a], value)
		any = true
	}
	if !any {
		n.NoValidChildren = true
	}
	return nil
}

// treeProbs extracts the final move-selection distribution from root's
// visit counts. temperature < 1e-3 collapses to a one-hot argmax; an
// exhausted root with every child pruned returns an all-zero vector.
func treeProbs(root *Node, temperature float32) []float32 {
	probs := make([]float32, root.Env.ActionSpace())
	if len(root.Children) == 0 {
		return probs
	}
	actions := sortedActions(root.Children)

	if temperature < 1e-3 {
		best := -1
		var bestN uint32
		for _, a := range actions {
			c := root.Children[a]
			if c.Pruned {
				continue
			}
			if best == -1 || c.N > bestN {
				best, bestN = a, c.N
			}
		}
		if best >= 0 {
			probs[best] = 1.0
		}
		return probs
	}

	var sum float32
	for _, a := range actions {
		c := root.Children[a]
		if c.Pruned {
			continue
		}
		v := math32.Pow(float32(c.N), 1.0/temperature)
		probs[a] = v
		sum += v
	}
	if sum > 0 {
		for i := range probs {
			probs[i] /= sum
		}
	}
	return probs
}
