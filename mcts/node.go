package mcts

import (
	"sort"

	"github.com/chewxy/math32"
	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/portstow/az/env"
)

// Node is one state in the search tree. A Node exclusively owns its
// environment snapshot and its children; dropping a subtree (Close)
// releases every owned environment in post-order. Node carries no
// internal mutex: a tree belongs to exactly one actor goroutine for its
// whole lifetime, so a lock would be pure overhead.
type Node struct {
	Env    env.Env
	Parent *Node
	Action int // the action that produced this node; meaningless at the root

	// Prior is P(a), set once at construction from the parent's policy.
	// nil only at the root, where there is no parent action.
	Prior *float32

	// QInit is the value used as Q before this node has ever been
	// visited: the parent's (depth-cost-adjusted) state value, so
	// unvisited children aren't automatically preferred over visited
	// ones by a naive zero default.
	QInit float32

	N uint32  // visit_count
	W float64 // total_action_value, accumulated in float64 for precision

	Depth int
	// Children is keyed by action; keys are always a subset of the
	// legal-action mask observed at Env.
	Children map[int]*Node

	Pruned          bool
	NoValidChildren bool

	closed bool
}

// NewRoot constructs a fresh root node owning e. prior is nil and depth
// is zero.
func NewRoot(e env.Env) *Node {
	trackHandleAcquired()
	return &Node{Env: e}
}

// IsLeaf reports whether the node has not yet been expanded.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// QSA returns Q(s, a): the running mean action value once the node has
// been visited, or QInit beforehand.
func (n *Node) QSA() float32 {
	if n.N == 0 {
		return n.QInit
	}
	return float32(n.W / float64(n.N))
}

// addChild inserts a new child for action, owning childEnv, with prior
// probability p and initial Q qInit. Depth is one more than the parent's.
func (n *Node) addChild(action int, childEnv env.Env, p float32, qInit float32) *Node {
	trackHandleAcquired()
	prior := p
	child := &Node{
		Env:    childEnv,
		Parent: n,
		Action: action,
		Prior:  &prior,
		QInit:  qInit,
		Depth:  n.Depth + 1,
	}
	if n.Children == nil {
		n.Children = make(map[int]*Node)
	}
	n.Children[action] = child
	return child
}

// sortedActions returns the keys of children in ascending order, giving
// every action-indexed walk (selection, noise, policy extraction) a
// deterministic order and tie-break rule.
func sortedActions(children map[int]*Node) []int {
	actions := make([]int, 0, len(children))
	for a := range children {
		actions = append(actions, a)
	}
	sort.Ints(actions)
	return actions
}

// SelectChild returns the unpruned child maximizing the PUCT score
//
//	score(c) = norm(Q(c)) + c_puct * P(c) * sqrt(N(parent)) / (1 + N(c))
//
// where N(parent) is taken as the sum of N over the unpruned children
// (see below), not the parent's own N field. Ties are broken by the lowest action index, since actions are visited
// in ascending order and only a strictly greater score replaces the
// incumbent.
func (n *Node) SelectChild(mm *MinMaxStats, cPuct float32) (*Node, error) {
	if len(n.Children) == 0 {
		return nil, InvariantViolation("mcts: select_child called on a node with no children")
	}

	// parentVisits sums only unpruned children's N rather than reading
	// n.N directly. While every child survives the two differ by exactly
	// one (the backup convention keeps n.N == sum(children.N)+1, the extra
	// visit being n's own expansion), but once pruning removes a branch,
	// n.N still carries its stale visits forever while this sum reflects
	// only the live exploration budget PUCT should weigh against.
	var parentVisits uint32
	for _, c := range n.Children {
		if !c.Pruned {
			parentVisits += c.N
		}
	}
	numerator := math32.Sqrt(float32(parentVisits))

	var best *Node
	bestScore := math32.Inf(-1)
	for _, a := range sortedActions(n.Children) {
		c := n.Children[a]
		if c.Pruned {
			continue
		}
		explore := cPuct * (*c.Prior) * numerator / (1 + float32(c.N))
		score := mm.Normalize(c.QSA()) + explore
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if best == nil {
		return nil, InvariantViolation("mcts: no unpruned children to select from")
	}
	return best, nil
}

// AddNoise perturbs this node's children's priors with Dirichlet(alpha)
// noise. Called at the root only, exactly once per search call. With
// epsilon <= 0 it is a no-op, both for speed and so that priors never
// change when noise is disabled, without relying on floating-point
// identities of a 0-weighted mix.
func (n *Node) AddNoise(alpha float64, epsilon float32, src distrand.Source) error {
	if epsilon <= 0 || len(n.Children) == 0 {
		return nil
	}
	actions := sortedActions(n.Children)
	if len(actions) == 1 {
		// A single-category Dirichlet always draws 1; noise cannot
		// change a lone prior's relative weight, so skip the draw.
		return nil
	}

	alphaVec := make([]float64, len(actions))
	for i := range alphaVec {
		alphaVec[i] = alpha
	}
	dir, ok := distmv.NewDirichlet(alphaVec, src)
	if !ok {
		return InvariantViolation("mcts: invalid dirichlet alpha %v", alpha)
	}
	sample := dir.Rand(nil)
	for i, a := range actions {
		c := n.Children[a]
		p := (1-epsilon)*(*c.Prior) + epsilon*float32(sample[i])
		c.Prior = &p
	}
	return nil
}

// Backup applies one backup step to this node only: N+=1, W+=v. Q is
// derived on read via QSA.
func (n *Node) Backup(v float32) {
	n.N++
	n.W += float64(v)
}

// BackupPath walks from this node up to the root (inclusive), applying
// Backup at every step. Expressed iteratively since trees can grow deep.
// Every node on the path, including the root, is incremented, so that
// sum(child.N) + 1 == parent.N holds at every internal node.
func (n *Node) BackupPath(v float32) {
	for cur := n; cur != nil; cur = cur.Parent {
		cur.Backup(v)
	}
}

// Prune marks this node pruned. It is excluded from future selection and
// can never be unpruned (property 4). If every child of the parent is
// now pruned, the parent becomes no_valid_children and the marking
// propagates further up.
func (n *Node) Prune() {
	n.Pruned = true
	if n.Parent != nil {
		n.Parent.refreshNoValidChildren()
	}
}

func (n *Node) refreshNoValidChildren() {
	if n.NoValidChildren || len(n.Children) == 0 {
		return
	}
	for _, c := range n.Children {
		if !c.Pruned {
			return
		}
	}
	n.NoValidChildren = true
	if n.Parent != nil {
		n.Parent.refreshNoValidChildren()
	}
}

// Detach severs this node from its parent and clears its prior, turning
// it into a new root for tree reuse.
func (n *Node) Detach() {
	n.Parent = nil
	n.Prior = nil
}

// Close releases this node's owned environment and, recursively, every
// descendant's, in post-order: children first, then this node's own
// environment. Safe to call more than once.
func (n *Node) Close() {
	if n.closed {
		return
	}
	n.closed = true
	for _, c := range n.Children {
		c.Close()
	}
	if n.Env != nil {
		n.Env.Close()
	}
	trackHandleReleased()
}
