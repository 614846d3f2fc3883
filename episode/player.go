// Package episode drives one self-play episode to completion, turning
// MCTS search output into replay-buffer training tuples.
package episode

import (
	"errors"
	"math/rand"

	"github.com/portstow/az/env"
	"github.com/portstow/az/mcts"
	"github.com/portstow/az/replay"
)

// ErrTruncated is returned when the engine signals root exhaustion
// (mcts.ErrRootExhausted) mid-episode. The caller still receives the
// examples recorded so far, each backfilled with a pessimistic value.
var ErrTruncated = errors.New("episode: truncated by root exhaustion")

// step records one decision point pending its value backfill.
type step struct {
	observation env.Observation
	policy      []float32
}

// Player runs complete episodes against one Env family using one
// mcts.MCTS engine. A Player and its engine are owned by exactly one
// actor goroutine.
type Player struct {
	engine        *mcts.MCTS
	rng           *rand.Rand
	deterministic bool
}

// New returns a Player driving engine. deterministic selects argmax(π)
// moves instead of sampling, for evaluation runs.
func New(engine *mcts.MCTS, rng *rand.Rand, deterministic bool) *Player {
	return &Player{engine: engine, rng: rng, deterministic: deterministic}
}

// Run plays one episode starting from root (which Run takes ownership
// of) to completion, returning the training tuples produced. On success
// or truncation alike, every environment snapshot the episode owned is
// closed before Run returns.
func (p *Player) Run(root *mcts.Node) ([]replay.Example, error) {
	trans := mcts.NewTranspositionTable()
	var steps []step
	var truncated bool

	for !root.Env.Terminal() {
		probs, err := p.engine.Search(root, trans)
		if err != nil {
			if errors.Is(err, mcts.ErrRootExhausted) {
				truncated = true
				break
			}
			root.Close()
			return nil, err
		}

		action := p.choose(probs)
		steps = append(steps, step{
			observation: root.Env.Observation(),
			policy:      probs,
		})

		next, err := mcts.ReuseChild(root, action)
		if err != nil {
			root.Close()
			return nil, err
		}
		// Release the old root's own environment without touching the
		// reused child, which it still lists among its children.
		delete(root.Children, action)
		root.Close()
		root = next
	}

	finalValue := float32(root.Env.FinalReward())
	if truncated {
		finalValue = pessimisticValue(root)
	}
	root.Close()

	examples := backfill(steps, finalValue)
	if truncated {
		return examples, ErrTruncated
	}
	return examples, nil
}

// choose samples an action from probs, or takes the argmax in
// deterministic (evaluation) mode.
func (p *Player) choose(probs []float32) int {
	if p.deterministic {
		best, bestP := 0, float32(-1)
		for a, pr := range probs {
			if pr > bestP {
				best, bestP = a, pr
			}
		}
		return best
	}
	r := p.rng.Float32()
	var cum float32
	for a, pr := range probs {
		cum += pr
		if r <= cum {
			return a
		}
	}
	// Floating-point slop: fall back to the last nonzero action.
	for a := len(probs) - 1; a >= 0; a-- {
		if probs[a] > 0 {
			return a
		}
	}
	return 0
}

// pessimisticValue is the truncated-episode fallback: whatever reward a
// Boundable environment has accrued so far, or a hard floor otherwise.
func pessimisticValue(n *mcts.Node) float32 {
	if b, ok := n.Env.(env.Boundable); ok {
		return float32(b.TotalReward())
	}
	return -1
}

// backfill assigns each recorded step the bootstrapped value target
// target_i = finalValue + i, i counted from the end of the episode: the
// number of moves still to go from step i.
func backfill(steps []step, finalValue float32) []replay.Example {
	examples := make([]replay.Example, len(steps))
	n := len(steps)
	for i, s := range steps {
		target := finalValue + float32(n-1-i)
		examples[i] = replay.Example{
			Observation: s.observation,
			Policy:      s.policy,
			Value:       target,
		}
	}
	return examples
}
