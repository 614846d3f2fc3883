// Package az is the top-level entry point: it wires together the
// oracle, the inference server, the actor pool, and the replay buffer
// into one self-play-and-train loop.
package az

import (
	"github.com/portstow/az/dualnet"
	"github.com/portstow/az/mcts"
)

// Config holds every tunable that shapes a training run: the network
// shape, the search parameters, and how training batches are drawn from
// the replay buffer.
type Config struct {
	Name        string         `json:"name"`
	NNConf      dualnet.Config `json:"nn_conf"`
	MCTSConf    mcts.Config    `json:"mcts_conf"`
	Workers     int            `json:"workers"`
	BatchSize   int            `json:"batch_size"`
	MaxExamples int            `json:"max_examples"`
}

// IsValid reports whether every sub-configuration can build a working
// run.
func (c Config) IsValid() bool {
	return c.NNConf.IsValid() && c.MCTSConf.Validate() == nil && c.Workers > 0 && c.BatchSize > 0
}
