// Package dualnet implements the two-headed (policy + value) oracle
// network: a shared trunk of dense layers feeding a softmax policy head
// and a tanh-bounded value head, built on gorgonia.org/gorgonia.
package dualnet

// Config configures the network shape, keyed off a flat observation
// length rather than a board size, so one config shape serves both a
// flattened Flood-It grid and a flattened stowage bay+schedule.
type Config struct {
	SharedLayers int `json:"shared_layers"` // number of shared dense blocks
	FC           int `json:"fc"`            // hidden layer width
	BatchSize    int `json:"batch_size"`    // training batch size
	Features     int `json:"features"`      // length of Observation()
	ActionSpace  int `json:"action_space"`  // policy head width
}

// DefaultConfig scales the hidden width off the observation length (the
// next power of two at or above twice it); the shared-layer count is
// fixed at 2 and the batch size at 256.
func DefaultConfig(features, actionSpace int) Config {
	fc := nextPow2(features * 2)
	return Config{
		SharedLayers: 2,
		FC:           fc,
		BatchSize:    256,
		Features:     features,
		ActionSpace:  actionSpace,
	}
}

// IsValid reports whether the configuration can build a well-formed
// graph.
func (c Config) IsValid() bool {
	return c.Features > 0 &&
		c.ActionSpace >= 2 &&
		c.SharedLayers >= 1 &&
		c.FC > 1 &&
		c.BatchSize >= 1
}

// nextPow2 rounds a up to the next power of two.
func nextPow2(a int) int {
	n := a - 1
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n++
	return n
}
