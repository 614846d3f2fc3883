package az

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/portstow/az/dualnet"
	"github.com/portstow/az/mcts"
)

func validConfig() Config {
	return Config{
		Name:        "test",
		NNConf:      dualnet.DefaultConfig(8, 4),
		MCTSConf:    mcts.DefaultConfig(),
		Workers:     2,
		BatchSize:   32,
		MaxExamples: 1000,
	}
}

func TestConfig_IsValid(t *testing.T) {
	assert.True(t, validConfig().IsValid())
}

func TestConfig_InvalidWithZeroWorkers(t *testing.T) {
	cfg := validConfig()
	cfg.Workers = 0
	assert.False(t, cfg.IsValid())
}

func TestConfig_InvalidWithBadMCTSConf(t *testing.T) {
	cfg := validConfig()
	cfg.MCTSConf.SearchIterations = 0
	assert.False(t, cfg.IsValid())
}
