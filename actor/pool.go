// Package actor runs a pool of self-play workers, each owning one
// episode.Player and one inference.Connection, feeding a shared
// replay.Buffer. Workers run as goroutines rather than separate
// processes, since a single Go binary can hold every actor's address
// space safely.
package actor

import (
	"context"
	"math/rand"

	"github.com/hashicorp/go-multierror"

	"github.com/portstow/az/env"
	"github.com/portstow/az/episode"
	"github.com/portstow/az/inference"
	"github.com/portstow/az/mcts"
	"github.com/portstow/az/replay"
)

// EnvFactory produces a fresh starting environment for a new episode,
// given a seeded PRNG for any domain randomization (board layout,
// container schedule).
type EnvFactory func(rng *rand.Rand) env.Env

// Pool runs Workers actor goroutines against a shared Server and Buffer
// until Close is called or ctx is cancelled. A stop signal only takes
// effect between episodes, never mid-search.
type Pool struct {
	cancel context.CancelFunc
	done   chan error
	count  int
}

// Config bundles the per-worker construction parameters.
type Config struct {
	Workers       int
	Seed          uint64
	MCTSConfig    mcts.Config
	NewEnv        EnvFactory
	Server        *inference.Server
	Buffer        *replay.Buffer
	Deterministic bool
}

// Start launches cfg.Workers actor goroutines under ctx and returns a
// Pool handle. Each worker gets an independent PRNG seeded from
// cfg.Seed plus its index.
func Start(ctx context.Context, cfg Config) *Pool {
	ctx, cancel := context.WithCancel(ctx)
	p := &Pool{cancel: cancel, done: make(chan error, cfg.Workers), count: cfg.Workers}

	for i := 0; i < cfg.Workers; i++ {
		go p.run(ctx, cfg, i)
	}
	return p
}

func (p *Pool) run(ctx context.Context, cfg Config, idx int) {
	defer mcts.CheckResourceLeaks()

	seed := cfg.Seed + uint64(idx)
	rng := rand.New(rand.NewSource(int64(seed)))
	conn := inference.NewConnection(cfg.Server)

	var lastErr error
	for {
		if ctx.Err() != nil {
			p.done <- lastErr
			return
		}

		engine, err := mcts.New(cfg.MCTSConfig, conn, seed)
		if err != nil {
			p.done <- err
			return
		}
		player := episode.New(engine, rng, cfg.Deterministic)

		root := mcts.NewRoot(cfg.NewEnv(rng))
		examples, err := player.Run(root)
		if err != nil && err != episode.ErrTruncated {
			lastErr = err
			p.done <- lastErr
			return
		}
		cfg.Buffer.Extend(examples)

		// A truncated episode is recoverable: the examples gathered so
		// far are still pushed above, and the worker moves on to the
		// next episode.
		seed += uint64(cfg.Workers)
	}
}

// Close cancels every worker and waits for them to finish their current
// episode, aggregating any terminal errors with go-multierror.
func (p *Pool) Close() error {
	p.cancel()
	var result *multierror.Error
	for i := 0; i < p.count; i++ {
		if err := <-p.done; err != nil {
			result = multierror.Append(result, err)
		}
	}
	return result.ErrorOrNil()
}
