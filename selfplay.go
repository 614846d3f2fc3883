package az

import (
	"context"
	"math/rand"
	"time"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/portstow/az/actor"
	"github.com/portstow/az/dualnet"
	"github.com/portstow/az/inference"
	"github.com/portstow/az/replay"
)

// Run owns one complete training loop: it starts an inference server in
// front of net, launches cfg.Workers self-play actors feeding buffer,
// and trains net against sampled batches every epoch, swapping the
// updated weights back into the inference server between epochs.
type Run struct {
	cfg    Config
	net    *dualnet.Network
	server *inference.Server
	buffer *replay.Buffer
	pool   *actor.Pool
}

// Start begins self-play against net under ctx, using newEnv to produce
// a fresh starting environment per episode.
func Start(ctx context.Context, cfg Config, net *dualnet.Network, newEnv actor.EnvFactory) (*Run, error) {
	if !cfg.IsValid() {
		return nil, errors.Errorf("az: invalid config %+v", cfg)
	}

	server := inference.NewServer(net, cfg.NNConf.BatchSize, 20*time.Millisecond)
	buffer := replay.New(cfg.MaxExamples)

	pool := actor.Start(ctx, actor.Config{
		Workers:    cfg.Workers,
		Seed:       uint64(time.Now().UnixNano()),
		MCTSConfig: cfg.MCTSConf,
		NewEnv:     newEnv,
		Server:     server,
		Buffer:     buffer,
	})

	return &Run{cfg: cfg, net: net, server: server, buffer: buffer, pool: pool}, nil
}

// TrainEpoch samples one batch from the replay buffer and runs iters
// Adam steps against it, then pushes the updated weights to the
// inference server so in-flight actors pick them up on their next
// request.
func (r *Run) TrainEpoch(iters int, src *rand.Rand) error {
	examples, ok := r.buffer.Sample(r.cfg.NNConf.BatchSize, src)
	if !ok {
		return errors.New("az: replay buffer does not yet hold a full batch")
	}

	xs, policies, values := toTensors(examples, r.cfg.NNConf)
	if err := dualnet.Train(r.net, xs, policies, values, iters); err != nil {
		return err
	}

	r.server.Swap(r.net)
	return nil
}

// Close stops self-play and the inference server. The pool is closed
// first so every actor's in-flight Predict call finishes against the
// still-running server, then the server is stopped; reversing this
// order would leave an actor's send on the server's requests channel
// with no reader, deadlocking shutdown.
func (r *Run) Close() error {
	err := r.pool.Close()
	r.server.Close()
	return err
}

func toTensors(examples []replay.Example, nnConf dualnet.Config) (xs, policies, values *tensor.Dense) {
	batch := len(examples)
	xsBacking := make([]float32, 0, batch*nnConf.Features)
	policiesBacking := make([]float32, 0, batch*nnConf.ActionSpace)
	valuesBacking := make([]float32, 0, batch)

	for _, ex := range examples {
		xsBacking = append(xsBacking, []float32(ex.Observation)...)
		policiesBacking = append(policiesBacking, ex.Policy...)
		valuesBacking = append(valuesBacking, ex.Value)
	}

	xs = tensor.New(tensor.WithShape(batch, nnConf.Features), tensor.WithBacking(xsBacking))
	policies = tensor.New(tensor.WithShape(batch, nnConf.ActionSpace), tensor.WithBacking(policiesBacking))
	values = tensor.New(tensor.WithShape(batch, 1), tensor.WithBacking(valuesBacking))
	return
}
