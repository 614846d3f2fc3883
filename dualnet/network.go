package dualnet

import (
	"fmt"
	"math"
	"math/rand"

	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"

	"github.com/portstow/az/env"
)

// Network is a dense dual-headed policy/value estimator: a shared trunk
// of SharedLayers fully-connected+ReLU blocks feeding a softmax policy
// head and a tanh value head. Weights are held as plain *tensor.Dense
// values so a Network gob-encodes directly (see az.Save/az.Load), and the
// forward graph is rebuilt fresh per call from those weights, since
// Predict batches vary in size from a single mcts leaf to a full
// training epoch and gorgonia graphs are shape-static.
type Network struct {
	Config

	// Weight fields are exported so gob can checkpoint them directly
	// (az.Save/az.Load).
	SharedW, SharedB []*tensor.Dense
	PolicyW, PolicyB *tensor.Dense
	ValueW, ValueB   *tensor.Dense
}

// NewNetwork allocates a network with Glorot-initialized weights for cfg.
func NewNetwork(cfg Config) (*Network, error) {
	if !cfg.IsValid() {
		return nil, fmt.Errorf("dualnet: invalid config %+v", cfg)
	}
	n := &Network{Config: cfg}

	in := cfg.Features
	for i := 0; i < cfg.SharedLayers; i++ {
		n.SharedW = append(n.SharedW, glorot(in, cfg.FC))
		n.SharedB = append(n.SharedB, zeros(cfg.FC))
		in = cfg.FC
	}
	n.PolicyW = glorot(in, cfg.ActionSpace)
	n.PolicyB = zeros(cfg.ActionSpace)
	n.ValueW = glorot(in, 1)
	n.ValueB = zeros(1)
	return n, nil
}

func glorot(in, out int) *tensor.Dense {
	limit := math.Sqrt(6.0 / float64(in+out))
	backing := make([]float32, in*out)
	for i := range backing {
		backing[i] = float32((rand.Float64()*2 - 1) * limit)
	}
	return tensor.New(tensor.WithShape(in, out), tensor.WithBacking(backing))
}

func zeros(n int) *tensor.Dense {
	return tensor.New(tensor.WithShape(1, n), tensor.WithBacking(make([]float32, n)))
}

// graph bundles the nodes buildGraph produces, so callers can both run a
// forward pass and, for training, take gradients against params.
type graph struct {
	expr                *gorgonia.ExprGraph
	input               *gorgonia.Node
	policyOut, valueOut *gorgonia.Node
	params              []*gorgonia.Node // parallels paramTensors in order
	paramTensors        []*tensor.Dense
}

// buildGraph constructs the forward computation for a batch of the given
// size, wiring every weight/bias as a graph node initialized from this
// Network's stored tensors.
func (n *Network) buildGraph(batch int) (*graph, error) {
	g := gorgonia.NewGraph()
	input := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(batch, n.Features), gorgonia.WithName("input"))

	gr := &graph{expr: g, input: input}
	h := input

	addParam := func(t *tensor.Dense, name string) *gorgonia.Node {
		node := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(t.Shape()...), gorgonia.WithName(name), gorgonia.WithValue(t))
		gr.params = append(gr.params, node)
		gr.paramTensors = append(gr.paramTensors, t)
		return node
	}

	for i := 0; i < n.SharedLayers; i++ {
		w := addParam(n.SharedW[i], fmt.Sprintf("shared_w%d", i))
		b := addParam(n.SharedB[i], fmt.Sprintf("shared_b%d", i))
		mul, err := gorgonia.Mul(h, w)
		if err != nil {
			return nil, err
		}
		biased, err := gorgonia.BroadcastAdd(mul, b, nil, []byte{0})
		if err != nil {
			return nil, err
		}
		h, err = gorgonia.Rectify(biased)
		if err != nil {
			return nil, err
		}
	}

	pw := addParam(n.PolicyW, "policy_w")
	pb := addParam(n.PolicyB, "policy_b")
	pMul, err := gorgonia.Mul(h, pw)
	if err != nil {
		return nil, err
	}
	pBiased, err := gorgonia.BroadcastAdd(pMul, pb, nil, []byte{0})
	if err != nil {
		return nil, err
	}
	policyOut, err := gorgonia.SoftMax(pBiased)
	if err != nil {
		return nil, err
	}

	vw := addParam(n.ValueW, "value_w")
	vb := addParam(n.ValueB, "value_b")
	vMul, err := gorgonia.Mul(h, vw)
	if err != nil {
		return nil, err
	}
	vBiased, err := gorgonia.BroadcastAdd(vMul, vb, nil, []byte{0})
	if err != nil {
		return nil, err
	}
	valueOut, err := gorgonia.Tanh(vBiased)
	if err != nil {
		return nil, err
	}

	gr.policyOut, gr.valueOut = policyOut, valueOut
	return gr, nil
}

// Predict implements mcts.Oracle. The engine only ever calls it with a
// single-element batch; the inference server (package inference) is what
// coalesces multiple actors' requests into a larger batch here.
func (n *Network) Predict(batch []env.Observation) ([][]float32, []float32, error) {
	if len(batch) == 0 {
		return nil, nil, nil
	}

	gr, err := n.buildGraph(len(batch))
	if err != nil {
		return nil, nil, err
	}

	backing := make([]float32, 0, len(batch)*n.Features)
	for _, obs := range batch {
		backing = append(backing, []float32(obs)...)
	}
	xt := tensor.New(tensor.WithShape(len(batch), n.Features), tensor.WithBacking(backing))
	if err := gorgonia.Let(gr.input, xt); err != nil {
		return nil, nil, err
	}

	vm := gorgonia.NewTapeMachine(gr.expr)
	defer vm.Close()
	if err := vm.RunAll(); err != nil {
		return nil, nil, err
	}

	pv := gr.policyOut.Value().Data().([]float32)
	policies := make([][]float32, len(batch))
	for i := range batch {
		policies[i] = append([]float32(nil), pv[i*n.ActionSpace:(i+1)*n.ActionSpace]...)
	}

	vv := gr.valueOut.Value().Data().([]float32)
	values := append([]float32(nil), vv...)

	return policies, values, nil
}
