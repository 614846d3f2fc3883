package dualnet

import (
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Train runs iters Adam update steps against one batch of (xs, policies,
// values) tensors, minimizing softmax cross-entropy on the policy head
// plus mean-squared error on the value head.
func Train(n *Network, xs, policies, values *tensor.Dense, iters int) error {
	batch := xs.Shape()[0]
	gr, err := n.buildGraph(batch)
	if err != nil {
		return err
	}
	g := gr.expr

	if err := gorgonia.Let(gr.input, xs); err != nil {
		return err
	}

	targetPolicy := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(batch, n.ActionSpace), gorgonia.WithName("target_policy"))
	if err := gorgonia.Let(targetPolicy, policies); err != nil {
		return err
	}
	targetValue := gorgonia.NewMatrix(g, tensor.Float32, gorgonia.WithShape(batch, 1), gorgonia.WithName("target_value"))
	if err := gorgonia.Let(targetValue, values); err != nil {
		return err
	}

	logPolicy, err := gorgonia.Log(gr.policyOut)
	if err != nil {
		return err
	}
	weighted, err := gorgonia.HadamardProd(targetPolicy, logPolicy)
	if err != nil {
		return err
	}
	perExample, err := gorgonia.Sum(weighted, 1)
	if err != nil {
		return err
	}
	negPerExample, err := gorgonia.Neg(perExample)
	if err != nil {
		return err
	}
	policyLoss, err := gorgonia.Mean(negPerExample)
	if err != nil {
		return err
	}

	diff, err := gorgonia.Sub(gr.valueOut, targetValue)
	if err != nil {
		return err
	}
	sq, err := gorgonia.Square(diff)
	if err != nil {
		return err
	}
	valueLoss, err := gorgonia.Mean(sq)
	if err != nil {
		return err
	}

	loss, err := gorgonia.Add(policyLoss, valueLoss)
	if err != nil {
		return err
	}
	if _, err := gorgonia.Grad(loss, gr.params...); err != nil {
		return err
	}

	vm := gorgonia.NewTapeMachine(g, gorgonia.BindDualValues(gr.params...))
	defer vm.Close()
	solver := gorgonia.NewAdamSolver(gorgonia.WithLearnRate(1e-3))

	for i := 0; i < iters; i++ {
		vm.Reset()
		if err := vm.RunAll(); err != nil {
			return err
		}
		if err := solver.Step(gorgonia.NodesToValueGrads(gr.params)); err != nil {
			return err
		}
	}

	n.writeBack(gr)
	return nil
}

// writeBack copies each trained parameter node's final value back into
// this Network's persisted tensors, so the next Predict/Train call (and
// any checkpoint save) sees the updated weights.
func (n *Network) writeBack(gr *graph) {
	for i, t := range gr.paramTensors {
		updated := gr.params[i].Value().(*tensor.Dense)
		copy(t.Data().([]float32), updated.Data().([]float32))
	}
}
