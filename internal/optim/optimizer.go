// Package optim implements the optimization algorithms that drive
// training.
//
// This package provides:
//   - Optimizer interface: the step/zero contract used by the trainer
//   - Adam: adaptive moment estimation with bias correction
//   - SGD: stochastic gradient descent with optional momentum
//
// Optimizers read the gradients accumulated on each parameter by the
// layers' backward passes and update the parameter values in place.
package optim

import "github.com/scriven-ml/scriven/internal/nn"

// Optimizer is the base interface for all optimization algorithms.
type Optimizer interface {
	// Step applies one gradient update to all parameters in place,
	// using the gradients currently accumulated on them.
	Step()

	// ZeroGrad clears all parameter gradients. Call before each
	// backward pass to prevent gradient accumulation across batches.
	ZeroGrad()

	// LR returns the current learning rate.
	LR() float64
}

func zeroGrads(params []*nn.Parameter) {
	for _, p := range params {
		p.ZeroGrad()
	}
}
