// Package nn implements the neural network layers used by the scriven
// digit classifier.
//
// This package provides the building blocks the model interpreter stacks
// into a network:
//   - Layer interface: forward/backward contract for all layers
//   - Parameter: trainable tensor with an accumulated gradient
//   - Conv2D, MaxPool2D, BatchNorm, Dropout, Flatten, Dense
//   - Activations: ReLU, Softmax
//   - CrossEntropy loss and Accuracy
//
// Layers own their backward pass: each caches what it needs during
// Forward and maps the incoming output gradient to an input gradient,
// accumulating parameter gradients along the way.
package nn

import "github.com/scriven-ml/scriven/tensor"

// Layer is the base interface for all network layers.
//
// Forward computes the layer output. The train flag switches behavior
// for layers that act differently during training (Dropout, BatchNorm).
//
// Backward consumes the gradient of the loss with respect to the
// layer's output and returns the gradient with respect to its input.
// It must be called after Forward, with a gradient of the same shape
// as the last Forward output.
type Layer interface {
	Forward(x *tensor.Tensor, train bool) *tensor.Tensor
	Backward(grad *tensor.Tensor) *tensor.Tensor

	// Params returns all trainable parameters. Layers without
	// trainable state return an empty slice.
	Params() []*Parameter
}

// Parameter represents a trainable parameter of a layer.
//
// The gradient is accumulated by the layer's Backward pass and consumed
// by the optimizer; ZeroGrad resets it between steps.
type Parameter struct {
	name  string
	value *tensor.Tensor
	grad  *tensor.Tensor
}

// NewParameter creates a trainable parameter around an initialized tensor.
func NewParameter(name string, value *tensor.Tensor) *Parameter {
	return &Parameter{
		name:  name,
		value: value,
		grad:  tensor.Zeros(value.Shape()),
	}
}

// Name returns the parameter name (e.g. "conv2d.weight").
func (p *Parameter) Name() string {
	return p.name
}

// Value returns the parameter tensor.
func (p *Parameter) Value() *tensor.Tensor {
	return p.value
}

// Grad returns the accumulated gradient tensor.
func (p *Parameter) Grad() *tensor.Tensor {
	return p.grad
}

// ZeroGrad clears the accumulated gradient.
//
// Call before each training step to avoid mixing gradients from
// previous batches.
func (p *Parameter) ZeroGrad() {
	data := p.grad.Data()
	for i := range data {
		data[i] = 0
	}
}
