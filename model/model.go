// Copyright 2025 Scriven ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package model defines the digit classifier architectures and builds
// runnable networks from their declarative descriptions.
//
// Two fixed architectures are provided: Baseline, a compact three-block
// convolutional net, and Improved, a deeper variant with batch
// normalization and dropout. Both take [N, 1, 28, 28] images and emit
// probabilities over the ten digit classes.
package model

import (
	"fmt"
	"math/rand"

	"github.com/scriven-ml/scriven/internal/nn"
	"github.com/scriven-ml/scriven/tensor"
)

// Input dimensions shared by every architecture.
const (
	InputChannels = 1
	InputSize     = 28
	NumClasses    = 10
)

// Arch is a named, ordered layer list.
type Arch struct {
	Name   string
	Layers []LayerSpec
}

// Baseline is the compact reference architecture: three conv blocks,
// two pooling stages and a small dense head.
func Baseline() Arch {
	return Arch{
		Name: "baseline",
		Layers: []LayerSpec{
			Conv(32, 3), ReLU(),
			MaxPool(2),
			Conv(64, 3), ReLU(),
			MaxPool(2),
			Conv(64, 3), ReLU(),
			Flatten(),
			Dense(64), ReLU(),
			Dense(NumClasses),
			Softmax(),
		},
	}
}

// Improved is the regularized architecture: wider 5x5 convolutions with
// batch normalization and dropout, feeding a deep dense head.
func Improved() Arch {
	return Arch{
		Name: "improved",
		Layers: []LayerSpec{
			BatchNorm(),
			Conv(32, 5), ReLU(),
			BatchNorm(),
			Conv(32, 5), ReLU(),
			MaxPool(2),
			Dropout(0.2),
			BatchNorm(),
			Conv(64, 3), ReLU(),
			MaxPool(2),
			Dropout(0.2),
			Flatten(),
			Dense(1024), ReLU(),
			Dense(512), ReLU(),
			Dense(256), ReLU(),
			Dense(NumClasses),
			Softmax(),
		},
	}
}

// ByName resolves an architecture from its configuration name.
func ByName(name string) (Arch, error) {
	switch name {
	case "baseline":
		return Baseline(), nil
	case "improved":
		return Improved(), nil
	default:
		return Arch{}, fmt.Errorf("model: unknown architecture %q (want baseline or improved)", name)
	}
}

// Network is a built classifier. Logits runs the layers beneath the
// output softmax; Predict adds the softmax to produce probabilities.
type Network struct {
	arch   string
	layers []nn.Layer
}

// Build materializes an architecture into a network with freshly
// initialized parameters drawn from the seeded source.
func Build(arch Arch, seed int64) (*Network, error) {
	rng := rand.New(rand.NewSource(seed))

	if len(arch.Layers) == 0 {
		return nil, fmt.Errorf("model: architecture %q has no layers", arch.Name)
	}
	last := arch.Layers[len(arch.Layers)-1]
	if last.Kind != KindSoftmax {
		return nil, fmt.Errorf("model: architecture %q must end in softmax, got %s", arch.Name, last.Kind)
	}

	// Walk the layer list tracking the activation shape so conv input
	// channels and dense fan-in never have to be spelled out.
	channels, height, width := InputChannels, InputSize, InputSize
	flat := 0 // dense fan-in once flattened; 0 while still spatial

	var layers []nn.Layer
	for i, spec := range arch.Layers[:len(arch.Layers)-1] {
		switch spec.Kind {
		case KindConv:
			if flat != 0 {
				return nil, fmt.Errorf("model: %s layer %d: conv after flatten", arch.Name, i)
			}
			conv := nn.NewConv2D(channels, spec.Filters, spec.Kernel, spec.Kernel, 1, 0, rng)
			height, width = conv.OutputSize(height, width)
			if height <= 0 || width <= 0 {
				return nil, fmt.Errorf("model: %s layer %d: %dx%d kernel exhausts the input", arch.Name, i, spec.Kernel, spec.Kernel)
			}
			channels = spec.Filters
			layers = append(layers, conv)

		case KindMaxPool:
			if flat != 0 {
				return nil, fmt.Errorf("model: %s layer %d: maxpool after flatten", arch.Name, i)
			}
			layers = append(layers, nn.NewMaxPool2D(spec.Kernel, spec.Kernel))
			height = (height-spec.Kernel)/spec.Kernel + 1
			width = (width-spec.Kernel)/spec.Kernel + 1

		case KindBatchNorm:
			if flat != 0 {
				return nil, fmt.Errorf("model: %s layer %d: batchnorm after flatten", arch.Name, i)
			}
			layers = append(layers, nn.NewBatchNorm(channels, 1e-5, 0.9))

		case KindDropout:
			layers = append(layers, nn.NewDropout(spec.Rate, rng))

		case KindFlatten:
			flat = channels * height * width
			layers = append(layers, nn.NewFlatten())

		case KindDense:
			if flat == 0 {
				return nil, fmt.Errorf("model: %s layer %d: dense before flatten", arch.Name, i)
			}
			layers = append(layers, nn.NewDense(flat, spec.Units, rng))
			flat = spec.Units

		case KindReLU:
			layers = append(layers, nn.NewReLU())

		case KindSoftmax:
			return nil, fmt.Errorf("model: %s layer %d: softmax before the end of the network", arch.Name, i)

		default:
			return nil, fmt.Errorf("model: %s layer %d: unknown kind %s", arch.Name, i, spec.Kind)
		}
	}

	if flat != NumClasses {
		return nil, fmt.Errorf("model: architecture %q produces %d outputs, want %d", arch.Name, flat, NumClasses)
	}

	return &Network{arch: arch.Name, layers: layers}, nil
}

// Name returns the architecture name the network was built from.
func (n *Network) Name() string { return n.arch }

// Logits runs the forward pass up to (not including) the output
// softmax. The loss consumes logits directly for numerical stability.
func (n *Network) Logits(x *tensor.Tensor, train bool) *tensor.Tensor {
	for _, layer := range n.layers {
		x = layer.Forward(x, train)
	}
	return x
}

// Predict runs inference and returns class probabilities, one row per
// input image.
func (n *Network) Predict(x *tensor.Tensor) *tensor.Tensor {
	return nn.SoftmaxRows(n.Logits(x, false))
}

// Backward propagates the loss gradient through every layer,
// accumulating parameter gradients.
func (n *Network) Backward(grad *tensor.Tensor) {
	for i := len(n.layers) - 1; i >= 0; i-- {
		grad = n.layers[i].Backward(grad)
	}
}

// Params returns all trainable parameters in forward order.
func (n *Network) Params() []*nn.Parameter {
	var params []*nn.Parameter
	for _, layer := range n.layers {
		params = append(params, layer.Params()...)
	}
	return params
}
