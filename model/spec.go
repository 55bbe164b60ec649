// Copyright 2025 Scriven ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package model

import "fmt"

// LayerKind identifies a layer type in an architecture description.
// The set is closed: Build rejects kinds it does not know.
type LayerKind int

const (
	KindConv LayerKind = iota
	KindMaxPool
	KindBatchNorm
	KindDropout
	KindFlatten
	KindDense
	KindReLU
	KindSoftmax
)

// String returns the kind's lowercase name.
func (k LayerKind) String() string {
	switch k {
	case KindConv:
		return "conv"
	case KindMaxPool:
		return "maxpool"
	case KindBatchNorm:
		return "batchnorm"
	case KindDropout:
		return "dropout"
	case KindFlatten:
		return "flatten"
	case KindDense:
		return "dense"
	case KindReLU:
		return "relu"
	case KindSoftmax:
		return "softmax"
	default:
		return fmt.Sprintf("LayerKind(%d)", int(k))
	}
}

// LayerSpec is one declarative layer in an architecture. Only the
// fields relevant to the Kind are read; Build derives everything else
// (input channels, dense fan-in) from the running shape.
type LayerSpec struct {
	Kind LayerKind

	Filters int     // conv: output channels
	Kernel  int     // conv, maxpool: square kernel side
	Units   int     // dense: output features
	Rate    float64 // dropout: drop probability
}

// Conv describes a square convolution with the given output channel
// count, stride 1, no padding.
func Conv(filters, kernel int) LayerSpec {
	return LayerSpec{Kind: KindConv, Filters: filters, Kernel: kernel}
}

// MaxPool describes non-overlapping square max pooling.
func MaxPool(kernel int) LayerSpec {
	return LayerSpec{Kind: KindMaxPool, Kernel: kernel}
}

// BatchNorm describes per-channel batch normalization over the current
// channel count.
func BatchNorm() LayerSpec {
	return LayerSpec{Kind: KindBatchNorm}
}

// Dropout describes inverted dropout with the given drop probability.
func Dropout(rate float64) LayerSpec {
	return LayerSpec{Kind: KindDropout, Rate: rate}
}

// Flatten collapses [N, C, H, W] activations to [N, C*H*W].
func Flatten() LayerSpec {
	return LayerSpec{Kind: KindFlatten}
}

// Dense describes a fully connected layer with the given output width.
func Dense(units int) LayerSpec {
	return LayerSpec{Kind: KindDense, Units: units}
}

// ReLU describes a rectified linear activation.
func ReLU() LayerSpec {
	return LayerSpec{Kind: KindReLU}
}

// Softmax marks the classifier output activation. It must be the final
// layer of an architecture; training operates on the logits beneath it.
func Softmax() LayerSpec {
	return LayerSpec{Kind: KindSoftmax}
}
