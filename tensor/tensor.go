// Copyright 2025 Scriven ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the dense float64 tensors used throughout the
// scriven training pipeline.
//
// Tensors are row-major and contiguous: reshaping a [N, 784] pixel table
// to [N, 1, 28, 28] preserves the flattened pixel ordering exactly.
//
// Example:
//
//	x := tensor.Zeros(tensor.Shape{2, 3})
//	y, err := x.Reshape(3, 2) // view over the same storage
package tensor

import (
	"fmt"
	"math/rand"
)

// Tensor is a dense, row-major tensor of float64 values.
//
// The zero value is not usable; construct tensors with Zeros, Full,
// FromSlice or Rand.
type Tensor struct {
	shape Shape
	data  []float64
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor: zeros: %v", err))
	}
	return &Tensor{
		shape: shape.Clone(),
		data:  make([]float64, shape.NumElements()),
	}
}

// Full creates a tensor filled with a specific value.
func Full(shape Shape, value float64) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = value
	}
	return t
}

// FromSlice creates a tensor that copies the given data.
//
// Returns a *ShapeError if the data length does not match the shape.
func FromSlice(data []float64, shape Shape) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("tensor: from slice: %w", err)
	}
	if len(data) != shape.NumElements() {
		return nil, &ShapeError{Op: "from slice", Have: Shape{len(data)}, Want: shape.Clone()}
	}
	t := &Tensor{
		shape: shape.Clone(),
		data:  make([]float64, len(data)),
	}
	copy(t.data, data)
	return t, nil
}

// Rand creates a tensor with values drawn uniformly from [-bound, bound)
// using the supplied source. Passing the source explicitly keeps weight
// initialization reproducible under a fixed seed.
func Rand(shape Shape, bound float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape)
	for i := range t.data {
		t.data[i] = (rng.Float64()*2.0 - 1.0) * bound
	}
	return t
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// Data returns the underlying storage. The slice is shared, not copied.
func (t *Tensor) Data() []float64 {
	return t.data
}

// NumElements returns the total number of elements.
func (t *Tensor) NumElements() int {
	return len(t.data)
}

// Reshape returns a view over the same storage with a new shape.
//
// Returns a *ShapeError if the element counts differ. Row-major element
// ordering is preserved, so a flatten followed by a reshape back
// round-trips exactly.
func (t *Tensor) Reshape(dims ...int) (*Tensor, error) {
	shape := Shape(dims)
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("tensor: reshape: %w", err)
	}
	if shape.NumElements() != len(t.data) {
		return nil, &ShapeError{Op: "reshape", Have: t.shape.Clone(), Want: shape.Clone()}
	}
	return &Tensor{shape: shape.Clone(), data: t.data}, nil
}

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	c := &Tensor{
		shape: t.shape.Clone(),
		data:  make([]float64, len(t.data)),
	}
	copy(c.data, t.data)
	return c
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(idx ...int) float64 {
	return t.data[t.offset(idx)]
}

// Set stores v at the given multi-dimensional index.
func (t *Tensor) Set(v float64, idx ...int) {
	t.data[t.offset(idx)] = v
}

func (t *Tensor) offset(idx []int) int {
	if len(idx) != len(t.shape) {
		panic(fmt.Sprintf("tensor: index rank %d does not match shape %v", len(idx), t.shape))
	}
	strides := t.shape.Strides()
	off := 0
	for i, x := range idx {
		if x < 0 || x >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %d out of range for dimension %d (size %d)", x, i, t.shape[i]))
		}
		off += x * strides[i]
	}
	return off
}

// Equal reports whether two tensors have identical shapes and contents.
func (t *Tensor) Equal(other *Tensor) bool {
	if !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// String returns a short description, e.g. Tensor[2 3 4].
func (t *Tensor) String() string {
	return fmt.Sprintf("Tensor%v", t.shape)
}
