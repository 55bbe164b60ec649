// Copyright 2025 Scriven ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import "fmt"

// Shape holds tensor dimensions, outermost first. Shape{32, 1, 28, 28}
// is a batch of 32 single-channel 28×28 images; the empty shape is a
// scalar.
type Shape []int

// NumElements returns how many values a tensor of this shape stores.
// A scalar stores one.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate rejects shapes with non-positive dimensions; every tensor
// constructor calls it, so a built tensor always has usable dimensions.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal reports whether both shapes have the same dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// Strides returns the row-major element strides: stride[i] is the flat
// distance between neighbors along dimension i, so the innermost
// dimension is contiguous.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}
	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// String formats the shape like [2 3 4].
func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}
