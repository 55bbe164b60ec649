package nn

import (
	"fmt"

	"github.com/scriven-ml/scriven/tensor"
)

// Flatten reshapes [batch, d1, d2, ...] activations to [batch, d1*d2*...].
//
// Pure view change over row-major storage; Backward restores the
// original shape.
type Flatten struct {
	inShape tensor.Shape
}

// NewFlatten creates a flatten layer.
func NewFlatten() *Flatten {
	return &Flatten{}
}

// Forward flattens all dimensions after the batch dimension.
func (f *Flatten) Forward(x *tensor.Tensor, train bool) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("flatten: expected at least 2D input, got %dD", len(shape)))
	}

	f.inShape = shape.Clone()
	n := shape[0]
	out, err := x.Reshape(n, x.NumElements()/n)
	if err != nil {
		panic(fmt.Sprintf("flatten: %v", err))
	}
	return out
}

// Backward restores the pre-flatten shape.
func (f *Flatten) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if f.inShape == nil {
		panic("flatten: Backward called before Forward")
	}
	dx, err := grad.Reshape(f.inShape...)
	if err != nil {
		panic(fmt.Sprintf("flatten: %v", err))
	}
	return dx
}

// Params returns an empty slice; flatten has no trainable parameters.
func (f *Flatten) Params() []*Parameter {
	return []*Parameter{}
}

func (f *Flatten) String() string {
	return "Flatten()"
}
