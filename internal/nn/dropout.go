package nn

import (
	"fmt"
	"math/rand"

	"github.com/scriven-ml/scriven/tensor"
)

// Dropout randomly zeroes activations during training.
//
// Uses inverted dropout: surviving activations are scaled by 1/(1-rate)
// so that inference needs no rescaling. During inference the layer is
// the identity.
type Dropout struct {
	rate float64
	rng  *rand.Rand

	mask    []float64 // nil when the last Forward ran in eval mode
	outSize int
}

// NewDropout creates a dropout layer with the given drop rate in [0, 1).
// The random source is shared with the model builder so runs are
// reproducible under a fixed seed.
func NewDropout(rate float64, rng *rand.Rand) *Dropout {
	if rate < 0 || rate >= 1 {
		panic(fmt.Sprintf("dropout: invalid rate %g (must be in [0, 1))", rate))
	}
	return &Dropout{rate: rate, rng: rng}
}

// Forward applies dropout in training mode and passes through otherwise.
func (d *Dropout) Forward(x *tensor.Tensor, train bool) *tensor.Tensor {
	d.outSize = x.NumElements()
	if !train || d.rate == 0 {
		d.mask = nil
		return x
	}

	out := tensor.Zeros(x.Shape().Clone())
	d.mask = make([]float64, x.NumElements())
	keep := 1.0 / (1.0 - d.rate)

	inData := x.Data()
	outData := out.Data()
	for i := range inData {
		if d.rng.Float64() >= d.rate {
			d.mask[i] = keep
			outData[i] = inData[i] * keep
		}
	}
	return out
}

// Backward applies the same mask to the gradient.
func (d *Dropout) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if grad.NumElements() != d.outSize {
		panic(fmt.Sprintf("dropout: gradient has %d elements, expected %d", grad.NumElements(), d.outSize))
	}
	if d.mask == nil {
		return grad
	}

	dx := tensor.Zeros(grad.Shape().Clone())
	dxData := dx.Data()
	gradData := grad.Data()
	for i := range gradData {
		dxData[i] = gradData[i] * d.mask[i]
	}
	return dx
}

// Params returns an empty slice; dropout has no trainable parameters.
func (d *Dropout) Params() []*Parameter {
	return []*Parameter{}
}

func (d *Dropout) String() string {
	return fmt.Sprintf("Dropout(rate=%g)", d.rate)
}
