package nn

import (
	"fmt"
	"math"

	"github.com/scriven-ml/scriven/tensor"
)

// ReLU applies the element-wise rectifier f(x) = max(0, x).
type ReLU struct {
	mask []bool // true where the input was positive
}

// NewReLU creates a ReLU activation layer.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies the rectifier.
func (r *ReLU) Forward(x *tensor.Tensor, train bool) *tensor.Tensor {
	out := tensor.Zeros(x.Shape().Clone())
	r.mask = make([]bool, x.NumElements())

	inData := x.Data()
	outData := out.Data()
	for i, v := range inData {
		if v > 0 {
			outData[i] = v
			r.mask[i] = true
		}
	}
	return out
}

// Backward passes the gradient through where the input was positive.
func (r *ReLU) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if r.mask == nil {
		panic("relu: Backward called before Forward")
	}
	if grad.NumElements() != len(r.mask) {
		panic(fmt.Sprintf("relu: gradient has %d elements, expected %d", grad.NumElements(), len(r.mask)))
	}

	dx := tensor.Zeros(grad.Shape().Clone())
	dxData := dx.Data()
	gradData := grad.Data()
	for i, keep := range r.mask {
		if keep {
			dxData[i] = gradData[i]
		}
	}
	return dx
}

// Params returns an empty slice.
func (r *ReLU) Params() []*Parameter {
	return []*Parameter{}
}

func (r *ReLU) String() string {
	return "ReLU()"
}

// Softmax normalizes each row of a [batch, classes] tensor into a
// probability distribution.
//
// Backward uses the exact Jacobian-vector product
//
//	dz_i = p_i * (g_i - sum_j g_j p_j)
//
// so the layer composes correctly with any loss. Training against
// cross-entropy normally bypasses this layer and feeds logits straight
// to the loss for numerical stability; Predict applies it for output
// probabilities.
type Softmax struct {
	probs *tensor.Tensor
}

// NewSoftmax creates a softmax activation layer.
func NewSoftmax() *Softmax {
	return &Softmax{}
}

// Forward computes row-wise softmax.
func (s *Softmax) Forward(x *tensor.Tensor, train bool) *tensor.Tensor {
	s.probs = SoftmaxRows(x)
	return s.probs
}

// Backward computes the Jacobian-vector product through the softmax.
func (s *Softmax) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if s.probs == nil {
		panic("softmax: Backward called before Forward")
	}
	shape := s.probs.Shape()
	if !grad.Shape().Equal(shape) {
		panic(fmt.Sprintf("softmax: gradient shape %v != expected %v", grad.Shape(), shape))
	}

	n, classes := shape[0], shape[1]
	dx := tensor.Zeros(shape.Clone())
	dxData := dx.Data()
	gradData := grad.Data()
	probsData := s.probs.Data()

	for i := 0; i < n; i++ {
		row := probsData[i*classes : (i+1)*classes]
		gRow := gradData[i*classes : (i+1)*classes]
		dot := 0.0
		for j := range row {
			dot += gRow[j] * row[j]
		}
		for j := range row {
			dxData[i*classes+j] = row[j] * (gRow[j] - dot)
		}
	}
	return dx
}

// Params returns an empty slice.
func (s *Softmax) Params() []*Parameter {
	return []*Parameter{}
}

func (s *Softmax) String() string {
	return "Softmax()"
}

// SoftmaxRows computes row-wise softmax of a [batch, classes] tensor
// using the log-sum-exp trick for numerical stability.
func SoftmaxRows(logits *tensor.Tensor) *tensor.Tensor {
	shape := logits.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("softmax: expected 2D input [N,classes], got %dD", len(shape)))
	}

	n, classes := shape[0], shape[1]
	out := tensor.Zeros(shape.Clone())
	inData := logits.Data()
	outData := out.Data()

	for i := 0; i < n; i++ {
		row := inData[i*classes : (i+1)*classes]
		logProbs := logSoftmax(row)
		for j, lp := range logProbs {
			outData[i*classes+j] = math.Exp(lp)
		}
	}
	return out
}
