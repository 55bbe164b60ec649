package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/scriven-ml/scriven/tensor"
)

// Dense is a fully connected layer.
//
// Performs y = x @ W^T + b where:
//   - x is [batch, in_features]
//   - W is [out_features, in_features]
//   - b is [out_features]
//   - y is [batch, out_features]
//
// Weights use Xavier initialization, biases start at zero. The matrix
// products in both passes go through gonum.
type Dense struct {
	inFeatures  int
	outFeatures int

	weight *Parameter // [out_features, in_features]
	bias   *Parameter // [out_features]

	input *tensor.Tensor // cached for backward
}

// NewDense creates a fully connected layer.
func NewDense(inFeatures, outFeatures int, rng *rand.Rand) *Dense {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("dense: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}

	weight := Xavier(inFeatures, outFeatures, tensor.Shape{outFeatures, inFeatures}, rng)
	return &Dense{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("dense.weight", weight),
		bias:        NewParameter("dense.bias", tensor.Zeros(tensor.Shape{outFeatures})),
	}
}

// Forward computes y = x @ W^T + b.
//
// Input: [batch, in_features]. Output: [batch, out_features].
func (d *Dense) Forward(x *tensor.Tensor, train bool) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 2 {
		panic(fmt.Sprintf("dense: expected 2D input [N,features], got %dD", len(shape)))
	}
	if shape[1] != d.inFeatures {
		panic(fmt.Sprintf("dense: input features %d != expected %d", shape[1], d.inFeatures))
	}

	d.input = x
	n := shape[0]

	out := tensor.Zeros(tensor.Shape{n, d.outFeatures})
	xMat := mat.NewDense(n, d.inFeatures, x.Data())
	wMat := mat.NewDense(d.outFeatures, d.inFeatures, d.weight.Value().Data())
	outMat := mat.NewDense(n, d.outFeatures, out.Data())
	outMat.Mul(xMat, wMat.T())

	outData := out.Data()
	biasData := d.bias.Value().Data()
	for i := 0; i < n; i++ {
		row := outData[i*d.outFeatures : (i+1)*d.outFeatures]
		for j := range row {
			row[j] += biasData[j]
		}
	}

	return out
}

// Backward accumulates dW = g^T @ x and db = column sums of g, and
// returns dx = g @ W.
func (d *Dense) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if d.input == nil {
		panic("dense: Backward called before Forward")
	}
	n := d.input.Shape()[0]
	wantShape := tensor.Shape{n, d.outFeatures}
	if !grad.Shape().Equal(wantShape) {
		panic(fmt.Sprintf("dense: gradient shape %v != expected %v", grad.Shape(), wantShape))
	}

	gMat := mat.NewDense(n, d.outFeatures, grad.Data())
	xMat := mat.NewDense(n, d.inFeatures, d.input.Data())
	wMat := mat.NewDense(d.outFeatures, d.inFeatures, d.weight.Value().Data())

	dwPart := mat.NewDense(d.outFeatures, d.inFeatures, nil)
	dwPart.Mul(gMat.T(), xMat)
	dwMat := mat.NewDense(d.outFeatures, d.inFeatures, d.weight.Grad().Data())
	dwMat.Add(dwMat, dwPart)

	gradData := grad.Data()
	dbData := d.bias.Grad().Data()
	for i := 0; i < n; i++ {
		for j := 0; j < d.outFeatures; j++ {
			dbData[j] += gradData[i*d.outFeatures+j]
		}
	}

	dx := tensor.Zeros(tensor.Shape{n, d.inFeatures})
	dxMat := mat.NewDense(n, d.inFeatures, dx.Data())
	dxMat.Mul(gMat, wMat)
	return dx
}

// Params returns the weight and bias parameters.
func (d *Dense) Params() []*Parameter {
	return []*Parameter{d.weight, d.bias}
}

func (d *Dense) String() string {
	return fmt.Sprintf("Dense(in=%d, out=%d)", d.inFeatures, d.outFeatures)
}
