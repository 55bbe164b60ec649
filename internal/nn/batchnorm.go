package nn

import (
	"fmt"
	"math"

	"github.com/scriven-ml/scriven/tensor"
)

// BatchNorm applies per-channel batch normalization to 4D activations.
//
// Formula: Y = gamma * (X - mean) / sqrt(var + eps) + beta
//
// During training, mean and variance are computed over the batch and
// spatial dimensions of each channel, and exponential moving averages
// are kept for inference. During inference the moving averages are used
// instead, so a single sample normalizes the same way regardless of its
// batch.
type BatchNorm struct {
	numFeatures int
	eps         float64
	momentum    float64

	gamma *Parameter // learnable scale [channels]
	beta  *Parameter // learnable shift [channels]

	runningMean []float64
	runningVar  []float64

	// training-pass cache
	xhat   *tensor.Tensor
	invStd []float64
}

// NewBatchNorm creates a batch normalization layer over numFeatures
// channels. Gamma starts at one, beta at zero, the running variance at
// one.
func NewBatchNorm(numFeatures int, eps, momentum float64) *BatchNorm {
	if numFeatures <= 0 {
		panic(fmt.Sprintf("batchnorm: invalid feature count %d", numFeatures))
	}

	runningVar := make([]float64, numFeatures)
	for i := range runningVar {
		runningVar[i] = 1.0
	}

	return &BatchNorm{
		numFeatures: numFeatures,
		eps:         eps,
		momentum:    momentum,
		gamma:       NewParameter("batchnorm.gamma", tensor.Full(tensor.Shape{numFeatures}, 1.0)),
		beta:        NewParameter("batchnorm.beta", tensor.Zeros(tensor.Shape{numFeatures})),
		runningMean: make([]float64, numFeatures),
		runningVar:  runningVar,
	}
}

// Forward normalizes the input per channel.
//
// Input: [batch, channels, height, width].
func (b *BatchNorm) Forward(x *tensor.Tensor, train bool) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("batchnorm: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != b.numFeatures {
		panic(fmt.Sprintf("batchnorm: input channels %d != expected %d", shape[1], b.numFeatures))
	}

	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	spatial := h * w
	m := float64(n * spatial)

	out := tensor.Zeros(shape.Clone())
	inData := x.Data()
	outData := out.Data()
	gammaData := b.gamma.Value().Data()
	betaData := b.beta.Value().Data()

	if train {
		b.xhat = tensor.Zeros(shape.Clone())
		b.invStd = make([]float64, c)
	}
	var xhatData []float64
	if train {
		xhatData = b.xhat.Data()
	}

	for ch := 0; ch < c; ch++ {
		var mean, variance float64
		if train {
			sum := 0.0
			for i := 0; i < n; i++ {
				base := (i*c + ch) * spatial
				for j := 0; j < spatial; j++ {
					sum += inData[base+j]
				}
			}
			mean = sum / m

			sqSum := 0.0
			for i := 0; i < n; i++ {
				base := (i*c + ch) * spatial
				for j := 0; j < spatial; j++ {
					d := inData[base+j] - mean
					sqSum += d * d
				}
			}
			variance = sqSum / m

			b.runningMean[ch] = b.momentum*b.runningMean[ch] + (1.0-b.momentum)*mean
			b.runningVar[ch] = b.momentum*b.runningVar[ch] + (1.0-b.momentum)*variance
		} else {
			mean = b.runningMean[ch]
			variance = b.runningVar[ch]
		}

		invStd := 1.0 / math.Sqrt(variance+b.eps)
		if train {
			b.invStd[ch] = invStd
		}

		g, be := gammaData[ch], betaData[ch]
		for i := 0; i < n; i++ {
			base := (i*c + ch) * spatial
			for j := 0; j < spatial; j++ {
				xn := (inData[base+j] - mean) * invStd
				if train {
					xhatData[base+j] = xn
				}
				outData[base+j] = g*xn + be
			}
		}
	}

	return out
}

// Backward computes the batch-normalization gradient.
//
// Uses the standard closed form over the M = N*H*W elements of each
// channel:
//
//	dx = gamma * invStd * (g - mean(g) - xhat * mean(g * xhat))
func (b *BatchNorm) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if b.xhat == nil {
		panic("batchnorm: Backward called before a training-mode Forward")
	}
	shape := b.xhat.Shape()
	if !grad.Shape().Equal(shape) {
		panic(fmt.Sprintf("batchnorm: gradient shape %v != expected %v", grad.Shape(), shape))
	}

	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	spatial := h * w
	m := float64(n * spatial)

	dx := tensor.Zeros(shape.Clone())
	dxData := dx.Data()
	gradData := grad.Data()
	xhatData := b.xhat.Data()
	gammaData := b.gamma.Value().Data()
	dGamma := b.gamma.Grad().Data()
	dBeta := b.beta.Grad().Data()

	for ch := 0; ch < c; ch++ {
		gSum := 0.0
		gxSum := 0.0
		for i := 0; i < n; i++ {
			base := (i*c + ch) * spatial
			for j := 0; j < spatial; j++ {
				g := gradData[base+j]
				gSum += g
				gxSum += g * xhatData[base+j]
			}
		}
		dBeta[ch] += gSum
		dGamma[ch] += gxSum

		gMean := gSum / m
		gxMean := gxSum / m
		scale := gammaData[ch] * b.invStd[ch]
		for i := 0; i < n; i++ {
			base := (i*c + ch) * spatial
			for j := 0; j < spatial; j++ {
				dxData[base+j] = scale * (gradData[base+j] - gMean - xhatData[base+j]*gxMean)
			}
		}
	}

	return dx
}

// Params returns the gamma and beta parameters.
func (b *BatchNorm) Params() []*Parameter {
	return []*Parameter{b.gamma, b.beta}
}

func (b *BatchNorm) String() string {
	return fmt.Sprintf("BatchNorm(features=%d, eps=%g, momentum=%g)", b.numFeatures, b.eps, b.momentum)
}
