package nn

import (
	"fmt"
	"math/rand"

	"gonum.org/v1/gonum/mat"

	"github.com/scriven-ml/scriven/tensor"
)

// Conv2D is a 2D convolutional layer.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel_h, kernel_w]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
//
// The convolution is computed with im2col: input patches are unrolled
// into a column matrix and multiplied against the unrolled kernel with
// gonum's dense matmul. The backward pass reuses the same unrolling to
// produce weight, bias and input gradients.
type Conv2D struct {
	inChannels  int
	outChannels int
	kernelSize  [2]int
	stride      int
	padding     int

	weight *Parameter // [out_channels, in_channels, kernel_h, kernel_w]
	bias   *Parameter // [out_channels]

	input *tensor.Tensor // cached for backward
}

// NewConv2D creates a 2D convolutional layer with Xavier-initialized
// weights and zero biases.
func NewConv2D(inChannels, outChannels, kernelH, kernelW, stride, padding int, rng *rand.Rand) *Conv2D {
	if inChannels <= 0 || outChannels <= 0 {
		panic(fmt.Sprintf("conv2d: invalid channels in=%d, out=%d", inChannels, outChannels))
	}
	if kernelH <= 0 || kernelW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid kernel size h=%d, w=%d", kernelH, kernelW))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	fanIn := inChannels * kernelH * kernelW
	fanOut := outChannels * kernelH * kernelW
	weight := Xavier(fanIn, fanOut, tensor.Shape{outChannels, inChannels, kernelH, kernelW}, rng)

	return &Conv2D{
		inChannels:  inChannels,
		outChannels: outChannels,
		kernelSize:  [2]int{kernelH, kernelW},
		stride:      stride,
		padding:     padding,
		weight:      NewParameter("conv2d.weight", weight),
		bias:        NewParameter("conv2d.bias", tensor.Zeros(tensor.Shape{outChannels})),
	}
}

// Forward performs the forward pass.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D) Forward(x *tensor.Tensor, train bool) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("conv2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}
	if shape[1] != c.inChannels {
		panic(fmt.Sprintf("conv2d: input channels %d != expected %d", shape[1], c.inChannels))
	}

	n, h, w := shape[0], shape[2], shape[3]
	kh, kw := c.kernelSize[0], c.kernelSize[1]
	outH, outW := c.OutputSize(h, w)
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions out_h=%d, out_w=%d (check stride/padding)", outH, outW))
	}

	c.input = x

	out := tensor.Zeros(tensor.Shape{n, c.outChannels, outH, outW})
	patchRows := c.inChannels * kh * kw
	spatial := outH * outW

	cols := make([]float64, patchRows*spatial)
	wMat := mat.NewDense(c.outChannels, patchRows, c.weight.Value().Data())
	biasData := c.bias.Value().Data()

	inData := x.Data()
	outData := out.Data()
	inStride := c.inChannels * h * w
	outStride := c.outChannels * spatial

	for i := 0; i < n; i++ {
		im2col(inData[i*inStride:(i+1)*inStride], c.inChannels, h, w, kh, kw, c.stride, c.padding, outH, outW, cols)

		colMat := mat.NewDense(patchRows, spatial, cols)
		outMat := mat.NewDense(c.outChannels, spatial, outData[i*outStride:(i+1)*outStride])
		outMat.Mul(wMat, colMat)

		for ch := 0; ch < c.outChannels; ch++ {
			b := biasData[ch]
			row := outData[i*outStride+ch*spatial : i*outStride+(ch+1)*spatial]
			for j := range row {
				row[j] += b
			}
		}
	}

	return out
}

// Backward maps the output gradient to an input gradient and accumulates
// weight and bias gradients.
func (c *Conv2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if c.input == nil {
		panic("conv2d: Backward called before Forward")
	}

	inShape := c.input.Shape()
	n, h, w := inShape[0], inShape[2], inShape[3]
	kh, kw := c.kernelSize[0], c.kernelSize[1]
	outH, outW := c.OutputSize(h, w)

	wantShape := tensor.Shape{n, c.outChannels, outH, outW}
	if !grad.Shape().Equal(wantShape) {
		panic(fmt.Sprintf("conv2d: gradient shape %v != expected %v", grad.Shape(), wantShape))
	}

	patchRows := c.inChannels * kh * kw
	spatial := outH * outW

	dx := tensor.Zeros(inShape.Clone())
	cols := make([]float64, patchRows*spatial)
	dCols := mat.NewDense(patchRows, spatial, nil)
	dwPart := mat.NewDense(c.outChannels, patchRows, nil)

	wMat := mat.NewDense(c.outChannels, patchRows, c.weight.Value().Data())
	dwMat := mat.NewDense(c.outChannels, patchRows, c.weight.Grad().Data())
	dbData := c.bias.Grad().Data()

	inData := c.input.Data()
	gradData := grad.Data()
	dxData := dx.Data()
	inStride := c.inChannels * h * w
	outStride := c.outChannels * spatial

	for i := 0; i < n; i++ {
		gMat := mat.NewDense(c.outChannels, spatial, gradData[i*outStride:(i+1)*outStride])

		// Bias gradient: sum over the spatial grid per channel.
		for ch := 0; ch < c.outChannels; ch++ {
			row := gradData[i*outStride+ch*spatial : i*outStride+(ch+1)*spatial]
			sum := 0.0
			for _, v := range row {
				sum += v
			}
			dbData[ch] += sum
		}

		// Weight gradient: dW += g @ cols^T.
		im2col(inData[i*inStride:(i+1)*inStride], c.inChannels, h, w, kh, kw, c.stride, c.padding, outH, outW, cols)
		colMat := mat.NewDense(patchRows, spatial, cols)
		dwPart.Mul(gMat, colMat.T())
		dwMat.Add(dwMat, dwPart)

		// Input gradient: scatter W^T @ g back through the patch map.
		dCols.Mul(wMat.T(), gMat)
		col2im(dCols.RawMatrix().Data, c.inChannels, h, w, kh, kw, c.stride, c.padding, outH, outW, dxData[i*inStride:(i+1)*inStride])
	}

	return dx
}

// Params returns the weight and bias parameters.
func (c *Conv2D) Params() []*Parameter {
	return []*Parameter{c.weight, c.bias}
}

// OutputSize computes output spatial dimensions for the given input size.
func (c *Conv2D) OutputSize(inputH, inputW int) (int, int) {
	outH := (inputH+2*c.padding-c.kernelSize[0])/c.stride + 1
	outW := (inputW+2*c.padding-c.kernelSize[1])/c.stride + 1
	return outH, outW
}

func (c *Conv2D) String() string {
	return fmt.Sprintf("Conv2D(in=%d, out=%d, kernel=%dx%d, stride=%d, padding=%d)",
		c.inChannels, c.outChannels, c.kernelSize[0], c.kernelSize[1], c.stride, c.padding)
}

// im2col unrolls input patches into a [C*KH*KW, outH*outW] column matrix.
// Out-of-bounds (padded) positions read as zero.
func im2col(src []float64, channels, h, w, kh, kw, stride, pad, outH, outW int, dst []float64) {
	spatial := outH * outW
	for ch := 0; ch < channels; ch++ {
		for ky := 0; ky < kh; ky++ {
			for kx := 0; kx < kw; kx++ {
				row := (ch*kh+ky)*kw + kx
				for oy := 0; oy < outH; oy++ {
					iy := oy*stride - pad + ky
					for ox := 0; ox < outW; ox++ {
						ix := ox*stride - pad + kx
						v := 0.0
						if iy >= 0 && iy < h && ix >= 0 && ix < w {
							v = src[(ch*h+iy)*w+ix]
						}
						dst[row*spatial+oy*outW+ox] = v
					}
				}
			}
		}
	}
}

// col2im scatter-adds a column matrix back onto the input grid. Padded
// positions are dropped.
func col2im(src []float64, channels, h, w, kh, kw, stride, pad, outH, outW int, dst []float64) {
	spatial := outH * outW
	for ch := 0; ch < channels; ch++ {
		for ky := 0; ky < kh; ky++ {
			for kx := 0; kx < kw; kx++ {
				row := (ch*kh+ky)*kw + kx
				for oy := 0; oy < outH; oy++ {
					iy := oy*stride - pad + ky
					if iy < 0 || iy >= h {
						continue
					}
					for ox := 0; ox < outW; ox++ {
						ix := ox*stride - pad + kx
						if ix < 0 || ix >= w {
							continue
						}
						dst[(ch*h+iy)*w+ix] += src[row*spatial+oy*outW+ox]
					}
				}
			}
		}
	}
}
