package nn

import (
	"fmt"

	"github.com/scriven-ml/scriven/tensor"
)

// MaxPool2D is a 2D max pooling layer.
//
// Max pooling reduces spatial resolution by taking the maximum value in
// each pooling window. It has no trainable parameters.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_h, out_w]
//
// Where:
//
//	out_h = (height - kernelSize) / stride + 1
//	out_w = (width - kernelSize) / stride + 1
//
// During the forward pass the flat index of each window maximum is
// recorded; Backward routes the gradient only to those positions.
type MaxPool2D struct {
	kernelSize int
	stride     int

	inShape tensor.Shape
	argmax  []int // flat input index of the max per output element
}

// NewMaxPool2D creates a max pooling layer. Use kernelSize == stride for
// the usual non-overlapping pooling.
func NewMaxPool2D(kernelSize, stride int) *MaxPool2D {
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	return &MaxPool2D{kernelSize: kernelSize, stride: stride}
}

// Forward performs the forward pass.
func (m *MaxPool2D) Forward(x *tensor.Tensor, train bool) *tensor.Tensor {
	shape := x.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(shape)))
	}

	n, c, h, w := shape[0], shape[1], shape[2], shape[3]
	outH := (h-m.kernelSize)/m.stride + 1
	outW := (w-m.kernelSize)/m.stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid output dimensions out_h=%d, out_w=%d", outH, outW))
	}

	m.inShape = shape.Clone()
	out := tensor.Zeros(tensor.Shape{n, c, outH, outW})
	m.argmax = make([]int, out.NumElements())

	inData := x.Data()
	outData := out.Data()

	o := 0
	for i := 0; i < n; i++ {
		for ch := 0; ch < c; ch++ {
			base := (i*c + ch) * h * w
			for oy := 0; oy < outH; oy++ {
				for ox := 0; ox < outW; ox++ {
					maxIdx := base + (oy*m.stride)*w + ox*m.stride
					maxVal := inData[maxIdx]
					for ky := 0; ky < m.kernelSize; ky++ {
						for kx := 0; kx < m.kernelSize; kx++ {
							idx := base + (oy*m.stride+ky)*w + (ox*m.stride + kx)
							if inData[idx] > maxVal {
								maxVal = inData[idx]
								maxIdx = idx
							}
						}
					}
					outData[o] = maxVal
					m.argmax[o] = maxIdx
					o++
				}
			}
		}
	}

	return out
}

// Backward routes each output gradient to the input position that won
// the corresponding pooling window.
func (m *MaxPool2D) Backward(grad *tensor.Tensor) *tensor.Tensor {
	if m.argmax == nil {
		panic("maxpool2d: Backward called before Forward")
	}
	if grad.NumElements() != len(m.argmax) {
		panic(fmt.Sprintf("maxpool2d: gradient has %d elements, expected %d", grad.NumElements(), len(m.argmax)))
	}

	dx := tensor.Zeros(m.inShape.Clone())
	dxData := dx.Data()
	gradData := grad.Data()
	for o, idx := range m.argmax {
		dxData[idx] += gradData[o]
	}
	return dx
}

// Params returns an empty slice; pooling has no trainable parameters.
func (m *MaxPool2D) Params() []*Parameter {
	return []*Parameter{}
}

func (m *MaxPool2D) String() string {
	return fmt.Sprintf("MaxPool2D(kernel=%d, stride=%d)", m.kernelSize, m.stride)
}
