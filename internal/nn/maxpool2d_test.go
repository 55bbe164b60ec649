package nn

import (
	"testing"

	"github.com/scriven-ml/scriven/tensor"
)

func TestMaxPool2D_Forward(t *testing.T) {
	pool := NewMaxPool2D(2, 2)

	input, err := tensor.FromSlice([]float64{
		1, 3, 2, 4,
		5, 6, 7, 8,
		9, 2, 1, 0,
		3, 4, 5, 6,
	}, tensor.Shape{1, 1, 4, 4})
	if err != nil {
		t.Fatal(err)
	}

	out := pool.Forward(input, true)
	if !out.Shape().Equal(tensor.Shape{1, 1, 2, 2}) {
		t.Fatalf("output shape: got %v", out.Shape())
	}
	assertClose(t, []float64{6, 8, 9, 6}, out.Data(), 0, "pool output")
}

func TestMaxPool2D_Backward(t *testing.T) {
	pool := NewMaxPool2D(2, 2)

	input, err := tensor.FromSlice([]float64{
		1, 3, 2, 4,
		5, 6, 7, 8,
		9, 2, 1, 0,
		3, 4, 5, 6,
	}, tensor.Shape{1, 1, 4, 4})
	if err != nil {
		t.Fatal(err)
	}
	pool.Forward(input, true)

	grad, err := tensor.FromSlice([]float64{10, 20, 30, 40}, tensor.Shape{1, 1, 2, 2})
	if err != nil {
		t.Fatal(err)
	}
	dx := pool.Backward(grad)

	// Gradient lands only on the positions that won their window.
	want := []float64{
		0, 0, 0, 0,
		0, 10, 0, 20,
		30, 0, 0, 0,
		0, 0, 0, 40,
	}
	assertClose(t, want, dx.Data(), 0, "pool input gradient")
}

func TestMaxPool2D_OutputSize(t *testing.T) {
	pool := NewMaxPool2D(2, 2)
	input := tensor.Zeros(tensor.Shape{3, 64, 26, 26})
	out := pool.Forward(input, false)
	if !out.Shape().Equal(tensor.Shape{3, 64, 13, 13}) {
		t.Errorf("output shape: got %v", out.Shape())
	}
}
